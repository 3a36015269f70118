package transcode

import (
	"strings"

	"castro/internal/services"
	"castro/internal/toolexec"
)

// Dialect pairs a transcoder binary with the flags that silence it.
type Dialect struct {
	Binary    string
	QuietArgs []string
}

// DefaultDialects lists avconv first and ffmpeg as the fallback.
func DefaultDialects() []Dialect {
	return []Dialect{
		{Binary: "avconv", QuietArgs: []string{"-loglevel", "panic"}},
		{Binary: "ffmpeg", QuietArgs: []string{"-v", "0"}},
	}
}

// DialectsFor maps configured binary names onto known dialects, keeping
// their order. Unknown names use ffmpeg's flag syntax.
func DialectsFor(binaries []string) []Dialect {
	if len(binaries) == 0 {
		return DefaultDialects()
	}
	known := make(map[string]Dialect)
	for _, d := range DefaultDialects() {
		known[d.Binary] = d
	}
	out := make([]Dialect, 0, len(binaries))
	for _, name := range binaries {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if d, ok := known[baseName(name)]; ok {
			d.Binary = name
			out = append(out, d)
			continue
		}
		out = append(out, Dialect{Binary: name, QuietArgs: []string{"-v", "0"}})
	}
	if len(out) == 0 {
		return DefaultDialects()
	}
	return out
}

// Resolver picks the first available dialect.
type Resolver struct {
	Candidates []Dialect
	Lookup     toolexec.Lookup
}

// Resolve probes each candidate in order.
func (r Resolver) Resolve() (Dialect, error) {
	candidates := r.Candidates
	if len(candidates) == 0 {
		candidates = DefaultDialects()
	}
	names := make([]string, 0, len(candidates))
	for _, candidate := range candidates {
		names = append(names, candidate.Binary)
		if toolexec.Available(r.Lookup, candidate.Binary) {
			return candidate, nil
		}
	}
	return Dialect{}, services.Wrap(services.ErrToolUnavailable, "transcode", "resolve", "none of "+strings.Join(names, ", ")+" found", nil)
}

func baseName(path string) string {
	if i := strings.LastIndexAny(path, `/\`); i >= 0 {
		return path[i+1:]
	}
	return path
}
