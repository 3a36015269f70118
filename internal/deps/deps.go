package deps

import (
	"fmt"
	"strings"

	"castro/internal/toolexec"
)

// Requirement defines an external binary castro relies on. When Alternatives
// is set, the first command found on PATH satisfies the requirement.
type Requirement struct {
	Name         string
	Command      string
	Alternatives []string
	Description  string
	Optional     bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// CheckBinaries evaluates the provided requirements against PATH.
func CheckBinaries(requirements []Requirement) []Status {
	return CheckBinariesWith(toolexec.LookPath, requirements)
}

// CheckBinariesWith evaluates requirements using the supplied lookup.
func CheckBinariesWith(lookup toolexec.Lookup, requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		candidates := candidateCommands(req)
		status := Status{
			Name:        req.Name,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if len(candidates) == 0 {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		status.Command = candidates[0]
		for _, cmd := range candidates {
			if toolexec.Available(lookup, cmd) {
				status.Command = cmd
				status.Available = true
				break
			}
		}
		if !status.Available {
			if len(candidates) == 1 {
				status.Detail = fmt.Sprintf("binary %q not found", candidates[0])
			} else {
				status.Detail = fmt.Sprintf("none of %s found", strings.Join(candidates, ", "))
			}
		}
		results = append(results, status)
	}
	return results
}

// MissingRequired returns the names of required dependencies that are unavailable.
func MissingRequired(statuses []Status) []string {
	var missing []string
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status.Name)
		}
	}
	return missing
}

func candidateCommands(req Requirement) []string {
	out := make([]string, 0, 1+len(req.Alternatives))
	seen := make(map[string]struct{})
	for _, cmd := range append([]string{req.Command}, req.Alternatives...) {
		cmd = strings.TrimSpace(cmd)
		if cmd == "" {
			continue
		}
		if _, ok := seen[cmd]; ok {
			continue
		}
		seen[cmd] = struct{}{}
		out = append(out, cmd)
	}
	return out
}
