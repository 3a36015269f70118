package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"math"
	"os"
	"strings"
	"testing"

	"castro/internal/config"
	"castro/internal/logging"
	"castro/internal/media/flvtool"
	"castro/internal/paths"
	"castro/internal/services"
	"castro/internal/testsupport"
	"castro/internal/toolexec"
	"castro/internal/transcode"
)

type recorder struct {
	calls []string
}

func (r *recorder) add(name string) { r.calls = append(r.calls, name) }

type stubNormalizer struct {
	rec       *recorder
	framerate int
	err       error
}

func (s *stubNormalizer) Normalize(_ context.Context, input, output string, framerate int) (transcode.Dialect, error) {
	s.rec.add("keyframe")
	s.framerate = framerate
	if s.err != nil {
		return transcode.Dialect{Binary: "ffmpeg"}, s.err
	}
	if err := os.WriteFile(output, []byte("normalized"), 0o644); err != nil {
		return transcode.Dialect{}, err
	}
	return transcode.Dialect{Binary: "ffmpeg"}, nil
}

type stubProber struct {
	rec      *recorder
	duration float64
	err      error
}

func (s *stubProber) Probe(context.Context, string) (float64, error) {
	s.rec.add("duration")
	return s.duration, s.err
}

type stubInjector struct {
	rec       *recorder
	cuepoints string
	err       error
}

func (s *stubInjector) Inject(_ context.Context, cuepoints, _, _ string) error {
	s.rec.add("inject")
	data, err := os.ReadFile(cuepoints)
	if err != nil {
		return err
	}
	s.cuepoints = string(data)
	return s.err
}

func newTestProcessor(t *testing.T, duration float64) (*Processor, *recorder, Job) {
	t.Helper()
	rec := &recorder{}
	set := paths.Resolve("demo.swf", t.TempDir())
	if err := os.WriteFile(set.Output, []byte("raw capture"), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	proc := &Processor{
		Normalizer: &stubNormalizer{rec: rec},
		Prober:     &stubProber{rec: rec, duration: duration},
		Injector:   &stubInjector{rec: rec},
		Logger:     logging.NewNop(),
	}
	return proc, rec, Job{SessionID: "test", Paths: set, Framerate: 12}
}

func TestProcessRunsStepsInOrder(t *testing.T) {
	proc, rec, job := newTestProcessor(t, 2.6)

	result, err := proc.Process(context.Background(), job)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if got := strings.Join(rec.calls, ","); got != "keyframe,duration,inject" {
		t.Fatalf("unexpected call order %q", got)
	}
	if result.Duration != 3 || result.Cuepoints != 3 || result.Transcoder != "ffmpeg" {
		t.Fatalf("unexpected result %+v", result)
	}
	injected := proc.Injector.(*stubInjector).cuepoints
	if strings.Count(injected, "<metatag event=\"onCuePoint\">") != 3 {
		t.Fatalf("expected three cuepoints in injected document, got:\n%s", injected)
	}
	for _, gone := range []string{job.Paths.Working, job.Paths.Cuepoints} {
		if _, err := os.Stat(gone); !errors.Is(err, fs.ErrNotExist) {
			t.Fatalf("expected %s removed, stat err=%v", gone, err)
		}
	}
	if _, err := os.Stat(job.Paths.Output); err != nil {
		t.Fatalf("output should remain: %v", err)
	}
}

func TestProcessStopsAfterKeyframeFailure(t *testing.T) {
	proc, rec, job := newTestProcessor(t, 3)
	exitErr := &toolexec.ExitError{
		Command:  toolexec.Command{Name: "ffmpeg", Args: []string{"-y"}},
		ExitCode: 1,
		Stderr:   "Invalid data found",
	}
	proc.Normalizer.(*stubNormalizer).err = exitErr

	_, err := proc.Process(context.Background(), job)
	if err == nil {
		t.Fatal("expected error")
	}
	if !errors.Is(err, services.ErrToolExecution) {
		t.Fatalf("expected ErrToolExecution, got %v", err)
	}
	for _, fragment := range []string{"keyframe", "ffmpeg -y", "code 1"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %q", fragment, err.Error())
		}
	}
	if got := strings.Join(rec.calls, ","); got != "keyframe" {
		t.Fatalf("later steps ran: %q", got)
	}
	if _, err := os.Stat(job.Paths.Cuepoints); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("cuepoints should not be written, stat err=%v", err)
	}
}

func TestProcessStopsAfterProbeFailure(t *testing.T) {
	proc, rec, job := newTestProcessor(t, 0)
	proc.Prober.(*stubProber).err = services.Wrap(services.ErrParse, "flvtool2", "duration", "missing duration field", nil)

	_, err := proc.Process(context.Background(), job)
	if !errors.Is(err, services.ErrParse) {
		t.Fatalf("expected ErrParse, got %v", err)
	}
	if !strings.Contains(err.Error(), "duration") {
		t.Fatalf("expected step name in %q", err.Error())
	}
	if got := strings.Join(rec.calls, ","); got != "keyframe,duration" {
		t.Fatalf("unexpected calls %q", got)
	}
	if _, err := os.Stat(job.Paths.Working); err != nil {
		t.Fatalf("working file must be left for inspection: %v", err)
	}
}

func TestProcessRejectsUnusableDuration(t *testing.T) {
	for _, value := range []float64{-1, math.NaN(), math.Inf(1)} {
		proc, _, job := newTestProcessor(t, value)
		if _, err := proc.Process(context.Background(), job); !errors.Is(err, services.ErrParse) {
			t.Fatalf("duration %v: expected ErrParse, got %v", value, err)
		}
	}
}

func TestProcessRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[float64]int{0.4: 0, 0.5: 1, 1.49: 1, 2.5: 3, 59.99: 60}
	for raw, want := range cases {
		proc, _, job := newTestProcessor(t, raw)
		result, err := proc.Process(context.Background(), job)
		if err != nil {
			t.Fatalf("raw %v: %v", raw, err)
		}
		if result.Duration != want {
			t.Fatalf("raw %v: want %d got %d", raw, want, result.Duration)
		}
	}
}

func TestProcessDefaultsFramerate(t *testing.T) {
	proc, _, job := newTestProcessor(t, 1)
	job.Framerate = 0
	if _, err := proc.Process(context.Background(), job); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if got := proc.Normalizer.(*stubNormalizer).framerate; got != DefaultFramerate {
		t.Fatalf("expected framerate %d, got %d", DefaultFramerate, got)
	}
}

func TestProcessRejectsCollidingPaths(t *testing.T) {
	proc, rec, job := newTestProcessor(t, 1)
	job.Paths.Working = job.Paths.Output
	if _, err := proc.Process(context.Background(), job); !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("no step should run, got %v", rec.calls)
	}
}

func TestProcessHonoursCancellation(t *testing.T) {
	proc, rec, job := newTestProcessor(t, 1)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := proc.Process(ctx, job); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(rec.calls) != 0 {
		t.Fatalf("no step should run, got %v", rec.calls)
	}
}

func TestCleanupToleratesMissingFiles(t *testing.T) {
	proc := &Processor{Logger: logging.NewNop()}
	set := paths.Resolve("gone.swf", t.TempDir())
	if err := proc.cleanup(context.Background(), logging.NewNop(), set); err != nil {
		t.Fatalf("cleanup of missing files returned error: %v", err)
	}
}

func TestCleanupReportsRemovalFailure(t *testing.T) {
	proc := &Processor{remove: func(string) error { return fs.ErrPermission }}
	set := paths.Resolve("locked.swf", t.TempDir())
	err := proc.cleanup(context.Background(), logging.NewNop(), set)
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected ErrFilesystem, got %v", err)
	}
}

type scriptedRunner struct {
	commands []toolexec.Command
	outputs  map[string][]byte
}

func (s *scriptedRunner) Run(_ context.Context, cmd toolexec.Command) ([]byte, error) {
	s.commands = append(s.commands, cmd)
	switch {
	case cmd.Name == "ffmpeg":
		out := cmd.Args[len(cmd.Args)-1]
		return nil, os.WriteFile(out, []byte("normalized"), 0o644)
	case cmd.Name == "flvtool2" && cmd.Args[0] == "-AUt":
		return nil, nil
	}
	return s.outputs[cmd.Name], nil
}

func TestNewFromConfigWiresFlvtool(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithHistoryDisabled())
	cfg.Tools.Transcoders = []string{"ffmpeg"}
	set := paths.Resolve("wired.swf", cfg.Recording.DataDir)
	if err := os.WriteFile(set.Output, []byte("raw"), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	runner := &scriptedRunner{outputs: map[string][]byte{
		"flvtool2": []byte(set.Working + ":\n  duration: 1.6\n"),
	}}

	proc := NewFromConfig(cfg, runner, logging.NewNop())
	proc.Normalizer = transcode.Normalizer{
		Runner: runner,
		Resolver: transcode.Resolver{
			Candidates: transcode.DialectsFor(cfg.Tools.Transcoders),
			Lookup:     func(name string) (string, error) { return "/usr/bin/" + name, nil },
		},
	}

	result, err := proc.Process(context.Background(), Job{Paths: set, Framerate: 12})
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if result.Duration != 2 {
		t.Fatalf("expected duration 2, got %d", result.Duration)
	}
	if len(runner.commands) != 3 {
		t.Fatalf("expected 3 commands, got %d: %v", len(runner.commands), runner.commands)
	}
	want := []string{
		"ffmpeg -v 0 -y -i " + set.Output + " -g 12 " + set.Working,
		"flvtool2 -P " + set.Working,
		"flvtool2 -AUt " + set.Cuepoints + " " + set.Working + " " + set.Output,
	}
	for i, cmd := range runner.commands {
		if cmd.String() != want[i] {
			t.Fatalf("command %d: want %q got %q", i, want[i], cmd.String())
		}
	}
}

func TestProberForSelectsBackend(t *testing.T) {
	cfg := config.Default()
	if _, ok := ProberFor(&cfg, nil).(flvtool.Prober); !ok {
		t.Fatal("expected flvtool prober by default")
	}
	cfg.Tools.ProbeBackend = config.ProbeBackendNative
	if _, ok := ProberFor(&cfg, nil).(flvtool.Prober); ok {
		t.Fatal("expected native prober")
	}
}
