package flvtool

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"castro/internal/services"
	"castro/internal/testsupport"
	"castro/internal/toolexec"
)

type recordingRunner struct {
	output string
	err    error
	calls  []toolexec.Command
}

func (r *recordingRunner) Run(_ context.Context, cmd toolexec.Command) ([]byte, error) {
	r.calls = append(r.calls, cmd)
	return []byte(r.output), r.err
}

const sampleDump = `---
/tmp/temp-a.swf:
  hasKeyframes: true
  hasVideo: true
  duration: 10.48
  width: 1024
`

func TestParseDurationByPath(t *testing.T) {
	seconds, err := ParseDuration([]byte(sampleDump), "/tmp/temp-a.swf")
	if err != nil {
		t.Fatalf("ParseDuration returned error: %v", err)
	}
	if seconds != 10.48 {
		t.Fatalf("expected 10.48, got %v", seconds)
	}
}

func TestParseDurationFallsBackToFirstEntry(t *testing.T) {
	seconds, err := ParseDuration([]byte(sampleDump), "/other/path")
	if err != nil {
		t.Fatalf("ParseDuration returned error: %v", err)
	}
	if seconds != 10.48 {
		t.Fatalf("expected 10.48, got %v", seconds)
	}
}

func TestParseDurationIntegerValue(t *testing.T) {
	seconds, err := ParseDuration([]byte("x.flv:\n  duration: 7\n"), "x.flv")
	if err != nil {
		t.Fatalf("ParseDuration returned error: %v", err)
	}
	if seconds != 7 {
		t.Fatalf("expected 7, got %v", seconds)
	}
}

func TestParseDurationFailures(t *testing.T) {
	cases := map[string]string{
		"missing field": "x.flv:\n  width: 10\n",
		"empty":         "",
		"not yaml":      "x.flv: [1, 2",
		"bad value":     "x.flv:\n  duration: soon\n",
		"negative":      "x.flv:\n  duration: -2\n",
	}
	for name, input := range cases {
		if _, err := ParseDuration([]byte(input), "x.flv"); !errors.Is(err, services.ErrParse) {
			t.Fatalf("%s: expected parse error, got %v", name, err)
		}
	}
}

func TestProberRunsFlvtool(t *testing.T) {
	runner := &recordingRunner{output: sampleDump}
	seconds, err := Prober{Runner: runner}.Probe(context.Background(), "/tmp/temp-a.swf")
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if seconds != 10.48 {
		t.Fatalf("unexpected duration %v", seconds)
	}
	if len(runner.calls) != 1 {
		t.Fatalf("expected one call, got %d", len(runner.calls))
	}
	call := runner.calls[0]
	if call.String() != "flvtool2 -P /tmp/temp-a.swf" || !call.Capture {
		t.Fatalf("unexpected command %#v", call)
	}
}

func TestInjectorArguments(t *testing.T) {
	dir := t.TempDir()
	cues := filepath.Join(dir, "a.swf-cuepoints.xml")
	working := filepath.Join(dir, "temp-a.swf")
	output := filepath.Join(dir, "a.swf")
	testsupport.Touch(t, cues, working)

	runner := &recordingRunner{}
	if err := (Injector{Runner: runner, Binary: "/opt/flvtool2"}).Inject(context.Background(), cues, working, output); err != nil {
		t.Fatalf("Inject returned error: %v", err)
	}
	want := strings.Join([]string{"/opt/flvtool2", "-AUt", cues, working, output}, " ")
	if runner.calls[0].String() != want {
		t.Fatalf("expected %q, got %q", want, runner.calls[0].String())
	}
}

func TestInjectorMissingInput(t *testing.T) {
	dir := t.TempDir()
	runner := &recordingRunner{}
	err := Injector{Runner: runner}.Inject(context.Background(), filepath.Join(dir, "cues.xml"), filepath.Join(dir, "temp-a.swf"), filepath.Join(dir, "a.swf"))
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected filesystem error, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatal("expected injector not to run")
	}
}
