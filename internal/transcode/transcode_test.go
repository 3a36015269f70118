package transcode

import (
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"castro/internal/services"
	"castro/internal/toolexec"
)

type recordingRunner struct {
	calls []toolexec.Command
	err   error
}

func (r *recordingRunner) Run(_ context.Context, cmd toolexec.Command) ([]byte, error) {
	r.calls = append(r.calls, cmd)
	return nil, r.err
}

func lookupOnly(names ...string) toolexec.Lookup {
	return func(name string) (string, error) {
		for _, n := range names {
			if n == name {
				return "/usr/bin/" + name, nil
			}
		}
		return "", os.ErrNotExist
	}
}

func TestResolverPrefersAvconv(t *testing.T) {
	d, err := Resolver{Lookup: lookupOnly("avconv", "ffmpeg")}.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if d.Binary != "avconv" || strings.Join(d.QuietArgs, " ") != "-loglevel panic" {
		t.Fatalf("unexpected dialect %#v", d)
	}
}

func TestResolverFallsBackToFFmpeg(t *testing.T) {
	d, err := Resolver{Lookup: lookupOnly("ffmpeg")}.Resolve()
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if d.Binary != "ffmpeg" || strings.Join(d.QuietArgs, " ") != "-v 0" {
		t.Fatalf("unexpected dialect %#v", d)
	}
}

func TestResolverNoneAvailable(t *testing.T) {
	_, err := Resolver{Lookup: lookupOnly()}.Resolve()
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected tool unavailable, got %v", err)
	}
	if !strings.Contains(err.Error(), "avconv, ffmpeg") {
		t.Fatalf("expected candidates listed, got %q", err.Error())
	}
}

func TestDialectsForConfiguredBinaries(t *testing.T) {
	dialects := DialectsFor([]string{"/opt/bin/ffmpeg", " ", "avconv", "mytranscoder"})
	if len(dialects) != 3 {
		t.Fatalf("expected 3 dialects, got %d", len(dialects))
	}
	if dialects[0].Binary != "/opt/bin/ffmpeg" || dialects[0].QuietArgs[0] != "-v" {
		t.Fatalf("unexpected first dialect %#v", dialects[0])
	}
	if dialects[1].QuietArgs[0] != "-loglevel" {
		t.Fatalf("unexpected avconv dialect %#v", dialects[1])
	}
	if dialects[2].Binary != "mytranscoder" {
		t.Fatalf("unexpected custom dialect %#v", dialects[2])
	}
	if len(DialectsFor(nil)) != 2 {
		t.Fatal("expected defaults for empty list")
	}
}

func TestNormalizeBuildsCommand(t *testing.T) {
	runner := &recordingRunner{}
	n := Normalizer{Runner: runner, Resolver: Resolver{Lookup: lookupOnly("ffmpeg")}}
	d, err := n.Normalize(context.Background(), "/tmp/a.swf", "/tmp/temp-a.swf", 12)
	if err != nil {
		t.Fatalf("Normalize returned error: %v", err)
	}
	if d.Binary != "ffmpeg" {
		t.Fatalf("unexpected dialect %#v", d)
	}
	want := "ffmpeg -v 0 -y -i /tmp/a.swf -g 12 /tmp/temp-a.swf"
	if len(runner.calls) != 1 || runner.calls[0].String() != want {
		t.Fatalf("expected %q, got %#v", want, runner.calls)
	}
}

func TestNormalizeRejectsInPlace(t *testing.T) {
	runner := &recordingRunner{}
	n := Normalizer{Runner: runner, Resolver: Resolver{Lookup: lookupOnly("ffmpeg")}}
	if _, err := n.Normalize(context.Background(), "/tmp/a.swf", "/tmp/./a.swf", 12); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(runner.calls) != 0 {
		t.Fatal("expected no transcoder call")
	}
}

func TestNormalizePropagatesRunnerError(t *testing.T) {
	runner := &recordingRunner{err: &toolexec.ExitError{Command: toolexec.Command{Name: "ffmpeg"}, ExitCode: 1}}
	n := Normalizer{Runner: runner, Resolver: Resolver{Lookup: lookupOnly("ffmpeg")}}
	_, err := n.Normalize(context.Background(), "/tmp/a.swf", "/tmp/temp-a.swf", 12)
	if !errors.Is(err, services.ErrToolExecution) {
		t.Fatalf("expected tool execution error, got %v", err)
	}
}
