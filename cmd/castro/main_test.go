package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"castro/internal/config"
	"castro/internal/services"
	"castro/internal/sessionlock"
)

func TestRecordAndProcess(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, []string{"record", "--duration", "300ms"}, env.configPath)
	if err != nil {
		t.Fatalf("record: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, out, "Recording localhost:0 to "+filepath.Join(env.dataDir, "demo.swf"))
	requireContains(t, out, "(3 seconds, 3 cuepoints)")

	for _, gone := range []string{"temp-demo.swf", "demo.swf-cuepoints.xml"} {
		if _, err := os.Stat(filepath.Join(env.dataDir, gone)); !errors.Is(err, os.ErrNotExist) {
			t.Fatalf("expected %s removed, stat err=%v", gone, err)
		}
	}
	if _, err := os.Stat(filepath.Join(env.dataDir, "demo.swf")); err != nil {
		t.Fatalf("expected final output: %v", err)
	}

	out, _, err = runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "processed")
	requireContains(t, out, "localhost:0")
}

func TestRecordNoProcessThenProcess(t *testing.T) {
	env := setupCLITestEnv(t)

	out, stderr, err := runCLI(t, []string{"record", "--duration", "200ms", "--no-process", "--filename", "raw.swf"}, env.configPath)
	if err != nil {
		t.Fatalf("record: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, out, "Capture saved to "+filepath.Join(env.dataDir, "raw.swf"))
	if _, err := os.Stat(filepath.Join(env.dataDir, "temp-raw.swf")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("post-processing should not have run, stat err=%v", err)
	}

	out, stderr, err = runCLI(t, []string{"process", "--filename", "raw.swf"}, env.configPath)
	if err != nil {
		t.Fatalf("process: %v\nstderr: %s", err, stderr)
	}
	requireContains(t, out, "3 seconds, 3 cuepoints, transcoder ffmpeg")
}

func TestRecordReportsCaptureFailure(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, func(cfg *config.Config) { cfg.Recording.Command = "vnc-crash" })

	_, _, err := runCLI(t, []string{"record", "--duration", "5s"}, env.configPath)
	if !errors.Is(err, services.ErrToolExecution) {
		t.Fatalf("expected ErrToolExecution, got %v", err)
	}

	out, _, err := runCLI(t, []string{"history"}, env.configPath)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	requireContains(t, out, "failed")
}

func TestProcessFailsWithoutCapture(t *testing.T) {
	env := setupCLITestEnv(t)
	_, _, err := runCLI(t, []string{"process", "--filename", "missing.swf"}, env.configPath)
	if !errors.Is(err, services.ErrFilesystem) {
		t.Fatalf("expected ErrFilesystem, got %v", err)
	}
}

func TestProcessRefusedWhileDataDirLocked(t *testing.T) {
	env := setupCLITestEnv(t)
	if err := os.WriteFile(filepath.Join(env.dataDir, "demo.swf"), []byte("FWS"), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}
	lock, err := sessionlock.Acquire(env.dataDir)
	if err != nil {
		t.Fatalf("acquire lock: %v", err)
	}
	defer lock.Release()

	_, _, err = runCLI(t, []string{"process"}, env.configPath)
	if !errors.Is(err, services.ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(env.dataDir, "temp-demo.swf")); !os.IsNotExist(statErr) {
		t.Fatalf("working file should not be created while locked: %v", statErr)
	}
}

func TestProcessNamesFailingStep(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeStub(t, "ffmpeg", "#!/bin/sh\necho 'moov atom not found' >&2\nexit 1\n")
	if err := os.WriteFile(filepath.Join(env.dataDir, "demo.swf"), []byte("FWS"), 0o644); err != nil {
		t.Fatalf("write capture: %v", err)
	}

	_, _, err := runCLI(t, []string{"process"}, env.configPath)
	if err == nil {
		t.Fatal("expected failure")
	}
	msg := formatError(err)
	for _, fragment := range []string{"tool execution failed", "keyframe", "ffmpeg -v 0 -y -i", "code 1"} {
		requireContains(t, msg, fragment)
	}
	if _, statErr := os.Stat(filepath.Join(env.dataDir, "demo.swf-cuepoints.xml")); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatal("cuepoints must not be written after a keyframe failure")
	}
}

func TestCuepointsCommand(t *testing.T) {
	out, _, err := runCLI(t, []string{"cuepoints", "--seconds", "2"}, "")
	if err != nil {
		t.Fatalf("cuepoints: %v", err)
	}
	requireContains(t, out, "<name>00:00:01</name>")
	requireContains(t, out, "<timestamp>1000</timestamp>")
	if strings.Count(out, "onCuePoint") != 2 {
		t.Fatalf("expected two cuepoints:\n%s", out)
	}
}

func TestPathsCommand(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"paths", "--filename", "talk.swf"}, env.configPath)
	if err != nil {
		t.Fatalf("paths: %v", err)
	}
	requireContains(t, out, filepath.Join(env.dataDir, "temp-talk.swf"))
	requireContains(t, out, filepath.Join(env.dataDir, "talk.swf-cuepoints.xml"))
}

func TestDoctorReportsReady(t *testing.T) {
	env := setupCLITestEnv(t)
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if err != nil {
		t.Fatalf("doctor: %v\n%s", err, out)
	}
	requireContains(t, out, "ready to record")
	requireContains(t, out, "Transcoder")
}

func TestDoctorReportsMissingTool(t *testing.T) {
	env := setupCLITestEnv(t)
	env.writeConfig(t, func(cfg *config.Config) { cfg.Recording.Command = "castro-missing-capture" })
	out, _, err := runCLI(t, []string{"doctor"}, env.configPath)
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
	requireContains(t, out, "FAIL")
	requireContains(t, out, "castro-missing-capture")
}

func TestConfigInitShowAndValidate(t *testing.T) {
	env := setupCLITestEnv(t)

	out, _, err := runCLI(t, []string{"config", "validate"}, env.configPath)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")

	out, _, err = runCLI(t, []string{"config", "show"}, env.configPath)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	requireContains(t, out, "filename = 'demo.swf'")

	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err = runCLI(t, []string{"config", "init", "--path", target}, "")
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")
	if _, _, err := runCLI(t, []string{"config", "init", "--path", target}, ""); err == nil {
		t.Fatal("expected error when config already exists")
	}
}
