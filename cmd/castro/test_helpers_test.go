package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"castro/internal/config"
	"castro/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	dataDir    string
	binDir     string
	configPath string
}

// Stub tools: the capture tool writes its -o target and waits for SIGINT,
// ffmpeg copies -i to the last argument, and flvtool2 reports a 2.6s duration.
const (
	stubCapture = `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-o" ]; then out="$2"; shift; fi
  shift
done
printf 'FWS' > "$out"
trap 'exit 0' INT TERM
while :; do sleep 0.05; done
`
	stubFFmpeg = `#!/bin/sh
in=""
last=""
while [ $# -gt 0 ]; do
  if [ "$1" = "-i" ]; then in="$2"; fi
  last="$1"
  shift
done
cp "$in" "$last"
`
	stubFlvtool = `#!/bin/sh
if [ "$1" = "-P" ]; then
  printf '%s:\n  duration: 2.6\n' "$2"
  exit 0
fi
if [ "$1" = "-AUt" ]; then
  test -f "$2" && test -f "$3" && cp "$3" "$4"
  exit $?
fi
exit 1
`
	stubCrash = "#!/bin/sh\necho 'connection refused' >&2\nexit 1\n"
)

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	cfg := testsupport.NewConfig(t,
		testsupport.WithStubScript("vnc2swf", stubCapture),
		testsupport.WithStubScript("ffmpeg", stubFFmpeg),
		testsupport.WithStubScript("flvtool2", stubFlvtool),
		testsupport.WithStubScript("vnc-crash", stubCrash),
	)
	cfg.Recording.Filename = "demo.swf"
	cfg.Recording.StopGraceSeconds = 2
	cfg.Tools.Transcoders = []string{"ffmpeg"}

	home := filepath.Join(testsupport.BaseDir(cfg), "home")
	if err := os.MkdirAll(home, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", home)
	t.Setenv("CASTRO_DATA_DIR", "")

	env := &cliTestEnv{
		cfg:     cfg,
		dataDir: cfg.Recording.DataDir,
		binDir:  testsupport.BinDir(cfg),
	}
	env.configPath = testsupport.WriteConfig(t, cfg)
	return env
}

func (e *cliTestEnv) writeStub(t *testing.T, name, script string) {
	t.Helper()
	testsupport.WriteStub(t, e.binDir, name, script)
}

// writeConfig applies edit to the environment's config and rewrites the file.
func (e *cliTestEnv) writeConfig(t *testing.T, edit func(*config.Config)) {
	t.Helper()
	edit(e.cfg)
	e.configPath = testsupport.WriteConfig(t, e.cfg)
}

func runCLI(t *testing.T, args []string, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	var flags []string
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
