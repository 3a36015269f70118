package capture

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"castro/internal/config"
)

// DefaultCommand is the capture tool invoked by ExecRecorder.
const DefaultCommand = "vnc2swf"

// Options configure one recording session.
type Options struct {
	Filename     string
	Host         string
	Display      int
	Framerate    int
	Clipping     string
	Port         int
	PasswordFile string
	DataDir      string
	Quiet        bool
	Command      string
	StopGrace    time.Duration
}

// OptionsFromConfig copies the [recording] section into Options.
func OptionsFromConfig(cfg *config.Config) Options {
	rec := cfg.Recording
	return Options{
		Filename:     rec.Filename,
		Host:         rec.Host,
		Display:      rec.Display,
		Framerate:    rec.Framerate,
		Clipping:     rec.Clipping,
		Port:         rec.Port,
		PasswordFile: rec.PasswordFile,
		DataDir:      rec.DataDir,
		Quiet:        rec.Quiet,
		Command:      rec.Command,
		StopGrace:    rec.StopGrace(),
	}
}

// Target renders host:display.
func (o Options) Target() string {
	host := strings.TrimSpace(o.Host)
	if host == "" {
		host = "localhost"
	}
	return fmt.Sprintf("%s:%d", host, o.Display)
}

// BuildArgs composes the capture tool arguments for output:
//
//	-n -o <output> [-C clip] [-r fps] [-P passwd] -R 3 <host>:<display> [port]
func BuildArgs(opts Options, output string) []string {
	args := []string{"-n", "-o", output}
	if clip := strings.TrimSpace(opts.Clipping); clip != "" {
		args = append(args, "-C", clip)
	}
	if opts.Framerate > 0 {
		args = append(args, "-r", strconv.Itoa(opts.Framerate))
	}
	if passwd := strings.TrimSpace(opts.PasswordFile); passwd != "" {
		args = append(args, "-P", passwd)
	}
	args = append(args, "-R", "3", opts.Target())
	if opts.Port > 0 {
		args = append(args, strconv.Itoa(opts.Port))
	}
	return args
}
