package config

import "time"

const (
	defaultConfigPath       = "~/.config/castro/config.toml"
	defaultFilename         = "castro-video.swf"
	defaultHost             = "localhost"
	defaultFramerate        = 12
	defaultPasswordFile     = "~/.vnc/passwd"
	defaultCaptureCommand   = "vnc2swf"
	defaultStopGraceSeconds = 10
	defaultProbe            = "flvtool2"
	defaultInject           = "flvtool2"
	defaultFFprobe          = "ffprobe"
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"

	// ProbeBackendFlvtool parses `flvtool2 -P` output.
	ProbeBackendFlvtool = "flvtool2"
	// ProbeBackendFFprobe reads format.duration from ffprobe JSON.
	ProbeBackendFFprobe = "ffprobe"
	// ProbeBackendNative decodes FLV onMetaData in-process.
	ProbeBackendNative = "native"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Recording: Recording{
			Filename:         defaultFilename,
			Host:             defaultHost,
			Framerate:        defaultFramerate,
			PasswordFile:     defaultPasswordFile,
			Command:          defaultCaptureCommand,
			StopGraceSeconds: defaultStopGraceSeconds,
		},
		Tools: Tools{
			Transcoders:  []string{"avconv", "ffmpeg"},
			Probe:        defaultProbe,
			ProbeBackend: ProbeBackendFlvtool,
			Inject:       defaultInject,
			FFprobe:      defaultFFprobe,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		History: History{
			Enabled: true,
			Path:    defaultHistoryPath(),
		},
	}
}

// StopGrace converts stop_grace_seconds to a duration.
func (r Recording) StopGrace() time.Duration {
	return time.Duration(r.StopGraceSeconds) * time.Second
}
