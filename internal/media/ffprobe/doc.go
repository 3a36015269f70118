// Package ffprobe provides a typed wrapper around ffprobe JSON output.
//
// Key types:
//   - Result: parsed ffprobe output containing streams and format metadata
//   - Prober: a duration backend for the post-process pipeline
//
// Commands run through a toolexec.Runner so tests can substitute canned
// output.
package ffprobe
