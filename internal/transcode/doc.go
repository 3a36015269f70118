// Package transcode performs keyframe normalization: the raw capture is
// rewritten with a fixed GOP so the final artifact seeks cleanly.
//
// The transcoder is chosen at call time by Resolver from an ordered list of
// dialects (avconv, then ffmpeg by default); each dialect carries its own
// quiet flags.
package transcode
