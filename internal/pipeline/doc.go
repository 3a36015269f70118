// Package pipeline runs castro's post-process steps over a finished capture.
//
// The Processor executes keyframe normalization, duration probing, cuepoint
// generation, metadata injection, and cleanup strictly in that order. The
// first failure aborts the run; nothing already written is rolled back.
package pipeline
