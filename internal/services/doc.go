// Package services defines shared utilities consumed by the recording
// controller, the post-process pipeline, and the CLI.
//
// Key responsibilities:
//   - Context helpers that stamp session identifiers and step names for
//     logging.
//   - Structured error markers plus the Wrap helper so every failure carries
//     the step, the attempted command, and the underlying detail.
//
// Use these helpers when wiring new pipeline logic so error reporting stays
// uniform across steps.
package services
