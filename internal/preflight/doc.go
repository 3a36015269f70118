// Package preflight checks that the data directory, credential file, and
// external binaries castro depends on are usable before a recording starts.
package preflight
