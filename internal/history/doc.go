// Package history persists a record of each recording session in SQLite so
// `castro history` can list past captures, their durations, and failures.
package history
