// Package deps reports which external binaries castro needs are present on
// the host. The doctor command and preflight checks share it.
package deps
