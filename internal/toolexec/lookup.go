package toolexec

import "os/exec"

// Lookup resolves a binary name to a path, reporting presence.
type Lookup func(name string) (string, error)

// LookPath is the default Lookup backed by the process PATH.
var LookPath Lookup = exec.LookPath

// Available reports whether name resolves through lookup.
func Available(lookup Lookup, name string) bool {
	if lookup == nil {
		lookup = LookPath
	}
	_, err := lookup(name)
	return err == nil
}
