// Package toolexec runs external commands to completion for the
// post-process pipeline.
//
// Runner is the seam every pipeline step uses; ExecRunner is the production
// implementation. Non-zero exits surface as *ExitError, which carries the
// command line, exit code, and a tail of stderr and matches
// services.ErrToolExecution. A missing binary matches
// services.ErrToolUnavailable.
package toolexec
