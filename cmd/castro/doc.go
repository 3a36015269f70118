// Command castro records a VNC display to an SWF capture and post-processes
// it into a seekable file with one navigation cuepoint per second.
//
// Subcommands:
//
//	record     capture until Ctrl-C or --duration, then post-process
//	process    post-process an existing capture
//	cuepoints  print the cuepoint document for a duration
//	paths      show where a session's artifacts live
//	doctor     check directories and external tools
//	history    list past sessions
//	config     init, show, or validate configuration
package main
