// Package capture controls a screen-recording session against a VNC display.
//
// A Session moves between Idle, Recording and Stopped. Init binds a fresh
// process handle, Start launches the capture tool in the background, and Stop
// asks it to finish and waits for it. Cancellation is cooperative: the
// recorder observes its context, and ExecRecorder turns that into SIGINT
// followed by a kill once the configured grace period passes.
package capture
