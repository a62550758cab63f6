// Package cli provides the command-line interface for the covered-call
// fundamentals analyzer.
package cli

import (
	"errors"
	"os"
	"os/signal"
	"syscall"
)

// errFatalRun marks a run that produced an error document instead of a
// report. The process still wrote its one result document; only the exit
// code differs.
var errFatalRun = errors.New("analysis aborted")

// Run starts the CLI application. Exit code 0 covers every run that
// produced a report, degraded ones included; 2 means a fatal abort; 1 is
// reserved for usage errors.
func Run() {
	// A consumer closing the pipe must surface as EPIPE on write, not
	// kill the process before the diagnostic channel is flushed.
	sigpipe := make(chan os.Signal, 1)
	signal.Notify(sigpipe, syscall.SIGPIPE)

	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		if errors.Is(err, errFatalRun) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
