package main

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
)

// writePidfile creates path exclusively (failing if it already exists) and
// writes the current process id to it.
func writePidfile(path string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrap(err, "unable to create pidfile")
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%d\n", os.Getpid()); err != nil {
		return errors.Wrap(err, "unable to write pidfile")
	}
	return nil
}

// removePidfile removes a pidfile written by writePidfile. Errors are
// logged by the caller, not returned as fatal: a missing pidfile on exit
// isn't worth aborting shutdown over.
func removePidfile(path string) error {
	return os.Remove(path)
}
