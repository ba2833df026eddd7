package main

import "errors"

// Exit codes
const (
	ExitSuccess     = 0 // Success
	ExitError       = 1 // General error (invalid arguments, write failure)
	ExitConfigError = 2 // Configuration error (missing bibliography, invalid pubgen.yml)
	ExitDataError   = 3 // Data error (malformed bibliography, check found issues)
)

// exitError carries the process exit code for an error returned from a command.
type exitError struct {
	code  int
	err   error
	quiet bool // already reported to the user
}

func (e *exitError) Error() string { return e.err.Error() }
func (e *exitError) Unwrap() error { return e.err }

// withExit tags err with an exit code. A nil err stays nil.
func withExit(code int, err error) error {
	if err == nil {
		return nil
	}
	return &exitError{code: code, err: err}
}

// exitQuietly is withExit for failures the command already reported.
func exitQuietly(code int, err error) error {
	return &exitError{code: code, err: err, quiet: true}
}

// isQuiet reports whether err should not be printed again.
func isQuiet(err error) bool {
	var ee *exitError
	return errors.As(err, &ee) && ee.quiet
}

// exitCode returns the exit code attached to err, or ExitError.
func exitCode(err error) int {
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	return ExitError
}
