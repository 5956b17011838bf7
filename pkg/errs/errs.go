// Package errs defines the error kinds shared by every package of the router.
//
// Callers classify failures with errors.Is; the concrete error always carries
// a message describing the offending value.
package errs

import "errors"

var (
	// ErrInvalidArgument marks a violated precondition. It is never corrected silently.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrIO marks a failure to open, map or validate a graph file.
	ErrIO = errors.New("i/o error")
)
