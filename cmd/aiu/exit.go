package main

import (
	"errors"

	"github.com/handiism/audio-info-updater/internal/model"
)

// Process exit codes.
const (
	exitOK         = 0
	exitIncomplete = 1
	exitOperation  = 2
	exitConfig     = 3
)

// usageError marks invalid arguments detected by the command itself.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

// exitCode maps a command error to the process exit code. When several
// collections failed, the most severe failure wins.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var (
		usage  *usageError
		cfgErr *model.ConfigurationError
	)
	switch {
	case errors.As(err, &usage), errors.As(err, &cfgErr):
		return exitConfig
	case onlyAmbiguous(err):
		return exitIncomplete
	default:
		return exitOperation
	}
}

// onlyAmbiguous reports whether every leaf of err is an ambiguous match.
func onlyAmbiguous(err error) bool {
	switch e := err.(type) {
	case *model.AmbiguousMatchError:
		return true
	case interface{ Unwrap() []error }:
		errs := e.Unwrap()
		if len(errs) == 0 {
			return false
		}
		for _, inner := range errs {
			if !onlyAmbiguous(inner) {
				return false
			}
		}
		return true
	case interface{ Unwrap() error }:
		inner := e.Unwrap()
		return inner != nil && onlyAmbiguous(inner)
	default:
		return false
	}
}
