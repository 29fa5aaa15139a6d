// Package common contains shared functionality for command handlers
package common

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/cristhianchimbo50/sri-extractor/internal/accounting"
	"github.com/cristhianchimbo50/sri-extractor/internal/parsererror"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"
	"github.com/cristhianchimbo50/sri-extractor/internal/storage"
)

// Subsystem names the component an error came from.
type Subsystem string

const (
	SubsystemOracle     Subsystem = "oracle"
	SubsystemPortal     Subsystem = "portal"
	SubsystemFilesystem Subsystem = "filesystem"
	SubsystemOther      Subsystem = "error"
)

// Classify returns the subsystem responsible for err.
func Classify(err error) Subsystem {
	var dbErr *accounting.DBError
	var sessionErr *portal.SessionError
	var malformed *parsererror.MalformedDocumentError
	var pathErr *fs.PathError

	switch {
	case errors.As(err, &dbErr), errors.Is(err, accounting.ErrNotConfigured):
		return SubsystemOracle
	case errors.As(err, &sessionErr),
		errors.Is(err, portal.ErrNoSavedSession),
		errors.Is(err, portal.ErrSessionExpired),
		errors.Is(err, portal.ErrCaptchaBlocked),
		errors.Is(err, portal.ErrResultsUnavailable),
		errors.Is(err, portal.ErrNoSession):
		return SubsystemPortal
	case errors.As(err, &malformed), errors.As(err, &pathErr), errors.Is(err, storage.ErrNoArchive):
		return SubsystemFilesystem
	default:
		return SubsystemOther
	}
}

// Status renders err as a one-line status message prefixed with the
// subsystem that failed.
func Status(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("%s: %v", Classify(err), err)
}

// StatusError wraps err so its message carries the subsystem prefix.
func StatusError(err error) error {
	if err == nil {
		return nil
	}
	return &statusError{err: err}
}

type statusError struct {
	err error
}

func (e *statusError) Error() string { return Status(e.err) }

func (e *statusError) Unwrap() error { return e.err }
