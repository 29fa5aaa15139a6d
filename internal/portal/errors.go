package portal

import (
	"errors"
	"fmt"
)

var (
	// ErrNoSavedSession is returned when extraction starts without a saved
	// session file.
	ErrNoSavedSession = errors.New("no saved session, log in first")
	// ErrSessionExpired is returned when the portal redirects to its login
	// flow during extraction.
	ErrSessionExpired = errors.New("session is invalid or expired, log in and save the session again")
	// ErrCaptchaBlocked is returned when the portal keeps showing a captcha
	// after every retry.
	ErrCaptchaBlocked = errors.New("the portal keeps showing a captcha")
	// ErrResultsUnavailable is returned when the results list never loads.
	ErrResultsUnavailable = errors.New("the results list did not load after several retries")
	// ErrNoSession is returned by SaveSessionAndClose when nothing is open.
	ErrNoSession = errors.New("no open session")
)

// Stage names the part of the login flow that failed.
type Stage string

// Login flow stages.
const (
	StageLogin Stage = "login"
	StageMenu  Stage = "menu"
	StageSave  Stage = "save"
)

// SessionError reports that the session manager could not reach the
// received-documents page.
type SessionError struct {
	Stage    Stage
	Attempts int
	Reason   string
	Err      error
}

func (e *SessionError) Error() string {
	msg := fmt.Sprintf("portal %s failed", e.Stage)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Attempts > 0 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SessionError) Unwrap() error {
	return e.Err
}

func menuError(reason string, err error) *SessionError {
	return &SessionError{Stage: StageMenu, Reason: reason, Err: err}
}
