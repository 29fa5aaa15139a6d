// Package portal drives the SRI en línea web portal: authenticating a browser
// session and extracting received invoices for a date.
//
// All browser interaction goes through the Page capability so the flows can
// run against a scripted fake in tests. Timeouts are applied by the caller
// through the context passed to each Page method.
package portal

import (
	"context"
	"time"
)

// Page is the minimal browser capability the portal flows need. Selectors
// are CSS selectors.
type Page interface {
	// Navigate loads url and waits for the network to settle.
	Navigate(ctx context.Context, url string) error
	// WaitIdle waits for the network to settle.
	WaitIdle(ctx context.Context) error
	// Reload reloads the current document and waits for it to settle.
	Reload(ctx context.Context) error
	// URL returns the current document URL.
	URL() string

	// Count returns how many elements match selector.
	Count(ctx context.Context, selector string) (int, error)
	// Text returns the trimmed inner text of the first match.
	Text(ctx context.Context, selector string) (string, error)
	// Visible reports whether the first match is visible.
	Visible(ctx context.Context, selector string) (bool, error)
	// HasText reports whether a visible element matching selector contains
	// text, ignoring case.
	HasText(ctx context.Context, selector, text string) (bool, error)

	// Click clicks the first match.
	Click(ctx context.Context, selector string) error
	// ClickText clicks the first element matching selector whose text
	// contains text, ignoring case.
	ClickText(ctx context.Context, selector, text string) error
	// Fill replaces the value of an input.
	Fill(ctx context.Context, selector, value string) error
	// Select picks an option of a <select> by value, falling back to label.
	Select(ctx context.Context, selector, value string) error

	// WaitVisible blocks until the first match is visible.
	WaitVisible(ctx context.Context, selector string) error
	// WaitAttached blocks until selector matches an element in the DOM.
	WaitAttached(ctx context.Context, selector string) error

	// Rows returns the cell texts of every row matched by rowSelector, using
	// cellSelector inside each row.
	Rows(ctx context.Context, rowSelector, cellSelector string) ([][]string, error)

	// Download clicks selector, waits for the resulting download and writes
	// it to dest.
	Download(ctx context.Context, selector, dest string) error

	// SaveState writes cookies and local storage to path.
	SaveState(ctx context.Context, path string) error
	// Close releases the page and its browser.
	Close() error
}

// Launcher opens a browser page. A non-empty statePath restores a saved
// session.
type Launcher interface {
	Launch(ctx context.Context, statePath string) (Page, error)
}

// Clock abstracts time for the polling loops.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// SystemClock is the wall clock.
var SystemClock Clock = realClock{}

// Progress is a status update emitted while a flow runs.
type Progress struct {
	Stage   string
	Message string
	Current int
	Total   int
}

// ProgressFunc receives progress updates. It must not block.
type ProgressFunc func(Progress)

func (f ProgressFunc) emit(stage, message string, current, total int) {
	if f != nil {
		f(Progress{Stage: stage, Message: message, Current: current, Total: total})
	}
}

type settings struct {
	clock    Clock
	progress ProgressFunc
}

func newSettings(options []Option) settings {
	s := settings{clock: SystemClock}
	for _, o := range options {
		o(&s)
	}
	if s.clock == nil {
		s.clock = SystemClock
	}
	return s
}

// Option customizes a Manager or an Extractor.
type Option func(*settings)

// WithClock replaces the wall clock.
func WithClock(c Clock) Option {
	return func(s *settings) { s.clock = c }
}

// WithProgress registers a progress observer.
func WithProgress(fn ProgressFunc) Option {
	return func(s *settings) { s.progress = fn }
}

// withTimeout runs fn with a context bounded by d. A zero d only inherits
// the parent deadline.
func withTimeout(ctx context.Context, d time.Duration, fn func(context.Context) error) error {
	if d <= 0 {
		return fn(ctx)
	}
	tctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return fn(tctx)
}
