package portal

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/cristhianchimbo50/sri-extractor/internal/fileutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
)

// SessionState is a state of the login flow.
type SessionState int

// Login flow states, in the order a successful run visits them.
const (
	StateUnauthenticated SessionState = iota
	StateProfileCheck
	StateLoginForm
	StateMenuNavigation
	StateReceivedReady
	StateSaved
)

func (s SessionState) String() string {
	switch s {
	case StateUnauthenticated:
		return "unauthenticated"
	case StateProfileCheck:
		return "profile-check"
	case StateLoginForm:
		return "login-form"
	case StateMenuNavigation:
		return "menu-navigation"
	case StateReceivedReady:
		return "received-ready"
	case StateSaved:
		return "saved"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Manager authenticates against the portal, walks the menu to the
// received-documents page and saves the resulting browser session.
type Manager struct {
	launcher  Launcher
	statePath string
	opts      Options
	logger    logging.Logger
	settings

	mu       sync.Mutex
	page     Page
	state    SessionState
	visited  []SessionState
	password string
}

// NewManager returns a session manager that saves the session to statePath.
func NewManager(launcher Launcher, statePath string, opts Options, logger logging.Logger, options ...Option) *Manager {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	return &Manager{
		launcher:  launcher,
		statePath: statePath,
		opts:      opts.withDefaults(),
		logger:    logger,
		settings:  newSettings(options),
	}
}

// State returns the current state of the flow.
func (m *Manager) State() SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// Visited returns every state entered since the manager was created.
func (m *Manager) Visited() []SessionState {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]SessionState(nil), m.visited...)
}

func (m *Manager) transition(to SessionState) {
	m.mu.Lock()
	from := m.state
	m.state = to
	m.visited = append(m.visited, to)
	m.mu.Unlock()

	m.logger.Debug("Session state changed",
		logging.Field{Key: logging.FieldStage, Value: to.String()},
		logging.Field{Key: "from", Value: from.String()})
	m.progress.emit(to.String(), "", 0, 0)
}

// Login signs in as ruc, opens the received-documents page through the menu
// and saves the session. On success the browser is closed. On failure the
// browser stays open until Close is called.
func (m *Manager) Login(ctx context.Context, ruc, password string) error {
	page, err := m.ensurePage(ctx)
	if err != nil {
		return &SessionError{Stage: StageLogin, Reason: "could not start the browser", Err: err}
	}
	m.password = password

	for attempt := 1; attempt <= m.opts.LoginAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		log := m.logger.WithFields(
			logging.Field{Key: logging.FieldAttempt, Value: attempt},
			logging.Field{Key: logging.FieldRUC, Value: ruc})

		m.transition(StateUnauthenticated)
		if err := m.navigate(ctx, page, HomeURL); err != nil {
			log.WithError(err).Warn("Home page did not load")
		}

		m.transition(StateProfileCheck)
		if !m.profileReady(ctx, page, ruc) {
			m.transition(StateLoginForm)
			m.submitLogin(ctx, page, ruc)

			if !m.waitForProfile(ctx, page, ruc) {
				log.Info("Profile did not show the RUC, retrying login")
				if err := m.clock.Sleep(ctx, m.opts.RetryDelay); err != nil {
					return err
				}
				continue
			}
		}

		m.transition(StateMenuNavigation)
		if err := m.openReceivedViaMenu(ctx, page, ruc); err != nil {
			return err
		}
		m.transition(StateReceivedReady)
		return m.SaveSessionAndClose(ctx)
	}

	return &SessionError{
		Stage:    StageLogin,
		Attempts: m.opts.LoginAttempts,
		Reason:   "could not sign in and open the received documents page",
	}
}

// SaveSessionAndClose writes the session state file and releases the
// browser.
func (m *Manager) SaveSessionAndClose(ctx context.Context) error {
	m.mu.Lock()
	page := m.page
	m.mu.Unlock()
	if page == nil {
		return ErrNoSession
	}

	_ = withTimeout(ctx, m.opts.NavigationTimeout, page.WaitIdle)

	if dir := filepath.Dir(m.statePath); dir != "" {
		if err := fileutils.EnsureDirectoryExists(dir); err != nil {
			return &SessionError{Stage: StageSave, Err: err}
		}
	}
	if err := page.SaveState(ctx, m.statePath); err != nil {
		return &SessionError{Stage: StageSave, Reason: "could not write session state", Err: err}
	}

	m.logger.Info("Session saved", logging.Field{Key: logging.FieldFile, Value: m.statePath})
	m.transition(StateSaved)
	return m.Close()
}

// Close releases the browser. It is safe to call more than once.
func (m *Manager) Close() error {
	m.mu.Lock()
	page := m.page
	m.page = nil
	m.mu.Unlock()

	if page == nil {
		return nil
	}
	return page.Close()
}

func (m *Manager) ensurePage(ctx context.Context) (Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.page != nil {
		return m.page, nil
	}
	page, err := m.launcher.Launch(ctx, "")
	if err != nil {
		return nil, err
	}
	m.page = page
	return page, nil
}

func (m *Manager) navigate(ctx context.Context, page Page, url string) error {
	return withTimeout(ctx, m.opts.NavigationTimeout, func(c context.Context) error {
		return page.Navigate(c, url)
	})
}

// clickLoginTrigger clicks the "start session" control when one is present.
func (m *Manager) clickLoginTrigger(ctx context.Context, page Page) {
	for _, sel := range loginTriggerSelectors {
		found, err := page.HasText(ctx, sel, loginTrigger)
		if err != nil || !found {
			continue
		}
		err = withTimeout(ctx, m.opts.ClickTimeout, func(c context.Context) error {
			return page.ClickText(c, sel, loginTrigger)
		})
		if err != nil {
			m.logger.WithError(err).Debug("Start-session control not clickable")
			return
		}
		_ = withTimeout(ctx, m.opts.NavigationTimeout, page.WaitIdle)
		_ = m.clock.Sleep(ctx, m.opts.MenuDelay)
		return
	}
}

// loginFormPresent reports whether the password form shows all three
// controls.
func loginFormPresent(ctx context.Context, page Page) bool {
	for _, sel := range []string{SelUser, SelPassword, SelLoginButton} {
		n, err := page.Count(ctx, sel)
		if err != nil || n == 0 {
			return false
		}
	}
	return true
}

func (m *Manager) fillLogin(ctx context.Context, page Page, ruc string) error {
	for _, sel := range []string{SelUser, SelPassword, SelLoginButton} {
		err := withTimeout(ctx, m.opts.FormTimeout, func(c context.Context) error {
			return page.WaitVisible(c, sel)
		})
		if err != nil {
			return fmt.Errorf("login control %s not ready: %w", sel, err)
		}
	}
	if err := page.Fill(ctx, SelUser, ruc); err != nil {
		return err
	}
	if err := page.Fill(ctx, SelPassword, m.password); err != nil {
		return err
	}
	if err := page.Click(ctx, SelLoginButton); err != nil {
		return err
	}
	_ = withTimeout(ctx, m.opts.NavigationTimeout, page.WaitIdle)
	return m.clock.Sleep(ctx, m.opts.RetryDelay)
}

// submitLogin triggers the login flow and fills the form when it appears.
func (m *Manager) submitLogin(ctx context.Context, page Page, ruc string) {
	m.clickLoginTrigger(ctx, page)
	if !loginFormPresent(ctx, page) {
		return
	}
	if err := m.fillLogin(ctx, page, ruc); err != nil {
		m.logger.WithError(err).Warn("Login form could not be submitted")
	}
}

// profileReady reports whether the profile page shows ruc, loading it when
// the current page is not the profile.
func (m *Manager) profileReady(ctx context.Context, page Page, ruc string) bool {
	if strings.Contains(strings.ToLower(page.URL()), profilePath) && profileShows(ctx, page, ruc) {
		return true
	}
	if err := m.navigate(ctx, page, ProfileURL); err != nil {
		return false
	}
	if IsLoginRedirect(page.URL()) {
		return false
	}
	return profileShows(ctx, page, ruc)
}

func profileShows(ctx context.Context, page Page, ruc string) bool {
	n, err := page.Count(ctx, SelProfileLabel)
	if err != nil || n == 0 {
		return false
	}
	text, err := page.Text(ctx, SelProfileLabel)
	if err != nil {
		return false
	}
	return strings.Contains(strings.ToLower(text), strings.ToLower(strings.TrimSpace(ruc)))
}

// waitForProfile polls the profile page until it shows ruc or the profile
// timeout elapses.
func (m *Manager) waitForProfile(ctx context.Context, page Page, ruc string) bool {
	deadline := m.clock.Now().Add(m.opts.ProfileTimeout)
	for m.clock.Now().Before(deadline) {
		if ctx.Err() != nil {
			return false
		}
		_ = withTimeout(ctx, m.opts.NavigationTimeout, page.WaitIdle)
		if m.profileReady(ctx, page, ruc) {
			return true
		}
		if err := m.clock.Sleep(ctx, m.opts.PollInterval); err != nil {
			return false
		}
	}
	return false
}

// openReceivedViaMenu walks profile → menu → billing → received documents,
// signing in again when the portal bounces to its login flow.
func (m *Manager) openReceivedViaMenu(ctx context.Context, page Page, ruc string) error {
	if err := m.navigate(ctx, page, ProfileURL); err != nil {
		m.logger.WithError(err).Warn("Profile page did not load")
	}

	if IsLoginRedirect(page.URL()) {
		m.submitLogin(ctx, page, ruc)
		if err := m.navigate(ctx, page, ProfileURL); err != nil || IsLoginRedirect(page.URL()) {
			return menuError("could not reach the profile to open the menu", err)
		}
	}

	if n, err := page.Count(ctx, SelMenuButton); err != nil || n == 0 {
		return menuError("menu button not found", err)
	}
	if err := withTimeout(ctx, m.opts.ClickTimeout, func(c context.Context) error {
		return page.Click(c, SelMenuButton)
	}); err != nil {
		return menuError("could not open the menu", err)
	}
	if err := m.clock.Sleep(ctx, m.opts.MenuDelay); err != nil {
		return err
	}

	if err := withTimeout(ctx, m.opts.FormTimeout, func(c context.Context) error {
		return page.ClickText(c, SelMenuHeader, MenuBilling)
	}); err != nil {
		return menuError("billing menu not found", err)
	}
	if err := m.clock.Sleep(ctx, m.opts.MenuDelay); err != nil {
		return err
	}

	if err := m.clickReceivedLink(ctx, page); err != nil {
		return err
	}

	if IsLoginRedirect(page.URL()) {
		if loginFormPresent(ctx, page) {
			if err := m.fillLogin(ctx, page, ruc); err != nil {
				m.logger.WithError(err).Warn("Inline re-authentication failed")
			}
		}
		_ = withTimeout(ctx, m.opts.NavigationTimeout, page.WaitIdle)
	}

	if err := withTimeout(ctx, m.opts.NavigationTimeout, func(c context.Context) error {
		return page.WaitAttached(c, SelYear)
	}); err != nil {
		return menuError("received documents page did not load", err)
	}
	return nil
}

func (m *Manager) clickReceivedLink(ctx context.Context, page Page) error {
	click := func(c context.Context) error {
		return page.ClickText(c, SelMenuItem, MenuReceived)
	}
	if found, _ := page.HasText(ctx, SelMenuItem, MenuReceived); !found {
		n, err := page.Count(ctx, SelReceivedHref)
		if err != nil || n == 0 {
			return menuError("received documents link not found", err)
		}
		click = func(c context.Context) error { return page.Click(c, SelReceivedHref) }
	}

	if err := withTimeout(ctx, m.opts.FormTimeout, click); err != nil {
		return menuError("could not open received documents", err)
	}
	err := withTimeout(ctx, m.opts.NavigationTimeout, page.WaitIdle)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return nil
}
