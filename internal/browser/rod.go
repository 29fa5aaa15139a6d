// Package browser implements the portal page capability on top of a
// Chromium instance driven through the DevTools protocol.
package browser

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cristhianchimbo50/sri-extractor/internal/fileutils"
	"github.com/cristhianchimbo50/sri-extractor/internal/logging"
	"github.com/cristhianchimbo50/sri-extractor/internal/portal"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// Config controls how Chromium is started.
type Config struct {
	// Headless hides the browser window.
	Headless bool
	// Bin is an explicit browser binary. Empty lets rod locate or fetch one.
	Bin string
	// SlowMotion delays every input action.
	SlowMotion time.Duration
	// IdleTimeout bounds the wait for the page to become idle after a
	// navigation.
	IdleTimeout time.Duration
}

const defaultIdleTimeout = 10 * time.Second

// Launcher starts a Chromium process per Launch call.
type Launcher struct {
	cfg    Config
	logger logging.Logger
}

// NewLauncher returns a launcher with cfg.
func NewLauncher(cfg Config, logger logging.Logger) *Launcher {
	if logger == nil {
		logger = logging.NewLogrusAdapter("info", "text")
	}
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = defaultIdleTimeout
	}
	return &Launcher{cfg: cfg, logger: logger}
}

// Launch starts the browser and opens a blank page. When statePath is set the
// saved cookies and local storage are restored before any navigation.
func (l *Launcher) Launch(ctx context.Context, statePath string) (portal.Page, error) {
	lc := launcher.New().
		Context(ctx).
		Headless(l.cfg.Headless).
		Devtools(false).
		Set("window-size", "1400,900").
		Set("disable-blink-features", "AutomationControlled")
	if l.cfg.Bin != "" {
		lc = lc.Bin(l.cfg.Bin)
	}

	controlURL, err := lc.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(controlURL)
	if l.cfg.SlowMotion > 0 {
		b = b.SlowMotion(l.cfg.SlowMotion)
	}
	if err := b.Connect(); err != nil {
		lc.Kill()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		lc.Kill()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	p := &Page{browser: b, page: page, launcher: lc, idle: l.cfg.IdleTimeout}
	if statePath != "" {
		if err := p.restore(statePath); err != nil {
			_ = p.Close()
			return nil, err
		}
		l.logger.Debug("Restored browser session",
			logging.Field{Key: logging.FieldFile, Value: statePath})
	}
	return p, nil
}

// Page is a single browser tab. It owns the browser process and closes it
// with the page.
type Page struct {
	browser  *rod.Browser
	page     *rod.Page
	launcher *launcher.Launcher
	idle     time.Duration
}

func (p *Page) restore(statePath string) error {
	state, err := LoadState(statePath)
	if err != nil {
		return err
	}
	if len(state.Cookies) > 0 {
		if err := p.browser.SetCookies(state.CookieParams()); err != nil {
			return fmt.Errorf("failed to restore cookies: %w", err)
		}
	}
	script, err := state.LocalStorageScript()
	if err != nil {
		return err
	}
	if script != "" {
		if _, err := p.page.EvalOnNewDocument(script); err != nil {
			return fmt.Errorf("failed to restore local storage: %w", err)
		}
	}
	return nil
}

func (p *Page) with(ctx context.Context) *rod.Page {
	return p.page.Context(ctx)
}

func (p *Page) settle(pg *rod.Page) error {
	if err := pg.WaitLoad(); err != nil {
		return err
	}
	return pg.WaitIdle(p.idle)
}

// Navigate implements portal.Page.
func (p *Page) Navigate(ctx context.Context, url string) error {
	pg := p.with(ctx)
	if err := pg.Navigate(url); err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return p.settle(pg)
}

// WaitIdle implements portal.Page.
func (p *Page) WaitIdle(ctx context.Context) error {
	return p.settle(p.with(ctx))
}

// Reload implements portal.Page.
func (p *Page) Reload(ctx context.Context) error {
	pg := p.with(ctx)
	if err := pg.Reload(); err != nil {
		return fmt.Errorf("failed to reload page: %w", err)
	}
	return p.settle(pg)
}

// URL implements portal.Page.
func (p *Page) URL() string {
	info, err := p.page.Info()
	if err != nil {
		return ""
	}
	return info.URL
}

func (p *Page) first(ctx context.Context, selector string) (*rod.Element, error) {
	els, err := p.with(ctx).Elements(selector)
	if err != nil {
		return nil, err
	}
	if els.Empty() {
		return nil, fmt.Errorf("no element matches %q", selector)
	}
	return els.First(), nil
}

// Count implements portal.Page.
func (p *Page) Count(ctx context.Context, selector string) (int, error) {
	els, err := p.with(ctx).Elements(selector)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

// Text implements portal.Page.
func (p *Page) Text(ctx context.Context, selector string) (string, error) {
	el, err := p.first(ctx, selector)
	if err != nil {
		return "", err
	}
	text, err := el.Text()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// Visible implements portal.Page. A selector with no match is not visible.
func (p *Page) Visible(ctx context.Context, selector string) (bool, error) {
	els, err := p.with(ctx).Elements(selector)
	if err != nil || els.Empty() {
		return false, err
	}
	return els.First().Visible()
}

const hasTextJS = `(sel, text) => {
  const needle = text.toLowerCase();
  return Array.from(document.querySelectorAll(sel)).some(e =>
    e.offsetParent !== null && (e.innerText || "").toLowerCase().includes(needle));
}`

// HasText implements portal.Page.
func (p *Page) HasText(ctx context.Context, selector, text string) (bool, error) {
	res, err := p.with(ctx).Eval(hasTextJS, selector, text)
	if err != nil {
		return false, err
	}
	return res.Value.Bool(), nil
}

// Click implements portal.Page.
func (p *Page) Click(ctx context.Context, selector string) error {
	el, err := p.with(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("element %q not found: %w", selector, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// containsRegex builds a case-insensitive JavaScript regex literal matching
// text anywhere.
func containsRegex(text string) string {
	return "/" + strings.ReplaceAll(regexp.QuoteMeta(text), "/", `\/`) + "/i"
}

// ClickText implements portal.Page.
func (p *Page) ClickText(ctx context.Context, selector, text string) error {
	el, err := p.with(ctx).ElementR(selector, containsRegex(text))
	if err != nil {
		return fmt.Errorf("no %q element with text %q: %w", selector, text, err)
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

// Fill implements portal.Page.
func (p *Page) Fill(ctx context.Context, selector, value string) error {
	el, err := p.with(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("input %q not found: %w", selector, err)
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

// Select implements portal.Page.
func (p *Page) Select(ctx context.Context, selector, value string) error {
	el, err := p.with(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("select %q not found: %w", selector, err)
	}
	byValue := fmt.Sprintf(`option[value=%q]`, value)
	if err := el.Select([]string{byValue}, true, rod.SelectorTypeCSSSector); err == nil {
		return nil
	}
	if err := el.Select([]string{exactLabel(value)}, true, rod.SelectorTypeRegex); err != nil {
		return fmt.Errorf("option %q not available in %q: %w", value, selector, err)
	}
	return nil
}

// exactLabel builds a regex matching an option whose trimmed text is label,
// so "1" does not pick "10".
func exactLabel(label string) string {
	return `^\s*` + regexp.QuoteMeta(strings.TrimSpace(label)) + `\s*$`
}

// WaitVisible implements portal.Page.
func (p *Page) WaitVisible(ctx context.Context, selector string) error {
	el, err := p.with(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

// WaitAttached implements portal.Page.
func (p *Page) WaitAttached(ctx context.Context, selector string) error {
	_, err := p.with(ctx).Element(selector)
	return err
}

const rowsJS = `(rowSel, cellSel) => Array.from(document.querySelectorAll(rowSel)).map(r =>
  Array.from(r.querySelectorAll(cellSel)).map(c => (c.innerText || "").trim()))`

// Rows implements portal.Page.
func (p *Page) Rows(ctx context.Context, rowSelector, cellSelector string) ([][]string, error) {
	res, err := p.with(ctx).Eval(rowsJS, rowSelector, cellSelector)
	if err != nil {
		return nil, err
	}
	var rows [][]string
	for _, r := range res.Value.Arr() {
		var cells []string
		for _, c := range r.Arr() {
			cells = append(cells, c.Str())
		}
		rows = append(rows, cells)
	}
	return rows, nil
}

// Download implements portal.Page. The browser saves the file under dest's
// directory with a generated name, which is then moved to dest.
func (p *Page) Download(ctx context.Context, selector, dest string) error {
	el, err := p.with(ctx).Element(selector)
	if err != nil {
		return fmt.Errorf("download link %q not found: %w", selector, err)
	}

	dir := filepath.Dir(dest)
	if err := fileutils.EnsureDirectoryExists(dir); err != nil {
		return err
	}

	wait := p.browser.Context(ctx).WaitDownload(dir)
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to start download: %w", err)
	}
	info := wait()
	if info == nil || info.GUID == "" {
		if err := ctx.Err(); err != nil {
			return err
		}
		return errors.New("download did not start")
	}

	src := filepath.Join(dir, info.GUID)
	if err := fileutils.MoveFile(src, dest); err != nil {
		_ = os.Remove(src)
		return fmt.Errorf("failed to store download: %w", err)
	}
	return nil
}

// SaveState implements portal.Page. Local storage is captured for the origin
// of the current document only.
func (p *Page) SaveState(ctx context.Context, path string) error {
	cookies, err := p.browser.Context(ctx).GetCookies()
	if err != nil {
		return fmt.Errorf("failed to read cookies: %w", err)
	}
	state := StorageState{Cookies: cookiesFromProto(cookies)}

	res, err := p.with(ctx).Eval(readLocalStorageJS)
	if err != nil {
		return fmt.Errorf("failed to read local storage: %w", err)
	}
	var snapshot struct {
		Origin string            `json:"origin"`
		Items  map[string]string `json:"items"`
	}
	if err := json.Unmarshal([]byte(res.Value.Str()), &snapshot); err != nil {
		return fmt.Errorf("failed to decode local storage: %w", err)
	}
	state.SetOrigin(snapshot.Origin, snapshot.Items)

	return state.Save(path)
}

// Close implements portal.Page.
func (p *Page) Close() error {
	if p.browser == nil {
		return nil
	}
	_ = p.page.Close()
	err := p.browser.Close()
	p.launcher.Kill()
	p.browser = nil
	return err
}
