package portal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

type fakeElement struct {
	text    string
	visible bool
}

// fakePage is a scripted Page. Elements are keyed by selector; hooks mutate
// the page in response to navigation, clicks and reloads.
type fakePage struct {
	mu       sync.Mutex
	url      string
	elements map[string][]fakeElement
	rows     [][]string
	filled   map[string]string
	selected map[string]string
	clicks   []string
	visits   []string
	closed   bool
	saved    string

	onNavigate func(p *fakePage, url string)
	onClick    func(p *fakePage, selector string)
	onReload   func(p *fakePage)
	downloads  map[string]string
	downloadFn func(selector, dest string) error
}

func newFakePage() *fakePage {
	return &fakePage{
		elements:  map[string][]fakeElement{},
		filled:    map[string]string{},
		selected:  map[string]string{},
		downloads: map[string]string{},
	}
}

var errNoElement = errors.New("element not found")

// set replaces the elements for selector. A blank text with visible=false
// still counts as attached.
func (p *fakePage) set(selector string, els ...fakeElement) {
	if len(els) == 0 {
		delete(p.elements, selector)
		return
	}
	p.elements[selector] = els
}

func (p *fakePage) show(selector, text string) {
	p.set(selector, fakeElement{text: text, visible: true})
}

func (p *fakePage) hide(selector string) {
	delete(p.elements, selector)
}

func (p *fakePage) Navigate(_ context.Context, url string) error {
	p.mu.Lock()
	p.url = url
	p.visits = append(p.visits, url)
	hook := p.onNavigate
	p.mu.Unlock()
	if hook != nil {
		hook(p, url)
	}
	return nil
}

func (p *fakePage) WaitIdle(ctx context.Context) error { return ctx.Err() }

func (p *fakePage) Reload(_ context.Context) error {
	if p.onReload != nil {
		p.onReload(p)
	}
	return nil
}

func (p *fakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.url
}

func (p *fakePage) Count(_ context.Context, selector string) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.elements[selector]), nil
}

func (p *fakePage) first(selector string) (fakeElement, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	els := p.elements[selector]
	if len(els) == 0 {
		return fakeElement{}, fmt.Errorf("%s: %w", selector, errNoElement)
	}
	return els[0], nil
}

func (p *fakePage) Text(_ context.Context, selector string) (string, error) {
	el, err := p.first(selector)
	return strings.TrimSpace(el.text), err
}

func (p *fakePage) Visible(_ context.Context, selector string) (bool, error) {
	el, err := p.first(selector)
	return el.visible, err
}

func (p *fakePage) HasText(_ context.Context, selector, text string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, el := range p.elements[selector] {
		if el.visible && strings.Contains(strings.ToLower(el.text), strings.ToLower(text)) {
			return true, nil
		}
	}
	return false, nil
}

func (p *fakePage) Click(_ context.Context, selector string) error {
	if _, err := p.first(selector); err != nil {
		return err
	}
	p.mu.Lock()
	p.clicks = append(p.clicks, selector)
	hook := p.onClick
	p.mu.Unlock()
	if hook != nil {
		hook(p, selector)
	}
	return nil
}

func (p *fakePage) ClickText(ctx context.Context, selector, text string) error {
	found, _ := p.HasText(ctx, selector, text)
	if !found {
		return fmt.Errorf("%s with text %q: %w", selector, text, errNoElement)
	}
	p.mu.Lock()
	p.clicks = append(p.clicks, selector+"|"+text)
	hook := p.onClick
	p.mu.Unlock()
	if hook != nil {
		hook(p, selector+"|"+text)
	}
	return nil
}

func (p *fakePage) Fill(_ context.Context, selector, value string) error {
	if _, err := p.first(selector); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.filled[selector] = value
	return nil
}

func (p *fakePage) Select(_ context.Context, selector, value string) error {
	if _, err := p.first(selector); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected[selector] = value
	return nil
}

func (p *fakePage) WaitVisible(ctx context.Context, selector string) error {
	if el, err := p.first(selector); err == nil && el.visible {
		return nil
	}
	return fmt.Errorf("%s not visible: %w", selector, context.DeadlineExceeded)
}

func (p *fakePage) WaitAttached(ctx context.Context, selector string) error {
	if _, err := p.first(selector); err == nil {
		return nil
	}
	return fmt.Errorf("%s not attached: %w", selector, context.DeadlineExceeded)
}

func (p *fakePage) Rows(_ context.Context, _, _ string) ([][]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rows, nil
}

func (p *fakePage) Download(_ context.Context, selector, dest string) error {
	if p.downloadFn != nil {
		return p.downloadFn(selector, dest)
	}
	p.mu.Lock()
	body, ok := p.downloads[selector]
	p.clicks = append(p.clicks, selector)
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("no download behind %s", selector)
	}
	return os.WriteFile(dest, []byte(body), 0600)
}

func (p *fakePage) SaveState(_ context.Context, path string) error {
	p.mu.Lock()
	p.saved = path
	p.mu.Unlock()
	return os.WriteFile(path, []byte(`{"cookies":[],"origins":[]}`), 0600)
}

func (p *fakePage) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func (p *fakePage) clicked(selector string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.clicks {
		if c == selector {
			n++
		}
	}
	return n
}

type fakeLauncher struct {
	page      *fakePage
	err       error
	statePath string
	launches  int
}

func (l *fakeLauncher) Launch(_ context.Context, statePath string) (Page, error) {
	l.launches++
	l.statePath = statePath
	if l.err != nil {
		return nil, l.err
	}
	return l.page, nil
}

// fakeClock advances only when Sleep is called.
type fakeClock struct {
	mu    sync.Mutex
	now   time.Time
	slept time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 5, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if d <= 0 {
		d = time.Millisecond
	}
	c.now = c.now.Add(d)
	c.slept += d
	return nil
}
