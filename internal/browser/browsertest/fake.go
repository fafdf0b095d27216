// Package browsertest provides an in-memory browser.Driver for tests.
package browsertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/todoapp/todoapp/internal/browser"
)

// PNG is the image returned by Driver.Screenshot.
var PNG = []byte("\x89PNG\r\n\x1a\nfake")

// Call is one recorded Driver invocation.
type Call struct {
	Method  string
	Locator string
	Value   string
}

// Driver is a scripted browser.Driver. Element state is keyed by
// Locator.String(). All fields may be set before use; after that use the
// setters, which are safe for concurrent use.
type Driver struct {
	BaseURL string

	// OnAction runs after Goto, Fill, Click, Check and Uncheck succeed.
	OnAction func(d *Driver, c Call)

	mu            sync.Mutex
	calls         []Call
	url           string
	counts        map[string]int
	texts         map[string]string
	visible       map[string]bool
	checked       map[string]bool
	classes       map[string][]string
	actionErrs    map[string]error
	outlineErr    error
	screenshotErr error
	closed        bool
}

var _ browser.Driver = (*Driver)(nil)

// New returns an empty Driver rooted at baseURL.
func New(baseURL string) *Driver {
	return &Driver{
		BaseURL:    baseURL,
		url:        "about:blank",
		counts:     make(map[string]int),
		texts:      make(map[string]string),
		visible:    make(map[string]bool),
		checked:    make(map[string]bool),
		classes:    make(map[string][]string),
		actionErrs: make(map[string]error),
	}
}

// SetURL sets the current page URL. Relative paths join BaseURL.
func (d *Driver) SetURL(path string) {
	u, err := browser.ResolveURL(d.BaseURL, path)
	if err != nil {
		u = path
	}
	d.mu.Lock()
	d.url = u
	d.mu.Unlock()
}

func (d *Driver) SetCount(l browser.Locator, n int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.counts[l.String()] = n
}

// SetText sets the text of l and marks it present and visible.
func (d *Driver) SetText(l browser.Locator, text string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := l.String()
	d.texts[k] = text
	d.visible[k] = true
	if d.counts[k] == 0 {
		d.counts[k] = 1
	}
}

func (d *Driver) SetVisible(l browser.Locator, v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	k := l.String()
	d.visible[k] = v
	if v && d.counts[k] == 0 {
		d.counts[k] = 1
	}
}

func (d *Driver) SetChecked(l browser.Locator, v bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.checked[l.String()] = v
}

func (d *Driver) SetClasses(l browser.Locator, classes ...string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.classes[l.String()] = classes
}

// FailAction makes every action on l return err.
func (d *Driver) FailAction(l browser.Locator, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.actionErrs[l.String()] = err
}

func (d *Driver) FailOutline(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.outlineErr = err
}

func (d *Driver) FailScreenshot(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.screenshotErr = err
}

// Calls returns a copy of the recorded calls.
func (d *Driver) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Methods returns the method names of the recorded calls.
func (d *Driver) Methods() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, len(d.calls))
	for i, c := range d.calls {
		out[i] = c.Method
	}
	return out
}

func (d *Driver) Closed() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.closed
}

func (d *Driver) Goto(_ context.Context, path string) error {
	d.SetURL(path)
	d.action(Call{Method: "Goto", Value: path})
	return nil
}

func (d *Driver) URL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.url, nil
}

func (d *Driver) Fill(_ context.Context, l browser.Locator, value string) error {
	return d.act(Call{Method: "Fill", Locator: l.String(), Value: value})
}

func (d *Driver) Click(_ context.Context, l browser.Locator) error {
	return d.act(Call{Method: "Click", Locator: l.String()})
}

func (d *Driver) Check(_ context.Context, l browser.Locator) error {
	if err := d.act(Call{Method: "Check", Locator: l.String()}); err != nil {
		return err
	}
	d.SetChecked(l, true)
	return nil
}

func (d *Driver) Uncheck(_ context.Context, l browser.Locator) error {
	if err := d.act(Call{Method: "Uncheck", Locator: l.String()}); err != nil {
		return err
	}
	d.SetChecked(l, false)
	return nil
}

func (d *Driver) SetOutline(_ context.Context, l browser.Locator, outline, _ string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Method: "SetOutline", Locator: l.String(), Value: outline})
	if outline != "" && d.outlineErr != nil {
		return d.outlineErr
	}
	return nil
}

func (d *Driver) Count(_ context.Context, l browser.Locator) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.counts[l.String()], nil
}

func (d *Driver) Text(_ context.Context, l browser.Locator) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	t, ok := d.texts[l.String()]
	if !ok {
		return "", fmt.Errorf("%w: %s", browser.ErrNotFound, l)
	}
	return t, nil
}

func (d *Driver) Visible(_ context.Context, l browser.Locator) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.visible[l.String()], nil
}

func (d *Driver) Checked(_ context.Context, l browser.Locator) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.checked[l.String()], nil
}

func (d *Driver) ClassList(_ context.Context, l browser.Locator) ([]string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.classes[l.String()]...), nil
}

func (d *Driver) Screenshot(_ context.Context, fullPage bool) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Method: "Screenshot", Value: fmt.Sprint(fullPage)})
	if d.screenshotErr != nil {
		return nil, d.screenshotErr
	}
	return PNG, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.closed = true
	return nil
}

func (d *Driver) act(c Call) error {
	d.mu.Lock()
	err := d.actionErrs[c.Locator]
	d.mu.Unlock()
	if err != nil {
		return err
	}
	d.action(c)
	return nil
}

func (d *Driver) action(c Call) {
	d.mu.Lock()
	d.calls = append(d.calls, c)
	hook := d.OnAction
	d.mu.Unlock()
	if hook != nil {
		hook(d, c)
	}
}
