// Package scenario runs end-to-end UI scenarios against a running todo app,
// recording screenshot evidence for every interaction.
package scenario

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/todoapp/todoapp/internal/browser"
	"github.com/todoapp/todoapp/internal/evidence"
	"github.com/todoapp/todoapp/internal/fixture"
)

// DefaultExpectTimeout bounds how long an expectation polls.
const DefaultExpectTimeout = 5 * time.Second

const expectInterval = 100 * time.Millisecond

// Suite is a named group of cases sharing a BeforeEach hook.
type Suite struct {
	Name string
	// BeforeEach runs before every case. Its interactions are not recorded.
	BeforeEach func(ctx context.Context, t *T) error
	Cases      []Case
}

// Case is one scenario.
type Case struct {
	Name string
	Run  func(ctx context.Context, t *T) error
}

// Fixtures loads SQL fixture folders.
type Fixtures interface {
	GlobalSetup(ctx context.Context) error
	ExecuteFolder(ctx context.Context, folder string, opts ...fixture.FolderOption) (int, error)
}

// T is the handle a case uses to drive the page.
type T struct {
	driver   browser.Driver
	rec      *evidence.Recorder
	fixtures Fixtures
	baseURL  string
	timeout  time.Duration
}

// Goto navigates to path.
func (t *T) Goto(ctx context.Context, path string) error {
	return t.driver.Goto(ctx, path)
}

// Locate returns the elements matching a CSS selector.
func (t *T) Locate(selector string) *Element {
	return &Element{t: t, loc: browser.Locate(selector)}
}

// ByRole returns the elements with role whose name is exactly name.
func (t *T) ByRole(role, name string) *Element {
	return &Element{t: t, loc: browser.ByRole(role, name)}
}

// LoadFixtures executes a fixture folder.
func (t *T) LoadFixtures(ctx context.Context, folder string) error {
	if t.fixtures == nil {
		return fmt.Errorf("load fixtures %s: no database configured", folder)
	}
	_, err := t.fixtures.ExecuteFolder(ctx, folder)
	return err
}

// Count returns how many elements e matches right now.
func (t *T) Count(ctx context.Context, e *Element) (int, error) {
	return t.driver.Count(ctx, e.loc)
}

// Wait pauses for d.
func (t *T) Wait(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Unique returns prefix followed by a short random suffix.
func (t *T) Unique(prefix string) string {
	return prefix + uuid.NewString()[:8]
}

// Element is a locator bound to a T. Actions are recorded once the case
// body starts.
type Element struct {
	t   *T
	loc browser.Locator
}

func (e *Element) Filter(text string) *Element {
	return &Element{t: e.t, loc: e.loc.Filter(text)}
}

func (e *Element) Locate(selector string) *Element {
	return &Element{t: e.t, loc: e.loc.Locate(selector)}
}

func (e *Element) Nth(i int) *Element {
	return &Element{t: e.t, loc: e.loc.Nth(i)}
}

func (e *Element) String() string {
	return e.loc.String()
}

func (e *Element) Fill(ctx context.Context, value string) error {
	if e.t.rec != nil {
		return e.t.rec.Locator(e.loc).Fill(ctx, value)
	}
	return e.t.driver.Fill(ctx, e.loc, value)
}

func (e *Element) Click(ctx context.Context) error {
	if e.t.rec != nil {
		return e.t.rec.Locator(e.loc).Click(ctx)
	}
	return e.t.driver.Click(ctx, e.loc)
}

func (e *Element) Check(ctx context.Context) error {
	if e.t.rec != nil {
		return e.t.rec.Locator(e.loc).Check(ctx)
	}
	return e.t.driver.Check(ctx, e.loc)
}

func (e *Element) Uncheck(ctx context.Context) error {
	if e.t.rec != nil {
		return e.t.rec.Locator(e.loc).Uncheck(ctx)
	}
	return e.t.driver.Uncheck(ctx, e.loc)
}

// ExpectURL waits until the page URL equals path resolved against the
// base URL.
func (t *T) ExpectURL(ctx context.Context, path string) error {
	want, err := browser.ResolveURL(t.baseURL, path)
	if err != nil {
		return err
	}
	return t.poll(ctx, "url "+want, func(ctx context.Context) (bool, string, error) {
		got, err := t.driver.URL(ctx)
		return got == want, got, err
	})
}

// ExpectText waits until the first match's normalized text equals want.
func (t *T) ExpectText(ctx context.Context, e *Element, want string) error {
	return t.poll(ctx, fmt.Sprintf("%s to have text %q", e, want), func(ctx context.Context) (bool, string, error) {
		got, err := t.driver.Text(ctx, e.loc)
		got = normalize(got)
		return got == normalize(want), got, err
	})
}

// ExpectContains waits until the first match's text contains want.
func (t *T) ExpectContains(ctx context.Context, e *Element, want string) error {
	return t.poll(ctx, fmt.Sprintf("%s to contain %q", e, want), func(ctx context.Context) (bool, string, error) {
		got, err := t.driver.Text(ctx, e.loc)
		got = normalize(got)
		return strings.Contains(got, normalize(want)), got, err
	})
}

func (t *T) ExpectVisible(ctx context.Context, e *Element) error {
	return t.poll(ctx, e.String()+" to be visible", func(ctx context.Context) (bool, string, error) {
		v, err := t.driver.Visible(ctx, e.loc)
		return v, fmt.Sprint(v), err
	})
}

// ExpectHidden waits until nothing visible matches e.
func (t *T) ExpectHidden(ctx context.Context, e *Element) error {
	return t.poll(ctx, e.String()+" to be hidden", func(ctx context.Context) (bool, string, error) {
		v, err := t.driver.Visible(ctx, e.loc)
		return !v, fmt.Sprint(v), err
	})
}

func (t *T) ExpectChecked(ctx context.Context, e *Element, want bool) error {
	return t.poll(ctx, fmt.Sprintf("%s checked=%t", e, want), func(ctx context.Context) (bool, string, error) {
		v, err := t.driver.Checked(ctx, e.loc)
		return v == want, fmt.Sprint(v), err
	})
}

// ExpectClass waits until the first match has (or, with want false, lacks)
// class.
func (t *T) ExpectClass(ctx context.Context, e *Element, class string, want bool) error {
	desc := fmt.Sprintf("%s to have class %q", e, class)
	if !want {
		desc = fmt.Sprintf("%s not to have class %q", e, class)
	}
	return t.poll(ctx, desc, func(ctx context.Context) (bool, string, error) {
		classes, err := t.driver.ClassList(ctx, e.loc)
		return slices.Contains(classes, class) == want, strings.Join(classes, " "), err
	})
}

// ExpectCount waits until e matches at least atLeast elements.
func (t *T) ExpectCount(ctx context.Context, e *Element, atLeast int) error {
	return t.poll(ctx, fmt.Sprintf("%s count >= %d", e, atLeast), func(ctx context.Context) (bool, string, error) {
		n, err := t.driver.Count(ctx, e.loc)
		return n >= atLeast, fmt.Sprint(n), err
	})
}

// poll retries check until it passes or the expect timeout expires. The
// last observed value and error are reported on failure.
func (t *T) poll(ctx context.Context, desc string, check func(context.Context) (bool, string, error)) error {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	ticker := time.NewTicker(expectInterval)
	defer ticker.Stop()
	for {
		ok, got, err := check(ctx)
		if ok && err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			if err != nil {
				return fmt.Errorf("expected %s: %w", desc, err)
			}
			return fmt.Errorf("expected %s, got %q", desc, got)
		case <-ticker.C:
		}
	}
}

func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
