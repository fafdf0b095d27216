// Package evidence captures a screenshot before every simulated UI
// interaction, with the target element outlined.
package evidence

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode/utf16"

	"go.uber.org/zap"

	"github.com/todoapp/todoapp/internal/browser"
)

const (
	// HighlightOutline and HighlightOffset style the element being acted on.
	HighlightOutline = "3px solid red"
	HighlightOffset  = "2px"

	// DefaultResultName is the file written by CaptureResult without a name.
	DefaultResultName = "final_result.png"
	// DefaultResultDelay lets the page settle before the final screenshot.
	DefaultResultDelay = 500 * time.Millisecond

	maxSanitizedLen = 50
)

// Recorder wraps a browser.Driver. Fill and Click on selectors, and the
// actions of locators returned by Locator, are recorded; every other Driver
// method passes through unchanged. Chained, filtered, indexed and role
// locators are recorded too, so a case that acts through them gets more
// steps than a harness that only outlines plain selector locators.
type Recorder struct {
	browser.Driver

	dir         string
	logger      *zap.Logger
	resultDelay time.Duration

	mu   sync.Mutex
	step int
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithResultDelay overrides the wait before the final screenshot.
func WithResultDelay(d time.Duration) Option {
	return func(r *Recorder) {
		r.resultDelay = d
	}
}

// New creates dir and returns a Recorder writing into it.
func New(driver browser.Driver, dir string, logger *zap.Logger, opts ...Option) (*Recorder, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create evidence dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Recorder{
		Driver:      driver,
		dir:         dir,
		logger:      logger,
		resultDelay: DefaultResultDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Dir returns the output directory.
func (r *Recorder) Dir() string {
	return r.dir
}

// Steps returns how many interactions have been recorded.
func (r *Recorder) Steps() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.step
}

// Fill records and fills the first element matching selector.
func (r *Recorder) Fill(ctx context.Context, selector, value string) error {
	loc := browser.Locate(selector)
	if err := r.record(ctx, loc, "fill_"+Sanitize(selector)); err != nil {
		return err
	}
	return r.Driver.Fill(ctx, loc, value)
}

// Click records and clicks the first element matching selector.
func (r *Recorder) Click(ctx context.Context, selector string) error {
	loc := browser.Locate(selector)
	if err := r.record(ctx, loc, "click_"+Sanitize(selector)); err != nil {
		return err
	}
	return r.Driver.Click(ctx, loc)
}

// Locator returns l with recorded actions.
func (r *Recorder) Locator(l browser.Locator) *Locator {
	return &Locator{rec: r, loc: l}
}

// CaptureResult waits for the page to settle and writes a full-page
// screenshot named filename, or DefaultResultName when empty.
func (r *Recorder) CaptureResult(ctx context.Context, filename string) error {
	if filename == "" {
		filename = DefaultResultName
	}
	if r.resultDelay > 0 {
		t := time.NewTimer(r.resultDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
	}
	return r.capture(ctx, filename, true)
}

// Locator is a browser.Locator whose actions are recorded.
type Locator struct {
	rec *Recorder
	loc browser.Locator
}

// Unwrap returns the plain locator.
func (l *Locator) Unwrap() browser.Locator {
	return l.loc
}

func (l *Locator) Fill(ctx context.Context, value string) error {
	if err := l.rec.record(ctx, l.loc, "fill"); err != nil {
		return err
	}
	return l.rec.Driver.Fill(ctx, l.loc, value)
}

func (l *Locator) Click(ctx context.Context) error {
	if err := l.rec.record(ctx, l.loc, "click"); err != nil {
		return err
	}
	return l.rec.Driver.Click(ctx, l.loc)
}

func (l *Locator) Check(ctx context.Context) error {
	if err := l.rec.record(ctx, l.loc, "check"); err != nil {
		return err
	}
	return l.rec.Driver.Check(ctx, l.loc)
}

func (l *Locator) Uncheck(ctx context.Context) error {
	if err := l.rec.record(ctx, l.loc, "uncheck"); err != nil {
		return err
	}
	return l.rec.Driver.Uncheck(ctx, l.loc)
}

// record highlights loc, takes the step screenshot and removes the
// highlight.
func (r *Recorder) record(ctx context.Context, loc browser.Locator, action string) error {
	r.mu.Lock()
	r.step++
	n := r.step
	r.mu.Unlock()

	if err := r.Driver.SetOutline(ctx, loc, HighlightOutline, HighlightOffset); err != nil {
		r.logger.Warn("element not found for highlighting",
			zap.String("locator", loc.String()),
			zap.Error(err))
	}
	err := r.capture(ctx, StepFilename(n, action), false)
	_ = r.Driver.SetOutline(ctx, loc, "", "")
	return err
}

func (r *Recorder) capture(ctx context.Context, filename string, fullPage bool) error {
	png, err := r.Driver.Screenshot(ctx, fullPage)
	if err != nil {
		return fmt.Errorf("screenshot %s: %w", filename, err)
	}
	path := filepath.Join(r.dir, filename)
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	r.logger.Debug("evidence captured", zap.String("path", path))
	return nil
}

// StepFilename returns the screenshot name for step n, e.g. step03_click.png.
func StepFilename(n int, action string) string {
	return fmt.Sprintf("step%02d_%s.png", n, action)
}

// Sanitize replaces every character outside [A-Za-z0-9] with an underscore
// and truncates the result to 50 characters. Lengths are counted in UTF-16
// code units, as browsers count them: a character outside the Basic
// Multilingual Plane, such as an emoji, becomes two underscores.
func Sanitize(s string) string {
	var b strings.Builder
	for _, c := range s {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
			b.WriteRune(c)
		default:
			for i := len(utf16.Encode([]rune{c})); i > 0 && b.Len() < maxSanitizedLen; i-- {
				b.WriteByte('_')
			}
		}
		if b.Len() >= maxSanitizedLen {
			break
		}
	}
	return b.String()
}
