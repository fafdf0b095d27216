package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"go.uber.org/zap"
)

// DefaultTimeout bounds how long actions wait for their element.
const DefaultTimeout = 5 * time.Second

const pollInterval = 100 * time.Millisecond

// resolveJS walks a locator chain and returns the matching elements.
const resolveJS = `(steps) => {
	const norm = (s) => (s || '').replace(/\s+/g, ' ').trim();
	const name = (el) => norm(el.getAttribute('aria-label') ||
		(el.tagName === 'INPUT' ? el.value : el.textContent));
	let scope = [document];
	for (const s of steps) {
		const seen = new Set();
		let found = [];
		for (const root of scope) {
			for (const el of root.querySelectorAll(s.selector)) {
				if (!seen.has(el)) {
					seen.add(el);
					found.push(el);
				}
			}
		}
		if (s.hasText) {
			const want = norm(s.hasText).toLowerCase();
			found = found.filter((el) => norm(el.textContent).toLowerCase().includes(want));
		}
		if (s.exactText) {
			const want = norm(s.exactText);
			found = found.filter((el) => name(el) === want);
		}
		if (s.index >= 0) {
			found = s.index < found.length ? [found[s.index]] : [];
		}
		scope = found;
	}
	return scope;
}`

// Options configure Launch and the pages it opens.
type Options struct {
	BaseURL string
	// DebuggerURL connects to a running browser instead of launching one.
	DebuggerURL string
	// Bin is the browser binary. Empty lets the launcher pick or download one.
	Bin      string
	Headless bool
	Timeout  time.Duration
}

// Browser is a launched or connected browser that hands out isolated pages.
type Browser struct {
	browser  *rod.Browser
	launched *launcher.Launcher
	opts     Options
	logger   *zap.Logger
}

// RodDriver is a Driver backed by a page in its own incognito context, so
// storage and cookies do not leak between drivers.
type RodDriver struct {
	context *rod.Browser
	page    *rod.Page
	baseURL string
	timeout time.Duration
}

var _ Driver = (*RodDriver)(nil)

// Launch starts a browser, or connects to opts.DebuggerURL when set.
func Launch(ctx context.Context, opts Options, logger *zap.Logger) (*Browser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	var l *launcher.Launcher
	controlURL := opts.DebuggerURL
	if controlURL == "" {
		l = launcher.New().Headless(opts.Headless)
		if opts.Bin != "" {
			l = l.Bin(opts.Bin)
		}
		u, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("launch browser: %w", err)
		}
		controlURL = u
	}

	b := rod.New().ControlURL(controlURL).Context(ctx)
	if err := b.Connect(); err != nil {
		if l != nil {
			l.Kill()
		}
		return nil, fmt.Errorf("connect to browser: %w", err)
	}

	logger.Debug("browser connected",
		zap.String("control_url", controlURL),
		zap.Bool("launched", l != nil))

	return &Browser{browser: b, launched: l, opts: opts, logger: logger}, nil
}

// NewPage opens a blank page in a fresh incognito context.
func (b *Browser) NewPage(ctx context.Context) (*RodDriver, error) {
	incognito, err := b.browser.Context(ctx).Incognito()
	if err != nil {
		return nil, fmt.Errorf("create browser context: %w", err)
	}
	page, err := incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("open page: %w", err)
	}
	b.logger.Debug("page opened", zap.String("target", string(page.TargetID)))
	return &RodDriver{
		context: incognito,
		page:    page,
		baseURL: b.opts.BaseURL,
		timeout: b.opts.Timeout,
	}, nil
}

// Close closes the browser. A launched browser process is killed.
func (b *Browser) Close() error {
	if b.launched == nil {
		return nil
	}
	err := b.browser.Close()
	b.launched.Kill()
	return err
}

func (d *RodDriver) Goto(ctx context.Context, path string) error {
	target, err := ResolveURL(d.baseURL, path)
	if err != nil {
		return err
	}
	p := d.page.Context(ctx)
	if err := p.Navigate(target); err != nil {
		return fmt.Errorf("navigate to %s: %w", target, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("wait for %s: %w", target, err)
	}
	return nil
}

func (d *RodDriver) URL(ctx context.Context) (string, error) {
	res, err := d.page.Context(ctx).Eval(`() => location.href`)
	if err != nil {
		return "", fmt.Errorf("read location: %w", err)
	}
	return res.Value.Str(), nil
}

func (d *RodDriver) Fill(ctx context.Context, l Locator, value string) error {
	el, err := d.first(ctx, l)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return fmt.Errorf("select %s: %w", l, err)
	}
	if value == "" {
		_, err = el.Eval(`() => {
			this.value = '';
			this.dispatchEvent(new Event('input', { bubbles: true }));
		}`)
		return err
	}
	if err := el.Input(value); err != nil {
		return fmt.Errorf("fill %s: %w", l, err)
	}
	return nil
}

func (d *RodDriver) Click(ctx context.Context, l Locator) error {
	el, err := d.first(ctx, l)
	if err != nil {
		return err
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("click %s: %w", l, err)
	}
	return nil
}

func (d *RodDriver) Check(ctx context.Context, l Locator) error {
	return d.setChecked(ctx, l, true)
}

func (d *RodDriver) Uncheck(ctx context.Context, l Locator) error {
	return d.setChecked(ctx, l, false)
}

func (d *RodDriver) setChecked(ctx context.Context, l Locator, want bool) error {
	el, err := d.first(ctx, l)
	if err != nil {
		return err
	}
	got, err := el.Property("checked")
	if err != nil {
		return fmt.Errorf("read checked %s: %w", l, err)
	}
	if got.Bool() == want {
		return nil
	}
	if err := el.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("toggle %s: %w", l, err)
	}
	return nil
}

func (d *RodDriver) SetOutline(ctx context.Context, l Locator, outline, offset string) error {
	el, err := d.first(ctx, l)
	if err != nil {
		return err
	}
	_, err = el.Eval(`(outline, offset) => {
		this.style.outline = outline;
		this.style.outlineOffset = offset;
	}`, outline, offset)
	if err != nil {
		return fmt.Errorf("outline %s: %w", l, err)
	}
	return nil
}

func (d *RodDriver) Count(ctx context.Context, l Locator) (int, error) {
	els, err := d.resolve(ctx, l)
	if err != nil {
		return 0, err
	}
	return len(els), nil
}

func (d *RodDriver) Text(ctx context.Context, l Locator) (string, error) {
	el, err := d.first(ctx, l)
	if err != nil {
		return "", err
	}
	return el.Text()
}

func (d *RodDriver) Visible(ctx context.Context, l Locator) (bool, error) {
	els, err := d.resolve(ctx, l)
	if err != nil {
		return false, err
	}
	if len(els) == 0 {
		return false, nil
	}
	return els.First().Visible()
}

func (d *RodDriver) Checked(ctx context.Context, l Locator) (bool, error) {
	el, err := d.first(ctx, l)
	if err != nil {
		return false, err
	}
	v, err := el.Property("checked")
	if err != nil {
		return false, err
	}
	return v.Bool(), nil
}

func (d *RodDriver) ClassList(ctx context.Context, l Locator) ([]string, error) {
	el, err := d.first(ctx, l)
	if err != nil {
		return nil, err
	}
	class, err := el.Attribute("class")
	if err != nil {
		return nil, err
	}
	if class == nil {
		return nil, nil
	}
	return strings.Fields(*class), nil
}

func (d *RodDriver) Screenshot(ctx context.Context, fullPage bool) ([]byte, error) {
	return d.page.Context(ctx).Screenshot(fullPage, nil)
}

// Close closes the page and disposes its context.
func (d *RodDriver) Close() error {
	err := d.page.Close()
	if cerr := d.context.Close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func (d *RodDriver) resolve(ctx context.Context, l Locator) (rod.Elements, error) {
	els, err := d.page.Context(ctx).ElementsByJS(rod.Eval(resolveJS, l.steps()))
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", l, err)
	}
	return els, nil
}

// first polls until l matches at least one element or the timeout expires.
// The element is bound to ctx, not to the polling deadline.
func (d *RodDriver) first(ctx context.Context, l Locator) (*rod.Element, error) {
	return waitFirst(ctx, d.timeout, func(waitCtx context.Context) (rod.Elements, error) {
		return d.resolve(waitCtx, l)
	}, l)
}

func waitFirst(ctx context.Context, timeout time.Duration, resolve func(context.Context) (rod.Elements, error), l Locator) (*rod.Element, error) {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		els, err := resolve(waitCtx)
		if err == nil && len(els) > 0 {
			return els.First().Context(ctx), nil
		}
		select {
		case <-waitCtx.Done():
			if err != nil {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %s", ErrNotFound, l)
		case <-ticker.C:
		}
	}
}
