package browser

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// ErrNotFound is returned when a locator matches no element in time.
var ErrNotFound = errors.New("element not found")

// Driver is a single browser page.
type Driver interface {
	// Goto navigates to path, resolved against the base URL.
	Goto(ctx context.Context, path string) error
	// URL returns the absolute URL of the current page.
	URL(ctx context.Context) (string, error)

	Fill(ctx context.Context, l Locator, value string) error
	Click(ctx context.Context, l Locator) error
	Check(ctx context.Context, l Locator) error
	Uncheck(ctx context.Context, l Locator) error

	// SetOutline sets the CSS outline of the first match. Empty values clear it.
	SetOutline(ctx context.Context, l Locator, outline, offset string) error

	Count(ctx context.Context, l Locator) (int, error)
	Text(ctx context.Context, l Locator) (string, error)
	Visible(ctx context.Context, l Locator) (bool, error)
	Checked(ctx context.Context, l Locator) (bool, error)
	ClassList(ctx context.Context, l Locator) ([]string, error)

	Screenshot(ctx context.Context, fullPage bool) ([]byte, error)
	Close() error
}

// ResolveURL resolves ref against base. Absolute refs are returned as is.
func ResolveURL(base, ref string) (string, error) {
	r, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("parse %q: %w", ref, err)
	}
	if r.IsAbs() {
		return r.String(), nil
	}
	b, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse base %q: %w", base, err)
	}
	return b.ResolveReference(r).String(), nil
}
