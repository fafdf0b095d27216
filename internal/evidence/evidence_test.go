package evidence

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/todoapp/todoapp/internal/browser"
	"github.com/todoapp/todoapp/internal/browser/browsertest"
)

func newRecorder(t *testing.T) (*Recorder, *browsertest.Driver, string) {
	t.Helper()
	d := browsertest.New("http://localhost:5173")
	dir := filepath.Join(t.TempDir(), "suite", "case")
	r, err := New(d, dir, nil, WithResultDelay(0))
	require.NoError(t, err)
	return r, d, dir
}

func files(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestNewCreatesDirectory(t *testing.T) {
	_, _, dir := newRecorder(t)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestPageLevelFilenamesCarrySelector(t *testing.T) {
	r, d, dir := newRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.Fill(ctx, "#username", "testuser2"))
	require.NoError(t, r.Click(ctx, `button[type="submit"]`))

	assert.Equal(t, []string{
		"step01_fill__username.png",
		"step02_click_button_type__submit__.png",
	}, files(t, dir))

	calls := d.Calls()
	require.Len(t, calls, 8)
	assert.Equal(t, browsertest.Call{Method: "Fill", Locator: "#username", Value: "testuser2"}, calls[3])
}

func TestChainedAndRoleLocatorsAreRecorded(t *testing.T) {
	r, _, dir := newRecorder(t)
	ctx := context.Background()

	item := browser.Locate(".todo-item").Filter("milk")
	require.NoError(t, r.Locator(browser.Locate(".input-title")).Fill(ctx, "milk"))
	require.NoError(t, r.Locator(item.Locate(`input[type="checkbox"]`)).Check(ctx))
	require.NoError(t, r.Locator(item.Locate(`input[type="checkbox"]`)).Uncheck(ctx))
	require.NoError(t, r.Locator(browser.ByRole("button", "完了")).Click(ctx))
	require.NoError(t, r.Locator(browser.Locate(".todo-item").Nth(1)).Click(ctx))

	assert.Equal(t, []string{
		"step01_fill.png",
		"step02_check.png",
		"step03_uncheck.png",
		"step04_click.png",
		"step05_click.png",
	}, files(t, dir))
	assert.Equal(t, 5, r.Steps())
}

func TestStepSequence(t *testing.T) {
	r, d, _ := newRecorder(t)

	require.NoError(t, r.Locator(browser.Locate(".btn-logout")).Click(context.Background()))

	assert.Equal(t, []string{"SetOutline", "Screenshot", "SetOutline", "Click"}, d.Methods())
	calls := d.Calls()
	assert.Equal(t, HighlightOutline, calls[0].Value)
	assert.Equal(t, "false", calls[1].Value, "step screenshots cover the viewport")
	assert.Empty(t, calls[2].Value)
}

func TestHighlightFailureIsWarned(t *testing.T) {
	d := browsertest.New("")
	d.FailOutline(errors.New("no node"))
	core, logs := observer.New(zap.WarnLevel)
	r, err := New(d, t.TempDir(), zap.New(core), WithResultDelay(0))
	require.NoError(t, err)

	require.NoError(t, r.Click(context.Background(), "#missing"))

	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "element not found for highlighting", entry.Message)
	assert.Equal(t, "#missing", entry.ContextMap()["locator"])
	assert.Contains(t, d.Methods(), "Click")
}

func TestScreenshotFailureAbortsStep(t *testing.T) {
	r, d, dir := newRecorder(t)
	d.FailScreenshot(errors.New("target closed"))

	err := r.Fill(context.Background(), "#password", "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target closed")
	assert.NotContains(t, d.Methods(), "Fill")
	assert.Empty(t, files(t, dir))
	assert.Equal(t, 1, r.Steps())
}

func TestActionErrorIsReturned(t *testing.T) {
	r, d, dir := newRecorder(t)
	loc := browser.Locate(".btn-danger")
	d.FailAction(loc, browser.ErrNotFound)

	err := r.Locator(loc).Click(context.Background())
	assert.ErrorIs(t, err, browser.ErrNotFound)
	assert.Equal(t, []string{"step01_click.png"}, files(t, dir))
}

func TestPassthroughIsNotRecorded(t *testing.T) {
	r, d, dir := newRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.Goto(ctx, "/login"))
	_, err := r.Count(ctx, browser.Locate(".todo-item"))
	require.NoError(t, err)
	require.NoError(t, r.Check(ctx, browser.Locate("#remember")))

	assert.Equal(t, []string{"Goto", "Check"}, d.Methods())
	assert.Empty(t, files(t, dir))
	assert.Zero(t, r.Steps())
}

func TestCaptureResult(t *testing.T) {
	r, d, dir := newRecorder(t)
	ctx := context.Background()

	require.NoError(t, r.CaptureResult(ctx, ""))
	require.NoError(t, r.CaptureResult(ctx, "after.png"))

	assert.ElementsMatch(t, []string{"final_result.png", "after.png"}, files(t, dir))
	data, err := os.ReadFile(filepath.Join(dir, DefaultResultName))
	require.NoError(t, err)
	assert.Equal(t, browsertest.PNG, data)
	assert.Equal(t, "true", d.Calls()[0].Value)
	assert.Zero(t, r.Steps())
}

func TestCaptureResultWaits(t *testing.T) {
	d := browsertest.New("")
	r, err := New(d, t.TempDir(), nil, WithResultDelay(50*time.Millisecond))
	require.NoError(t, err)

	start := time.Now()
	require.NoError(t, r.CaptureResult(context.Background(), ""))
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, r.CaptureResult(ctx, ""), context.Canceled)
}

func TestStepFilename(t *testing.T) {
	assert.Equal(t, "step01_fill.png", StepFilename(1, "fill"))
	assert.Equal(t, "step10_click_x.png", StepFilename(10, "click_x"))
	assert.Equal(t, "step100_check.png", StepFilename(100, "check"))
}

func TestSanitize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"#username", "_username"},
		{".add-todo-section button", "_add_todo_section_button"},
		{"AbC123", "AbC123"},
		{"完了", "__"},
		{"done 👍", "done___"},
		{strings.Repeat("a", 49) + "👍", strings.Repeat("a", 49) + "_"},
		{"", ""},
		{strings.Repeat("a", 60), strings.Repeat("a", 50)},
		{strings.Repeat("#", 60), strings.Repeat("_", 50)},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sanitize(tt.in), "Sanitize(%q)", tt.in)
	}
}
