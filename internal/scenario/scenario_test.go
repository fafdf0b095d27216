package scenario

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/todoapp/todoapp/internal/browser"
	"github.com/todoapp/todoapp/internal/browser/browsertest"
	"github.com/todoapp/todoapp/internal/fixture"
)

const baseURL = "http://localhost:5173"

type fakeFixtures struct {
	mu       sync.Mutex
	setups   int
	folders  []string
	setupErr error
}

func (f *fakeFixtures) GlobalSetup(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setups++
	return f.setupErr
}

func (f *fakeFixtures) ExecuteFolder(_ context.Context, folder string, _ ...fixture.FolderOption) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.folders = append(f.folders, folder)
	return 1, nil
}

type harness struct {
	runner   *Runner
	fixtures *fakeFixtures
	dir      string

	mu      sync.Mutex
	drivers []*browsertest.Driver
	script  func(d *browsertest.Driver)
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{fixtures: &fakeFixtures{}, dir: t.TempDir()}
	newPage := func(context.Context) (browser.Driver, error) {
		d := browsertest.New(baseURL)
		h.mu.Lock()
		defer h.mu.Unlock()
		if h.script != nil {
			h.script(d)
		}
		h.drivers = append(h.drivers, d)
		return d, nil
	}
	h.runner = NewRunner(newPage, h.fixtures, Options{
		BaseURL:       baseURL,
		Screenshots:   h.dir,
		ExpectTimeout: 300 * time.Millisecond,
		ResultDelay:   -1,
	}, zaptest.NewLogger(t))
	return h
}

func listFiles(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names
}

func TestRunnerRecordsOnlyCaseBody(t *testing.T) {
	h := newHarness(t)
	suite := Suite{
		Name: "suite one",
		BeforeEach: func(ctx context.Context, tt *T) error {
			return tt.Locate("#username").Fill(ctx, "before")
		},
		Cases: []Case{{
			Name: "fills/title",
			Run: func(ctx context.Context, tt *T) error {
				return tt.Locate(".input-title").Fill(ctx, "x")
			},
		}},
	}

	results := h.runner.Run(context.Background(), suite)

	require.Len(t, results, 1)
	res := results[0]
	require.NoError(t, res.Err)
	assert.True(t, res.Passed)
	assert.Equal(t, filepath.Join(h.dir, "suite_one", "fills_title"), res.Dir)
	assert.Equal(t, []string{"final_result.png", "step01_fill.png"}, listFiles(t, res.Dir))
	assert.Equal(t, 1, h.fixtures.setups)

	require.Len(t, h.drivers, 1)
	assert.True(t, h.drivers[0].Closed())
}

func TestRunnerFreshPagePerCase(t *testing.T) {
	h := newHarness(t)
	noop := func(context.Context, *T) error { return nil }
	s1 := Suite{Name: "a", Cases: []Case{{Name: "1", Run: noop}, {Name: "2", Run: noop}}}
	s2 := Suite{Name: "b", Cases: []Case{{Name: "1", Run: noop}}}

	results := h.runner.Run(context.Background(), s1, s2)

	require.Len(t, results, 3)
	assert.Len(t, h.drivers, 3)
	assert.Equal(t, 1, h.fixtures.setups)
	assert.Empty(t, Failed(results))
}

func TestRunnerContinuesAfterFailures(t *testing.T) {
	h := newHarness(t)
	h.fixtures.setupErr = errors.New("db locked")
	boom := errors.New("boom")
	suite := Suite{
		Name: "s",
		Cases: []Case{
			{Name: "fails", Run: func(context.Context, *T) error { return boom }},
			{Name: "panics", Run: func(context.Context, *T) error { panic("bad") }},
			{Name: "passes", Run: func(context.Context, *T) error { return nil }},
		},
	}

	results := h.runner.Run(context.Background(), suite)

	require.Len(t, results, 3)
	assert.ErrorIs(t, results[0].Err, boom)
	assert.NoFileExists(t, filepath.Join(results[0].Dir, "final_result.png"))
	assert.False(t, results[1].Passed)
	assert.Contains(t, results[1].Err.Error(), "panic: bad")
	assert.True(t, results[2].Passed)
	assert.Len(t, Failed(results), 2)
	for _, d := range h.drivers {
		assert.True(t, d.Closed())
	}
}

func TestRunnerBeforeEachFailure(t *testing.T) {
	h := newHarness(t)
	ran := false
	suite := Suite{
		Name:       "s",
		BeforeEach: func(context.Context, *T) error { return errors.New("login failed") },
		Cases: []Case{{Name: "c", Run: func(context.Context, *T) error {
			ran = true
			return nil
		}}},
	}

	results := h.runner.Run(context.Background(), suite)

	require.Len(t, results, 1)
	assert.False(t, ran)
	assert.Contains(t, results[0].Err.Error(), "before each: login failed")
}

func TestRunnerPageError(t *testing.T) {
	r := NewRunner(func(context.Context) (browser.Driver, error) {
		return nil, errors.New("no browser")
	}, nil, Options{Screenshots: t.TempDir()}, nil)

	results := r.Run(context.Background(), Suite{Name: "s", Cases: []Case{{Name: "c", Run: func(context.Context, *T) error { return nil }}}})

	require.Len(t, results, 1)
	assert.Contains(t, results[0].Err.Error(), "open page: no browser")
}

func TestRunnerStopsOnCancel(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	suite := Suite{Name: "s", Cases: []Case{
		{Name: "1", Run: func(context.Context, *T) error { cancel(); return nil }},
		{Name: "2", Run: func(context.Context, *T) error { return nil }},
	}}

	results := h.runner.Run(ctx, suite)
	assert.Len(t, results, 1)
}

func newT(d browser.Driver) *T {
	return &T{driver: d, baseURL: baseURL, timeout: 300 * time.Millisecond}
}

func TestExpectURL(t *testing.T) {
	d := browsertest.New(baseURL)
	tt := newT(d)
	ctx := context.Background()

	go func() {
		time.Sleep(50 * time.Millisecond)
		d.SetURL("/")
	}()
	require.NoError(t, tt.ExpectURL(ctx, "/"))

	err := tt.ExpectURL(ctx, "/login")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "http://localhost:5173/login")
	assert.Contains(t, err.Error(), `got "http://localhost:5173/"`)
}

func TestExpectTextAndContains(t *testing.T) {
	d := browsertest.New(baseURL)
	tt := newT(d)
	ctx := context.Background()
	header := tt.Locate(".header h1")
	d.SetText(browser.Locate(".header h1"), "  Todo   アプリ \n")

	assert.NoError(t, tt.ExpectText(ctx, header, "Todo アプリ"))
	assert.NoError(t, tt.ExpectContains(ctx, header, "アプリ"))
	assert.Error(t, tt.ExpectText(ctx, header, "Todo"))

	err := tt.ExpectText(ctx, tt.Locate("h1"), "x")
	assert.ErrorIs(t, err, browser.ErrNotFound)
}

func TestExpectVisibility(t *testing.T) {
	d := browsertest.New(baseURL)
	tt := newT(d)
	ctx := context.Background()
	modal := browser.Locate(".modal-overlay")

	assert.NoError(t, tt.ExpectHidden(ctx, tt.Locate(".modal-overlay")))
	assert.Error(t, tt.ExpectVisible(ctx, tt.Locate(".modal-overlay")))

	d.SetVisible(modal, true)
	assert.NoError(t, tt.ExpectVisible(ctx, tt.Locate(".modal-overlay")))
}

func TestExpectClassCheckedCount(t *testing.T) {
	d := browsertest.New(baseURL)
	tt := newT(d)
	ctx := context.Background()
	item := tt.Locate(".todo-item").Filter("milk")
	box := item.Locate(`input[type="checkbox"]`)

	assert.NoError(t, tt.ExpectClass(ctx, item, "completed", false))
	d.SetClasses(browser.Locate(".todo-item").Filter("milk"), "todo-item", "completed")
	assert.NoError(t, tt.ExpectClass(ctx, item, "completed", true))
	assert.Error(t, tt.ExpectClass(ctx, item, "complete", true))

	assert.NoError(t, tt.ExpectChecked(ctx, box, false))
	require.NoError(t, box.Check(ctx))
	assert.NoError(t, tt.ExpectChecked(ctx, box, true))

	d.SetCount(browser.Locate(".todo-item"), 3)
	assert.NoError(t, tt.ExpectCount(ctx, tt.Locate(".todo-item"), 3))
	err := tt.ExpectCount(ctx, tt.Locate(".todo-item"), 4)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `got "3"`)
}

func TestLoadFixturesWithoutDatabase(t *testing.T) {
	tt := newT(browsertest.New(baseURL))
	assert.Error(t, tt.LoadFixtures(context.Background(), fixture.LoginTestFolder))
}

func TestUnique(t *testing.T) {
	tt := newT(browsertest.New(baseURL))
	a, b := tt.Unique("newuser"), tt.Unique("newuser")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasPrefix(a, "newuser"))
	assert.Len(t, a, len("newuser")+8)
}

func TestDirName(t *testing.T) {
	assert.Equal(t, "02_Todo_CRUD", DirName("02_Todo CRUD"))
	assert.Equal(t, "a_b_c", DirName(`a/b\c`))
	assert.Equal(t, "完了", DirName("完了"))
}

func TestSelect(t *testing.T) {
	all := Builtin()

	got, err := Select(all)
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = Select(all, "03_todo_filter", "01_auth")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "03_todo_filter", got[0].Name)
	assert.Equal(t, "01_auth", got[1].Name)

	_, err = Select(all, "99_missing")
	assert.ErrorIs(t, err, ErrUnknownSuite)
}

func TestBuiltinSuites(t *testing.T) {
	want := map[string][]string{
		"00_sample":      {"login", "create_todo"},
		"01_auth":        {"login_success", "register", "logout"},
		"02_todo_crud":   {"create", "edit", "toggle_completed", "delete"},
		"03_todo_filter": {"all", "active", "completed", "switch_filters"},
	}
	suites := Builtin()
	require.Len(t, suites, len(want))
	for _, s := range suites {
		var names []string
		for _, c := range s.Cases {
			names = append(names, c.Name)
			assert.NotNil(t, c.Run)
		}
		assert.Equal(t, want[s.Name], names, s.Name)
	}
	assert.Nil(t, suites[0].BeforeEach)
	assert.NotNil(t, suites[2].BeforeEach)
	assert.NotNil(t, suites[3].BeforeEach)
}

// loginScript makes the fake page behave like the login form: submitting
// moves to the home page and renders the header.
func loginScript(d *browsertest.Driver) {
	d.OnAction = func(d *browsertest.Driver, c browsertest.Call) {
		if c.Method == "Click" && c.Locator == selSubmit {
			d.SetURL("/")
			d.SetText(browser.Locate(selHeaderTitle), textAppTitle)
			d.SetText(browser.Locate(selUserInfo), "ようこそ、testuser2さん ログアウト")
		}
		if c.Method == "Click" && c.Locator == selLogout {
			d.SetURL("/login")
			d.SetText(browser.Locate("h1"), textLoginTitle)
		}
	}
}

func TestBuiltinLoginScenarios(t *testing.T) {
	h := newHarness(t)
	h.script = loginScript
	suites, err := Select(Builtin(), "00_sample", "01_auth")
	require.NoError(t, err)
	suites[0].Cases = suites[0].Cases[:1]
	suites[1].Cases = []Case{suites[1].Cases[0], suites[1].Cases[2]}

	results := h.runner.Run(context.Background(), suites...)

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.Passed, "%s/%s: %v", r.Suite, r.Case, r.Err)
	}
	assert.Equal(t, []string{fixture.LoginTestFolder}, h.fixtures.folders)
	assert.Equal(t, []string{
		"final_result.png",
		"step01_fill.png",
		"step02_fill.png",
		"step03_click.png",
	}, listFiles(t, results[0].Dir))
	assert.Equal(t, []string{
		"final_result.png",
		"step01_fill.png",
		"step02_fill.png",
		"step03_click.png",
		"step04_click.png",
	}, listFiles(t, results[2].Dir))
}

func TestBuiltinCrudLoginIsNotRecorded(t *testing.T) {
	h := newHarness(t)
	h.script = func(d *browsertest.Driver) {
		loginScript(d)
		next := d.OnAction
		d.OnAction = func(d *browsertest.Driver, c browsertest.Call) {
			next(d, c)
			if c.Method == "Fill" && c.Locator == selTitle {
				d.SetText(browser.Locate(selTodoItem).Filter(c.Value), c.Value+" これはテストの説明です")
			}
		}
	}
	suites, err := Select(Builtin(), "02_todo_crud")
	require.NoError(t, err)
	suites[0].Cases = suites[0].Cases[:1]

	results := h.runner.Run(context.Background(), suites...)

	require.Len(t, results, 1)
	require.NoError(t, results[0].Err)
	assert.Equal(t, []string{
		"final_result.png",
		"step01_fill.png",
		"step02_fill.png",
		"step03_click.png",
	}, listFiles(t, results[0].Dir))
}
