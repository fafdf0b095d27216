package scenario

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/todoapp/todoapp/internal/browser"
	"github.com/todoapp/todoapp/internal/evidence"
)

// DefaultCaseTimeout bounds a single case, BeforeEach included.
const DefaultCaseTimeout = 30 * time.Second

// PageFunc opens a fresh, isolated page for one case.
type PageFunc func(ctx context.Context) (browser.Driver, error)

// Options configure a Runner.
type Options struct {
	BaseURL     string
	Screenshots string
	// ExpectTimeout defaults to DefaultExpectTimeout.
	ExpectTimeout time.Duration
	// CaseTimeout defaults to DefaultCaseTimeout.
	CaseTimeout time.Duration
	// ResultDelay defaults to evidence.DefaultResultDelay. Negative disables it.
	ResultDelay time.Duration
}

// Result is the outcome of one case.
type Result struct {
	Suite    string
	Case     string
	Passed   bool
	Err      error
	Duration time.Duration
	// Dir holds the case's evidence.
	Dir string
}

// Runner executes suites case by case.
type Runner struct {
	newPage  PageFunc
	fixtures Fixtures
	opts     Options
	logger   *zap.Logger
}

// NewRunner creates a Runner. fixtures may be nil when no database is
// reachable; global setup is then skipped.
func NewRunner(newPage PageFunc, fixtures Fixtures, opts Options, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.ExpectTimeout <= 0 {
		opts.ExpectTimeout = DefaultExpectTimeout
	}
	if opts.CaseTimeout <= 0 {
		opts.CaseTimeout = DefaultCaseTimeout
	}
	if opts.ResultDelay == 0 {
		opts.ResultDelay = evidence.DefaultResultDelay
	}
	if opts.ResultDelay < 0 {
		opts.ResultDelay = 0
	}
	return &Runner{newPage: newPage, fixtures: fixtures, opts: opts, logger: logger}
}

// Run performs the global fixture setup once, then runs every case of every
// suite in order. A setup failure is logged and the run continues.
func (r *Runner) Run(ctx context.Context, suites ...Suite) []Result {
	if r.fixtures != nil {
		if err := r.fixtures.GlobalSetup(ctx); err != nil {
			r.logger.Warn("continuing without complete fixtures", zap.Error(err))
		}
	}

	var results []Result
	for _, s := range suites {
		for _, c := range s.Cases {
			if ctx.Err() != nil {
				return results
			}
			res := r.runCase(ctx, s, c)
			if res.Passed {
				r.logger.Info("case passed",
					zap.String("suite", res.Suite),
					zap.String("case", res.Case),
					zap.Duration("duration", res.Duration))
			} else {
				r.logger.Error("case failed",
					zap.String("suite", res.Suite),
					zap.String("case", res.Case),
					zap.Duration("duration", res.Duration),
					zap.Error(res.Err))
			}
			results = append(results, res)
		}
	}
	return results
}

func (r *Runner) runCase(ctx context.Context, s Suite, c Case) (res Result) {
	start := time.Now()
	res = Result{
		Suite: s.Name,
		Case:  c.Name,
		Dir:   filepath.Join(r.opts.Screenshots, DirName(s.Name), DirName(c.Name)),
	}
	defer func() {
		if p := recover(); p != nil {
			res.Err = fmt.Errorf("panic: %v", p)
		}
		res.Passed = res.Err == nil
		res.Duration = time.Since(start)
	}()

	ctx, cancel := context.WithTimeout(ctx, r.opts.CaseTimeout)
	defer cancel()

	page, err := r.newPage(ctx)
	if err != nil {
		res.Err = fmt.Errorf("open page: %w", err)
		return res
	}
	defer func() {
		if err := page.Close(); err != nil {
			r.logger.Debug("close page", zap.Error(err))
		}
	}()

	t := &T{
		driver:   page,
		fixtures: r.fixtures,
		baseURL:  r.opts.BaseURL,
		timeout:  r.opts.ExpectTimeout,
	}
	if s.BeforeEach != nil {
		if err := s.BeforeEach(ctx, t); err != nil {
			res.Err = fmt.Errorf("before each: %w", err)
			return res
		}
	}

	rec, err := evidence.New(page, res.Dir, r.logger, evidence.WithResultDelay(r.opts.ResultDelay))
	if err != nil {
		res.Err = err
		return res
	}
	t.rec = rec

	if err := c.Run(ctx, t); err != nil {
		res.Err = err
		return res
	}
	res.Err = rec.CaptureResult(ctx, "")
	return res
}

// DirName makes a suite or case name usable as a single path element.
func DirName(name string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ' ', ':':
			return '_'
		}
		return r
	}, name)
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var out []Result
	for _, r := range results {
		if !r.Passed {
			out = append(out, r)
		}
	}
	return out
}

// ErrUnknownSuite is returned by Select for a name with no suite.
var ErrUnknownSuite = errors.New("unknown suite")

// Select returns the suites with the given names, in the order given. No
// names selects all suites.
func Select(suites []Suite, names ...string) ([]Suite, error) {
	if len(names) == 0 {
		return suites, nil
	}
	out := make([]Suite, 0, len(names))
	for _, n := range names {
		found := false
		for _, s := range suites {
			if s.Name == n {
				out = append(out, s)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSuite, n)
		}
	}
	return out, nil
}
