package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/todoapp/todoapp/internal/browser"
	"github.com/todoapp/todoapp/internal/config"
	"github.com/todoapp/todoapp/internal/fixture"
	"github.com/todoapp/todoapp/internal/scenario"
	"github.com/todoapp/todoapp/internal/store"
)

var e2eCmd = &cobra.Command{
	Use:   "e2e",
	Short: "Run browser end-to-end scenarios",
}

var e2eRunCmd = &cobra.Command{
	Use:   "run [suite]...",
	Short: "Run scenarios against the web UI",
	Long: `Drive the web UI at base_url through the built-in suites, all of them
unless some are named. Every interaction is screenshotted with the target
outlined into <screenshots>/<suite>/<case>/, followed by final_result.png.

The database is reset to the fixture baseline once before the run.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := config.Resolve()
		if err != nil {
			handleError(err)
		}
		if err := applyE2EFlags(cmd, cfg); err != nil {
			handleError(err)
		}
		noFixtures, _ := cmd.Flags().GetBool("no-fixtures")

		if err := runE2E(cmd.Context(), os.Stdout, cfg, args, !noFixtures); err != nil {
			handleError(err)
		}
	},
}

var e2eListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the built-in suites and cases",
	Run: func(cmd *cobra.Command, args []string) {
		printSuites(os.Stdout, scenario.Builtin(), jsonOutput)
	},
}

func init() {
	rootCmd.AddCommand(e2eCmd)

	e2eCmd.AddCommand(e2eRunCmd)
	e2eCmd.AddCommand(e2eListCmd)

	e2eRunCmd.Flags().String("base-url", "", "Web UI URL (default from config)")
	e2eRunCmd.Flags().String("screenshots", "", "Evidence output directory (default from config)")
	e2eRunCmd.Flags().Bool("headless", true, "Run the browser without a window")
	e2eRunCmd.Flags().String("browser-bin", "", "Browser binary to launch")
	e2eRunCmd.Flags().String("debugger-url", "", "Connect to a running browser instead of launching one")
	e2eRunCmd.Flags().Duration("timeout", 0, "How long expectations and actions wait (default from config)")
	e2eRunCmd.Flags().Bool("no-fixtures", false, "Skip the fixture baseline")
}

// applyE2EFlags overrides cfg with the flags that were set.
func applyE2EFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	var err error
	if flags.Changed("base-url") {
		cfg.BaseURL, err = flags.GetString("base-url")
	}
	if err == nil && flags.Changed("screenshots") {
		cfg.Screenshots, err = flags.GetString("screenshots")
	}
	if err == nil && flags.Changed("headless") {
		cfg.Headless, err = flags.GetBool("headless")
	}
	if err == nil && flags.Changed("browser-bin") {
		cfg.BrowserBin, err = flags.GetString("browser-bin")
	}
	if err == nil && flags.Changed("debugger-url") {
		cfg.DebuggerURL, err = flags.GetString("debugger-url")
	}
	if err == nil && flags.Changed("timeout") {
		cfg.Timeout, err = flags.GetDuration("timeout")
	}
	return err
}

func runE2E(ctx context.Context, w io.Writer, cfg *config.Config, names []string, withFixtures bool) error {
	suites, err := scenario.Select(scenario.Builtin(), names...)
	if err != nil {
		return fmt.Errorf("%w: %v", errInvalidInput, err)
	}

	var fixtures scenario.Fixtures
	if withFixtures {
		manager, err := store.Open(cfg.DBPath, store.WithLogger(logger))
		if err != nil {
			logger.Warn("fixtures disabled, database unavailable", zap.Error(err))
		} else {
			defer manager.Close()
			fixtures = fixture.NewLoader(manager.DB(), cfg.SQLPath, logger)
		}
	}

	b, err := browser.Launch(ctx, browser.Options{
		BaseURL:     cfg.BaseURL,
		DebuggerURL: cfg.DebuggerURL,
		Bin:         cfg.BrowserBin,
		Headless:    cfg.Headless,
		Timeout:     cfg.Timeout,
	}, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	runner := scenario.NewRunner(func(ctx context.Context) (browser.Driver, error) {
		return b.NewPage(ctx)
	}, fixtures, scenario.Options{
		BaseURL:       cfg.BaseURL,
		Screenshots:   cfg.Screenshots,
		ExpectTimeout: cfg.Timeout,
	}, logger)

	results := runner.Run(ctx, suites...)
	printResults(w, results, jsonOutput)
	if len(scenario.Failed(results)) > 0 {
		return errTestsFailed
	}
	return nil
}

// printSuites prints suite and case names
func printSuites(w io.Writer, suites []scenario.Suite, jsonOutput bool) {
	if jsonOutput {
		out := make(map[string][]string, len(suites))
		for _, s := range suites {
			cases := make([]string, 0, len(s.Cases))
			for _, c := range s.Cases {
				cases = append(cases, c.Name)
			}
			out[s.Name] = cases
		}
		writeJSON(w, out)
		return
	}

	for _, s := range suites {
		fmt.Fprintln(w, s.Name)
		for _, c := range s.Cases {
			fmt.Fprintf(w, "  %s\n", c.Name)
		}
	}
}
