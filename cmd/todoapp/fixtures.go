package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/todoapp/todoapp/internal/config"
	"github.com/todoapp/todoapp/internal/fixture"
	"github.com/todoapp/todoapp/internal/store"
)

var fixturesCmd = &cobra.Command{
	Use:   "fixtures",
	Short: "Load SQL fixtures into the database",
	Long: `Execute SQL fixture scripts against the configured database.

Folders live under the fixtures root (sql_path in todoapp.toml or
TODOAPP_SQL_PATH). Files in a folder run in file name order and the run
stops at the first failing script.`,
}

var fixturesSetupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Reset the database to the end-to-end baseline",
	Long:  `Run the cleanup folder, then the login-test folder.`,
	Run: func(cmd *cobra.Command, args []string) {
		if err := withLoader(func(l *fixture.Loader) error {
			return runFixturesSetup(cmd.Context(), os.Stdout, l)
		}); err != nil {
			handleError(err)
		}
	},
}

var fixturesRunCmd = &cobra.Command{
	Use:   "run <folder>...",
	Short: "Execute every script in the given folders",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		noSort, _ := cmd.Flags().GetBool("no-sort")

		if err := withLoader(func(l *fixture.Loader) error {
			return runFixturesFolders(cmd.Context(), os.Stdout, l, args, noSort)
		}); err != nil {
			handleError(err)
		}
	},
}

var fixturesFileCmd = &cobra.Command{
	Use:   "file <path>",
	Short: "Execute one script, relative to the fixtures root",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := withLoader(func(l *fixture.Loader) error {
			if err := l.ExecuteFile(cmd.Context(), args[0]); err != nil {
				return err
			}
			printSuccess(os.Stdout, fmt.Sprintf("Executed %s", args[0]), jsonOutput)
			return nil
		}); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(fixturesCmd)

	fixturesCmd.AddCommand(fixturesSetupCmd)
	fixturesCmd.AddCommand(fixturesRunCmd)
	fixturesCmd.AddCommand(fixturesFileCmd)

	fixturesRunCmd.Flags().Bool("no-sort", false, "Run files in directory order instead of by name")
}

// withLoader opens the configured database and runs fn with a loader on it.
func withLoader(fn func(*fixture.Loader) error) error {
	cfg, err := config.Resolve()
	if err != nil {
		return err
	}
	manager, err := store.Open(cfg.DBPath, store.WithLogger(logger))
	if err != nil {
		return err
	}
	defer manager.Close()

	return fn(fixture.NewLoader(manager.DB(), cfg.SQLPath, logger))
}

func runFixturesSetup(ctx context.Context, w io.Writer, l *fixture.Loader) error {
	if err := l.GlobalSetup(ctx); err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Loaded %s and %s fixtures", fixture.CleanupFolder, fixture.LoginTestFolder), jsonOutput)
	return nil
}

func runFixturesFolders(ctx context.Context, w io.Writer, l *fixture.Loader, folders []string, noSort bool) error {
	var opts []fixture.FolderOption
	if noSort {
		opts = append(opts, fixture.WithoutSort())
	}
	for _, folder := range folders {
		n, err := l.ExecuteFolder(ctx, folder, opts...)
		if err != nil {
			return err
		}
		printSuccess(w, fmt.Sprintf("Executed %d scripts from %s", n, folder), jsonOutput)
	}
	return nil
}
