// Package fixture runs SQL scripts that put the database into a known state
// before end-to-end runs.
package fixture

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Folders run by GlobalSetup, in order.
const (
	CleanupFolder   = "cleanup"
	LoginTestFolder = "login-test"
)

// Loader executes fixture scripts found under a root directory.
type Loader struct {
	db     *sql.DB
	root   string
	logger *zap.Logger
}

// NewLoader creates a Loader that resolves script names against root.
func NewLoader(db *sql.DB, root string, logger *zap.Logger) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{db: db, root: root, logger: logger}
}

// Root returns the directory scripts are resolved against.
func (l *Loader) Root() string {
	return l.root
}

type folderOptions struct {
	sort bool
}

// FolderOption configures ExecuteFolder.
type FolderOption func(*folderOptions)

// WithoutSort keeps the directory listing order instead of sorting by name.
func WithoutSort() FolderOption {
	return func(o *folderOptions) {
		o.sort = false
	}
}

// ExecuteFile runs root/name as a single multi-statement script.
func (l *Loader) ExecuteFile(ctx context.Context, name string) error {
	if err := l.exec(ctx, filepath.Join(l.root, name)); err != nil {
		return fmt.Errorf("fixture %s: %w", name, err)
	}
	l.logger.Info("executed fixture", zap.String("file", name))
	return nil
}

// ExecuteFolder runs every .sql file in root/folder, sorted by file name
// unless WithoutSort is given. It stops at the first failing file and
// returns the number of files executed.
func (l *Loader) ExecuteFolder(ctx context.Context, folder string, opts ...FolderOption) (int, error) {
	options := folderOptions{sort: true}
	for _, opt := range opts {
		opt(&options)
	}

	dir := filepath.Join(l.root, folder)
	files, err := listScripts(dir)
	if err != nil {
		return 0, fmt.Errorf("fixture folder %s: %w", folder, err)
	}
	if options.sort {
		sort.Strings(files)
	}

	l.logger.Info("executing fixture folder", zap.String("folder", folder), zap.Int("files", len(files)))

	for i, file := range files {
		if err := l.exec(ctx, filepath.Join(dir, file)); err != nil {
			return i, fmt.Errorf("fixture %s/%s: %w", folder, file, err)
		}
		l.logger.Debug("executed fixture", zap.String("folder", folder), zap.String("file", file))
	}

	l.logger.Info("fixture folder done", zap.String("folder", folder), zap.Int("executed", len(files)))
	return len(files), nil
}

// GlobalSetup runs the cleanup folder and then the login-test folder. A
// failure is logged as a warning and returned; callers carry on regardless.
func (l *Loader) GlobalSetup(ctx context.Context) error {
	for _, folder := range []string{CleanupFolder, LoginTestFolder} {
		if _, err := l.ExecuteFolder(ctx, folder); err != nil {
			l.logger.Warn("fixture setup failed, tests will continue but may not behave correctly",
				zap.Error(err))
			return err
		}
	}
	return nil
}

func (l *Loader) exec(ctx context.Context, path string) error {
	script, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	_, err = l.db.ExecContext(ctx, string(script))
	return err
}

// listScripts returns the names of regular .sql files in dir, in directory
// order.
func listScripts(dir string) ([]string, error) {
	f, err := os.Open(dir)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := f.ReadDir(-1)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if entry.Type().IsRegular() && strings.HasSuffix(entry.Name(), ".sql") {
			files = append(files, entry.Name())
		}
	}
	return files, nil
}
