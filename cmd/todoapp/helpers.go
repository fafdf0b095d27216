package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/todoapp/todoapp/internal/config"
	"github.com/todoapp/todoapp/internal/identity"
	"github.com/todoapp/todoapp/internal/navigation"
	"github.com/todoapp/todoapp/internal/session"
	"github.com/todoapp/todoapp/pkg/todoclient"
)

// SessionFileName is the file under the global config dir holding the
// signed-in user's credentials.
const SessionFileName = "session.json"

var (
	errNotAuthenticated = errors.New("not logged in (run 'todoapp login' first)")
	errTestsFailed      = errors.New("end-to-end scenarios failed")
	errInvalidInput     = errors.New("invalid input")
)

// alreadyAuthenticatedError is returned when login or register is attempted
// while a user is signed in.
type alreadyAuthenticatedError struct {
	username string
}

func (e *alreadyAuthenticatedError) Error() string {
	return fmt.Sprintf("already logged in as %s (run 'todoapp logout' first)", e.username)
}

// clientSession is the REST client with the persisted credentials and the
// todo list built on it.
type clientSession struct {
	client *todoclient.Client
	auth   *session.AuthStore
	todos  *session.TodoStore
}

func newClientSession(baseURL string, storage session.Storage) *clientSession {
	c := todoclient.NewClient(
		todoclient.WithBaseURL(baseURL),
		todoclient.WithUserAgent(identity.UserAgent()),
	)
	return &clientSession{
		client: c,
		auth:   session.NewAuthStore(c, storage, logger),
		todos:  session.NewTodoStore(c),
	}
}

// openClientSession resolves the config and opens the session file in the
// global config dir.
func openClientSession() (*clientSession, error) {
	cfg, err := config.Resolve()
	if err != nil {
		return nil, err
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	storage, err := session.OpenFileStorage(filepath.Join(homeDir, config.GlobalConfigDir, SessionFileName))
	if err != nil {
		return nil, err
	}
	return newClientSession("http://"+cfg.ServerAddr(), storage), nil
}

// gate applies the sign-in gate to a command acting on path.
func (s *clientSession) gate(path string) error {
	d, err := navigation.Guard(path, s.auth.IsAuthenticated())
	if err != nil {
		return err
	}
	switch d.Redirect {
	case "":
		return nil
	case navigation.LoginPath:
		return errNotAuthenticated
	default:
		return &alreadyAuthenticatedError{username: s.auth.Username()}
	}
}

// mapErrorToExitCode maps an error to the appropriate exit code
func mapErrorToExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if errors.Is(err, todoclient.ErrServerNotRunning) {
		return ExitServerNotRunning
	}
	if errors.Is(err, errNotAuthenticated) {
		return ExitNotAuthenticated
	}
	if errors.Is(err, errTestsFailed) {
		return ExitTestsFailed
	}

	switch {
	case todoclient.IsUnauthorized(err), todoclient.IsInvalidCredentials(err):
		return ExitNotAuthenticated
	case todoclient.IsNotFound(err):
		return ExitTodoNotFound
	case todoclient.IsValidation(err):
		return ExitInvalidInput
	case todoclient.IsConflict(err):
		return ExitConflict
	}

	if errors.Is(err, errInvalidInput) {
		return ExitInvalidInput
	}
	return ExitGeneralError
}

// handleError handles an error by printing it and exiting with the appropriate code
func handleError(err error) {
	if err == nil {
		return
	}

	printError(os.Stderr, err, jsonOutput)
	_ = logger.Sync()
	os.Exit(mapErrorToExitCode(err))
}

// parseID parses a todo ID argument.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: todo id must be a positive number, got %q", errInvalidInput, s)
	}
	return id, nil
}
