package main

// Exit codes for the CLI
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitServerNotRunning = 2
	ExitNotAuthenticated = 3
	ExitTodoNotFound     = 4
	ExitInvalidInput     = 5
	ExitConflict         = 6
	ExitTestsFailed      = 7
)
