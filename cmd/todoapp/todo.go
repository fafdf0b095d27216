package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/todoapp/todoapp/internal/navigation"
	"github.com/todoapp/todoapp/pkg/todoclient"
)

// List filters.
const (
	FilterAll       = "all"
	FilterActive    = "active"
	FilterCompleted = "completed"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List todos",
	Long:  `List your todos, newest first, optionally only active or completed ones.`,
	Run: func(cmd *cobra.Command, args []string) {
		filter, _ := cmd.Flags().GetString("filter")

		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runList(cmd.Context(), os.Stdout, s, filter); err != nil {
			handleError(err)
		}
	},
}

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a todo",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		req := todoclient.CreateTodoRequest{Title: args[0]}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			req.Description = &description
		}

		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runAdd(cmd.Context(), os.Stdout, s, req); err != nil {
			handleError(err)
		}
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a todo",
	Long:  `Edit a todo's title, description or completion state.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			handleError(err)
		}

		var req todoclient.UpdateTodoRequest
		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			req.Description = &description
		}
		if cmd.Flags().Changed("completed") {
			completed, _ := cmd.Flags().GetBool("completed")
			req.Completed = &completed
		}

		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runEdit(cmd.Context(), os.Stdout, s, id, req); err != nil {
			handleError(err)
		}
	},
}

var toggleCmd = &cobra.Command{
	Use:     "toggle <id>",
	Aliases: []string{"done"},
	Short:   "Flip a todo between active and completed",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			handleError(err)
		}
		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runToggle(cmd.Context(), os.Stdout, s, id); err != nil {
			handleError(err)
		}
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a todo",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		id, err := parseID(args[0])
		if err != nil {
			handleError(err)
		}
		s, err := openClientSession()
		if err != nil {
			handleError(err)
		}
		if err := runDelete(cmd.Context(), os.Stdout, s, id); err != nil {
			handleError(err)
		}
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(toggleCmd)
	rootCmd.AddCommand(deleteCmd)

	listCmd.Flags().StringP("filter", "f", FilterAll, "Which todos to show (all, active, completed)")

	addCmd.Flags().StringP("description", "d", "", "Todo description")

	editCmd.Flags().StringP("title", "t", "", "New title")
	editCmd.Flags().StringP("description", "d", "", "New description")
	editCmd.Flags().Bool("completed", false, "Completion state")
}

// loadTodos applies the sign-in gate and fetches the full list.
func loadTodos(ctx context.Context, s *clientSession) error {
	if err := s.gate(navigation.HomePath); err != nil {
		return err
	}
	return s.todos.Fetch(ctx)
}

// findTodo returns the todo with id from the loaded list.
func findTodo(s *clientSession, id int64) (*todoclient.Todo, bool) {
	for _, t := range s.todos.Todos() {
		if t.ID == id {
			return &t, true
		}
	}
	return nil, false
}

func runList(ctx context.Context, w io.Writer, s *clientSession, filter string) error {
	switch filter {
	case FilterAll, "":
		if err := loadTodos(ctx, s); err != nil {
			return err
		}
		printTodoList(w, s.todos.Todos(), jsonOutput)
		return nil
	case FilterActive, FilterCompleted:
	default:
		return fmt.Errorf("%w: filter must be one of all, active, completed, got %q", errInvalidInput, filter)
	}

	if err := s.gate(navigation.HomePath); err != nil {
		return err
	}
	todos, err := s.client.ListTodosByCompleted(ctx, filter == FilterCompleted)
	if err != nil {
		return err
	}
	printTodoList(w, todos, jsonOutput)
	return nil
}

func runAdd(ctx context.Context, w io.Writer, s *clientSession, req todoclient.CreateTodoRequest) error {
	if err := s.gate(navigation.HomePath); err != nil {
		return err
	}
	if err := s.todos.Add(ctx, req); err != nil {
		return err
	}
	todos := s.todos.Todos()
	printTodo(w, &todos[0], jsonOutput)
	return nil
}

func runEdit(ctx context.Context, w io.Writer, s *clientSession, id int64, req todoclient.UpdateTodoRequest) error {
	if req.Title == nil && req.Description == nil && req.Completed == nil {
		return fmt.Errorf("%w: nothing to change (use --title, --description or --completed)", errInvalidInput)
	}
	return mutate(ctx, w, s, id, func() error {
		return s.todos.Update(ctx, id, req)
	})
}

func runToggle(ctx context.Context, w io.Writer, s *clientSession, id int64) error {
	return mutate(ctx, w, s, id, func() error {
		return s.todos.Toggle(ctx, id)
	})
}

// mutate loads the list, applies op and prints the todo as it now is.
func mutate(ctx context.Context, w io.Writer, s *clientSession, id int64, op func() error) error {
	if err := loadTodos(ctx, s); err != nil {
		return err
	}
	if err := op(); err != nil {
		return err
	}
	if todo, ok := findTodo(s, id); ok {
		printTodo(w, todo, jsonOutput)
		return nil
	}
	printSuccess(w, fmt.Sprintf("Todo %d updated", id), jsonOutput)
	return nil
}

func runDelete(ctx context.Context, w io.Writer, s *clientSession, id int64) error {
	if err := s.gate(navigation.HomePath); err != nil {
		return err
	}
	if err := s.todos.Delete(ctx, id); err != nil {
		return err
	}
	printSuccess(w, fmt.Sprintf("Todo %d deleted", id), jsonOutput)
	return nil
}
