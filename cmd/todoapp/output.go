package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/todoapp/todoapp/internal/scenario"
	"github.com/todoapp/todoapp/pkg/todoclient"
)

const timeFormat = "2006-01-02 15:04:05"

func writeJSON(w io.Writer, v interface{}) {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(v)
}

// printTodo prints a single todo to the writer
func printTodo(w io.Writer, todo *todoclient.Todo, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, todo)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%d\n", todo.ID)
	fmt.Fprintf(tw, "Title:\t%s\n", todo.Title)
	fmt.Fprintf(tw, "Status:\t%s\n", statusString(todo.Completed))
	if todo.Description != nil && *todo.Description != "" {
		fmt.Fprintf(tw, "Description:\t%s\n", *todo.Description)
	}
	fmt.Fprintf(tw, "Created:\t%s\n", todo.CreatedAt.Local().Format(timeFormat))
	fmt.Fprintf(tw, "Updated:\t%s\n", todo.UpdatedAt.Local().Format(timeFormat))
	tw.Flush()
}

// printTodoList prints todos in list order
func printTodoList(w io.Writer, todos []todoclient.Todo, jsonOutput bool) {
	if jsonOutput {
		if todos == nil {
			todos = []todoclient.Todo{}
		}
		writeJSON(w, todos)
		return
	}

	if len(todos) == 0 {
		fmt.Fprintln(w, "No todos found")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\tDONE\tTITLE\tCREATED\n")
	fmt.Fprintf(tw, "--\t----\t-----\t-------\n")
	for _, t := range todos {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%d\t[%s]\t%s\t%s\n",
			t.ID, done, truncate(t.Title, 40), t.CreatedAt.Local().Format(timeFormat))
	}
	tw.Flush()
}

// printUser prints the signed-in user
func printUser(w io.Writer, username, email string, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]string{
			"username": username,
			"email":    email,
		})
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Username:\t%s\n", username)
	fmt.Fprintf(tw, "Email:\t%s\n", email)
	tw.Flush()
}

type resultJSON struct {
	Suite      string `json:"suite"`
	Case       string `json:"case"`
	Passed     bool   `json:"passed"`
	Error      string `json:"error,omitempty"`
	DurationMS int64  `json:"duration_ms"`
	Dir        string `json:"dir"`
}

// printResults prints end-to-end results and a pass/fail summary
func printResults(w io.Writer, results []scenario.Result, jsonOutput bool) {
	if jsonOutput {
		out := make([]resultJSON, 0, len(results))
		for _, r := range results {
			rj := resultJSON{
				Suite:      r.Suite,
				Case:       r.Case,
				Passed:     r.Passed,
				DurationMS: r.Duration.Milliseconds(),
				Dir:        r.Dir,
			}
			if r.Err != nil {
				rj.Error = r.Err.Error()
			}
			out = append(out, rj)
		}
		writeJSON(w, out)
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "RESULT\tSUITE\tCASE\tTIME\tEVIDENCE\n")
	fmt.Fprintf(tw, "------\t-----\t----\t----\t--------\n")
	for _, r := range results {
		status := "PASS"
		if !r.Passed {
			status = "FAIL"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			status, r.Suite, r.Case, r.Duration.Round(time.Millisecond), r.Dir)
	}
	tw.Flush()

	failed := scenario.Failed(results)
	for _, r := range failed {
		fmt.Fprintf(w, "\n%s / %s:\n  %v\n", r.Suite, r.Case, r.Err)
	}
	fmt.Fprintf(w, "\n%d passed, %d failed\n", len(results)-len(failed), len(failed))
}

// printError prints an error message
func printError(w io.Writer, err error, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]interface{}{
			"error": map[string]interface{}{
				"message": err.Error(),
			},
		})
		return
	}

	fmt.Fprintf(w, "Error: %s\n", err.Error())
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string, jsonOutput bool) {
	if jsonOutput {
		writeJSON(w, map[string]interface{}{
			"message": message,
		})
		return
	}

	fmt.Fprintln(w, message)
}

func statusString(completed bool) string {
	if completed {
		return "completed"
	}
	return "active"
}

// truncate shortens s to maxLen runes
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}
