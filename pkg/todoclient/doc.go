// Package todoclient provides a Go SDK for the todoapp REST API.
//
// # Getting Started
//
// Create a client and log in; the returned token is kept for later calls:
//
//	client := todoclient.NewClient(
//	    todoclient.WithBaseURL("http://localhost:8080"),
//	)
//	if _, err := client.Login(ctx, "testuser2", "password123"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Managing Todos
//
//	todo, err := client.CreateTodo(ctx, todoclient.CreateTodoRequest{Title: "Buy milk"})
//	todos, err := client.ListTodos(ctx)
//	todo, err = client.ToggleTodo(ctx, todo.ID)
//	err = client.DeleteTodo(ctx, todo.ID)
//
// # Error Handling
//
// API failures are returned as *Error; helpers test the code:
//
//	if todoclient.IsNotFound(err) {
//	    // todo doesn't exist or belongs to someone else
//	} else if todoclient.IsServerNotRunning(err) {
//	    // server is not reachable
//	}
package todoclient
