package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/todoapp/todoapp/internal/fixture"
	"github.com/todoapp/todoapp/internal/navigation"
)

// Credentials of the user seeded by the login-test fixtures.
const (
	TestUsername = "testuser2"
	TestPassword = "password123"
)

// Selectors of the todo web UI.
const (
	selUsername        = "#username"
	selEmail           = "#email"
	selPassword        = "#password"
	selConfirmPassword = "#confirmPassword"
	selSubmit          = `button[type="submit"]`
	selHeaderTitle     = ".header h1"
	selUserInfo        = ".user-info"
	selLogout          = ".btn-logout"
	selTitle           = ".input-title"
	selDescription     = ".input-description"
	selAddSubmit       = `.add-todo-section button[type="submit"]`
	selTodoItem        = ".todo-item"
	selCheckbox        = `input[type="checkbox"]`
	selEdit            = ".btn-edit"
	selDelete          = ".btn-delete"
	selModal           = ".modal-overlay"
	selModalTitle      = ".modal-content h3"
	selConfirmDelete   = ".btn-danger"
)

// Texts rendered by the todo web UI.
const (
	textAppTitle     = "Todo アプリ"
	textLoginTitle   = "ログイン"
	textRegister     = "新規登録"
	textRegisterLink = "こちら"
	textDeleteTitle  = "削除の確認"
	textFilterAll    = "すべて"
	textFilterActive = "未完了"
	textFilterDone   = "完了"
	classActive      = "active"
	classCompleted   = "completed"
)

func welcome(username string) string {
	return "ようこそ、" + username + "さん"
}

// settle is how long the filter suite waits after checking a todo.
const settle = 300 * time.Millisecond

// Builtin returns the bundled suites in run order.
func Builtin() []Suite {
	return []Suite{sampleSuite(), authSuite(), crudSuite(), filterSuite()}
}

// steps runs fns in order and returns the first error.
func steps(fns ...func() error) error {
	for _, fn := range fns {
		if err := fn(); err != nil {
			return err
		}
	}
	return nil
}

func login(ctx context.Context, t *T) error {
	return steps(
		func() error { return t.Goto(ctx, navigation.LoginPath) },
		func() error { return t.Locate(selUsername).Fill(ctx, TestUsername) },
		func() error { return t.Locate(selPassword).Fill(ctx, TestPassword) },
		func() error { return t.Locate(selSubmit).Click(ctx) },
		func() error { return t.ExpectURL(ctx, navigation.HomePath) },
	)
}

// addTodo submits the add form and waits for the item to show up.
func addTodo(ctx context.Context, t *T, title, description string) error {
	return steps(
		func() error { return t.Locate(selTitle).Fill(ctx, title) },
		func() error {
			if description == "" {
				return nil
			}
			return t.Locate(selDescription).Fill(ctx, description)
		},
		func() error { return t.Locate(selAddSubmit).Click(ctx) },
		func() error { return t.ExpectVisible(ctx, t.Locate(selTodoItem).Filter(title)) },
	)
}

func sampleSuite() Suite {
	return Suite{
		Name: "00_sample",
		Cases: []Case{
			{
				Name: "login",
				Run: func(ctx context.Context, t *T) error {
					return steps(
						func() error { return t.LoadFixtures(ctx, fixture.LoginTestFolder) },
						func() error { return login(ctx, t) },
						func() error { return t.ExpectText(ctx, t.Locate(selHeaderTitle), textAppTitle) },
					)
				},
			},
			{
				Name: "create_todo",
				Run: func(ctx context.Context, t *T) error {
					title := t.Unique("サンプルTodo ")
					return steps(
						func() error { return t.LoadFixtures(ctx, fixture.LoginTestFolder) },
						func() error { return login(ctx, t) },
						func() error { return addTodo(ctx, t, title, "") },
					)
				},
			},
		},
	}
}

func authSuite() Suite {
	return Suite{
		Name: "01_auth",
		Cases: []Case{
			{
				Name: "login_success",
				Run: func(ctx context.Context, t *T) error {
					return steps(
						func() error { return login(ctx, t) },
						func() error { return t.ExpectText(ctx, t.Locate(selHeaderTitle), textAppTitle) },
						func() error { return t.ExpectContains(ctx, t.Locate(selUserInfo), welcome(TestUsername)) },
					)
				},
			},
			{
				Name: "register",
				Run: func(ctx context.Context, t *T) error {
					username := t.Unique("newuser")
					return steps(
						func() error { return t.Goto(ctx, navigation.LoginPath) },
						func() error { return t.Locate("a").Filter(textRegisterLink).Click(ctx) },
						func() error { return t.ExpectURL(ctx, navigation.RegisterPath) },
						func() error { return t.ExpectText(ctx, t.Locate("h1"), textRegister) },
						func() error { return t.Locate(selUsername).Fill(ctx, username) },
						func() error { return t.Locate(selEmail).Fill(ctx, username+"@test.com") },
						func() error { return t.Locate(selPassword).Fill(ctx, "newpassword123") },
						func() error { return t.Locate(selConfirmPassword).Fill(ctx, "newpassword123") },
						func() error { return t.Locate(selSubmit).Click(ctx) },
						func() error { return t.ExpectURL(ctx, navigation.HomePath) },
						func() error { return t.ExpectContains(ctx, t.Locate(selUserInfo), welcome(username)) },
					)
				},
			},
			{
				Name: "logout",
				Run: func(ctx context.Context, t *T) error {
					return steps(
						func() error { return login(ctx, t) },
						func() error { return t.Locate(selLogout).Click(ctx) },
						func() error { return t.ExpectURL(ctx, navigation.LoginPath) },
						func() error { return t.ExpectText(ctx, t.Locate("h1"), textLoginTitle) },
					)
				},
			},
		},
	}
}

func crudSuite() Suite {
	return Suite{
		Name:       "02_todo_crud",
		BeforeEach: login,
		Cases: []Case{
			{
				Name: "create",
				Run: func(ctx context.Context, t *T) error {
					title := t.Unique("テストTodo ")
					description := "これはテストの説明です"
					item := t.Locate(selTodoItem).Filter(title)
					return steps(
						func() error { return addTodo(ctx, t, title, description) },
						func() error { return t.ExpectContains(ctx, item, description) },
					)
				},
			},
			{
				Name: "edit",
				Run: func(ctx context.Context, t *T) error {
					original := t.Unique("元のタイトル ")
					updated := t.Unique("更新後のタイトル ")
					description := "更新後の説明"
					return steps(
						func() error { return addTodo(ctx, t, original, "元の説明") },
						func() error {
							return t.Locate(selTodoItem).Filter(original).Locate(selEdit).Click(ctx)
						},
						func() error { return addTodo(ctx, t, updated, description) },
						func() error {
							return t.ExpectContains(ctx, t.Locate(selTodoItem).Filter(updated), description)
						},
					)
				},
			},
			{
				Name: "toggle_completed",
				Run: func(ctx context.Context, t *T) error {
					title := t.Unique("完了切替テスト ")
					item := t.Locate(selTodoItem).Filter(title)
					return steps(
						func() error { return addTodo(ctx, t, title, "") },
						func() error { return t.ExpectClass(ctx, item, classCompleted, false) },
						func() error { return item.Locate(selCheckbox).Check(ctx) },
						func() error { return t.ExpectClass(ctx, item, classCompleted, true) },
						func() error { return t.ExpectChecked(ctx, item.Locate(selCheckbox), true) },
					)
				},
			},
			{
				Name: "delete",
				Run: func(ctx context.Context, t *T) error {
					title := t.Unique("削除テスト ")
					item := t.Locate(selTodoItem).Filter(title)
					return steps(
						func() error { return addTodo(ctx, t, title, "") },
						func() error { return item.Locate(selDelete).Click(ctx) },
						func() error { return t.ExpectVisible(ctx, t.Locate(selModal)) },
						func() error { return t.ExpectText(ctx, t.Locate(selModalTitle), textDeleteTitle) },
						func() error { return t.Locate(selConfirmDelete).Click(ctx) },
						func() error { return t.ExpectHidden(ctx, item) },
					)
				},
			},
		},
	}
}

// seedFilterTodos creates two active todos and one completed todo.
func seedFilterTodos(ctx context.Context, t *T) error {
	titles := []string{t.Unique("未完了Todo1 "), t.Unique("未完了Todo2 "), t.Unique("完了Todo ")}
	for _, title := range titles {
		if err := addTodo(ctx, t, title, ""); err != nil {
			return err
		}
	}
	done := t.Locate(selTodoItem).Filter(titles[2]).Locate(selCheckbox)
	if err := done.Check(ctx); err != nil {
		return err
	}
	return t.Wait(ctx, settle)
}

// showFilter clicks a filter button and waits for it to become active.
func showFilter(ctx context.Context, t *T, name string) error {
	btn := t.ByRole("button", name)
	if err := btn.Click(ctx); err != nil {
		return err
	}
	return t.ExpectClass(ctx, btn, classActive, true)
}

// expectChecked checks that the first few visible todos are all in the
// given completion state.
func expectChecked(ctx context.Context, t *T, want bool) error {
	items := t.Locate(selTodoItem)
	n, err := t.Count(ctx, items)
	if err != nil {
		return err
	}
	for i := 0; i < min(n, 5); i++ {
		if err := t.ExpectChecked(ctx, items.Nth(i).Locate(selCheckbox), want); err != nil {
			return err
		}
	}
	return nil
}

func filterSuite() Suite {
	return Suite{
		Name: "03_todo_filter",
		BeforeEach: func(ctx context.Context, t *T) error {
			return steps(
				func() error { return login(ctx, t) },
				func() error { return seedFilterTodos(ctx, t) },
			)
		},
		Cases: []Case{
			{
				Name: "all",
				Run: func(ctx context.Context, t *T) error {
					return steps(
						func() error { return showFilter(ctx, t, textFilterAll) },
						func() error { return t.ExpectCount(ctx, t.Locate(selTodoItem), 3) },
					)
				},
			},
			{
				Name: "active",
				Run: func(ctx context.Context, t *T) error {
					return steps(
						func() error { return showFilter(ctx, t, textFilterActive) },
						func() error { return t.ExpectCount(ctx, t.Locate(selTodoItem), 2) },
						func() error { return expectChecked(ctx, t, false) },
					)
				},
			},
			{
				Name: "completed",
				Run: func(ctx context.Context, t *T) error {
					return steps(
						func() error { return showFilter(ctx, t, textFilterDone) },
						func() error { return t.ExpectCount(ctx, t.Locate(selTodoItem), 1) },
						func() error { return expectChecked(ctx, t, true) },
					)
				},
			},
			{
				Name: "switch_filters",
				Run:  switchFilters,
			},
		},
	}
}

// switchFilters visits every filter: each subset is non-empty, smaller than
// the full list and in the right state, and the full list is unchanged at
// the end.
func switchFilters(ctx context.Context, t *T) error {
	items := t.Locate(selTodoItem)
	count := func(name string, atLeast int) (int, error) {
		if err := showFilter(ctx, t, name); err != nil {
			return 0, err
		}
		n, err := t.Count(ctx, items)
		if err != nil {
			return 0, err
		}
		if n < atLeast {
			return n, fmt.Errorf("%s shows %d todos, want at least %d", name, n, atLeast)
		}
		return n, nil
	}

	all, err := count(textFilterAll, 3)
	if err != nil {
		return err
	}
	active, err := count(textFilterActive, 2)
	if err != nil {
		return err
	}
	if active >= all {
		return fmt.Errorf("active count %d not below all count %d", active, all)
	}
	if err := expectChecked(ctx, t, false); err != nil {
		return err
	}
	done, err := count(textFilterDone, 1)
	if err != nil {
		return err
	}
	if done >= all {
		return fmt.Errorf("completed count %d not below all count %d", done, all)
	}
	if err := expectChecked(ctx, t, true); err != nil {
		return err
	}
	final, err := count(textFilterAll, 0)
	if err != nil {
		return err
	}
	if final != all {
		return fmt.Errorf("all count changed from %d to %d", all, final)
	}
	return nil
}
