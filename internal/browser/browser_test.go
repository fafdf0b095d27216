package browser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorString(t *testing.T) {
	tests := []struct {
		name string
		loc  Locator
		want string
	}{
		{"css", Locate("#username"), "#username"},
		{"filter", Locate(".todo-item").Filter("buy milk"), `.todo-item:has-text("buy milk")`},
		{
			"child",
			Locate(".todo-item").Filter("a").Locate(`input[type="checkbox"]`),
			`.todo-item:has-text("a") >> input[type="checkbox"]`,
		},
		{"nth", Locate(".todo-item").Nth(2), ".todo-item >> nth=2"},
		{"nth zero", Locate("li").Nth(0), "li >> nth=0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.loc.String())
		})
	}
}

func TestByRole(t *testing.T) {
	l := ByRole("button", "完了")
	assert.Equal(t, "完了", l.ExactText)
	assert.Empty(t, l.HasText)
	assert.Equal(t, -1, l.Index)
	assert.Contains(t, l.Selector, "button")

	custom := ByRole("tab", "x")
	assert.Equal(t, `[role="tab"]`, custom.Selector)
}

func TestBuildersDoNotMutate(t *testing.T) {
	base := Locate(".todo-item")
	filtered := base.Filter("a")
	nth := base.Nth(1)
	child := filtered.Locate(".btn-edit")

	assert.Empty(t, base.HasText)
	assert.Equal(t, -1, base.Index)
	assert.Equal(t, "a", filtered.HasText)
	assert.Equal(t, 1, nth.Index)

	require.NotNil(t, child.Parent)
	filtered.HasText = "changed"
	assert.Equal(t, "a", child.Parent.HasText)
}

func TestSteps(t *testing.T) {
	l := Locate(".todo-item").Filter("a").Locate("input").Nth(0)
	steps := l.steps()
	require.Len(t, steps, 2)
	assert.Equal(t, step{Selector: ".todo-item", HasText: "a", Index: -1}, steps[0])
	assert.Equal(t, step{Selector: "input", Index: 0}, steps[1])
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, ref, want string
	}{
		{"http://localhost:5173", "/login", "http://localhost:5173/login"},
		{"http://localhost:5173/", "/", "http://localhost:5173/"},
		{"http://localhost:5173/app/", "login", "http://localhost:5173/app/login"},
		{"http://localhost:5173", "http://example.com/x", "http://example.com/x"},
	}
	for _, tt := range tests {
		got, err := ResolveURL(tt.base, tt.ref)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s + %s", tt.base, tt.ref)
	}
}

func TestResolveURLInvalid(t *testing.T) {
	_, err := ResolveURL("http://localhost", "http://[::1")
	assert.Error(t, err)
}
