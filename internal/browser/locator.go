// Package browser drives a real browser page for end-to-end scenarios.
package browser

import (
	"fmt"
	"strconv"
	"strings"
)

// roleSelectors maps an ARIA role to the elements that carry it implicitly.
var roleSelectors = map[string]string{
	"button":   `button, [role="button"], input[type="submit"], input[type="button"]`,
	"link":     `a[href], [role="link"]`,
	"checkbox": `input[type="checkbox"], [role="checkbox"]`,
	"textbox":  `input:not([type]), input[type="text"], input[type="email"], input[type="password"], textarea, [role="textbox"]`,
	"heading":  `h1, h2, h3, h4, h5, h6, [role="heading"]`,
}

// Locator describes how to find elements on the page. Locators are values;
// every builder returns a new Locator.
type Locator struct {
	// Selector is a CSS selector evaluated inside the parent's matches.
	Selector string
	// HasText keeps matches whose text contains it, ignoring case.
	HasText string
	// ExactText keeps matches whose trimmed text equals it.
	ExactText string
	// Index picks a single match. Negative keeps all matches.
	Index int
	// Parent scopes the search. Nil means the whole document.
	Parent *Locator
}

// Locate returns a Locator for a CSS selector on the whole page.
func Locate(selector string) Locator {
	return Locator{Selector: selector, Index: -1}
}

// ByRole matches elements with the given role whose accessible name is
// exactly name.
func ByRole(role, name string) Locator {
	sel, ok := roleSelectors[role]
	if !ok {
		sel = fmt.Sprintf(`[role=%q]`, role)
	}
	return Locator{Selector: sel, ExactText: name, Index: -1}
}

// Filter narrows the matches to elements containing text.
func (l Locator) Filter(text string) Locator {
	l.HasText = text
	return l
}

// Locate returns a Locator for selector inside the matches of l.
func (l Locator) Locate(selector string) Locator {
	parent := l
	return Locator{Selector: selector, Index: -1, Parent: &parent}
}

// Nth picks the i-th match (zero-based).
func (l Locator) Nth(i int) Locator {
	l.Index = i
	return l
}

// String describes the locator chain, e.g.
// `.todo-item:has-text("a") >> input[type="checkbox"]`.
func (l Locator) String() string {
	var b strings.Builder
	if l.Parent != nil {
		b.WriteString(l.Parent.String())
		b.WriteString(" >> ")
	}
	b.WriteString(l.Selector)
	if l.HasText != "" {
		b.WriteString(":has-text(")
		b.WriteString(strconv.Quote(l.HasText))
		b.WriteString(")")
	}
	if l.ExactText != "" {
		b.WriteString(":text-is(")
		b.WriteString(strconv.Quote(l.ExactText))
		b.WriteString(")")
	}
	if l.Index >= 0 {
		b.WriteString(" >> nth=")
		b.WriteString(strconv.Itoa(l.Index))
	}
	return b.String()
}

// step is one link of a locator chain as passed to the page resolver.
type step struct {
	Selector  string `json:"selector"`
	HasText   string `json:"hasText"`
	ExactText string `json:"exactText"`
	Index     int    `json:"index"`
}

// steps flattens the chain from the outermost parent down to l.
func (l Locator) steps() []step {
	var out []step
	if l.Parent != nil {
		out = l.Parent.steps()
	}
	return append(out, step{
		Selector:  l.Selector,
		HasText:   l.HasText,
		ExactText: l.ExactText,
		Index:     l.Index,
	})
}
