package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Quit         key.Binding
	Catalog      key.Binding
	Cart         key.Binding
	Profile      key.Binding
	Up           key.Binding
	Down         key.Binding
	PrevCategory key.Binding
	NextCategory key.Binding
	Search       key.Binding
	ClearSearch  key.Binding
	Suggestion   key.Binding
	Open         key.Binding
	Add          key.Binding
	Remove       key.Binding
	ClearCart    key.Binding
	Checkout     key.Binding
	Login        key.Binding
	Register     key.Binding
	Logout       key.Binding
	Currency     key.Binding
	Submit       key.Binding
	NextField    key.Binding
	PrevField    key.Binding
	Back         key.Binding
	Confirm      key.Binding
	Cancel       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Quit:         key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Catalog:      key.NewBinding(key.WithKeys("1"), key.WithHelp("1", "catalog")),
		Cart:         key.NewBinding(key.WithKeys("2"), key.WithHelp("2", "cart")),
		Profile:      key.NewBinding(key.WithKeys("3"), key.WithHelp("3", "profile")),
		Up:           key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:         key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PrevCategory: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev category")),
		NextCategory: key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next category")),
		Search:       key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		ClearSearch:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Suggestion:   key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "use suggestion")),
		Open:         key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "details")),
		Add:          key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add to cart")),
		Remove:       key.NewBinding(key.WithKeys("x", "delete"), key.WithHelp("x", "remove")),
		ClearCart:    key.NewBinding(key.WithKeys("C"), key.WithHelp("C", "empty cart")),
		Checkout:     key.NewBinding(key.WithKeys("b"), key.WithHelp("b", "checkout")),
		Login:        key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "log in")),
		Register:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "register")),
		Logout:       key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "log out")),
		Currency:     key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "currency")),
		Submit:       key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "submit")),
		NextField:    key.NewBinding(key.WithKeys("tab", "down"), key.WithHelp("tab", "next field")),
		PrevField:    key.NewBinding(key.WithKeys("shift+tab", "up"), key.WithHelp("shift+tab", "prev field")),
		Back:         key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		Confirm:      key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "yes")),
		Cancel:       key.NewBinding(key.WithKeys("n", "N", "esc"), key.WithHelp("n", "no")),
	}
}

// helpLine renders bindings as "[k] desc" pairs.
func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, "["+h.Key+"] "+h.Desc)
	}
	return helpStyle.Render(strings.Join(parts, "  "))
}
