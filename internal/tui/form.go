package tui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jask/edushop/internal/session"
)

type formField struct {
	name  string // session.Field* constant
	label string
	input textinput.Model
}

// authForm is the login or registration form. It owns only input text and
// per-field messages; validation rules live in the session package.
type authForm struct {
	title  string
	fields []formField
	focus  int
	errs   map[string]string
}

func newInput(placeholder string, secret bool) textinput.Model {
	in := textinput.New()
	in.Placeholder = placeholder
	in.CharLimit = 128
	in.Width = 32
	in.Prompt = ""
	in.Cursor.SetMode(cursor.CursorStatic)
	if secret {
		in.EchoMode = textinput.EchoPassword
		in.EchoCharacter = '•'
	}
	return in
}

func newLoginForm() *authForm {
	f := &authForm{title: "Log in", fields: []formField{
		{name: session.FieldEmail, label: "Email", input: newInput("you@example.com", false)},
		{name: session.FieldPassword, label: "Password", input: newInput("", true)},
	}}
	f.reset()
	return f
}

func newRegisterForm() *authForm {
	f := &authForm{title: "Create account", fields: []formField{
		{name: session.FieldName, label: "Name", input: newInput("Your name", false)},
		{name: session.FieldEmail, label: "Email", input: newInput("you@example.com", false)},
		{name: session.FieldPassword, label: "Password", input: newInput("at least 6 characters", true)},
		{name: session.FieldConfirmPassword, label: "Confirm", input: newInput("repeat password", true)},
	}}
	f.reset()
	return f
}

func (f *authForm) reset() {
	for i := range f.fields {
		f.fields[i].input.Reset()
		f.fields[i].input.Blur()
	}
	f.focus = 0
	f.errs = nil
	f.fields[0].input.Focus()
}

func (f *authForm) value(name string) string {
	for _, fld := range f.fields {
		if fld.name == name {
			return fld.input.Value()
		}
	}
	return ""
}

func (f *authForm) move(delta int) {
	f.fields[f.focus].input.Blur()
	f.focus = (f.focus + delta + len(f.fields)) % len(f.fields)
	f.fields[f.focus].input.Focus()
}

func (f *authForm) update(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	f.fields[f.focus].input, cmd = f.fields[f.focus].input.Update(msg)
	return cmd
}

// setError maps err onto field messages. It reports whether err was a
// validation error.
func (f *authForm) setError(err error) bool {
	var verr *session.ValidationError
	if !errors.As(err, &verr) {
		f.errs = nil
		return false
	}
	f.errs = make(map[string]string, len(verr.Fields))
	for _, fe := range verr.Fields {
		f.errs[fe.Field] = fe.Message
	}
	// jump to the first offending field
	for i, fld := range f.fields {
		if _, ok := f.errs[fld.name]; ok {
			f.move(i - f.focus)
			break
		}
	}
	return true
}

func (f *authForm) view(loading bool) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(f.title))
	b.WriteString("\n\n")
	for i, fld := range f.fields {
		label := labelStyle.Render(fld.label)
		if i == f.focus {
			label = focusedLabelStyle.Render(fld.label)
		}
		b.WriteString(label + " " + fld.input.View() + "\n")
		if msg, ok := f.errs[fld.name]; ok {
			b.WriteString(errorStyle.Render("  "+msg) + "\n")
		}
	}
	if loading {
		b.WriteString("\n" + mutedStyle.Render("please wait..."))
	}
	return b.String()
}
