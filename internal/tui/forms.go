package tui

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/marcin-skalski/pomo/internal/auth"
)

const (
	fieldEmail = iota
	fieldPassword
	fieldConfirm
)

type form struct {
	kind   auth.Form
	labels []string
	inputs []textinput.Model
	focus  int
	err    string
	busy   bool
}

func newLoginForm() form {
	return newForm(auth.FormLogin, []string{"Email", "Password"})
}

func newRegisterForm() form {
	return newForm(auth.FormRegister, []string{"Email", "Password", "Repeat password"})
}

func newForm(kind auth.Form, labels []string) form {
	f := form{kind: kind, labels: labels}
	for i, label := range labels {
		in := textinput.New()
		in.Prompt = "› "
		in.Placeholder = label
		in.CharLimit = 256
		in.Width = 32
		if i != fieldEmail {
			in.EchoMode = textinput.EchoPassword
			in.EchoCharacter = '•'
		}
		f.inputs = append(f.inputs, in)
	}
	f.inputs[0].Focus()
	return f
}

func (f form) value(field int) string {
	if field >= len(f.inputs) {
		return ""
	}
	return f.inputs[field].Value()
}

func (f form) title() string {
	if f.kind == auth.FormRegister {
		return "Create account"
	}
	return "Sign in"
}

func (f *form) setFocus(i int) tea.Cmd {
	n := len(f.inputs)
	f.focus = ((i % n) + n) % n
	var cmd tea.Cmd
	for j := range f.inputs {
		if j == f.focus {
			cmd = f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
	return cmd
}

// update handles focus movement and forwards everything else to the
// focused input.
func (f *form) update(msg tea.Msg) tea.Cmd {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "tab", "down":
			return f.setFocus(f.focus + 1)
		case "shift+tab", "up":
			return f.setFocus(f.focus - 1)
		}
	}

	var cmd tea.Cmd
	f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
	return cmd
}
