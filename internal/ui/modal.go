package ui

import (
	"errors"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/five82/mycoach/internal/api"
	"github.com/five82/mycoach/internal/validation"
)

// Modal is the interface for modal dialogs.
// The Update method returns the updated modal, a command, and a bool indicating if the modal should close.
type Modal interface {
	Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool)
	View(theme Theme, width, height int) string
}

const modalWidth = 64

// formField describes one input of a form modal.
type formField struct {
	label       string
	value       string
	placeholder string
}

// formModal collects text fields and hands them to submit. It stays open
// until the write it started succeeds, so a rejected form keeps its input.
type formModal struct {
	title   string
	labels  []string
	inputs  []textinput.Model
	focus   int
	err     string
	pending bool

	// submit validates values and returns the command that performs the write.
	submit func(values []string) (tea.Cmd, error)
}

func newFormModal(title string, fields []formField, submit func([]string) (tea.Cmd, error)) formModal {
	f := formModal{title: title, submit: submit}
	for _, field := range fields {
		in := textinput.New()
		in.Prompt = ""
		in.Placeholder = field.placeholder
		in.CharLimit = 256
		in.Width = modalWidth - 22
		in.SetValue(field.value)
		f.labels = append(f.labels, field.label)
		f.inputs = append(f.inputs, in)
	}
	f.setFocus(0)
	return f
}

func (f *formModal) setFocus(i int) {
	n := len(f.inputs)
	if n == 0 {
		return
	}
	f.focus = (i%n + n) % n
	for j := range f.inputs {
		if j == f.focus {
			f.inputs[j].Focus()
		} else {
			f.inputs[j].Blur()
		}
	}
}

func (f formModal) values() []string {
	out := make([]string, len(f.inputs))
	for i, in := range f.inputs {
		out[i] = in.Value()
	}
	return out
}

func (f formModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		f.pending = false
		if msg.err != nil {
			f.err = api.Message(msg.err)
			return f, nil, false
		}
		return f, nil, true

	case tea.KeyMsg:
		if key.Matches(msg, keys.Escape) {
			return f, nil, true
		}
		if f.pending {
			return f, nil, false
		}
		f.inputs = slices.Clone(f.inputs)
		switch {
		case key.Matches(msg, keys.Confirm):
			cmd, err := f.submit(f.values())
			if err != nil {
				f.err = formMessage(err)
				return f, nil, false
			}
			f.err = ""
			f.pending = true
			return f, cmd, false
		case key.Matches(msg, keys.NextField):
			f.setFocus(f.focus + 1)
			return f, nil, false
		case key.Matches(msg, keys.PrevField):
			f.setFocus(f.focus - 1)
			return f, nil, false
		}
		var cmd tea.Cmd
		f.inputs[f.focus], cmd = f.inputs[f.focus].Update(msg)
		return f, cmd, false
	}
	return f, nil, false
}

func (f formModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.Text.Bold(true).Render(f.title))
	b.WriteString("\n\n")
	for i, in := range f.inputs {
		label := styles.MutedText
		if i == f.focus {
			label = styles.AccentText
		}
		b.WriteString(label.Width(18).Render(f.labels[i]))
		b.WriteString(in.View())
		b.WriteString("\n")
	}
	if f.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Width(modalWidth - 6).Render(f.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if f.pending {
		b.WriteString(styles.WarningText.Render("Saving..."))
	} else {
		b.WriteString(styles.FaintText.Render("enter save · tab next field · esc cancel"))
	}
	return placeModal(theme, width, height, b.String())
}

// confirmModal asks before a destructive action.
type confirmModal struct {
	prompt  string
	err     string
	pending bool
	run     tea.Cmd
}

func newConfirmModal(prompt string, run tea.Cmd) confirmModal {
	return confirmModal{prompt: prompt, run: run}
}

func (c confirmModal) Update(msg tea.Msg, keys keyMap) (Modal, tea.Cmd, bool) {
	switch msg := msg.(type) {
	case actionDoneMsg:
		c.pending = false
		if msg.err != nil {
			c.err = api.Message(msg.err)
			return c, nil, false
		}
		return c, nil, true

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Escape), msg.String() == "n", msg.String() == "N":
			return c, nil, true
		case c.pending:
			return c, nil, false
		case key.Matches(msg, keys.Yes):
			c.err = ""
			c.pending = true
			return c, c.run, false
		}
	}
	return c, nil, false
}

func (c confirmModal) View(theme Theme, width, height int) string {
	styles := theme.Styles()
	var b strings.Builder
	b.WriteString(styles.WarningText.Bold(true).Render("Confirm"))
	b.WriteString("\n\n")
	b.WriteString(styles.Text.Width(modalWidth - 6).Render(c.prompt))
	b.WriteString("\n")
	if c.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.DangerText.Width(modalWidth - 6).Render(c.err))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	if c.pending {
		b.WriteString(styles.WarningText.Render("Deleting..."))
	} else {
		b.WriteString(styles.FaintText.Render("y confirm · n/esc cancel"))
	}
	return placeModal(theme, width, height, b.String())
}

// placeModal centres content in a bordered box.
func placeModal(theme Theme, width, height int, content string) string {
	box := theme.Styles().Modal.Width(modalWidth).Render(content)
	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		box,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(theme.Background)),
	)
}

// formMessage renders a submit error for display inside a form.
func formMessage(err error) string {
	var ve *validation.ValidationError
	if errors.As(err, &ve) {
		return ve.UserMessage()
	}
	return api.Message(err)
}
