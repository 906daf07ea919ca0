package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// KeyMap defines the wizard key bindings
type KeyMap struct {
	Up    key.Binding
	Down  key.Binding
	Enter key.Binding
	Back  key.Binding
	Quit  key.Binding
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}

// DefaultKeyMap provides default key bindings
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c", "q"),
		key.WithHelp("q", "quit"),
	),
}

// Question is one wizard step: a prompt and its mutually exclusive choices
type Question struct {
	Key     string
	Prompt  string
	Choices []Choice
}

// Choice is an answer and the config value it stands for
type Choice struct {
	Label string
	Value string
}

// Wizard asks each question in turn and records the chosen values
type Wizard struct {
	questions []Question
	answers   map[string]string
	step      int
	cursor    int
	done      bool
	cancelled bool
	help      help.Model
}

// NewWizard starts at the first question. defaults preselects choices by value.
func NewWizard(questions []Question, defaults map[string]string) *Wizard {
	w := &Wizard{
		questions: questions,
		answers:   make(map[string]string),
		help:      help.New(),
	}
	for k, v := range defaults {
		w.answers[k] = v
	}
	w.cursor = w.defaultCursor()
	return w
}

// Answers returns the chosen value for every question key
func (w *Wizard) Answers() map[string]string {
	out := make(map[string]string, len(w.answers))
	for k, v := range w.answers {
		out[k] = v
	}
	return out
}

// Done reports whether every question was answered
func (w *Wizard) Done() bool { return w.done }

// Cancelled reports whether the user quit before finishing
func (w *Wizard) Cancelled() bool { return w.cancelled }

// Init implements tea.Model
func (w *Wizard) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (w *Wizard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		w.help.Width = msg.Width
		return w, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, DefaultKeyMap.Quit):
			w.cancelled = true
			return w, tea.Quit

		case key.Matches(msg, DefaultKeyMap.Up):
			if w.cursor > 0 {
				w.cursor--
			}

		case key.Matches(msg, DefaultKeyMap.Down):
			if w.cursor < len(w.current().Choices)-1 {
				w.cursor++
			}

		case key.Matches(msg, DefaultKeyMap.Back):
			if w.step > 0 {
				w.step--
				w.cursor = w.defaultCursor()
			}

		case key.Matches(msg, DefaultKeyMap.Enter):
			q := w.current()
			w.answers[q.Key] = q.Choices[w.cursor].Value
			if w.step == len(w.questions)-1 {
				w.done = true
				return w, tea.Quit
			}
			w.step++
			w.cursor = w.defaultCursor()
		}
	}
	return w, nil
}

// View implements tea.Model
func (w *Wizard) View() string {
	if w.done || w.cancelled {
		return ""
	}

	q := w.current()
	var b strings.Builder
	b.WriteString(Title("vexc init"))
	b.WriteByte('\n')
	b.WriteString(subtitleStyle.Render(fmt.Sprintf("%d/%d  %s", w.step+1, len(w.questions), q.Prompt)))
	b.WriteString("\n\n")
	for i, c := range q.Choices {
		if i == w.cursor {
			b.WriteString(selectedStyle.Render("› " + c.Label))
		} else {
			b.WriteString("  " + c.Label)
		}
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(w.help.View(DefaultKeyMap))
	return b.String()
}

func (w *Wizard) current() Question {
	return w.questions[w.step]
}

// defaultCursor points at the current answer of the active question
func (w *Wizard) defaultCursor() int {
	if len(w.questions) == 0 {
		return 0
	}
	q := w.current()
	for i, c := range q.Choices {
		if c.Value == w.answers[q.Key] {
			return i
		}
	}
	return 0
}

// RunWizard runs the wizard full screen and returns it once finished
func RunWizard(questions []Question, defaults map[string]string) (*Wizard, error) {
	w := NewWizard(questions, defaults)
	final, err := tea.NewProgram(w).Run()
	if err != nil {
		return nil, err
	}
	return final.(*Wizard), nil
}
