// Package tui is a terminal front end for the calculator built on bubbletea.
package tui

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wrap"
	"golang.org/x/term"

	"github.com/lemonberrylabs/keypad-calculator/pkg/calculator"
	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
	"github.com/lemonberrylabs/keypad-calculator/pkg/expr"
)

var (
	displayStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1).
			Align(lipgloss.Right)

	expressionStyle = lipgloss.NewStyle().Bold(true)
	answerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	errorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	keyStyle        = lipgloss.NewStyle().Width(5).Align(lipgloss.Center)
	opKeyStyle      = keyStyle.Foreground(lipgloss.Color("214"))
	pressedKeyStyle = keyStyle.Reverse(true)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// KeyMap holds the bindings that don't map one-to-one onto a keypad label.
type KeyMap struct {
	Quit       key.Binding
	Clear      key.Binding
	Equals     key.Binding
	Delete     key.Binding
	ToggleSign key.Binding
	Multiply   key.Binding
	Divide     key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Clear: key.NewBinding(
			key.WithKeys("c", "esc"),
			key.WithHelp("c/esc", "clear"),
		),
		Equals: key.NewBinding(
			key.WithKeys("enter", "="),
			key.WithHelp("enter", "equals"),
		),
		Delete: key.NewBinding(
			key.WithKeys("backspace"),
			key.WithHelp("backspace", "delete"),
		),
		ToggleSign: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "+/-"),
		),
		Multiply: key.NewBinding(
			key.WithKeys("*", "x"),
			key.WithHelp("*", "×"),
		),
		Divide: key.NewBinding(
			key.WithKeys("/"),
			key.WithHelp("/", "÷"),
		),
	}
}

// Model is the bubbletea model for the calculator.
type Model struct {
	calc     *calculator.Calculator
	keypad   [][]string
	keys     KeyMap
	lastKey  string
	quitting bool
}

// New creates a model rendering the given keypad rows.
func New(keypad [][]string) Model {
	return Model{
		calc:   calculator.New(),
		keypad: keypad,
		keys:   DefaultKeyMap(),
	}
}

// State returns the current expression and answer.
func (m Model) State() editor.State {
	return m.calc.State()
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if key.Matches(keyMsg, m.keys.Quit) {
		m.quitting = true
		return m, tea.Quit
	}

	label := m.labelFor(keyMsg)
	if label == "" {
		return m, nil
	}
	if _, err := m.calc.Press(label); err != nil {
		return m, nil
	}
	m.lastKey = label
	return m, nil
}

// labelFor maps a key press to a keypad label, or "" when the key has no
// meaning.
func (m Model) labelFor(msg tea.KeyMsg) string {
	switch {
	case key.Matches(msg, m.keys.Clear):
		return editor.KeyClear
	case key.Matches(msg, m.keys.Equals):
		return editor.KeyEquals
	case key.Matches(msg, m.keys.Delete):
		return editor.KeyDelete
	case key.Matches(msg, m.keys.ToggleSign):
		return editor.KeyToggleSign
	case key.Matches(msg, m.keys.Multiply):
		return expr.OpMul
	case key.Matches(msg, m.keys.Divide):
		return expr.OpDiv
	}

	s := msg.String()
	if editor.ValidLabel(s) {
		return s
	}
	return ""
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	state := m.calc.State()
	answer := answerStyle.Render(state.Answer)
	if state.Answer == editor.ErrorAnswer {
		answer = errorStyle.Render(state.Answer)
	}

	width := 0
	for _, row := range m.keypad {
		if w := len(row) * keyStyle.GetWidth(); w > width {
			width = w
		}
	}

	// Long expressions wrap inside the display instead of widening it.
	expression := displayExpression(state.Expression)
	if width > 2 {
		expression = wrap.String(expression, width-2)
	}

	var sb strings.Builder
	sb.WriteString(displayStyle.Width(width).Render(
		expressionStyle.Render(expression) + "\n" + answer,
	))
	sb.WriteString("\n")

	for _, row := range m.keypad {
		cells := make([]string, len(row))
		for i, label := range row {
			cells[i] = m.renderKey(label)
		}
		sb.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
		sb.WriteString("\n")
	}

	sb.WriteString(helpStyle.Render(m.helpLine()))
	sb.WriteString("\n")
	return sb.String()
}

func (m Model) renderKey(label string) string {
	switch {
	case label == m.lastKey:
		return pressedKeyStyle.Render(label)
	case expr.IsOperator(label) || label == editor.KeyEquals:
		return opKeyStyle.Render(label)
	default:
		return keyStyle.Render(label)
	}
}

func (m Model) helpLine() string {
	bindings := []key.Binding{
		m.keys.Equals, m.keys.Clear, m.keys.Delete,
		m.keys.ToggleSign, m.keys.Multiply, m.keys.Divide, m.keys.Quit,
	}
	parts := make([]string, len(bindings))
	for i, b := range bindings {
		h := b.Help()
		parts[i] = h.Key + " " + h.Desc
	}
	return strings.Join(parts, " • ")
}

func displayExpression(e string) string {
	if e == "" {
		return "0"
	}
	return e
}

// Run starts the interactive program and blocks until the user quits. It
// fails when stdin is not a terminal.
func Run(keypad [][]string) error {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("tui requires an interactive terminal")
	}
	_, err := tea.NewProgram(New(keypad)).Run()
	return err
}
