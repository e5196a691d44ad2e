package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/wippyai/flatlayout/layout"
	"github.com/wippyai/flatlayout/plan"
	"github.com/wippyai/flatlayout/schemafile"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type entryKind string

const (
	kindStruct entryKind = "struct"
	kindTable  entryKind = "table"
	kindEnum   entryKind = "enum"
	kindUnion  entryKind = "union"
)

type entry struct {
	name string
	kind entryKind
}

type modelState int

const (
	stateBrowse modelState = iota
	stateDetail
)

type interactiveModel struct {
	err      error
	set      *plan.Set
	cfg      config
	entries  []entry
	visible  []entry
	filter   textinput.Model
	detail   viewport.Model
	selected int
	width    int
	height   int
	state    modelState
}

func newInteractiveModel(cfg config) *interactiveModel {
	ti := textinput.New()
	ti.Prompt = "filter: "
	ti.Placeholder = "type name"
	ti.Width = 40
	ti.Focus()

	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		width, height = 80, 24
	}
	return &interactiveModel{
		cfg:    cfg,
		filter: ti,
		detail: viewport.New(width, height-4),
		width:  width,
		height: height,
		state:  stateBrowse,
	}
}

type loadedMsg struct {
	err error
	set *plan.Set
}

func (m *interactiveModel) Init() tea.Cmd {
	return tea.Batch(m.load, textinput.Blink)
}

func (m *interactiveModel) load() tea.Msg {
	model, err := schemafile.Load(m.cfg.schemaFile)
	if err != nil {
		return loadedMsg{err: err}
	}
	set, err := plan.BuildContext(context.Background(), model, m.cfg.planOptions())
	if err != nil {
		return loadedMsg{err: err}
	}
	return loadedMsg{set: set}
}

func entriesOf(set *plan.Set) []entry {
	var out []entry
	for _, tp := range set.Types() {
		k := kindTable
		if tp.Fixed {
			k = kindStruct
		}
		out = append(out, entry{name: tp.Name, kind: k})
	}
	for _, e := range set.Enums() {
		if !e.Union {
			out = append(out, entry{name: e.Name, kind: kindEnum})
		}
	}
	for _, u := range set.Unions() {
		out = append(out, entry{name: u.Name, kind: kindUnion})
	}
	return out
}

func (m *interactiveModel) applyFilter() {
	q := strings.ToLower(strings.TrimSpace(m.filter.Value()))
	m.visible = m.visible[:0]
	for _, e := range m.entries {
		if q == "" || strings.Contains(strings.ToLower(e.name), q) {
			m.visible = append(m.visible, e)
		}
	}
	if m.selected >= len(m.visible) {
		m.selected = max(len(m.visible)-1, 0)
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.detail.Width = msg.Width
		m.detail.Height = max(msg.Height-4, 1)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "up":
			if m.state == stateBrowse && m.selected > 0 {
				m.selected--
			}

		case "down":
			if m.state == stateBrowse && m.selected < len(m.visible)-1 {
				m.selected++
			}

		case "ctrl+r":
			m.err = nil
			return m, m.load

		case "enter":
			if m.state == stateBrowse && len(m.visible) > 0 {
				m.detail.SetContent(m.describe(m.visible[m.selected]))
				m.detail.GotoTop()
				m.state = stateDetail
				return m, nil
			}

		case "esc":
			if m.state == stateDetail {
				m.state = stateBrowse
				return m, nil
			}

		case "q":
			if m.state == stateDetail {
				return m, tea.Quit
			}
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.set = msg.set
		m.entries = entriesOf(msg.set)
		m.applyFilter()
	}

	var cmd tea.Cmd
	if m.state == stateDetail {
		m.detail, cmd = m.detail.Update(msg)
		return m, cmd
	}
	m.filter, cmd = m.filter.Update(msg)
	m.applyFilter()
	return m, cmd
}

func (m *interactiveModel) describe(e entry) string {
	var b strings.Builder
	switch e.kind {
	case kindStruct, kindTable:
		tp := m.set.Type(e.name)
		b.WriteString(typeHeader(tp))
		b.WriteString("\n\n")
		for _, p := range tp.Accessors {
			b.WriteString(accessorLine(p))
			b.WriteString("\n")
		}
		for _, k := range tp.KeyLookups {
			fmt.Fprintf(&b, "\nlookup %s by %s.%s (%s)\n", k.Field, k.Elem, k.Key.Field, k.Compare)
		}
		if len(tp.WriteSequence) > 0 {
			b.WriteString("\nconstructor:\n")
			for _, op := range tp.WriteSequence {
				switch op.Op {
				case layout.OpPut:
					fmt.Fprintf(&b, "  put  %s\n", tp.Params[op.Param].Name)
				case layout.OpPad:
					fmt.Fprintf(&b, "  pad  %d\n", op.Size)
				default:
					fmt.Fprintf(&b, "  prep align %d size %d\n", op.Align, op.Size)
				}
			}
		}
		for _, g := range tp.Layout.WriteGroups {
			fmt.Fprintf(&b, "\nwrite class %d: slots %v", g.Class, g.Slots)
		}
	case kindEnum:
		ep := m.set.Enum(e.name)
		b.WriteString(enumLine(ep))
		b.WriteString("\n")
	case kindUnion:
		up := m.set.Union(e.name)
		fmt.Fprintf(&b, "union %s\n\n", up.Name)
		for _, mem := range up.Members {
			fmt.Fprintf(&b, "  %d %s (%s %s)\n", mem.Tag, mem.Name, mem.Kind, mem.Type)
		}
	}
	return b.String()
}

func (m *interactiveModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nctrl+r reload • ctrl+c quit", m.err))
	}
	if m.set == nil {
		return "Loading schema..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("Flat Plan"))
	b.WriteString(" ")
	b.WriteString(m.cfg.schemaFile)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		b.WriteString(m.filter.View())
		b.WriteString("\n\n")
		rows := max(m.height-8, 1)
		start := 0
		if m.selected >= rows {
			start = m.selected - rows + 1
		}
		for i := start; i < len(m.visible) && i < start+rows; i++ {
			e := m.visible[i]
			line := fmt.Sprintf("%-8s %s", kindStyle.Render(string(e.kind)), nameStyle.Render(e.name))
			if i == m.selected {
				line = selectedStyle.Render("> " + string(e.kind) + "  " + e.name)
			} else {
				line = "  " + line
			}
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ select • enter details • ctrl+r reload • ctrl+c quit"))

	case stateDetail:
		b.WriteString(m.detail.View())
		b.WriteString("\n")
		b.WriteString(helpStyle.Render("↑/↓ scroll • esc back • q quit"))
	}
	return b.String()
}

func runInteractive(cfg config) error {
	p := tea.NewProgram(newInteractiveModel(cfg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
