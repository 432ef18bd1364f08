package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/airules/airules/internal/report"
	"github.com/airules/airules/internal/types"
)

var (
	tableBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	previewBorderStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.NormalBorder()).
				BorderForeground(lipgloss.Color("240"))

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("7"))

	popupStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Background(lipgloss.Color("235")).
			Padding(1, 4)
)

type keyMap struct {
	Toggle  key.Binding
	Mode    key.Binding
	Preview key.Binding
	Copy    key.Binding
	Rescan  key.Binding
	Write   key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Mode, k.Copy, k.Rescan, k.Write, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Toggle, k.Mode, k.Preview}, {k.Copy, k.Rescan, k.Write}, {k.Help, k.Quit}}
}

var keys = keyMap{
	Toggle:  key.NewBinding(key.WithKeys(" ", "x"), key.WithHelp("space", "keep/exclude")),
	Mode:    key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "categorized/flat")),
	Preview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
	Copy:    key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy markdown")),
	Rescan:  key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
	Write:   key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write")),
	Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
	Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
}

// RescanFunc re-runs the scanners.
type RescanFunc func() ([]types.Rule, error)

// WriteFunc writes the kept rules and returns a status line.
type WriteFunc func(rules []types.Rule, mode report.Mode) (string, error)

type rulesMsg []types.Rule
type statusMsg string
type writtenMsg string

// Model is the rule review screen: a table of detected rules that can be
// excluded one by one, with a live preview of the rendered block.
type Model struct {
	table    table.Model
	viewport viewport.Model
	spinner  spinner.Model
	help     help.Model

	rules    []types.Rule
	excluded map[types.Rule]bool
	prefs    Prefs

	rescanFunc RescanFunc
	writeFunc  WriteFunc

	width, height int
	ready         bool
	scanning      bool
	quitting      bool
	written       bool
	showHelp      bool
	statusMessage string
	statusTimeout *time.Time
}

// NewModel initializes the review screen.
func NewModel(rules []types.Rule, prefs Prefs, rescan RescanFunc, write WriteFunc) Model {
	t := table.New(
		table.WithColumns([]table.Column{
			{Title: "Keep", Width: 6},
			{Title: "Category", Width: 22},
			{Title: "Rule", Width: 60},
		}),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = lipgloss.NewStyle().
		Background(lipgloss.Color("235")).
		Foreground(lipgloss.Color("15")).
		Bold(true).
		Padding(0, 1)
	s.Selected = lipgloss.NewStyle().
		Foreground(lipgloss.Color("232")).
		Background(lipgloss.Color("208")).
		Bold(true)
	s.Cell = lipgloss.NewStyle().Padding(0, 1)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))

	if prefs.Mode == "" {
		prefs.Mode = report.Categorized
	}
	m := Model{
		table:      t,
		spinner:    sp,
		help:       help.New(),
		excluded:   map[types.Rule]bool{},
		prefs:      prefs,
		rescanFunc: rescan,
		writeFunc:  write,
	}
	m.setRules(rules)
	return m
}

// Kept returns the rules not excluded, in detection order.
func (m Model) Kept() []types.Rule {
	var out []types.Rule
	for _, r := range m.rules {
		if !m.excluded[r] {
			out = append(out, r)
		}
	}
	return out
}

// Excluded returns the excluded rules, in detection order.
func (m Model) Excluded() []types.Rule {
	var out []types.Rule
	for _, r := range m.rules {
		if m.excluded[r] {
			out = append(out, r)
		}
	}
	return out
}

// Mode returns the render mode selected on screen.
func (m Model) Mode() report.Mode { return m.prefs.Mode }

// Written reports whether the rules were written before quitting.
func (m Model) Written() bool { return m.written }

// setRules replaces the rule list. Exclusions carry over for rules that
// are still detected.
func (m *Model) setRules(rules []types.Rule) {
	m.rules = rules
	still := map[types.Rule]bool{}
	for _, r := range rules {
		if m.excluded[r] {
			still[r] = true
		}
	}
	m.excluded = still
	m.rebuildRows()
}

func (m *Model) rebuildRows() {
	rows := make([]table.Row, len(m.rules))
	for i, r := range m.rules {
		mark := "[x]"
		if m.excluded[r] {
			mark = "[ ]"
		}
		rows[i] = table.Row{mark, r.Title(), r.Text}
	}
	m.table.SetRows(rows)
	if c := m.table.Cursor(); c >= len(rows) && len(rows) > 0 {
		m.table.SetCursor(len(rows) - 1)
	}
	m.updatePreview()
}

func (m *Model) updatePreview() {
	if m.viewport.Height == 0 {
		return
	}
	rendered := report.Render(m.Kept(), m.prefs.Mode)
	if rendered == "" {
		rendered = "(no rules kept)\n"
	} else {
		rendered = report.Highlight(rendered)
	}
	m.viewport.SetContent(rendered)
}

func (m *Model) toggleCurrent() {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.rules) {
		return
	}
	r := m.rules[i]
	if m.excluded[r] {
		delete(m.excluded, r)
	} else {
		m.excluded[r] = true
	}
	m.rebuildRows()
}

func (m *Model) setStatus(s string, d time.Duration) {
	timeout := time.Now().Add(d)
	m.statusTimeout = &timeout
	m.statusMessage = s
}

func (m Model) rescan() tea.Cmd {
	fn := m.rescanFunc
	return func() tea.Msg {
		if fn == nil {
			return statusMsg("Rescan not available")
		}
		rules, err := fn()
		if err != nil {
			return statusMsg(fmt.Sprintf("Scan error: %v", err))
		}
		return rulesMsg(rules)
	}
}

func (m Model) write() tea.Cmd {
	fn, kept, mode := m.writeFunc, m.Kept(), m.prefs.Mode
	return func() tea.Msg {
		if fn == nil {
			return statusMsg("No output file configured")
		}
		status, err := fn(kept, mode)
		if err != nil {
			return statusMsg(fmt.Sprintf("Write error: %v", err))
		}
		return writtenMsg(status)
	}
}

func (m Model) copyMarkdown() tea.Cmd {
	rendered := report.Render(m.Kept(), m.prefs.Mode)
	return func() tea.Msg {
		if err := clipboard.WriteAll(rendered); err != nil {
			return statusMsg(fmt.Sprintf("Clipboard error: %v", err))
		}
		return statusMsg("Copied rendered rules to clipboard")
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.showHelp {
			m.showHelp = false
			return m, nil
		}
		if m.scanning {
			if key.Matches(msg, keys.Quit) {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}
		switch {
		case key.Matches(msg, keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, keys.Help):
			m.showHelp = true
			return m, nil
		case key.Matches(msg, keys.Toggle):
			m.toggleCurrent()
			return m, nil
		case key.Matches(msg, keys.Mode):
			if m.prefs.Mode == report.Flat {
				m.prefs.Mode = report.Categorized
			} else {
				m.prefs.Mode = report.Flat
			}
			_ = SavePrefs(m.prefs)
			m.updatePreview()
			m.setStatus("Mode: "+string(m.prefs.Mode), 3*time.Second)
			return m, nil
		case key.Matches(msg, keys.Preview):
			m.prefs.Preview = !m.prefs.Preview
			_ = SavePrefs(m.prefs)
			m.resize()
			return m, nil
		case key.Matches(msg, keys.Copy):
			return m, m.copyMarkdown()
		case key.Matches(msg, keys.Rescan):
			m.scanning = true
			return m, tea.Batch(m.spinner.Tick, m.rescan())
		case key.Matches(msg, keys.Write):
			return m, m.write()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.resize()
		return m, nil

	case rulesMsg:
		m.scanning = false
		m.setRules(msg)
		m.setStatus(fmt.Sprintf("Rescan complete - %d rules", len(m.rules)), 5*time.Second)
		return m, nil

	case writtenMsg:
		m.written = true
		m.quitting = true
		m.statusMessage = string(msg)
		return m, tea.Quit

	case statusMsg:
		m.scanning = false
		m.setStatus(string(msg), 3*time.Second)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.statusTimeout != nil && time.Now().After(*m.statusTimeout) {
			m.statusTimeout = nil
			m.statusMessage = ""
		}
		return m, cmd
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.prefs.Preview {
		var vcmd tea.Cmd
		m.viewport, vcmd = m.viewport.Update(msg)
		cmd = tea.Batch(cmd, vcmd)
	}
	return m, cmd
}

// resize lays out the table and preview for the current window.
func (m *Model) resize() {
	if !m.ready {
		return
	}
	ruleWidth := m.width - 6 - 22 - 10
	if ruleWidth < 30 {
		ruleWidth = 30
	}
	cols := m.table.Columns()
	cols[2].Width = ruleWidth
	m.table.SetColumns(cols)
	m.table.SetWidth(m.width - tableBorderStyle.GetHorizontalFrameSize())

	available := m.height - 3 // title, status, help
	tableHeight := available - tableBorderStyle.GetVerticalFrameSize()
	previewHeight := 0
	if m.prefs.Preview {
		tableHeight = available/2 - tableBorderStyle.GetVerticalFrameSize()
		previewHeight = available - available/2 - previewBorderStyle.GetVerticalFrameSize()
	}
	if tableHeight < 3 {
		tableHeight = 3
	}
	m.table.SetHeight(tableHeight)

	if previewHeight > 0 {
		if m.viewport.Height == 0 {
			m.viewport = viewport.New(m.width-previewBorderStyle.GetHorizontalFrameSize(), previewHeight)
		} else {
			m.viewport.Width = m.width - previewBorderStyle.GetHorizontalFrameSize()
			m.viewport.Height = previewHeight
		}
		m.updatePreview()
	}
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if !m.ready {
		return "Initializing..."
	}
	if m.scanning {
		box := popupStyle.Width(40).Align(lipgloss.Center).
			Render(fmt.Sprintf("%s  Rescanning...\n\nPlease wait", m.spinner.View()))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}
	if m.showHelp {
		box := popupStyle.Render("Keys\n\n" + m.help.FullHelpView(keys.FullHelp()))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
	}

	kept := len(m.Kept())
	title := titleStyle.Render(fmt.Sprintf("airules review  %d rules, %d kept, %d excluded  [%s]",
		len(m.rules), kept, len(m.rules)-kept, m.prefs.Mode))

	var b strings.Builder
	b.WriteString(title)
	b.WriteByte('\n')
	if len(m.rules) == 0 {
		b.WriteString(tableBorderStyle.Render("No conventions detected. Press r to rescan or q to quit."))
	} else {
		b.WriteString(tableBorderStyle.Render(m.table.View()))
	}
	if m.prefs.Preview && m.viewport.Height > 0 {
		b.WriteByte('\n')
		b.WriteString(previewBorderStyle.Render(m.viewport.View()))
	}
	b.WriteByte('\n')
	b.WriteString(statusStyle.Width(m.width).Render(m.statusMessage))
	b.WriteByte('\n')
	b.WriteString(m.help.ShortHelpView(keys.ShortHelp()))
	return b.String()
}
