package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dori/notetags/internal/model"
	"github.com/dori/notetags/internal/ui/theme"
)

type mode int

const (
	modeBrowse mode = iota
	modeConfirmDelete
)

// RootModel is the tag tree browser
type RootModel struct {
	backend Backend
	folder  string
	keys    KeyMap
	help    help.Model
	width   int
	height  int

	nodes    []model.TagNode
	counts   map[int64]int
	activeID int64
	cursor   int
	offset   int
	mode     mode
	loaded   bool

	helpVisible bool

	// Status message
	statusMsg string
	errorMsg  string
}

// NewRootModel creates the browser for the tags of a note folder
func NewRootModel(backend Backend, folder string) RootModel {
	h := help.New()
	h.ShowAll = false

	return RootModel{
		backend: backend,
		folder:  folder,
		keys:    DefaultKeyMap(),
		help:    h,
		counts:  make(map[int64]int),
	}
}

// Init loads the tag tree
func (m RootModel) Init() tea.Cmd {
	return m.loadTags
}

// Update handles messages
func (m RootModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.clampCursor()
		return m, nil

	case TagsLoadedMsg:
		m.nodes = msg.Nodes
		m.counts = msg.Counts
		m.activeID = msg.ActiveID
		m.loaded = true
		m.clampCursor()
		return m, nil

	case TagDeletedMsg:
		m.statusMsg = fmt.Sprintf("Deleted %q", msg.Tag.Name)
		return m, m.loadTags

	case ActiveTagChangedMsg:
		m.activeID = msg.Tag.ID
		if msg.Tag.IsFetched() {
			m.statusMsg = fmt.Sprintf("Active tag: %s", msg.Tag.Name)
		} else {
			m.statusMsg = "Active tag cleared"
		}
		return m, nil

	case ErrorMsg:
		m.errorMsg = msg.Err.Error()
		return m, nil

	case tea.KeyMsg:
		// Clear status/error on any keypress
		m.statusMsg = ""
		m.errorMsg = ""

		if m.mode == modeConfirmDelete {
			return m.updateConfirm(msg)
		}
		return m.updateBrowse(msg)
	}

	return m, nil
}

func (m RootModel) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.ThemeCycle):
		next := theme.Next(theme.Current.Theme.Name)
		theme.SetTheme(next)
		m.statusMsg = fmt.Sprintf("Theme: %s", next.Name)

	case key.Matches(msg, m.keys.Help):
		m.helpVisible = !m.helpVisible
		m.help.ShowAll = m.helpVisible

	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()

	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()

	case key.Matches(msg, m.keys.Top):
		m.cursor = 0
		m.clampCursor()

	case key.Matches(msg, m.keys.Bottom):
		m.cursor = len(m.nodes) - 1
		m.clampCursor()

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadTags

	case key.Matches(msg, m.keys.Activate):
		if tag, ok := m.selected(); ok {
			return m, m.setActive(tag)
		}

	case key.Matches(msg, m.keys.Clear):
		return m, m.setActive(model.Tag{})

	case key.Matches(msg, m.keys.Delete):
		if _, ok := m.selected(); ok {
			m.mode = modeConfirmDelete
		}
	}

	return m, nil
}

func (m RootModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Confirm):
		m.mode = modeBrowse
		if tag, ok := m.selected(); ok {
			return m, m.deleteTag(tag)
		}
	case key.Matches(msg, m.keys.Cancel), msg.String() == "ctrl+c":
		m.mode = modeBrowse
	}
	return m, nil
}

// selected returns the tag under the cursor
func (m RootModel) selected() (model.Tag, bool) {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return model.Tag{}, false
	}
	return m.nodes[m.cursor].Tag, true
}

// descendantCount returns how many rows below the cursor belong to its subtree
func (m RootModel) descendantCount() int {
	if m.cursor < 0 || m.cursor >= len(m.nodes) {
		return 0
	}
	depth := m.nodes[m.cursor].Depth
	n := 0
	for _, node := range m.nodes[m.cursor+1:] {
		if node.Depth <= depth {
			break
		}
		n++
	}
	return n
}

func (m *RootModel) clampCursor() {
	if m.cursor >= len(m.nodes) {
		m.cursor = len(m.nodes) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}

	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if rows > 0 && m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
}

// listHeight is the number of tag rows that fit between header and footer
func (m RootModel) listHeight() int {
	h := m.height - 4
	if m.helpVisible {
		// full help plus the panel border
		h -= 6
	}
	if h < 1 {
		return 1
	}
	return h
}

func (m RootModel) loadTags() tea.Msg {
	nodes, err := m.backend.GetTagTree()
	if err != nil {
		return ErrorMsg{Err: fmt.Errorf("could not load tags: %w", err)}
	}

	counts := make(map[int64]int, len(nodes))
	for i := range nodes {
		n, err := m.backend.CountLinkedNoteFileNames(&nodes[i].Tag)
		if err != nil {
			return ErrorMsg{Err: fmt.Errorf("could not count notes: %w", err)}
		}
		counts[nodes[i].ID] = n
	}

	return TagsLoadedMsg{
		Nodes:    nodes,
		Counts:   counts,
		ActiveID: m.backend.ActiveTagID(),
	}
}

func (m RootModel) setActive(tag model.Tag) tea.Cmd {
	return func() tea.Msg {
		if err := m.backend.SetActiveTag(&tag); err != nil {
			return ErrorMsg{Err: fmt.Errorf("could not change active tag: %w", err)}
		}
		return ActiveTagChangedMsg{Tag: tag}
	}
}

func (m RootModel) deleteTag(tag model.Tag) tea.Cmd {
	return func() tea.Msg {
		if err := m.backend.DeleteTag(&tag); err != nil {
			return ErrorMsg{Err: fmt.Errorf("delete failed: %w", err)}
		}
		return TagDeletedMsg{Tag: tag}
	}
}

// View renders the UI
func (m RootModel) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	sections := []string{m.renderHeader(), m.renderTree()}
	if m.helpVisible {
		sections = append(sections, theme.Current.Styles.Panel.Render(m.help.View(m.keys)))
	}
	sections = append(sections, m.renderFooter())

	return strings.Join(sections, "\n")
}

// renderHeader renders the header bar
func (m RootModel) renderHeader() string {
	styles := theme.Current.Styles
	t := theme.Current.Theme

	title := styles.Header.Render("notetags")

	metaStyle := lipgloss.NewStyle().
		Foreground(t.Subtle).
		Padding(0, 1)
	folder := metaStyle.Render(fmt.Sprintf("[%s] %d tags", m.folder, len(m.nodes)))
	themeIndicator := metaStyle.Render(fmt.Sprintf("theme: %s", t.Name))

	leftSide := lipgloss.JoinHorizontal(lipgloss.Center, title, folder)

	gap := m.width - lipgloss.Width(leftSide) - lipgloss.Width(themeIndicator)
	if gap < 0 {
		gap = 0
	}

	return leftSide + strings.Repeat(" ", gap) + themeIndicator
}

func (m RootModel) renderTree() string {
	styles := theme.Current.Styles
	rows := m.listHeight()

	if !m.loaded {
		return padLines("", rows)
	}
	if len(m.nodes) == 0 {
		return padLines(styles.TagMeta.Render("  No tags yet. Create one with `notetags add <name>`."), rows)
	}

	end := m.offset + rows
	if end > len(m.nodes) {
		end = len(m.nodes)
	}

	lines := make([]string, 0, rows)
	for i := m.offset; i < end; i++ {
		lines = append(lines, m.renderRow(i))
	}

	return padLines(strings.Join(lines, "\n"), rows)
}

func (m RootModel) renderRow(i int) string {
	styles := theme.Current.Styles
	node := m.nodes[i]

	indent := styles.TreeGuide.Render(strings.Repeat("│ ", node.Depth))

	swatch := " "
	if node.HasColor() {
		swatch = lipgloss.NewStyle().Foreground(lipgloss.Color(node.Color)).Render("●")
	}

	nameStyle := styles.TagNormal
	marker := "  "
	if node.ID == m.activeID {
		nameStyle = styles.TagActive
		marker = "* "
	}
	if i == m.cursor {
		nameStyle = nameStyle.Inherit(styles.TagCursor)
	}

	meta := styles.TagMeta.Render(fmt.Sprintf(" (%d)", m.counts[node.ID]))

	return marker + indent + swatch + " " + nameStyle.Render(node.Name) + meta
}

// renderFooter renders the footer/status bar
func (m RootModel) renderFooter() string {
	styles := theme.Current.Styles

	key := func(k, desc string) string {
		return styles.HelpKey.Render(k) + styles.HelpDesc.Render(" "+desc)
	}
	sep := styles.HelpSeparator.Render(" │ ")

	var statusLine string
	switch {
	case m.mode == modeConfirmDelete:
		tag, _ := m.selected()
		prompt := fmt.Sprintf("Delete %q", tag.Name)
		if n := m.descendantCount(); n > 0 {
			prompt += fmt.Sprintf(" and %d child tags", n)
		}
		statusLine = styles.Warning.Render(prompt + "? ") + key("y", "yes") + sep + key("n", "no")
	case m.errorMsg != "":
		statusLine = styles.Error.Render(m.errorMsg)
	case m.statusMsg != "":
		statusLine = styles.Status.Render(m.statusMsg)
	}

	hints := key("j/k", "move") + sep +
		key("enter", "activate") + sep +
		key("c", "clear") + sep +
		key("d", "delete") + sep +
		key("r", "reload") + sep +
		key("?", "help") + sep +
		key("q", "quit")

	return statusLine + "\n" + styles.Footer.Render(hints)
}

func padLines(s string, rows int) string {
	n := strings.Count(s, "\n") + 1
	if n < rows {
		s += strings.Repeat("\n", rows-n)
	}
	return s
}
