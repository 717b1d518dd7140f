// Package tui implements the Bubble Tea review browser.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/revlog/internal/derive"
	"github.com/sprite-ai/revlog/internal/model"
	"github.com/sprite-ai/revlog/internal/render"
)

// Model is the top-level Bubble Tea model for revlog.
type Model struct {
	review *model.Review
	state  *derive.State

	// Entries shown in the list, in append order. Hidden activities are
	// filtered out unless showAll is set.
	items []model.Flat

	// UI state
	width  int
	height int

	// Activity list
	index int // currently selected entry

	// Detail pane
	detailOffset int
	detailLines  []string

	// View toggles
	showAll  bool
	showDiff bool
	showHelp bool
}

// New creates a TUI model for a review log. Derived state is computed
// once up front; the log is never mutated by the browser.
func New(r *model.Review) Model {
	m := Model{
		review: r,
		state:  derive.Run(r),
	}
	m.updateItems()
	m.updateDetail()
	return m
}

func (m *Model) updateItems() {
	m.items = nil
	for _, f := range m.review.Flatten() {
		if !m.showAll && !m.state.Visible(f.Activity.ID) {
			continue
		}
		m.items = append(m.items, f)
	}
	if m.index >= len(m.items) {
		m.index = len(m.items) - 1
	}
	if m.index < 0 {
		m.index = 0
	}
}

func (m *Model) updateDetail() {
	m.detailOffset = 0
	if len(m.items) == 0 {
		m.detailLines = nil
		return
	}
	m.detailLines = renderDetail(m.items[m.index], m.state)
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, keys.Down):
			if m.index < len(m.items)-1 {
				m.index++
				m.updateDetail()
			}

		case key.Matches(msg, keys.Up):
			if m.index > 0 {
				m.index--
				m.updateDetail()
			}

		case key.Matches(msg, keys.ScrollDown):
			if m.detailOffset < len(m.detailLines)-1 {
				m.detailOffset++
			}

		case key.Matches(msg, keys.ScrollUp):
			if m.detailOffset > 0 {
				m.detailOffset--
			}

		case key.Matches(msg, keys.ToggleAll):
			m.showAll = !m.showAll
			m.updateItems()
			m.updateDetail()

		case key.Matches(msg, keys.Diff):
			if m.review.AgentContext != nil && m.review.AgentContext.Diff != "" {
				m.showDiff = !m.showDiff
				m.detailOffset = 0
			}

		case key.Matches(msg, keys.Help):
			m.showHelp = !m.showHelp
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	if m.showHelp {
		return m.renderHelp()
	}

	// Layout: activity list on left, detail on right
	listWidth := m.listWidth()
	detailWidth := m.width - listWidth - 1 // -1 for gap

	list := m.renderList(listWidth, m.height-2)
	detail := m.renderDetailPane(detailWidth, m.height-2)

	main := lipgloss.JoinHorizontal(lipgloss.Top, list, " ", detail)

	statusBar := m.renderStatusBar()

	return lipgloss.JoinVertical(lipgloss.Left, main, statusBar)
}

func (m Model) listWidth() int {
	w := m.width / 3
	if w < 28 {
		w = 28
	}
	if w > 48 {
		w = 48
	}
	return w
}

func itemLabel(f model.Flat) string {
	a := f.Activity
	label := string(a.Category)
	if a.Author != nil && a.Author.Name != "" {
		label += " " + a.Author.Name
	}
	if a.Location != nil && a.Location.File != "" {
		label += " " + a.Location.File
	}
	if f.Parent != nil {
		label = "↳ " + label
	}
	return label
}

func (m Model) renderList(width, height int) string {
	var b strings.Builder

	for i, f := range m.items {
		label := itemLabel(f)

		maxLabel := width - 6
		if maxLabel > 0 && len(label) > maxLabel {
			label = label[:maxLabel-1] + "…"
		}

		var style lipgloss.Style
		switch {
		case i == m.index:
			style = itemSelectedStyle
		case !m.state.Visible(f.Activity.ID):
			style = itemHiddenStyle
		case m.state.Resolved(f.Activity.ID):
			style = itemResolvedStyle
		default:
			style = itemStyle
		}

		b.WriteString(style.Width(width - 4).Render(label))
		if i < len(m.items)-1 {
			b.WriteByte('\n')
		}
	}

	innerHeight := height - 2 // borders
	return listStyle.Width(width).Height(innerHeight).Render(b.String())
}

func (m Model) renderDetailPane(width, height int) string {
	innerHeight := height - 2

	if len(m.items) == 0 {
		return detailViewStyle.Width(width).Height(innerHeight).Render("No activities")
	}

	lines := m.detailLines
	header := detailHeaderStyle.Render(m.items[m.index].Activity.ID)
	if m.showDiff {
		lines = strings.Split(render.Diff(m.review.AgentContext.Diff), "\n")
		header = detailHeaderStyle.Render("agent context diff")
	}

	visibleLines := innerHeight - 2 // header takes some space
	if visibleLines < 1 {
		visibleLines = 1
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteByte('\n')

	end := m.detailOffset + visibleLines
	if end > len(lines) {
		end = len(lines)
	}
	for i := m.detailOffset; i < end; i++ {
		b.WriteString(lines[i])
		if i < end-1 {
			b.WriteByte('\n')
		}
	}

	return detailViewStyle.Width(width).Height(innerHeight).Render(b.String())
}

func categoryStyle(c model.Category) lipgloss.Style {
	switch {
	case c == model.CategoryIssue, c == model.CategorySecurity:
		return categoryIssueStyle
	case c == model.CategoryPraise, c == model.CategoryApproved, c == model.CategoryResolved:
		return categoryPraiseStyle
	case c.IsCommentary():
		return categoryCommentStyle
	case c.IsStatus(), c == model.CategoryChangesRequested:
		return categoryStatusStyle
	case c == model.CategoryMention, c == model.CategoryAssigned:
		return categoryMentionStyle
	}
	return categoryOtherStyle
}

func renderDetail(f model.Flat, state *derive.State) []string {
	a := f.Activity
	var lines []string

	add := func(label, value string) {
		if value == "" {
			return
		}
		lines = append(lines, fieldLabelStyle.Render(label+": ")+value)
	}

	lines = append(lines, categoryStyle(a.Category).Render(string(a.Category)))
	if a.Author != nil {
		who := a.Author.Name
		if a.Author.Type == "agent" && a.Author.Model != "" {
			who += fmt.Sprintf(" (%s)", a.Author.Model)
		}
		add("author", who)
	}
	if a.Created != nil {
		add("created", a.Created.Format("2006-01-02 15:04:05"))
	}
	if a.Location != nil && a.Location.File != "" {
		loc := a.Location.File
		for _, lr := range a.Location.Lines {
			loc += fmt.Sprintf(" [%d-%d]", lr.Start, lr.End)
		}
		add("location", loc)
	}
	if a.Severity != "" {
		add("severity", string(a.Severity))
	}
	if len(a.Supersedes) > 0 {
		add("supersedes", strings.Join(a.Supersedes, ", "))
	}
	if len(a.Addresses) > 0 {
		add("addresses", strings.Join(a.Addresses, ", "))
	}
	if len(a.Mentions) > 0 {
		add("mentions", strings.Join(a.Mentions, ", "))
	}
	if state.Resolved(a.ID) {
		lines = append(lines, itemResolvedStyle.Render("✓ resolved"))
	}
	if !state.Visible(a.ID) {
		lines = append(lines, itemHiddenStyle.Render("hidden from derived view"))
	}

	if a.Content != "" {
		lines = append(lines, "")
		if a.Category == model.CategorySuggestion && a.Location != nil && a.Location.File != "" {
			for _, hl := range render.HighlightLines(a.Location.File, strings.Split(a.Content, "\n")) {
				var sb strings.Builder
				for _, tok := range hl.Tokens {
					if tok.Color != "" {
						sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
					} else {
						sb.WriteString(tok.Text)
					}
				}
				lines = append(lines, sb.String())
			}
		} else {
			lines = append(lines, strings.Split(a.Content, "\n")...)
		}
	}

	if len(a.Replies) > 0 {
		lines = append(lines, "", fieldLabelStyle.Render(fmt.Sprintf("%d replies", len(a.Replies))))
	}

	return lines
}

func (m Model) renderStatusBar() string {
	left := fmt.Sprintf(" %s", m.state.Status)
	if len(m.items) > 0 {
		left += fmt.Sprintf("  Activity %d/%d", m.index+1, len(m.items))
	}
	if len(m.state.Warnings) > 0 {
		left += "  " + warningStyle.Render(fmt.Sprintf("%d warnings", len(m.state.Warnings)))
	}

	mode := "visible"
	if m.showAll {
		mode = "all"
	}

	right := mode + "  ? help "
	if len(m.state.Reviewers) > 0 {
		right = "reviewers: " + strings.Join(m.state.Reviewers, ", ") + "  " + right
	}

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}

	return statusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", gap) + right)
}

func (m Model) renderHelp() string {
	var b strings.Builder

	b.WriteString(detailHeaderStyle.Render("revlog — Keyboard Shortcuts"))
	b.WriteString("\n\n")

	helpItems := []struct{ key, desc string }{
		{"↑/k", "Previous activity"},
		{"↓/j", "Next activity"},
		{"]", "Scroll detail down"},
		{"[", "Scroll detail up"},
		{"a", "Toggle hidden activities"},
		{"d", "Toggle agent context diff"},
		{"?", "Toggle this help"},
		{"q", "Quit"},
	}

	for _, item := range helpItems {
		b.WriteString(fmt.Sprintf("  %s  %s\n",
			helpKeyStyle.Width(12).Render(item.key),
			item.desc,
		))
	}

	b.WriteString("\n")
	b.WriteString(helpBarStyle.Render("Press ? to close help"))

	return b.String()
}

// Run starts the TUI application.
func Run(r *model.Review) error {
	m := New(r)
	p := tea.NewProgram(m, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
