// Package render produces styled terminal output for review logs. It
// is shared by the show command and the interactive browser.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/sprite-ai/revlog/internal/derive"
	"github.com/sprite-ai/revlog/internal/model"
)

// Color palette.
var (
	colorRed    = lipgloss.Color("#ff5555")
	colorGreen  = lipgloss.Color("#50fa7b")
	colorYellow = lipgloss.Color("#f1fa8c")
	colorBlue   = lipgloss.Color("#8be9fd")
	colorPurple = lipgloss.Color("#bd93f9")
	colorDim    = lipgloss.Color("#6272a4")
	colorFg     = lipgloss.Color("#f8f8f2")
	colorOrange = lipgloss.Color("#ffb86c")
)

// Style definitions.
var (
	titleStyle = lipgloss.NewStyle().
			Foreground(colorPurple).
			Bold(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(colorBlue)

	dimStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	authorStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Bold(true)

	contentStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			PaddingLeft(2)

	resolvedStyle = lipgloss.NewStyle().
			Foreground(colorGreen)

	hiddenStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Strikethrough(true)
)

func categoryStyle(c model.Category) lipgloss.Style {
	var color lipgloss.Color
	switch {
	case c == model.CategorySecurity, c == model.CategoryIssue:
		color = colorRed
	case c == model.CategoryPraise, c == model.CategoryApproved, c == model.CategoryResolved:
		color = colorGreen
	case c == model.CategorySuggestion, c == model.CategoryQuestion:
		color = colorPurple
	case c.IsStatus(), c == model.CategoryChangesRequested:
		color = colorYellow
	case c == model.CategoryRetract, c == model.CategoryIgnored:
		color = colorDim
	case c == model.CategoryMention, c == model.CategoryAssigned:
		color = colorOrange
	default:
		color = colorBlue
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}

// Review renders a full review report: subject, derived state, and the
// activity log. Hidden (superseded/retracted) activities appear only
// when showAll is set, struck through.
func Review(r *model.Review, state *derive.State, showAll bool) string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(subjectTitle(r.Subject)))
	b.WriteString("\n")
	b.WriteString(headerStyle.Render(fmt.Sprintf("status: %s", state.Status)))
	if len(state.Reviewers) > 0 {
		b.WriteString(dimStyle.Render("  reviewers: " + strings.Join(state.Reviewers, ", ")))
	}
	b.WriteString("\n")
	if len(state.Warnings) > 0 {
		for _, w := range state.Warnings {
			b.WriteString(lipgloss.NewStyle().Foreground(colorRed).Render("warning: " + w))
			b.WriteString("\n")
		}
	}
	b.WriteString("\n")

	for _, f := range r.Flatten() {
		visible := state.Visible(f.Activity.ID)
		if !visible && !showAll {
			continue
		}
		indent := ""
		if f.Parent != nil {
			indent = "  "
		}
		line := ActivityLine(f.Activity, state)
		if !visible {
			line = hiddenStyle.Render(f.Activity.ID + " " + string(f.Activity.Category))
		}
		b.WriteString(indent + line + "\n")
		if visible && f.Activity.Content != "" {
			b.WriteString(contentBlock(f.Activity, indent))
		}
	}
	return b.String()
}

// ActivityLine renders the one-line header for an activity.
func ActivityLine(a *model.Activity, state *derive.State) string {
	parts := []string{
		dimStyle.Render(a.ID),
		categoryStyle(a.Category).Render(string(a.Category)),
	}
	if a.Author != nil {
		name := a.Author.Name
		if a.Author.Type == "agent" {
			name += " (agent)"
		}
		parts = append(parts, authorStyle.Render(name))
	}
	if a.Location != nil && a.Location.File != "" {
		parts = append(parts, dimStyle.Render(locationLabel(a.Location)))
	}
	if a.Created != nil {
		parts = append(parts, dimStyle.Render(a.Created.Format("2006-01-02 15:04")))
	}
	if state != nil && state.Resolved(a.ID) {
		parts = append(parts, resolvedStyle.Render("✓ resolved"))
	}
	return strings.Join(parts, " ")
}

func contentBlock(a *model.Activity, indent string) string {
	lines := strings.Split(a.Content, "\n")

	// Suggestion bodies are code: highlight against the target file's
	// language.
	if a.Category == model.CategorySuggestion && a.Location != nil && a.Location.File != "" {
		var b strings.Builder
		for _, hl := range HighlightLines(a.Location.File, lines) {
			b.WriteString(indent + "  ")
			for _, tok := range hl.Tokens {
				if tok.Color != "" {
					b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
				} else {
					b.WriteString(tok.Text)
				}
			}
			b.WriteString("\n")
		}
		return b.String()
	}

	var b strings.Builder
	for _, line := range lines {
		b.WriteString(contentStyle.Render(indent+line) + "\n")
	}
	return b.String()
}

// Diff renders the agent-context diff with syntax highlighting.
func Diff(diff string) string {
	lines := strings.Split(strings.TrimRight(diff, "\n"), "\n")
	var b strings.Builder
	for _, hl := range HighlightLines("context.diff", lines) {
		for _, tok := range hl.Tokens {
			if tok.Color != "" {
				b.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(tok.Color)).Render(tok.Text))
			} else {
				b.WriteString(tok.Text)
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}

func subjectTitle(s *model.Subject) string {
	if s == nil {
		return "review"
	}
	if s.Name != "" {
		return fmt.Sprintf("%s (%s)", s.Name, s.Type)
	}
	switch {
	case s.ProviderRef != "" && s.Repo != "":
		return fmt.Sprintf("%s#%s (%s)", s.Repo, s.ProviderRef, s.Type)
	case s.Path != "":
		return fmt.Sprintf("%s (%s)", s.Path, s.Type)
	case s.Commit != "":
		return fmt.Sprintf("%s (%s)", s.Commit, s.Type)
	}
	return s.Type
}

func locationLabel(loc *model.Location) string {
	label := loc.File
	if len(loc.Lines) > 0 {
		first := loc.Lines[0]
		if first.Start == first.End {
			label = fmt.Sprintf("%s:%d", label, first.Start)
		} else {
			label = fmt.Sprintf("%s:%d-%d", label, first.Start, first.End)
		}
	}
	if loc.Deleted {
		label += " (deleted)"
	}
	return label
}
