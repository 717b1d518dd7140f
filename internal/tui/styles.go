package tui

import "github.com/charmbracelet/lipgloss"

// Color palette.
var (
	colorRed       = lipgloss.Color("#ff5555")
	colorGreen     = lipgloss.Color("#50fa7b")
	colorYellow    = lipgloss.Color("#f1fa8c")
	colorBlue      = lipgloss.Color("#8be9fd")
	colorPurple    = lipgloss.Color("#bd93f9")
	colorDim       = lipgloss.Color("#6272a4")
	colorBgLight   = lipgloss.Color("#343746")
	colorFg        = lipgloss.Color("#f8f8f2")
	colorOrange    = lipgloss.Color("#ffb86c")
	colorBorder    = lipgloss.Color("#44475a")
	colorHighlight = lipgloss.Color("#44475a")
)

// Style definitions.
var (
	// Activity list styles
	listStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	itemStyle = lipgloss.NewStyle().
			Foreground(colorFg)

	itemSelectedStyle = lipgloss.NewStyle().
				Foreground(colorFg).
				Background(colorHighlight).
				Bold(true)

	itemHiddenStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Strikethrough(true)

	itemResolvedStyle = lipgloss.NewStyle().
				Foreground(colorGreen)

	// Detail pane styles
	detailViewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder).
			Padding(0, 1)

	detailHeaderStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true).
				Padding(0, 0, 1, 0)

	fieldLabelStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	warningStyle = lipgloss.NewStyle().
			Foreground(colorRed)

	// Category styles
	categoryIssueStyle = lipgloss.NewStyle().
				Foreground(colorRed).
				Bold(true)

	categoryPraiseStyle = lipgloss.NewStyle().
				Foreground(colorGreen).
				Bold(true)

	categoryCommentStyle = lipgloss.NewStyle().
				Foreground(colorPurple).
				Bold(true)

	categoryStatusStyle = lipgloss.NewStyle().
				Foreground(colorYellow).
				Bold(true)

	categoryMentionStyle = lipgloss.NewStyle().
				Foreground(colorOrange).
				Bold(true)

	categoryOtherStyle = lipgloss.NewStyle().
				Foreground(colorBlue).
				Bold(true)

	// Status bar
	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorFg).
			Background(colorBgLight).
			Padding(0, 1)

	// Help bar
	helpBarStyle = lipgloss.NewStyle().
			Foreground(colorDim)

	helpKeyStyle = lipgloss.NewStyle().
			Foreground(colorYellow)
)
