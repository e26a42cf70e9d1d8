package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorPrimary = lipgloss.Color("#16a34a")
	colorAccent  = lipgloss.Color("#f59e0b")
	colorUser    = lipgloss.Color("#7aa2f7")
	colorText    = lipgloss.Color("#c0caf5")
	colorTextDim = lipgloss.Color("#565f89")
	colorBorder  = lipgloss.Color("#3b4261")
)

var (
	headerStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorPrimary).
			Padding(0, 1)

	titleStyle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	subtitleStyle = lipgloss.NewStyle().Foreground(colorText)
	topicStyle    = lipgloss.NewStyle().Foreground(colorAccent)
	hintStyle     = lipgloss.NewStyle().Foreground(colorTextDim)
	noticeStyle   = lipgloss.NewStyle().Foreground(colorAccent).Italic(true)
	loadingStyle  = lipgloss.NewStyle().Foreground(colorPrimary)

	userLabelStyle  = lipgloss.NewStyle().Foreground(colorUser).Bold(true)
	userBubbleStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorUser).
			Foreground(colorText).
			Padding(0, 1)

	assistantLabelStyle  = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(0, 1)

	inputStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(colorBorder)
)
