// Package render turns assistant answers (markdown) into terminal output.
package render

import (
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

const defaultWidth = 80

// Markdown renders content with the given style ("dark", "light", "notty") wrapped at width.
func Markdown(content string, style string, width int) (string, error) {
	if width <= 0 {
		width = defaultWidth
	}
	if style == "" {
		style = "dark"
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath(style),
		glamour.WithWordWrap(width),
		glamour.WithEmoji(),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", err
	}

	out, err := r.Render(content)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(out, "\n") + "\n", nil
}

// ForStdout renders for the current stdout: styled and sized on a terminal,
// plain "notty" output otherwise. On render errors the raw content is returned.
func ForStdout(content string) string {
	style, width := "notty", defaultWidth
	if IsTerminal() {
		style = "dark"
		width = TerminalWidth()
	}

	out, err := Markdown(content, style, width)
	if err != nil {
		return content
	}
	return out
}

// TerminalWidth returns the stdout width, or 80 when unknown.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return defaultWidth
	}
	if width > 120 {
		return 120
	}
	return width
}

func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}
