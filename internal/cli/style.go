package cli

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

var (
	colorGreen = lipgloss.Color("#8ec07c")
	colorRed   = lipgloss.Color("#fb4934")
	colorDim   = lipgloss.Color("#928374")
	colorBold  = lipgloss.Color("#ebdbb2")
)

var (
	styleOK   = lipgloss.NewStyle().Foreground(colorGreen)
	styleFail = lipgloss.NewStyle().Foreground(colorRed)
	styleDim  = lipgloss.NewStyle().Foreground(colorDim)
	styleBold = lipgloss.NewStyle().Foreground(colorBold).Bold(true)
)

// colorEnabled reports whether w is a terminal that should get styled output.
// NO_COLOR disables styling everywhere.
func colorEnabled(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (f *OutputFormatter) render(style lipgloss.Style, text string) string {
	if !f.Color {
		return text
	}
	return style.Render(text)
}

// OK renders a success marker line such as "✓ Grammar valid".
func (f *OutputFormatter) OK(text string) string {
	return f.render(styleOK, "✓ "+text)
}

// Fail renders a failure marker line such as "✗ Validation failed".
func (f *OutputFormatter) Fail(text string) string {
	return f.render(styleFail, "✗ "+text)
}

// Dim renders secondary text.
func (f *OutputFormatter) Dim(text string) string {
	return f.render(styleDim, text)
}

// Bold renders emphasised text.
func (f *OutputFormatter) Bold(text string) string {
	return f.render(styleBold, text)
}
