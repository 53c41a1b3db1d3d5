package stats

import (
	"os"

	"golang.org/x/term"
)

const (
	sparkLabelWidth     = 7
	minSparkWidth       = 10
	terminalWidthBackup = 80
)

// SparkWidthFor returns the sparkline width that fits a line of totalWidth
// columns. totalWidth <= 0 means use the terminal width.
func SparkWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		totalWidth = TerminalWidth()
	}
	width := totalWidth - sparkLabelWidth
	if width < minSparkWidth {
		width = minSparkWidth
	}
	return width
}

// TerminalWidth returns the stdout width, or 80 when stdout is not a terminal.
func TerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}
