// Package ui provides terminal output helpers for the pdfproc CLI.
package ui

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	noColorFlag bool
	quietFlag   bool
)

// InitUI applies the colour and quiet settings. Colour is also disabled when
// stderr is not a terminal.
func InitUI(noColor, quiet bool) {
	noColorFlag = noColor
	quietFlag = quiet

	if noColor || !IsTerminal() {
		color.NoColor = true
	}
}

// IsTerminal reports whether stderr is attached to a terminal.
func IsTerminal() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Interactive reports whether spinners and progress bars should be drawn.
func Interactive() bool {
	return !quietFlag && IsTerminal()
}
