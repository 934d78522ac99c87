// Package terminal provides prompts and line clearing for interactive commands.
package terminal

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// Width returns the terminal width of stdout, or 80 when it is not a terminal.
func Width() int {
	if width, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && width > 0 {
		return width
	}
	return 80
}

// ClearPreviousLines removes an echoed prompt and its answer from stdout.
// textLength is the number of characters printed (prompt + input); one extra
// line is cleared for the newline produced by Enter.
func ClearPreviousLines(textLength int) {
	if !IsInteractive() {
		return
	}
	clearLines(os.Stdout, linesFor(textLength, Width())+1)
}

// linesFor reports how many rows textLength characters occupy at width.
func linesFor(textLength, width int) int {
	if width <= 0 {
		width = 80
	}
	n := (textLength + width - 1) / width
	if n < 1 {
		n = 1
	}
	return n
}

func clearLines(w io.Writer, n int) {
	for i := 0; i < n; i++ {
		fmt.Fprint(w, "\r\x1b[2K")
		if i < n-1 {
			fmt.Fprint(w, "\x1b[1A")
		}
	}
}
