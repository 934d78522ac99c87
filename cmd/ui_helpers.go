package cmd

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"atomicgo.dev/cursor"
	"github.com/mattn/go-isatty"

	"askdb/cli/internal/terminal"
)

var spinnerFrames = []string{"|", "/", "-", "\\"}

var (
	prompterOnce sync.Once
	prompter     *terminal.Prompter
)

// promptIn returns the process-wide stdin prompter so buffered input survives
// between prompts.
func promptIn() *terminal.Prompter {
	prompterOnce.Do(func() { prompter = terminal.Stdio() })
	return prompter
}

// startInlineSpinner shows frames followed by text on one line of w until the
// returned function is called. Nothing is drawn when w is not a terminal.
func startInlineSpinner(w io.Writer, text string, frames []string, interval time.Duration) func() {
	f, ok := w.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return func() {}
	}
	cursor.Hide()
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		i := 0
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			line := fmt.Sprintf("%s %s", frames[i%len(frames)], text)
			select {
			case <-stop:
				fmt.Fprintf(w, "\r%*s\r", len(line), "")
				return
			case <-ticker.C:
				fmt.Fprintf(w, "\r%s", line)
				i++
			}
		}
	}()
	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			wg.Wait()
			cursor.Show()
		})
	}
}
