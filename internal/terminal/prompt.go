package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a secret must be typed but stdin is not a terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

// IsInteractive reports whether both stdin and stdout are terminals.
func IsInteractive() bool {
	return isTTY(os.Stdin) && isTTY(os.Stdout)
}

func isTTY(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Prompter reads answers from a reader. It is shared by the shell so that
// buffered input is not lost between prompts.
type Prompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewPrompter reads from in and writes prompts to out.
func NewPrompter(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{in: bufio.NewReader(in), out: out}
}

// Stdio is a Prompter over the process's stdin and stdout.
func Stdio() *Prompter { return NewPrompter(os.Stdin, os.Stdout) }

// ReadLine prints prompt and returns the trimmed answer. io.EOF is returned
// only when nothing was typed before the input ended.
func (p *Prompter) ReadLine(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	line, err := p.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// ReadSecret prints prompt and reads a value without echo. When stdin is not a
// terminal the value is read as a plain line so scripts can pipe it in.
func (p *Prompter) ReadSecret(prompt string) (string, error) {
	if !isTTY(os.Stdin) {
		return p.ReadLine(prompt)
	}
	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(p.out)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b)), nil
}
