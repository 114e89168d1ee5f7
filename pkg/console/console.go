// Package console implements the line-oriented operator prompts.
package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Console reads operator input line by line and writes prompts.
type Console struct {
	in          *bufio.Reader
	out         io.Writer
	interactive bool
}

// New creates a console over in and out. Decoration such as banners is only
// printed when in is a terminal.
func New(in io.Reader, out io.Writer) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		interactive: isTerminal(in),
	}
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Interactive reports whether input comes from a terminal.
func (c *Console) Interactive() bool {
	return c.interactive
}

// readLine returns the next line without its line ending. At end of input the
// final partial line is returned together with io.EOF.
func (c *Console) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	return line, err
}

// ReadPaste collects a pasted block that ends with two consecutive blank
// lines or end of input. Blank lines inside the block are dropped and the
// remaining lines are joined with single spaces.
func (c *Console) ReadPaste() (string, error) {
	var lines []string
	blank := 0
	for blank < 2 {
		line, err := c.readLine()
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
			blank = 0
		} else if err == nil {
			blank++
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to read input: %w", err)
		}
	}
	return strings.Join(lines, " "), nil
}

// Prompt prints label and returns the trimmed answer. End of input counts
// as an empty answer.
func (c *Console) Prompt(label string) (string, error) {
	fmt.Fprint(c.out, label)
	line, err := c.readLine()
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// PromptDefault is Prompt with a fallback for an empty answer.
func (c *Console) PromptDefault(label, def string) (string, error) {
	answer, err := c.Prompt(label)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// Printf writes formatted text.
func (c *Console) Printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

// Println writes a line.
func (c *Console) Println(args ...any) {
	fmt.Fprintln(c.out, args...)
}

// Banner prints a framed title on terminals and just the title otherwise.
func (c *Console) Banner(title string) {
	if !c.interactive {
		fmt.Fprintln(c.out, title)
		return
	}
	rule := strings.Repeat("=", 70)
	fmt.Fprintln(c.out, rule)
	fmt.Fprintln(c.out, title)
	fmt.Fprintln(c.out, rule)
}

// Check renders a presence marker.
func Check(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}
