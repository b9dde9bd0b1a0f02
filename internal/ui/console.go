// Package ui renders the interactive chat console: the startup banner, the
// input prompt, answers with their source list and error notices.
package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4285F4")).
			Bold(true)

	answerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#E8E8E8"))

	sourceStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#808080")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EA4335")).
			Bold(true)

	bannerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#34A853")).
			Bold(true)
)

// Console is a line-oriented terminal front end.
type Console struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewConsole creates a Console reading from in and writing to out. Either
// may be nil when only one direction is exercised.
func NewConsole(in io.Reader, out io.Writer) *Console {
	var scanner *bufio.Scanner
	if in != nil {
		scanner = bufio.NewScanner(in)
		scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	}
	return &Console{scanner: scanner, out: out}
}

// Print writes the arguments without a trailing newline.
func (c *Console) Print(args ...any) {
	_, _ = fmt.Fprint(c.out, args...)
}

// Println writes the arguments followed by a newline.
func (c *Console) Println(args ...any) {
	_, _ = fmt.Fprintln(c.out, args...)
}

// Printf writes a formatted string.
func (c *Console) Printf(format string, args ...any) {
	_, _ = fmt.Fprintf(c.out, format, args...)
}

// Scan reads the next input line. It returns false at end of input.
func (c *Console) Scan() (string, bool) {
	if c.scanner == nil || !c.scanner.Scan() {
		return "", false
	}
	return c.scanner.Text(), true
}

// Banner prints the startup banner with the active model.
func (c *Console) Banner(version, model string) {
	c.Println(bannerStyle.Render("DocSage " + version))
	c.Println(sourceStyle.Render("Model: " + model + " | type 'quit' or 'exit' to leave"))
	c.Println()
}

// Prompt prints the input prompt without a newline.
func (c *Console) Prompt() {
	c.Print(promptStyle.Render("You: "))
}

// Answer prints the assistant's reply and, when present, the documents it
// drew on. Source names lose their .txt extension for readability.
func (c *Console) Answer(text string, sources []string) {
	c.Println(answerStyle.Render("Assistant: " + text))
	if len(sources) > 0 {
		names := make([]string, len(sources))
		for i, src := range sources {
			names[i] = strings.TrimSuffix(src, ".txt")
		}
		c.Println(sourceStyle.Render("Explore the following document(s): " + strings.Join(names, ", ")))
	}
	c.Println()
}

// Error prints a user-facing error notice.
func (c *Console) Error(msg string) {
	c.Println(errorStyle.Render("Error: " + msg))
	c.Println()
}

// Goodbye prints the exit message.
func (c *Console) Goodbye() {
	c.Println(sourceStyle.Render("Goodbye."))
}
