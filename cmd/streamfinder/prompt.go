package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// errInputClosed ends an interactive session when stdin runs out.
var errInputClosed = errors.New("input closed")

type promptStyles struct {
	banner lipgloss.Style
	header lipgloss.Style
	index  lipgloss.Style
	label  lipgloss.Style
	link   lipgloss.Style
	warn   lipgloss.Style
}

func newPromptStyles(colorize bool) promptStyles {
	if !colorize {
		plain := lipgloss.NewStyle()
		return promptStyles{banner: plain, header: plain, index: plain, label: plain, link: plain, warn: plain}
	}
	return promptStyles{
		banner: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		header: lipgloss.NewStyle().Bold(true),
		index:  lipgloss.NewStyle().Foreground(lipgloss.Color("6")),
		label:  lipgloss.NewStyle().Faint(true),
		link:   lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("10")),
		warn:   lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
	}
}

// prompter drives the numbered-menu dialogue over arbitrary reader/writer
// pairs so commands stay testable.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
	styles  promptStyles
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{
		scanner: bufio.NewScanner(in),
		out:     out,
		styles:  newPromptStyles(shouldColorize(out)),
	}
}

func (p *prompter) readLine(question string) (string, error) {
	fmt.Fprint(p.out, question)
	if !p.scanner.Scan() {
		fmt.Fprintln(p.out)
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", errInputClosed
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// choose lists options under title and asks for a 1-based selection until a
// valid number is entered.
func (p *prompter) choose(title string, options []string, question string) (int, error) {
	fmt.Fprintln(p.out, p.styles.header.Render(title))
	for i, option := range options {
		fmt.Fprintf(p.out, "%s %s\n", p.styles.index.Render(fmt.Sprintf("[%d]", i+1)), option)
	}
	fmt.Fprintln(p.out)
	for {
		answer, err := p.readLine(question)
		if err != nil {
			return 0, err
		}
		if n, ok := parseSelection(answer, len(options)); ok {
			return n - 1, nil
		}
		fmt.Fprintln(p.out, p.styles.warn.Render(fmt.Sprintf("Invalid input. Please enter a number between 1 and %d.", len(options))))
	}
}

// confirm returns true only for y or Y.
func (p *prompter) confirm(question string) (bool, error) {
	answer, err := p.readLine(question)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(answer, "y"), nil
}

func parseSelection(answer string, limit int) (int, bool) {
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > limit {
		return 0, false
	}
	return n, true
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
