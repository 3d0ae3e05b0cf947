package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// prompter reads one answer per line. Once input is exhausted every read
// returns io.EOF.
type prompter struct {
	in  *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: bufio.NewReader(in), out: out}
}

func (p *prompter) printf(format string, args ...any) {
	fmt.Fprintf(p.out, format, args...)
}

func (p *prompter) println(args ...any) {
	fmt.Fprintln(p.out, args...)
}

// line prints prompt and returns the answer without its line ending.
func (p *prompter) line(prompt string) (string, error) {
	p.printf("%s", prompt)
	s, err := p.in.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && s != "" {
			return strings.TrimRight(s, "\r\n"), nil
		}
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}

// trimmed is line with surrounding whitespace removed.
func (p *prompter) trimmed(prompt string) (string, error) {
	s, err := p.line(prompt)
	return strings.TrimSpace(s), err
}

// integer asks until the answer parses as an integer.
func (p *prompter) integer(prompt string) (int, error) {
	for {
		s, err := p.trimmed(prompt)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil {
			p.println("Please enter a valid integer.")
			continue
		}
		return n, nil
	}
}

// number asks until the answer parses as a number within [minimum, maximum].
func (p *prompter) number(prompt string, minimum, maximum float64) (float64, error) {
	for {
		s, err := p.trimmed(prompt)
		if err != nil {
			return 0, err
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			p.println("Please enter a valid number.")
			continue
		}
		if !(minimum <= v && v <= maximum) {
			p.printf("Value must be between %.1f and %.1f.\n", minimum, maximum)
			continue
		}
		return v, nil
	}
}
