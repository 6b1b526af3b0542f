package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// StdinPrompter asks questions on Out and reads answers from In.
type StdinPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewStdinPrompter creates a prompter reading from in.
func NewStdinPrompter(in io.Reader, out io.Writer) *StdinPrompter {
	return &StdinPrompter{in: bufio.NewReader(in), out: out}
}

// Ask prints question and returns the trimmed answer. io.EOF is returned
// when input is closed before a line is entered.
func (p *StdinPrompter) Ask(question string) (string, error) {
	fmt.Fprint(p.out, question)
	line, err := p.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// Confirm asks a yes/no question. "y", "yes", "o" and "oui" count as yes.
func (p *StdinPrompter) Confirm(question string) (bool, error) {
	if !strings.HasSuffix(question, " ") {
		question += " (y/n): "
	}
	answer, err := p.Ask(question)
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "o", "oui":
		return true, nil
	}
	return false, nil
}
