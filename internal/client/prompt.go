package client

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

var errEmptyInput = errors.New("empty input")

// terminalPrompter reads secrets without echo when stdin is a terminal and
// falls back to plain lines otherwise, so input can be piped.
type terminalPrompter struct {
	in     *os.File
	out    io.Writer
	reader *bufio.Reader
}

func newTerminalPrompter() *terminalPrompter {
	return &terminalPrompter{in: os.Stdin, out: os.Stderr, reader: bufio.NewReader(os.Stdin)}
}

func (p *terminalPrompter) Secret(prompt string) (string, error) {
	fd := int(p.in.Fd())
	if !term.IsTerminal(fd) {
		return p.readLine()
	}

	fmt.Fprint(p.out, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(p.out)
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	if len(b) == 0 {
		return "", errEmptyInput
	}
	return string(b), nil
}

func (p *terminalPrompter) Line(prompt string) (string, error) {
	fmt.Fprint(p.out, prompt)
	return p.readLine()
}

func (p *terminalPrompter) readLine() (string, error) {
	line, err := p.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errEmptyInput
	}
	return line, nil
}

// confirmSecret asks twice and fails when the answers differ.
func confirmSecret(p Prompter, prompt string) (string, error) {
	first, err := p.Secret(prompt)
	if err != nil {
		return "", err
	}
	second, err := p.Secret("Repeat " + strings.ToLower(prompt[:1]) + prompt[1:])
	if err != nil {
		return "", err
	}
	if first != second {
		return "", errors.New("inputs do not match")
	}
	return first, nil
}
