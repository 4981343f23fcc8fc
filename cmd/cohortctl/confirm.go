package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/dtroode/cohort-migrator/internal/guard"
)

var errNoTerminal = errors.New("confirmation needs an interactive terminal, pass --confirm to supply the phrase")

// newConfirmer returns the phrase given on the command line, or a prompt on
// the terminal when none was given.
func newConfirmer(in io.Reader, out io.Writer, phrase string) guard.Confirmer {
	if phrase != "" {
		return guard.Phrase(phrase)
	}
	return &terminalConfirmer{in: in, out: out, isTerminal: isTerminal}
}

type terminalConfirmer struct {
	in         io.Reader
	out        io.Writer
	isTerminal func(io.Reader) bool
}

func (t *terminalConfirmer) Confirm(_ context.Context, p guard.Prompt) (string, error) {
	if !t.isTerminal(t.in) {
		return "", errNoTerminal
	}

	if p.Summary != "" {
		fmt.Fprintln(t.out, p.Summary)
	}
	fmt.Fprintf(t.out, "%s is destructive and will run as %s.\nType %q to continue: ", p.Operation, p.Actor, p.Phrase)

	line, err := bufio.NewReader(t.in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read confirmation: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func isTerminal(r io.Reader) bool {
	file, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
