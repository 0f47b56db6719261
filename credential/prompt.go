package credential

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// DefaultLabel is printed before reading the passphrase.
const DefaultLabel = "Password: "

// TerminalPrompter reads a passphrase from In. When In is a terminal the
// input is not echoed; otherwise a single line is read, which makes piping
// a passphrase possible.
type TerminalPrompter struct {
	// In is the input stream. Defaults to os.Stdin.
	In io.Reader

	// Out receives the label. Defaults to os.Stderr.
	Out io.Writer

	// Label is printed before reading. Defaults to DefaultLabel.
	Label string
}

type promptResult struct {
	secret []byte
	err    error
}

// Prompt implements Prompter. Cancelling ctx (for example on SIGINT)
// returns ErrUserCancelled and restores the terminal state.
func (p *TerminalPrompter) Prompt(ctx context.Context) ([]byte, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}

	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	label := p.Label
	if label == "" {
		label = DefaultLabel
	}

	fmt.Fprint(out, label)

	read, restore := terminalReader(in, out)

	done := make(chan promptResult, 1)
	go func() {
		secret, err := read()
		done <- promptResult{secret: secret, err: err}
	}()

	select {
	case <-ctx.Done():
		restore()
		fmt.Fprintln(out)

		return nil, ErrUserCancelled

	case res := <-done:
		if res.err != nil {
			clear(res.secret)

			if errors.Is(res.err, io.EOF) {
				return nil, ErrUserCancelled
			}

			return nil, fmt.Errorf("reading passphrase: %w", res.err)
		}

		return res.secret, nil
	}
}

// terminalReader picks the read strategy for in and returns a function that
// puts the terminal back the way it was.
func terminalReader(in io.Reader, out io.Writer) (func() ([]byte, error), func()) {
	if f, ok := in.(*os.File); ok {
		fd := int(f.Fd())
		if term.IsTerminal(fd) {
			state, err := term.GetState(fd)
			restore := func() {
				if err == nil {
					term.Restore(fd, state)
				}
			}

			return func() ([]byte, error) {
				secret, err := term.ReadPassword(fd)
				fmt.Fprintln(out)

				return secret, err
			}, restore
		}
	}

	return func() ([]byte, error) {
		return readLine(in)
	}, func() {}
}

// readLine reads up to the first newline. A final line without newline is
// accepted; empty input is io.EOF.
func readLine(in io.Reader) ([]byte, error) {
	line, err := bufio.NewReader(in).ReadBytes('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		clear(line)
		return nil, err
	}

	n := len(line)
	for n > 0 && (line[n-1] == '\n' || line[n-1] == '\r') {
		n--
	}

	return line[:n], nil
}
