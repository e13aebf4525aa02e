package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"golang.org/x/term"
)

// readPassword is a test seam for term.ReadPassword.
var readPassword = term.ReadPassword

// isTerminal is a test seam for term.IsTerminal. Input that is not a
// terminal is read as plain lines, masked or not.
var isTerminal = term.IsTerminal

type lineResult struct {
	line string
	err  error
}

// lineReader reads lines in the background so a waiting prompt can give up
// when ctx is done. A read that was abandoned is handed to the next caller.
// It is not safe for concurrent use.
type lineReader struct {
	r       *bufio.Reader
	pending chan lineResult
}

func newLineReader(r io.Reader) *lineReader {
	return &lineReader{r: bufio.NewReader(r)}
}

// next returns the next raw line, including its newline. At EOF after a
// partial line, the partial line is returned with io.EOF.
func (l *lineReader) next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if l.pending == nil {
		ch := make(chan lineResult, 1)
		l.pending = ch
		go func() {
			line, err := l.r.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case res := <-l.pending:
		l.pending = nil
		return res.line, res.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// readLine prints prompt and reads a single line. The trailing newline is
// trimmed. If EOF occurs after some input was read, the partial line is
// returned. Once ctx is done it returns ctx.Err() without prompting, and a
// line that arrives after the interrupt is discarded.
func (a *App) readLine(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return "", err
	}

	line, err := a.in.next(ctx)
	if cerr := ctx.Err(); cerr != nil {
		return "", cerr
	}
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readSecret prints prompt and reads a value without echo when stdin is a
// terminal.
func (a *App) readSecret(ctx context.Context, prompt string) (string, error) {
	if !isTerminal(a.fd) {
		return a.readLine(ctx, prompt)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	state, err := term.GetState(a.fd)
	if err != nil {
		return "", err
	}
	if _, err := fmt.Fprint(a.out, prompt); err != nil {
		return "", err
	}

	ch := make(chan lineResult, 1)
	go func() {
		pw, err := readPassword(a.fd)
		s := string(pw)
		common.WipeByteArray(pw)
		ch <- lineResult{line: s, err: err}
	}()

	select {
	case res := <-ch:
		fmt.Fprintln(a.out)
		return res.line, res.err
	case <-ctx.Done():
		// echo stays off until ReadPassword returns
		_ = term.Restore(a.fd, state)
		fmt.Fprintln(a.out)
		return "", ctx.Err()
	}
}

// choose prints a numbered menu and returns the raw answer.
func (a *App) choose(ctx context.Context, title string, options ...string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if title != "" {
		fmt.Fprintln(a.out, title)
	}
	for i, o := range options {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, o)
	}
	return a.readLine(ctx, "Enter your choice: ")
}
