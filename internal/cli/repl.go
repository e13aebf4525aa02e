package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// execIface defines the command surface the REPL needs. The real App
// satisfies it; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Add(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context) error
	Update(ctx context.Context) error
	Delete(ctx context.Context) error
	ChangeMaster(ctx context.Context) error
	Generate(ctx context.Context) error
	Check(ctx context.Context) error
	Logout(ctx context.Context) error
}

// runREPL reads commands line by line from r and dispatches them to a.
//
//	Not logged in:
//	  help, login, generate, check, exit | quit
//
//	Logged in:
//	  help, add, (l)ist, show, update, delete, passwd,
//	  generate, check, logout, exit | quit
//
// Handlers report their own errors. The loop ends on end of input, on
// exit/quit, when a handler returns errExit or when ctx is done.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *lineReader, w io.Writer) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		fmt.Fprintf(w, "passkeeper (%s)> ", statusFn())
		line, err := r.next(ctx)
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(w)
				return nil
			}
			return err
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}

		var herr error
		switch cmd := parts[0]; cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, "Available commands: add, (l)ist, show, update, delete, passwd, generate, check, logout, exit")
			} else {
				fmt.Fprintln(w, "Available commands: login, generate, check, exit")
			}

		case "login":
			herr = a.Login(ctx)

		case "add":
			herr = a.Add(ctx)

		case "l", "list":
			herr = a.List(ctx)

		case "show":
			herr = a.Show(ctx)

		case "update":
			herr = a.Update(ctx)

		case "delete":
			herr = a.Delete(ctx)

		case "passwd":
			herr = a.ChangeMaster(ctx)

		case "generate":
			herr = a.Generate(ctx)

		case "check":
			herr = a.Check(ctx)

		case "logout":
			herr = a.Logout(ctx)

		case "exit", "quit":
			fmt.Fprintln(w, "Goodbye!")
			return nil

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		switch {
		case errors.Is(herr, errExit):
			fmt.Fprintln(w, "Goodbye!")
			return nil
		case errors.Is(herr, io.EOF):
			fmt.Fprintln(w)
			return nil
		}
	}
}
