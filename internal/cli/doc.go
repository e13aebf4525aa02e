// Package cli provides the passkeeper command line: a cobra root command that
// opens the vault and runs an interactive REPL, plus the one-shot generate
// and check subcommands.
//
// Typical session: the user enters the master password (masked when stdin is
// a terminal), then manages credentials with add, list, show, update and
// delete. Repeated wrong master passwords lock the vault; the login command
// then offers one-time-code recovery.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App and runREPL for details.
package cli
