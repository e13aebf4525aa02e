package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/policy"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newGenerateCommand() *cobra.Command {
	var (
		identity string
		count    int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print strong passwords without opening the vault",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if count < 1 {
				return errors.New("--count must be at least 1")
			}
			_, log, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			gen := policy.NewGenerator(policy.WithLogger(log))
			for range count {
				g, err := gen.Generate(cmd.Context(), identity)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), g.Password)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&identity, "username", "u", "", "username the passwords must not resemble")
	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of passwords to generate")
	return cmd
}

// errWeak makes `check` exit non-zero for a weak password.
var errWeak = errors.New("password is weak")

func newCheckCommand() *cobra.Command {
	var identity string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Rate a password read from stdin",
		Long: `Rate a password against the strength criteria. The password is read from
the terminal without echo, or as the first line of piped input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := readCheckInput(cmd)
			if err != nil {
				return err
			}

			ev := policy.Evaluate(pw, identity)
			out := cmd.OutOrStdout()
			if ev.Strong {
				fmt.Fprintln(out, color.GreenString("✓")+" "+ev.Feedback())
				return nil
			}
			fmt.Fprintln(out, color.YellowString("!")+" "+ev.Feedback())
			return errWeak
		},
	}

	cmd.Flags().StringVarP(&identity, "username", "u", "", "username to compare the password against")
	return cmd
}

func readCheckInput(cmd *cobra.Command) (string, error) {
	fd := int(os.Stdin.Fd())
	if cmd.InOrStdin() == os.Stdin && isTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
		pw, err := readPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return "", err
		}
		return string(pw), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", errors.New("no password on stdin")
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
