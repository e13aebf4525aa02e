package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/dmitrijs2005/passkeeper/internal/config"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/vault"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// NewRootCommand builds the passkeeper command tree.
func NewRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "passkeeper",
		Short: "passkeeper - a local encrypted password vault",
		Long: `passkeeper keeps website credentials in a local database, encrypted with a
key that is created on first run.

Running passkeeper without a subcommand opens the vault and starts an
interactive session. The first master password is "1"; change it with
'passwd' after logging in.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE:          runInteractive,
	}

	config.RegisterFlags(root.PersistentFlags())
	root.AddCommand(newGenerateCommand(), newCheckCommand())
	return root
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	if err := NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("✗")+" "+err.Error())
		return 1
	}
	return 0
}

func runInteractive(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	notifier, err := vault.NewNotifier(cfg.Notify, log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	v, err := vault.Open(cmd.Context(), cfg, log, notifier)
	if err != nil {
		return fmt.Errorf("open vault: %w", err)
	}
	defer func() {
		if err := v.Close(); err != nil {
			log.Error(cmd.Context(), "close vault", "error", err)
		}
	}()

	return NewApp(v, cmd.InOrStdin(), cmd.OutOrStdout(), log).Run(cmd.Context())
}

func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	log, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
