package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/dmitrijs2005/passkeeper/internal/auth"
	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/flow"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/models"
	"github.com/dmitrijs2005/passkeeper/internal/policy"
)

// errExit is returned by a handler when the user chose to leave.
var errExit = errors.New("exit requested")

// errCancelled is returned when the user aborts a password choice.
var errCancelled = errors.New("cancelled")

// vaultAPI is the part of *vault.Vault the App drives.
type vaultAPI interface {
	State() auth.State
	CheckLogin(ctx context.Context, password string) (string, error)
	RequestReset(ctx context.Context, destination string) (string, error)
	VerifyReset(ctx context.Context, challengeID, code, newPassword string) (string, error)
	DeclineReset() error
	ChangeMaster(ctx context.Context, current, next string) error
	Logout() error
	Exit()

	AddCredential(ctx context.Context, website, username, password string) (int64, error)
	ListCredentials(ctx context.Context) ([]models.PlainCredential, error)
	GetCredential(ctx context.Context, id int64) (*models.PlainCredential, error)
	UpdateCredential(ctx context.Context, id int64, upd models.CredentialUpdate) error
	DeleteCredential(ctx context.Context, id int64) error

	EvaluateStrength(password, identity string) policy.Evaluation
	GeneratePassword(ctx context.Context, identity string) (policy.Generated, error)
	NewPasswordFlow(identity string) *flow.PasswordFlow
}

type App struct {
	vault vaultAPI
	in    *lineReader
	out   io.Writer
	log   logging.Logger
	fd    int
	token string
}

func NewApp(v vaultAPI, in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		vault: v,
		in:    newLineReader(in),
		out:   out,
		log:   log,
		fd:    int(os.Stdin.Fd()),
	}
}

// Run greets the user, asks for the master password and serves commands
// until exit or end of input. The vault is terminated on return.
func (a *App) Run(ctx context.Context) error {
	defer a.Exit()

	fmt.Fprintln(a.out, "========== passkeeper ==========")
	a.hint("Type 'help' for commands")

	err := a.Login(ctx)
	switch {
	case ctx.Err() != nil:
		a.interrupted()
		return nil
	case errors.Is(err, errExit), errors.Is(err, io.EOF):
		return nil
	}

	if err := runREPL(ctx, a, a.status, a.in, a.out); err != nil {
		if ctx.Err() != nil {
			a.interrupted()
			return nil
		}
		return err
	}
	return nil
}

func (a *App) interrupted() {
	fmt.Fprintln(a.out)
	a.hint("Interrupted.")
}

func (a *App) isLoggedIn() bool {
	return a.vault.State() == auth.Authenticated
}

func (a *App) status() string {
	return a.vault.State().String()
}

// session attaches the current session token to ctx.
func (a *App) session(ctx context.Context) context.Context {
	return auth.WithToken(ctx, a.token)
}

// Exit terminates the vault session.
func (a *App) Exit() {
	a.token = ""
	a.vault.Exit()
}

// report prints err for the user. The session survives every error here.
func (a *App) report(ctx context.Context, err error) {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return
	case errors.Is(err, errCancelled):
		a.hint("Cancelled.")
		return
	case errors.Is(err, common.ErrUnauthorized):
		a.token = ""
		a.failure("Not logged in or the session has expired. Use 'login'.")
		return
	case errors.Is(err, common.ErrNotFound):
		a.failure("Not found.")
		return
	case errors.Is(err, common.ErrValidation):
		a.failure("%s", err.Error())
		return
	case errors.Is(err, common.ErrDecryption):
		a.failure("Stored data could not be decrypted. Is this the right key file?")
	default:
		a.failure("Error: %s", err.Error())
	}
	a.log.Error(ctx, "command failed", "error", err)
}
