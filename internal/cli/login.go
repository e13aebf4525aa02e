package cli

import (
	"context"
	"errors"

	"github.com/dmitrijs2005/passkeeper/internal/auth"
	"github.com/dmitrijs2005/passkeeper/internal/common"
)

// Login asks for the master password until it matches or input ends. A
// lockout switches to the recovery menu; declining recovery returns to the
// password prompt.
func (a *App) Login(ctx context.Context) error {
	if a.vault.State() == auth.Authenticated {
		a.hint("Already logged in.")
		return nil
	}

	for {
		if a.vault.State() == auth.LockedPendingRecovery {
			if err := a.recover(ctx); err != nil {
				return err
			}
			if a.vault.State() == auth.Authenticated {
				return nil
			}
			continue
		}

		password, err := a.readSecret(ctx, "Enter master password: ")
		if err != nil {
			return err
		}

		token, err := a.vault.CheckLogin(ctx, password)
		switch {
		case err == nil:
			a.token = token
			a.success("Login successful")
			return nil
		case errors.Is(err, common.ErrMismatch):
			a.failure("Incorrect Password.")
			continue
		}
		a.report(ctx, err)
		return err
	}
}

// recover runs the reset menu until the user resets the master password,
// declines or exits.
func (a *App) recover(ctx context.Context) error {
	for {
		choice, err := a.choose(ctx, "It seems like you have forgotten your password, would you like to reset it?",
			"Yes, I would like to reset my password.",
			"No, I remember my password.",
			"Exit")
		if err != nil {
			return err
		}

		switch choice {
		case "1":
			done, err := a.reset(ctx)
			if err != nil {
				return err
			}
			if done {
				return nil
			}
		case "2":
			if err := a.vault.DeclineReset(); err != nil {
				a.report(ctx, err)
				return err
			}
			a.hint("Returning to login.")
			return nil
		case "3":
			return errExit
		default:
			a.failure("Invalid choice! Please try again.")
		}
	}
}

// reset performs one request/verify round. It reports false when the gate is
// still locked afterwards.
func (a *App) reset(ctx context.Context) (bool, error) {
	email, err := a.readLine(ctx, "Enter your email: ")
	if err != nil {
		return false, err
	}

	challengeID, err := a.vault.RequestReset(ctx, email)
	if err != nil {
		a.report(ctx, err)
		return false, nil
	}
	a.hint("A one-time code was sent to %s.", email)

	code, err := a.readLine(ctx, "Enter the code sent to your email: ")
	if err != nil {
		return false, err
	}
	next, err := a.readSecret(ctx, "Enter new master password: ")
	if err != nil {
		return false, err
	}
	confirm, err := a.readSecret(ctx, "Confirm new master password: ")
	if err != nil {
		return false, err
	}
	if next != confirm {
		a.failure("Passwords do NOT match. Operation failed.")
		return false, nil
	}

	token, err := a.vault.VerifyReset(ctx, challengeID, code, next)
	switch {
	case err == nil:
		a.token = token
		a.success("Password reset successful!")
		return true, nil
	case errors.Is(err, common.ErrMismatch):
		a.failure("Invalid code.")
	case errors.Is(err, common.ErrChallengeExpired):
		a.failure("The code has expired.")
	default:
		a.report(ctx, err)
	}
	return false, nil
}

// ChangeMaster replaces the master password of the current session.
func (a *App) ChangeMaster(ctx context.Context) error {
	current, err := a.readSecret(ctx, "Enter current master password: ")
	if err != nil {
		return err
	}
	next, err := a.readSecret(ctx, "Enter new master password: ")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret(ctx, "Confirm new master password: ")
	if err != nil {
		return err
	}
	if next != confirm {
		a.failure("Passwords do NOT match. Operation failed.")
		return common.ErrMismatch
	}

	err = a.vault.ChangeMaster(a.session(ctx), current, next)
	switch {
	case err == nil:
		a.success("Master password changed.")
		return nil
	case errors.Is(err, common.ErrMismatch):
		a.failure("Incorrect Password.")
	default:
		a.report(ctx, err)
	}
	return err
}

func (a *App) Logout(ctx context.Context) error {
	if err := a.vault.Logout(); err != nil {
		a.report(ctx, err)
		return err
	}
	a.token = ""
	a.success("Logged out.")
	return nil
}
