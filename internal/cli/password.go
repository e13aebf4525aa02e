package cli

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/flow"
)

const cancelWord = "cancel"

// choosePassword walks the user through a flow.PasswordFlow for identity and
// returns the chosen password. Typing "cancel" at a menu aborts with
// errCancelled.
func (a *App) choosePassword(ctx context.Context, identity string) (string, error) {
	f := a.vault.NewPasswordFlow(identity)
	defer f.Cancel()

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		switch f.State() {
		case flow.EnteringPassword:
			pw, err := a.readSecret(ctx, "Enter password: ")
			if err != nil {
				return "", err
			}
			ev, err := f.EnterPassword(pw)
			switch {
			case errors.Is(err, common.ErrValidation):
				a.failure("Password must not be empty.")
				continue
			case errors.Is(err, flow.ErrWeakPassword):
				a.feedback(ev)
				a.failure("That password is still weak. Please try again.")
				continue
			case err != nil:
				return "", err
			}
			a.feedback(ev)

		case flow.OfferingWeakChoice:
			a.warn("This password is weak.")
			choice, err := a.choose(ctx, "What would you like to do?",
				"Use this weak password anyway.",
				"Make or generate a stronger password.")
			if err != nil {
				return "", err
			}
			switch strings.ToLower(choice) {
			case "1":
				err = f.UseWeak()
			case "2":
				err = a.strengthen(ctx, f)
			case cancelWord:
				f.Cancel()
			default:
				a.failure("Invalid choice! Try again.")
			}
			if err != nil {
				return "", err
			}

		case flow.Generating:
			a.generated(f.Candidate())
			choice, err := a.choose(ctx, "",
				"Use this generated password",
				"Generate another",
				"Enter my own password instead")
			if err != nil {
				return "", err
			}
			switch strings.ToLower(choice) {
			case "1":
				return f.AcceptGenerated()
			case "2":
				_, err = f.Generate(ctx)
			case "3":
				err = f.EnterOwn()
			case cancelWord:
				f.Cancel()
			default:
				a.failure("Invalid choice! Try again.")
			}
			if err != nil {
				return "", err
			}

		case flow.Confirming:
			confirm, err := a.readSecret(ctx, "Confirm password: ")
			if err != nil {
				return "", err
			}
			if err := f.Confirm(confirm); err != nil {
				if errors.Is(err, common.ErrMismatch) {
					a.failure("Passwords do NOT match. Try again.")
					continue
				}
				return "", err
			}

		case flow.Done:
			return f.Password()

		case flow.Aborted:
			return "", errCancelled
		}
	}
}

func (a *App) strengthen(ctx context.Context, f *flow.PasswordFlow) error {
	for {
		choice, err := a.choose(ctx, "",
			"Strengthen it manually",
			"Generate a strong one automatically")
		if err != nil {
			return err
		}
		switch strings.ToLower(choice) {
		case "1":
			return f.Strengthen()
		case "2":
			a.hint("Generating a strong password for you...")
			_, err := f.Generate(ctx)
			return err
		case cancelWord:
			f.Cancel()
			return nil
		default:
			a.failure("Invalid choice! Try again.")
		}
	}
}
