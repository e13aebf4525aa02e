package cli

import (
	"context"
)

// Generate prints a generated password screened against an optional
// username. It needs no session.
func (a *App) Generate(ctx context.Context) error {
	identity, err := a.readLine(ctx, "Enter username (optional): ")
	if err != nil {
		return err
	}
	g, err := a.vault.GeneratePassword(ctx, identity)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	a.generated(g)
	return nil
}

// Check rates a password against the strength criteria. It needs no session.
func (a *App) Check(ctx context.Context) error {
	pw, err := a.readSecret(ctx, "Enter password to check: ")
	if err != nil {
		return err
	}
	identity, err := a.readLine(ctx, "Enter username (optional): ")
	if err != nil {
		return err
	}
	a.feedback(a.vault.EvaluateStrength(pw, identity))
	return nil
}
