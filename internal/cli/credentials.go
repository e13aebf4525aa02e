package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/models"
)

const rule = "------------------------------------------------------------"

func (a *App) Add(ctx context.Context) error {
	website, err := a.readLine(ctx, "Enter website name: ")
	if err != nil {
		return err
	}
	username, err := a.readLine(ctx, "Enter username: ")
	if err != nil {
		return err
	}
	if website == "" || username == "" {
		a.failure("Website and username are required.")
		return common.ErrValidation
	}

	password, err := a.choosePassword(ctx, username)
	if err != nil {
		a.report(ctx, err)
		return err
	}

	id, err := a.vault.AddCredential(a.session(ctx), website, username, password)
	if err != nil {
		a.report(ctx, err)
		return err
	}
	a.success("Credential added successfully! (ID %d)", id)
	return nil
}

func (a *App) List(ctx context.Context) error {
	items, err := a.vault.ListCredentials(a.session(ctx))
	if err != nil {
		a.report(ctx, err)
		return err
	}
	if len(items) == 0 {
		a.hint("No credentials found.")
		return nil
	}

	fmt.Fprintln(a.out, "Stored Credentials (Decrypted):")
	fmt.Fprintln(a.out, rule)
	for _, c := range items {
		fmt.Fprintf(a.out, "ID: %d | Website: %s | Username: %s | Password: %s\n", c.ID, c.Website, c.Username, c.Password)
	}
	fmt.Fprintln(a.out, rule)
	return nil
}

func (a *App) Show(ctx context.Context) error {
	c, err := a.lookup(ctx, "Enter the ID of the credential to show: ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Website:  %s\nUsername: %s\nPassword: %s\n", c.Website, c.Username, c.Password)
	return nil
}

func (a *App) Update(ctx context.Context) error {
	cur, err := a.lookup(ctx, "Enter the ID of the credential to update: ")
	if err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Editing credential for Website: %s | Username: %s\n", cur.Website, cur.Username)

	var upd models.CredentialUpdate
	website, err := a.readLine(ctx, "Enter new website name (leave blank to keep current): ")
	if err != nil {
		return err
	}
	if website != "" {
		upd.Website = &website
	}
	username, err := a.readLine(ctx, "Enter new username (leave blank to keep current): ")
	if err != nil {
		return err
	}
	identity := cur.Username
	if username != "" {
		upd.Username = &username
		identity = username
	}

	answer, err := a.readLine(ctx, "Change the password? (y/n): ")
	if err != nil {
		return err
	}
	if strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes") {
		password, err := a.choosePassword(ctx, identity)
		if err != nil {
			a.report(ctx, err)
			return err
		}
		upd.Password = &password
	}

	if err := a.vault.UpdateCredential(a.session(ctx), cur.ID, upd); err != nil {
		a.report(ctx, err)
		return err
	}
	a.success("Credential updated successfully!")
	return nil
}

func (a *App) Delete(ctx context.Context) error {
	cur, err := a.lookup(ctx, "Enter the ID of the credential to delete: ")
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Are you sure you want to delete this credential?")
	fmt.Fprintf(a.out, "Website: %s | Username: %s\n", cur.Website, cur.Username)
	answer, err := a.readLine(ctx, "Type 'yes' to confirm deletion: ")
	if err != nil {
		return err
	}
	if strings.ToLower(answer) != "yes" {
		a.hint("Deletion cancelled.")
		return nil
	}

	if err := a.vault.DeleteCredential(a.session(ctx), cur.ID); err != nil {
		a.report(ctx, err)
		return err
	}
	a.success("Credential deleted successfully!")
	return nil
}

// lookup asks for a credential id and fetches it.
func (a *App) lookup(ctx context.Context, prompt string) (*models.PlainCredential, error) {
	raw, err := a.readLine(ctx, prompt)
	if err != nil {
		return nil, err
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		a.failure("Invalid ID format. Please enter a numeric ID.")
		return nil, common.ErrValidation
	}

	c, err := a.vault.GetCredential(a.session(ctx), id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			a.failure("No credential found with ID %d.", id)
			return nil, err
		}
		a.report(ctx, err)
		return nil, err
	}
	return c, nil
}
