// Package repomanager vends driver-specific repository implementations and
// runs the embedded goose migrations for that driver.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/repositories/credentials"
	"github.com/dmitrijs2005/passkeeper/internal/repositories/master"
	"github.com/pressly/goose/v3"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Credentials(db dbx.DBTX) credentials.Repository
	Master(db dbx.DBTX) master.Repository
}

// gooseUp is a seam for testing goose.UpContext.
var gooseUp = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// New returns the manager for a dbx driver name.
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	case dbx.DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	}
	return nil, fmt.Errorf("unsupported db driver %q", driver)
}
