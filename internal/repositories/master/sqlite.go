package master

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context) ([]byte, error) {
	var secret []byte
	err := r.db.QueryRowContext(ctx, `select password from master where id=?`, common.MasterSecretID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return secret, nil
}

func (r *SQLiteRepository) Put(ctx context.Context, secret []byte) error {
	query := `insert into master (id, password) values (?, ?)
		on conflict(id) do update set password = excluded.password`
	if _, err := r.db.ExecContext(ctx, query, common.MasterSecretID, secret); err != nil {
		return fmt.Errorf("failed to upsert master secret: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateIfAbsent(ctx context.Context, secret []byte) (bool, error) {
	query := `insert into master (id, password) values (?, ?) on conflict(id) do nothing`
	res, err := r.db.ExecContext(ctx, query, common.MasterSecretID, secret)
	if err != nil {
		return false, fmt.Errorf("failed to insert master secret: %w", err)
	}
	ra, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return ra == 1, nil
}
