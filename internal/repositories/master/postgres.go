package master

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Get(ctx context.Context) ([]byte, error) {
	var secret []byte
	err := r.db.QueryRowContext(ctx, `SELECT password FROM master WHERE id=$1`, common.MasterSecretID).Scan(&secret)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return secret, nil
}

func (r *PostgresRepository) Put(ctx context.Context, secret []byte) error {
	query := `INSERT INTO master (id, password) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET password = EXCLUDED.password`
	if _, err := r.db.ExecContext(ctx, query, common.MasterSecretID, secret); err != nil {
		return fmt.Errorf("failed to upsert master secret: %w", err)
	}
	return nil
}

func (r *PostgresRepository) CreateIfAbsent(ctx context.Context, secret []byte) (bool, error) {
	query := `INSERT INTO master (id, password) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`
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
