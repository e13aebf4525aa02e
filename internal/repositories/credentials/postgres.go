package credentials

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/models"
)

// PostgresRepository implements Repository for PostgreSQL via the pgx stdlib driver.
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, c *models.Credential) (int64, error) {
	query := `INSERT INTO credentials (website, username, password)
		VALUES ($1, $2, $3)
		RETURNING id`

	if err := r.db.QueryRowContext(ctx, query, c.Website, c.Username, c.Password).Scan(&c.ID); err != nil {
		return 0, fmt.Errorf("failed to insert credential: %w", err)
	}
	return c.ID, nil
}

func (r *PostgresRepository) GetAll(ctx context.Context) ([]models.Credential, error) {
	query := `SELECT id, website, username, password FROM credentials ORDER BY id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	var result []models.Credential
	for rows.Next() {
		var item models.Credential
		if err := rows.Scan(&item.ID, &item.Website, &item.Username, &item.Password); err != nil {
			return nil, fmt.Errorf("failed to scan credential: %w", err)
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return result, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Credential, error) {
	query := `SELECT id, website, username, password FROM credentials WHERE id=$1`
	c := &models.Credential{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Website, &c.Username, &c.Password)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("query row scan failed: %w", err)
	}
	return c, nil
}

func (r *PostgresRepository) Update(ctx context.Context, c *models.Credential) error {
	query := `UPDATE credentials SET website=$1, username=$2, password=$3 WHERE id=$4`
	res, err := r.db.ExecContext(ctx, query, c.Website, c.Username, c.Password, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	return expectOneRow(res)
}

func (r *PostgresRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `DELETE FROM credentials WHERE id=$1`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return expectOneRow(res)
}
