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

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Create(ctx context.Context, c *models.Credential) (int64, error) {
	query := `insert into credentials (website, username, password) values (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query, c.Website, c.Username, c.Password)
	if err != nil {
		return 0, fmt.Errorf("failed to insert credential: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert id: %w", err)
	}
	c.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Credential, error) {
	query := `select id, website, username, password from credentials order by id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to select credentials: %w", err)
	}
	defer rows.Close()

	var result []models.Credential
	for rows.Next() {
		var item models.Credential
		if err := rows.Scan(&item.ID, &item.Website, &item.Username, &item.Password); err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Credential, error) {
	query := `select id, website, username, password from credentials where id=?`
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

func (r *SQLiteRepository) Update(ctx context.Context, c *models.Credential) error {
	query := `update credentials set website=?, username=?, password=? where id=?`
	res, err := r.db.ExecContext(ctx, query, c.Website, c.Username, c.Password, c.ID)
	if err != nil {
		return fmt.Errorf("failed to update credential: %w", err)
	}
	return expectOneRow(res)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	query := `delete from credentials where id=?`
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete credential: %w", err)
	}
	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	switch ra {
	case 0:
		return common.ErrNotFound
	case 1:
		return nil
	default:
		return fmt.Errorf("wrong rows affected count: %d", ra)
	}
}
