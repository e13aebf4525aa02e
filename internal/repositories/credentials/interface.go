package credentials

import (
	"context"

	"github.com/dmitrijs2005/passkeeper/internal/models"
)

// Repository describes CRUD operations on stored credential records.
type Repository interface {
	// Create inserts a record and returns its storage-assigned id.
	Create(ctx context.Context, c *models.Credential) (int64, error)

	// GetAll returns every record ordered by id.
	GetAll(ctx context.Context) ([]models.Credential, error)

	// GetByID returns one record or common.ErrNotFound.
	GetByID(ctx context.Context, id int64) (*models.Credential, error)

	// Update overwrites website, username and password of an existing record.
	Update(ctx context.Context, c *models.Credential) error

	// DeleteByID permanently removes a record.
	DeleteByID(ctx context.Context, id int64) error
}
