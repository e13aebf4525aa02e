package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/models"
	"github.com/dmitrijs2005/passkeeper/internal/repositories/repomanager"
)

// CredentialService stores credentials encrypted under the vault key.
type CredentialService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      Cipher
	key         []byte
	log         logging.Logger
}

func NewCredentialService(db *sql.DB, m repomanager.RepositoryManager, cipher Cipher, key []byte, log logging.Logger) *CredentialService {
	return &CredentialService{db: db, repomanager: m, cipher: cipher, key: key, log: log}
}

// Add encrypts password and stores a new record, returning its id.
func (s *CredentialService) Add(ctx context.Context, website, username, password string) (int64, error) {
	if err := validateFields(website, username, password); err != nil {
		return 0, err
	}

	ct, err := s.cipher.Encrypt(s.key, []byte(password))
	if err != nil {
		return 0, fmt.Errorf("encryption error: %w", err)
	}

	var id int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		id, err = s.repomanager.Credentials(tx).Create(ctx, &models.Credential{
			Website:  website,
			Username: username,
			Password: ct,
		})
		return err
	})
	if err != nil {
		return 0, storageErr("add credential", err)
	}

	s.log.Info(ctx, "credential added", "id", id, "website", website)
	return id, nil
}

// List returns every credential decrypted, in id order. If any record fails
// to decrypt the whole call fails; a partial list is never returned.
func (s *CredentialService) List(ctx context.Context) ([]models.PlainCredential, error) {
	var rows []models.Credential
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		rows, err = s.repomanager.Credentials(tx).GetAll(ctx)
		return err
	})
	if err != nil {
		return nil, storageErr("list credentials", err)
	}

	result := make([]models.PlainCredential, 0, len(rows))
	for _, row := range rows {
		pc, err := s.decrypt(row)
		if err != nil {
			s.log.Error(ctx, "credential failed to decrypt", "id", row.ID)
			return nil, err
		}
		result = append(result, pc)
	}
	return result, nil
}

func (s *CredentialService) GetByID(ctx context.Context, id int64) (*models.PlainCredential, error) {
	if id <= 0 {
		return nil, fmt.Errorf("%w: id must be positive", common.ErrValidation)
	}

	var row *models.Credential
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		row, err = s.repomanager.Credentials(tx).GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, storageErr("get credential", err)
	}

	pc, err := s.decrypt(*row)
	if err != nil {
		return nil, err
	}
	return &pc, nil
}

// Update applies the non-nil fields of upd. The password is re-encrypted only
// when supplied. An empty update writes nothing but still reports unknown ids.
func (s *CredentialService) Update(ctx context.Context, id int64, upd models.CredentialUpdate) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", common.ErrValidation)
	}
	if err := validateUpdate(upd); err != nil {
		return err
	}

	var newCT []byte
	if upd.Password != nil {
		ct, err := s.cipher.Encrypt(s.key, []byte(*upd.Password))
		if err != nil {
			return fmt.Errorf("encryption error: %w", err)
		}
		newCT = ct
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Credentials(tx)
		cur, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if upd.Empty() {
			return nil
		}
		if upd.Website != nil {
			cur.Website = *upd.Website
		}
		if upd.Username != nil {
			cur.Username = *upd.Username
		}
		if newCT != nil {
			cur.Password = newCT
		}
		return repo.Update(ctx, cur)
	})
	if err != nil {
		return storageErr("update credential", err)
	}

	if !upd.Empty() {
		s.log.Info(ctx, "credential updated", "id", id, "password_changed", upd.Password != nil)
	}
	return nil
}

// Delete permanently removes a record.
func (s *CredentialService) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: id must be positive", common.ErrValidation)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Credentials(tx).DeleteByID(ctx, id)
	})
	if err != nil {
		return storageErr("delete credential", err)
	}

	s.log.Info(ctx, "credential deleted", "id", id)
	return nil
}

func (s *CredentialService) decrypt(row models.Credential) (models.PlainCredential, error) {
	pt, err := s.cipher.Decrypt(s.key, row.Password)
	if err != nil {
		if !errors.Is(err, common.ErrDecryption) {
			err = fmt.Errorf("%w: %w", common.ErrDecryption, err)
		}
		return models.PlainCredential{}, fmt.Errorf("credential %d: %w", row.ID, err)
	}
	return models.PlainCredential{
		ID:       row.ID,
		Website:  row.Website,
		Username: row.Username,
		Password: string(pt),
	}, nil
}

func validateFields(website, username, password string) error {
	switch {
	case strings.TrimSpace(website) == "":
		return fmt.Errorf("%w: website is required", common.ErrValidation)
	case strings.TrimSpace(username) == "":
		return fmt.Errorf("%w: username is required", common.ErrValidation)
	case password == "":
		return fmt.Errorf("%w: password is required", common.ErrValidation)
	}
	return nil
}

func validateUpdate(upd models.CredentialUpdate) error {
	if upd.Website != nil && strings.TrimSpace(*upd.Website) == "" {
		return fmt.Errorf("%w: website must not be empty", common.ErrValidation)
	}
	if upd.Username != nil && strings.TrimSpace(*upd.Username) == "" {
		return fmt.Errorf("%w: username must not be empty", common.ErrValidation)
	}
	if upd.Password != nil && *upd.Password == "" {
		return fmt.Errorf("%w: password must not be empty", common.ErrValidation)
	}
	return nil
}

// storageErr passes ErrNotFound through and tags everything else ErrStorage.
func storageErr(op string, err error) error {
	if errors.Is(err, common.ErrNotFound) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", common.ErrStorage, op, err)
}
