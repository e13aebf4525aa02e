package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/repositories/repomanager"
)

// MasterService keeps the master password encrypted in the singleton master
// record.
type MasterService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      Cipher
	key         []byte
	log         logging.Logger
}

func NewMasterService(db *sql.DB, m repomanager.RepositoryManager, cipher Cipher, key []byte, log logging.Logger) *MasterService {
	return &MasterService{db: db, repomanager: m, cipher: cipher, key: key, log: log}
}

// EnsureDefault writes the default master password if no record exists yet.
// An existing record is left untouched.
func (s *MasterService) EnsureDefault(ctx context.Context) (bool, error) {
	ct, err := s.cipher.Encrypt(s.key, []byte(common.DefaultMasterPassword))
	if err != nil {
		return false, fmt.Errorf("encryption error: %w", err)
	}

	var created bool
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		created, err = s.repomanager.Master(tx).CreateIfAbsent(ctx, ct)
		return err
	})
	if err != nil {
		return false, fmt.Errorf("%w: initialize master secret: %w", common.ErrStorage, err)
	}
	if created {
		s.log.Warn(ctx, "master password initialized to the default; change it after first login")
	}
	return created, nil
}

// Get returns the decrypted master password.
func (s *MasterService) Get(ctx context.Context) (string, error) {
	var ct []byte
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		var err error
		ct, err = s.repomanager.Master(tx).Get(ctx)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", fmt.Errorf("master secret missing: %w", err)
		}
		return "", fmt.Errorf("%w: read master secret: %w", common.ErrStorage, err)
	}

	pt, err := s.cipher.Decrypt(s.key, ct)
	if err != nil {
		return "", fmt.Errorf("master secret: %w", err)
	}
	defer common.WipeByteArray(pt)
	return string(pt), nil
}

// Set replaces the master password.
func (s *MasterService) Set(ctx context.Context, password string) error {
	if password == "" {
		return fmt.Errorf("%w: master password must not be empty", common.ErrValidation)
	}

	ct, err := s.cipher.Encrypt(s.key, []byte(password))
	if err != nil {
		return fmt.Errorf("encryption error: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return s.repomanager.Master(tx).Put(ctx, ct)
	})
	if err != nil {
		return fmt.Errorf("%w: store master secret: %w", common.ErrStorage, err)
	}

	s.log.Info(ctx, "master password changed")
	return nil
}
