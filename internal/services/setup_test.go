package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/dmitrijs2005/passkeeper/internal/cryptox"
	"github.com/dmitrijs2005/passkeeper/internal/dbx"
	"github.com/dmitrijs2005/passkeeper/internal/logging"
	"github.com/dmitrijs2005/passkeeper/internal/repositories/repomanager"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db     *sql.DB
	rm     repomanager.RepositoryManager
	cipher *cryptox.Cipher
	key    []byte
	creds  *CredentialService
	master *MasterService
}

func setup(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := dbx.Open(ctx, dbx.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rm := repomanager.NewSQLiteRepositoryManager()
	require.NoError(t, rm.RunMigrations(ctx, db))

	c, err := cryptox.NewCipher(cryptox.AES256GCM)
	require.NoError(t, err)
	key := common.GenerateRandByteArray(cryptox.KeySize)

	return &fixture{
		db:     db,
		rm:     rm,
		cipher: c,
		key:    key,
		creds:  NewCredentialService(db, rm, c, key, logging.Discard()),
		master: NewMasterService(db, rm, c, key, logging.Discard()),
	}
}
