package master

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/passkeeper/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewPostgresRepository(db), mock
}

func TestPostgres_Get(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := regexp.QuoteMeta(`SELECT password FROM master WHERE id=$1`)

	mock.ExpectQuery(q).WithArgs(common.MasterSecretID).
		WillReturnRows(sqlmock.NewRows([]string{"password"}).AddRow([]byte("ct")))
	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []byte("ct"), got)

	mock.ExpectQuery(q).WithArgs(common.MasterSecretID).WillReturnError(sql.ErrNoRows)
	_, err = repo.Get(context.Background())
	assert.ErrorIs(t, err, common.ErrNotFound)

	mock.ExpectQuery(q).WithArgs(common.MasterSecretID).WillReturnError(errors.New("down"))
	_, err = repo.Get(context.Background())
	assert.ErrorContains(t, err, "query row scan failed")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Put(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `INSERT INTO master .* ON CONFLICT \(id\) DO UPDATE SET password = EXCLUDED\.password`

	mock.ExpectExec(q).WithArgs(common.MasterSecretID, []byte("ct")).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, repo.Put(context.Background(), []byte("ct")))

	mock.ExpectExec(q).WillReturnError(errors.New("down"))
	assert.ErrorContains(t, repo.Put(context.Background(), []byte("ct")), "failed to upsert master secret")
}

func TestPostgres_CreateIfAbsent(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	q := `INSERT INTO master .* ON CONFLICT \(id\) DO NOTHING`

	mock.ExpectExec(q).WithArgs(common.MasterSecretID, []byte("ct")).WillReturnResult(sqlmock.NewResult(0, 1))
	created, err := repo.CreateIfAbsent(context.Background(), []byte("ct"))
	require.NoError(t, err)
	assert.True(t, created)

	mock.ExpectExec(q).WithArgs(common.MasterSecretID, []byte("ct")).WillReturnResult(sqlmock.NewResult(0, 0))
	created, err = repo.CreateIfAbsent(context.Background(), []byte("ct"))
	require.NoError(t, err)
	assert.False(t, created)

	require.NoError(t, mock.ExpectationsWereMet())
}
