package repositories

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestProvider_OpenAndCloseTracksUsage(t *testing.T) {
	gdb, mock := newMockDB(t)
	p := NewProvider(gdb)

	a, err := p.Open(context.Background())
	require.NoError(t, err)
	b, err := p.Open(context.Background())
	require.NoError(t, err)
	assert.NotSame(t, a, b)
	assert.EqualValues(t, 2, p.InUse())

	require.NoError(t, a.Close())
	assert.EqualValues(t, 1, p.InUse())

	// second close is a no-op
	require.NoError(t, a.Close())
	assert.EqualValues(t, 1, p.InUse())

	require.NoError(t, b.Close())
	assert.EqualValues(t, 0, p.InUse())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProvider_OpenCancelledContext(t *testing.T) {
	gdb, _ := newMockDB(t)
	p := NewProvider(gdb)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s, err := p.Open(ctx)
	require.Error(t, err)
	assert.Nil(t, s)
	assert.EqualValues(t, 0, p.InUse())
}

func TestSession_CloseNil(t *testing.T) {
	var s *Session
	assert.NoError(t, s.Close())
	assert.NoError(t, (&Session{}).Close())
}

func TestSession_TransactionCommits(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := openSession(t, NewProvider(gdb))

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE users SET full_name = \$1`).WithArgs("x").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.Transaction(context.Background(), func(tx *gorm.DB) error {
		return tx.Exec("UPDATE users SET full_name = ?", "x").Error
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_TransactionRollsBackOnError(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := openSession(t, NewProvider(gdb))

	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.Transaction(context.Background(), func(tx *gorm.DB) error {
		return boom
	})
	require.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSession_TransactionRollsBackOnPanic(t *testing.T) {
	gdb, mock := newMockDB(t)
	s := openSession(t, NewProvider(gdb))

	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.Panics(t, func() {
		_ = s.Transaction(context.Background(), func(tx *gorm.DB) error {
			panic("handler blew up")
		})
	})
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionContext(t *testing.T) {
	_, ok := SessionFromContext(context.Background())
	assert.False(t, ok)

	s := &Session{}
	got, ok := SessionFromContext(WithSession(context.Background(), s))
	require.True(t, ok)
	assert.Same(t, s, got)
}

func TestRunMigrations_Success(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		if dir != "." {
			return errors.New("unexpected dir")
		}
		return nil
	}
	defer func() { gooseUpContext = orig }()

	assert.NoError(t, RunMigrations(context.Background(), db))
}

func TestRunMigrations_Error(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	err = RunMigrations(context.Background(), db)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
