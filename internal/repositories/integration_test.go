package repositories

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/taiyeoguns/gen-ai-llm-api/internal/apperrors"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/config"
	"github.com/taiyeoguns/gen-ai-llm-api/internal/models"
)

func integrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set; skipping postgres integration test")
	}

	ctx := context.Background()
	db, err := ConnectDatabase(ctx, &config.Settings{DatabaseURL: dsn, DBMaxOpenConns: 25, DBMaxIdleConns: 5}, quietLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	require.NoError(t, db.Exec("TRUNCATE users RESTART IDENTITY").Error)
	return db
}

func TestIntegration_CreateThenGet(t *testing.T) {
	p := NewProvider(integrationDB(t))
	store := NewUserStore()
	ctx := context.Background()
	s := openSession(t, p)

	created, err := store.Create(ctx, s, models.UserSchema{Username: "ada_l", Email: "ada@example.com", FullName: "Ada Lovelace"})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.UUID)
	assert.Equal(t, created.CreatedAt, created.UpdatedAt)

	// read back through a different session
	other := openSession(t, p)
	got, err := store.Get(ctx, other, created.UUID.String())
	require.NoError(t, err)
	assert.Equal(t, created.UUID, got.UUID)
	assert.Equal(t, "ada_l", got.Username)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, "Ada Lovelace", got.FullName)
	assert.True(t, got.CreatedAt.Equal(got.UpdatedAt))
	assert.True(t, got.CreatedAt.Equal(created.CreatedAt))
}

func TestIntegration_GetMissing(t *testing.T) {
	p := NewProvider(integrationDB(t))
	s := openSession(t, p)

	_, err := NewUserStore().Get(context.Background(), s, uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestIntegration_DuplicateUsername(t *testing.T) {
	p := NewProvider(integrationDB(t))
	store := NewUserStore()
	s := openSession(t, p)

	_, err := store.Create(context.Background(), s, models.UserSchema{Username: "ada_l", Email: "ada@example.com"})
	require.NoError(t, err)
	_, err = store.Create(context.Background(), s, models.UserSchema{Username: "ada_l", Email: "other@example.com"})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestIntegration_ListReflectsCreates(t *testing.T) {
	p := NewProvider(integrationDB(t))
	store := NewUserStore()
	ctx := context.Background()
	s := openSession(t, p)

	const n = 5
	var want []uuid.UUID
	for i := 0; i < n; i++ {
		u, err := store.Create(ctx, s, models.UserSchema{Username: fmt.Sprintf("user_%d", i), Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
		want = append(want, u.UUID)
	}

	users, err := store.List(ctx, s)
	require.NoError(t, err)
	got := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		got = append(got, u.UUID)
	}
	assert.Equal(t, want, got)
}

func TestIntegration_ConcurrentCreates(t *testing.T) {
	p := NewProvider(integrationDB(t))
	store := NewUserStore()
	ctx := context.Background()

	const n = 50
	var (
		mu  sync.Mutex
		ids = make(map[uuid.UUID]struct{}, n)
	)
	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < n; i++ {
		g.Go(func() error {
			s, err := p.Open(gctx)
			if err != nil {
				return err
			}
			defer s.Close()

			u, err := store.Create(gctx, s, models.UserSchema{Username: fmt.Sprintf("concurrent_%d", i), Email: fmt.Sprintf("c%d@example.com", i)})
			if err != nil {
				return err
			}
			mu.Lock()
			ids[u.UUID] = struct{}{}
			mu.Unlock()
			return nil
		})
	}
	require.NoError(t, g.Wait())
	require.Len(t, ids, n)
	assert.EqualValues(t, 0, p.InUse())

	s := openSession(t, p)
	for id := range ids {
		_, err := store.Get(ctx, s, id.String())
		assert.NoError(t, err)
	}
}
