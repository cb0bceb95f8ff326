package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/gowallet/internal/domain"
)

func TestUserRepository(t *testing.T) {
	repo := NewUserRepository()
	ctx := context.Background()

	user := &domain.User{ID: "u-1", Email: "ada@example.com", FirstName: "Ada"}
	require.NoError(t, repo.Create(ctx, user))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{ID: "u-2", Email: "ada@example.com"}), domain.ErrUserAlreadyExists)

	got, err := repo.GetByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u-1", got.ID)

	got, err = repo.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Ada", got.FirstName)

	_, err = repo.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestSessionStore(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	require.NoError(t, store.Save(ctx, &domain.Session{Token: "tok", UserID: "u-1", ExpiresAt: now.Add(time.Hour)}))

	s, err := store.Get(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.UserID)

	now = now.Add(2 * time.Hour)
	_, err = store.Get(ctx, "tok")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	require.NoError(t, store.Save(ctx, &domain.Session{Token: "tok2", UserID: "u-1", ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, store.Delete(ctx, "tok2"))
	_, err = store.Get(ctx, "tok2")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestIdempotencyStore(t *testing.T) {
	store := NewIdempotencyStore()
	ctx := context.Background()

	exists, _, err := store.CheckAndSet(ctx, "k", []byte("processing"), time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, store.Update(ctx, "k", []byte("done"), time.Minute))

	exists, value, err := store.CheckAndSet(ctx, "k", []byte("processing"), time.Minute)
	require.NoError(t, err)
	assert.True(t, exists)
	assert.Equal(t, []byte("done"), value)

	require.NoError(t, store.Delete(ctx, "k"))
	exists, _, err = store.CheckAndSet(ctx, "k", []byte("processing"), time.Minute)
	require.NoError(t, err)
	assert.False(t, exists)
}
