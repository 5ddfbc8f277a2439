package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/sodam/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *UserStore {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", "sodam.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open("  ")
	assert.Error(t, err)
}

func TestNewUserStore_NilDB(t *testing.T) {
	_, err := NewUserStore(nil)
	assert.Error(t, err)
}

func TestUserStore_CreateAndGet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	user := &domain.User{
		ID:           "7d9f3c1e-0000-4000-8000-000000000001",
		Email:        "owner@example.com",
		Name:         "Owner",
		PasswordHash: "hash",
	}
	require.NoError(t, s.Create(ctx, user))
	assert.False(t, user.CreatedAt.IsZero())

	byEmail, err := s.GetByEmail(ctx, "owner@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)
	assert.Equal(t, "Owner", byEmail.Name)
	assert.Equal(t, "hash", byEmail.PasswordHash)
	assert.WithinDuration(t, user.CreatedAt, byEmail.CreatedAt, time.Second)

	byID, err := s.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", byID.Email)
}

func TestUserStore_NotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	_, err = s.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestUserStore_DuplicateEmail(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &domain.User{ID: "u1", Email: "dup@example.com", Name: "A", PasswordHash: "h"}))
	err := s.Create(ctx, &domain.User{ID: "u2", Email: "dup@example.com", Name: "B", PasswordHash: "h"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
}
