//go:build unit

package usecase_test

import (
	"context"
	"testing"
	"time"

	"shopbook/internal/domain/user"
	"shopbook/internal/pkg/jwt"
	"shopbook/internal/pkg/password"
	"shopbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserStore struct {
	byEmail map[string]*usecase.AuthorizedUser
	byID    map[uuid.UUID]*usecase.AuthorizedUser
	hash    string
}

func (f *fakeUserStore) FindByEmail(_ context.Context, email string) (*usecase.AuthorizedUser, string, error) {
	if v, ok := f.byEmail[email]; ok {
		return v, f.hash, nil
	}
	return nil, "", usecase.ErrUserNotFound
}

func (f *fakeUserStore) FindByID(_ context.Context, id uuid.UUID) (*usecase.AuthorizedUser, error) {
	if v, ok := f.byID[id]; ok {
		return v, nil
	}
	return nil, usecase.ErrUserNotFound
}

func newAuthFixture(t *testing.T) (*fakeUserStore, usecase.AuthUseCase, *usecase.AuthorizedUser) {
	t.Helper()

	hash, err := password.HashPassword("correct-horse-battery")
	require.NoError(t, err)

	view := &usecase.AuthorizedUser{
		ID:       uuid.New(),
		Email:    "customer@example.com",
		Name:     "Jordan",
		Role:     "customer",
		IsActive: true,
	}
	store := &fakeUserStore{
		byEmail: map[string]*usecase.AuthorizedUser{view.Email: view},
		byID:    map[uuid.UUID]*usecase.AuthorizedUser{view.ID: view},
		hash:    hash,
	}
	sut := usecase.NewAuthUseCase(store, jwt.NewService("test-secret", time.Hour))
	return store, sut, view
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("valid credentials return a token and the user", func(t *testing.T) {
		_, sut, view := newAuthFixture(t)

		token, got, err := sut.Login(ctx, view.Email, "correct-horse-battery")

		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, view.ID, got.ID)

		// Round trip: the issued token identifies the same user.
		id, role, err := sut.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, view.ID, id)
		assert.Equal(t, user.RoleCustomer, role)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, sut, view := newAuthFixture(t)

		_, _, err := sut.Login(ctx, view.Email, "wrong-password")

		require.ErrorIs(t, err, usecase.ErrInvalidCredentials)
	})

	t.Run("unknown email reports the same error as a wrong password", func(t *testing.T) {
		_, sut, _ := newAuthFixture(t)

		_, _, err := sut.Login(ctx, "nobody@example.com", "correct-horse-battery")

		require.ErrorIs(t, err, usecase.ErrInvalidCredentials)
	})

	t.Run("inactive account", func(t *testing.T) {
		_, sut, view := newAuthFixture(t)
		view.IsActive = false

		_, _, err := sut.Login(ctx, view.Email, "correct-horse-battery")

		require.ErrorIs(t, err, usecase.ErrUserInactive)
	})
}

func TestGetCurrentUser(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the profile", func(t *testing.T) {
		_, sut, view := newAuthFixture(t)

		got, err := sut.GetCurrentUser(ctx, view.ID)

		require.NoError(t, err)
		assert.Equal(t, view.Email, got.Email)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, sut, _ := newAuthFixture(t)

		_, err := sut.GetCurrentUser(ctx, uuid.New())

		require.ErrorIs(t, err, usecase.ErrUserNotFound)
	})

	t.Run("inactive user", func(t *testing.T) {
		_, sut, view := newAuthFixture(t)
		view.IsActive = false

		_, err := sut.GetCurrentUser(ctx, view.ID)

		require.ErrorIs(t, err, usecase.ErrUserInactive)
	})
}

func TestValidateToken(t *testing.T) {
	t.Run("garbage token", func(t *testing.T) {
		_, sut, _ := newAuthFixture(t)

		_, _, err := sut.ValidateToken("not-a-jwt")

		require.ErrorIs(t, err, usecase.ErrTokenValidation)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		_, sut, view := newAuthFixture(t)

		foreign := jwt.NewService("another-secret", time.Hour)
		token, err := foreign.GenerateToken(view.ID, user.RoleCustomer)
		require.NoError(t, err)

		_, _, err = sut.ValidateToken(token)

		require.ErrorIs(t, err, usecase.ErrTokenValidation)
	})
}
