package readstore

import (
	"context"

	"shopbook/internal/infra"
	"shopbook/internal/infra/db"
	"shopbook/internal/usecase"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserReadStore struct {
	db db.DBTX
}

func NewUserReadStore(pool *pgxpool.Pool) *UserReadStore {
	return &UserReadStore{db: pool}
}

func (s *UserReadStore) FindByEmail(ctx context.Context, email string) (*usecase.AuthorizedUser, string, error) {
	const query = `
		SELECT id, email, name, role, is_active, password_hash
		FROM users
		WHERE email = $1`

	var view usecase.AuthorizedUser
	var passwordHash string
	err := s.db.QueryRow(ctx, query, email).Scan(
		&view.ID, &view.Email, &view.Name, &view.Role, &view.IsActive, &passwordHash,
	)
	if err != nil {
		return nil, "", infra.WrapPgErr("failed to find user by email", err)
	}

	return &view, passwordHash, nil
}

func (s *UserReadStore) FindByID(ctx context.Context, id uuid.UUID) (*usecase.AuthorizedUser, error) {
	const query = `
		SELECT id, email, name, role, is_active
		FROM users
		WHERE id = $1`

	var view usecase.AuthorizedUser
	err := s.db.QueryRow(ctx, query, id).Scan(
		&view.ID, &view.Email, &view.Name, &view.Role, &view.IsActive,
	)
	if err != nil {
		return nil, infra.WrapPgErr("failed to find user", err)
	}

	return &view, nil
}
