package usecase

import (
	"context"

	"shopbook/internal/domain/user"
	"shopbook/internal/pkg/errs"
	"shopbook/internal/pkg/jwt"
	"shopbook/internal/pkg/password"

	"github.com/google/uuid"
)

var (
	ErrUserNotFound       = errs.New("user not found")
	ErrInvalidCredentials = errs.New("invalid email or password")
	ErrUserInactive       = errs.New("user account is inactive")
	ErrTokenGeneration    = errs.New("token generation failed")
	ErrTokenValidation    = errs.New("token validation failed")
)

type AuthorizedUser struct {
	ID       uuid.UUID
	Email    string
	Name     string
	Role     string
	IsActive bool
}

type UserReadStore interface {
	// FindByEmail returns the user view together with the stored password
	// hash; the hash never leaves the usecase layer.
	FindByEmail(ctx context.Context, email string) (*AuthorizedUser, string, error)
	FindByID(ctx context.Context, id uuid.UUID) (*AuthorizedUser, error)
}

type TokenValidator interface {
	ValidateToken(tokenString string) (uuid.UUID, user.Role, error)
}

type AuthUseCase interface {
	Login(ctx context.Context, email, rawPassword string) (string, *AuthorizedUser, error)
	GetCurrentUser(ctx context.Context, userID uuid.UUID) (*AuthorizedUser, error)
	TokenValidator
}

type authUseCaseImpl struct {
	users      UserReadStore
	jwtService *jwt.Service
}

func NewAuthUseCase(users UserReadStore, jwtService *jwt.Service) AuthUseCase {
	return &authUseCaseImpl{
		users:      users,
		jwtService: jwtService,
	}
}

func (a *authUseCaseImpl) Login(ctx context.Context, email, rawPassword string) (string, *AuthorizedUser, error) {
	view, hashedPassword, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		// Same error as a password mismatch to prevent user enumeration.
		return "", nil, ErrInvalidCredentials
	}
	if !view.IsActive {
		return "", nil, ErrUserInactive
	}

	if err := password.ComparePassword(hashedPassword, rawPassword); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	role := user.Role(view.Role)
	if !role.IsValid() {
		return "", nil, ErrInvalidCredentials
	}

	token, err := a.jwtService.GenerateToken(view.ID, role)
	if err != nil {
		return "", nil, errs.Mark(err, ErrTokenGeneration)
	}

	return token, view, nil
}

func (a *authUseCaseImpl) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*AuthorizedUser, error) {
	view, err := a.users.FindByID(ctx, userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	if !view.IsActive {
		return nil, ErrUserInactive
	}
	return view, nil
}

func (a *authUseCaseImpl) ValidateToken(tokenString string) (uuid.UUID, user.Role, error) {
	claims, err := a.jwtService.ValidateToken(tokenString)
	if err != nil {
		return uuid.Nil, "", errs.Mark(err, ErrTokenValidation)
	}

	role := user.Role(claims.Role)
	if !role.IsValid() {
		return uuid.Nil, "", ErrTokenValidation
	}

	return claims.UserID, role, nil
}
