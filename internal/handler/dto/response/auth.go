package response

import (
	"shopbook/internal/usecase"

	"github.com/google/uuid"
)

type LoginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Name  string    `json:"name"`
	Role  string    `json:"role"`
}

func FromAuthorizedUser(token string, view *usecase.AuthorizedUser) *LoginResponse {
	return &LoginResponse{
		AccessToken: token,
		User: UserResponse{
			ID:    view.ID,
			Email: view.Email,
			Name:  view.Name,
			Role:  view.Role,
		},
	}
}
