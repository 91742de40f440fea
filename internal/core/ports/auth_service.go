package ports

import (
	"context"

	"github.com/inotebook/backend/internal/core/domain"
)

// RegisterInput is the typed registration payload.
type RegisterInput struct {
	Name     string `json:"name"     validate:"min=3"`
	Email    string `json:"email"    validate:"email"`
	Password string `json:"password" validate:"min=5"`
}

// LoginInput is the typed login payload.
type LoginInput struct {
	Email    string `json:"email"    validate:"email"`
	Password string `json:"password" validate:"required"`
}

// AuthResult is returned by a successful register or login.
type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*AuthResult, error)
	Login(ctx context.Context, in LoginInput) (*AuthResult, error)
	GetCurrentUser(ctx context.Context, userID string) (*domain.User, error)
}
