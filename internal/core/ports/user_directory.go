package ports

import (
	"context"

	"github.com/inotebook/backend/internal/core/domain"
)

// UserDirectory is the persistence contract for accounts.
// Email uniqueness must be enforced by the store itself: Create returns
// domain.ErrDuplicateEmail when a conflicting insert is rejected.
type UserDirectory interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	// FindByID never populates PasswordHash.
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}
