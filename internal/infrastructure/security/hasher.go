package security

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/pkg/metrics"
)

// DefaultBcryptCost matches the cost bcryptjs uses for genSalt(10).
const DefaultBcryptCost = 10

// maxPasswordBytes is the most bcrypt reads of a password. Longer input is
// truncated, the same way bcryptjs does it, instead of being rejected.
const maxPasswordBytes = 72

// BcryptHasher hashes passwords with bcrypt. The salt is generated per call
// and embedded in the returned string. Immutable after construction.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher returns a hasher using cost, which must be within
// [bcrypt.MinCost, bcrypt.MaxCost].
func NewBcryptHasher(cost int) (*BcryptHasher, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d must be in [%d, %d]", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	return &BcryptHasher{cost: cost}, nil
}

func (h *BcryptHasher) Hash(_ context.Context, plaintext string) (string, error) {
	start := time.Now()
	hash, err := bcrypt.GenerateFromPassword(passwordBytes(plaintext), h.cost)
	metrics.PasswordHashDuration.WithLabelValues("hash").Observe(time.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("%w: %w", domain.ErrHashing, err)
	}
	return string(hash), nil
}

func (h *BcryptHasher) Verify(_ context.Context, plaintext, hash string) (bool, error) {
	start := time.Now()
	err := bcrypt.CompareHashAndPassword([]byte(hash), passwordBytes(plaintext))
	metrics.PasswordHashDuration.WithLabelValues("verify").Observe(time.Since(start).Seconds())

	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %w", domain.ErrHashing, err)
	}
}

func passwordBytes(plaintext string) []byte {
	b := []byte(plaintext)
	if len(b) > maxPasswordBytes {
		b = b[:maxPasswordBytes]
	}
	return b
}
