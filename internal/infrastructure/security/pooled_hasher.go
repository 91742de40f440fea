package security

import (
	"context"

	"github.com/inotebook/backend/internal/core/ports"
)

// Runner executes a function on a bounded worker pool.
type Runner interface {
	Run(ctx context.Context, fn func()) error
}

// PooledHasher moves hashing work onto a Runner so request goroutines wait
// on a context-aware channel instead of competing for CPU.
type PooledHasher struct {
	inner  ports.PasswordHasher
	runner Runner
}

func NewPooledHasher(inner ports.PasswordHasher, runner Runner) *PooledHasher {
	return &PooledHasher{inner: inner, runner: runner}
}

func (h *PooledHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	var (
		hash string
		err  error
	)
	if runErr := h.runner.Run(ctx, func() {
		hash, err = h.inner.Hash(ctx, plaintext)
	}); runErr != nil {
		return "", runErr
	}
	return hash, err
}

func (h *PooledHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	var (
		ok  bool
		err error
	)
	if runErr := h.runner.Run(ctx, func() {
		ok, err = h.inner.Verify(ctx, plaintext, hash)
	}); runErr != nil {
		return false, runErr
	}
	return ok, err
}
