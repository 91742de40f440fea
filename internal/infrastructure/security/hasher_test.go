package security

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/infrastructure/queue"
)

func newTestHasher(t *testing.T) *BcryptHasher {
	t.Helper()
	h, err := NewBcryptHasher(bcrypt.MinCost)
	require.NoError(t, err)
	return h
}

func TestNewBcryptHasher_InvalidCost(t *testing.T) {
	for _, cost := range []int{0, 3, 32} {
		_, err := NewBcryptHasher(cost)
		assert.Error(t, err, "cost %d", cost)
	}
}

func TestBcryptHasher_HashAndVerify(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()

	t.Run("round trip", func(t *testing.T) {
		for _, pw := range []string{"hunter2", "p", "pässwörd with spaces", strings.Repeat("x", 72)} {
			hash, err := h.Hash(ctx, pw)
			require.NoError(t, err)
			assert.NotEqual(t, pw, hash)

			ok, err := h.Verify(ctx, pw, hash)
			require.NoError(t, err)
			assert.True(t, ok, "password %q", pw)
		}
	})

	t.Run("different plaintext fails", func(t *testing.T) {
		hash, err := h.Hash(ctx, "hunter2")
		require.NoError(t, err)

		for _, other := range []string{"hunter3", "Hunter2", "", "hunter2 "} {
			ok, err := h.Verify(ctx, other, hash)
			require.NoError(t, err)
			assert.False(t, ok, "password %q", other)
		}
	})

	t.Run("fresh salt per call", func(t *testing.T) {
		h1, err := h.Hash(ctx, "samepassword")
		require.NoError(t, err)
		h2, err := h.Hash(ctx, "samepassword")
		require.NoError(t, err)
		assert.NotEqual(t, h1, h2)
	})
}

func TestBcryptHasher_InvalidHash(t *testing.T) {
	h := newTestHasher(t)

	ok, err := h.Verify(context.Background(), "hunter2", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.True(t, errors.Is(err, domain.ErrHashing), "got %v", err)
}

func TestBcryptHasher_LongPasswordIsTruncated(t *testing.T) {
	h := newTestHasher(t)
	ctx := context.Background()
	long := strings.Repeat("x", 80)

	hash, err := h.Hash(ctx, long)
	require.NoError(t, err)

	ok, err := h.Verify(ctx, long, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	// only the first 72 bytes take part in the comparison
	ok, err = h.Verify(ctx, strings.Repeat("x", 72)+"different-tail", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, strings.Repeat("x", 71), hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBcryptHasher_VerifiesHashOfTruncatedInput(t *testing.T) {
	h := newTestHasher(t)
	long := strings.Repeat("é", 50) // 100 bytes of two-byte runes

	stored, err := bcrypt.GenerateFromPassword([]byte(long)[:72], bcrypt.MinCost)
	require.NoError(t, err)

	ok, err := h.Verify(context.Background(), long, string(stored))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestPooledHasher(t *testing.T) {
	d := queue.NewDispatcher(2, zerolog.Nop())
	d.Start(context.Background())
	defer d.Stop()

	h := NewPooledHasher(newTestHasher(t), d)
	ctx := context.Background()

	hash, err := h.Hash(ctx, "hunter2")
	require.NoError(t, err)

	ok, err := h.Verify(ctx, "hunter2", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = h.Verify(ctx, "wrong", hash)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPooledHasher_CancelledContext(t *testing.T) {
	d := queue.NewDispatcher(1, zerolog.Nop())
	// not started: nothing will ever pick the job up
	h := NewPooledHasher(newTestHasher(t), d)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.Hash(ctx, "hunter2")
	assert.ErrorIs(t, err, context.Canceled)
}
