package ports

import "context"

// PasswordHasher hashes and verifies passwords with an adaptive one-way function.
type PasswordHasher interface {
	Hash(ctx context.Context, plaintext string) (string, error)
	// Verify returns (false, nil) on mismatch and an error only when the
	// stored hash cannot be used.
	Verify(ctx context.Context, plaintext, hash string) (bool, error)
}

// TokenIssuer creates and checks stateless session tokens.
type TokenIssuer interface {
	Issue(userID string) (string, error)
	Verify(token string) (string, error)
}

// LoginThrottle tracks failed logins per email.
type LoginThrottle interface {
	Blocked(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	Reset(ctx context.Context, email string) error
}
