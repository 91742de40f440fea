package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/core/ports"
	"github.com/inotebook/backend/internal/pkg/metrics"
	"github.com/inotebook/backend/internal/pkg/validation"
)

const (
	defaultOperationTimeout = 10 * time.Second
	dummyPassword           = "inotebook-timing-equaliser"
)

// AuthOptions holds the optional collaborators of AuthService.
type AuthOptions struct {
	// Throttle limits failed logins per email. Nil disables throttling.
	Throttle ports.LoginThrottle
	// Timeout bounds every call into the directory and the hasher.
	Timeout time.Duration
}

// AuthService implements registration, login and identity lookup.
type AuthService struct {
	users    ports.UserDirectory
	hasher   ports.PasswordHasher
	tokens   ports.TokenIssuer
	throttle ports.LoginThrottle
	validate *validation.Validator
	timeout  time.Duration
	log      zerolog.Logger

	dummyMu   sync.Mutex
	dummyHash string
}

func NewAuthService(
	users ports.UserDirectory,
	hasher ports.PasswordHasher,
	tokens ports.TokenIssuer,
	log zerolog.Logger,
	opts AuthOptions,
) *AuthService {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultOperationTimeout
	}
	return &AuthService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		throttle: opts.Throttle,
		validate: validation.New(),
		timeout:  opts.Timeout,
		log:      log,
	}
}

// Register creates an account and returns it together with a session token.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if err := s.validateInput(in); err != nil {
		metrics.RegistrationsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	// Fast path only: the unique index on email is what actually prevents
	// two concurrent registrations from both succeeding.
	_, err := s.users.FindByEmail(ctx, in.Email)
	switch {
	case err == nil:
		metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
		return nil, domain.ErrDuplicateEmail
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, s.registerFailed("lookup user", err)
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return nil, s.registerFailed("hash password", err)
	}

	user, err := s.users.Create(ctx, &domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		Date:         time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, domain.ErrDuplicateEmail) {
			metrics.RegistrationsTotal.WithLabelValues("duplicate").Inc()
			return nil, domain.ErrDuplicateEmail
		}
		return nil, s.registerFailed("create user", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.registerFailed("issue token", err)
	}

	metrics.RegistrationsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user registered")

	return &ports.AuthResult{User: user.Public(), Token: token}, nil
}

// Login checks credentials and returns a session token. Unknown email and
// wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, in ports.LoginInput) (*ports.AuthResult, error) {
	if err := s.validateInput(in); err != nil {
		metrics.LoginsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if s.isThrottled(ctx, in.Email) {
		metrics.LoginsTotal.WithLabelValues("throttled").Inc()
		return nil, domain.ErrTooManyAttempts
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			// burn the same bcrypt time as a real mismatch
			s.verifyDummy(ctx, in.Password)
			return nil, s.badCredentials(ctx, in.Email)
		}
		return nil, s.loginFailed("lookup user", err)
	}

	ok, err := s.hasher.Verify(ctx, in.Password, user.PasswordHash)
	if err != nil {
		return nil, s.loginFailed("verify password", err)
	}
	if !ok {
		return nil, s.badCredentials(ctx, in.Email)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, s.loginFailed("issue token", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, in.Email); err != nil {
			s.log.Warn().Err(err).Str("user_id", user.ID).Msg("failed to reset login throttle")
		}
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	s.log.Info().Str("user_id", user.ID).Msg("user logged in")

	return &ports.AuthResult{User: user.Public(), Token: token}, nil
}

// GetCurrentUser returns the account of an already authenticated user.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: get current user: %w", domain.ErrInternal, err)
	}
	return user.Public(), nil
}

func (s *AuthService) validateInput(in any) error {
	err := s.validate.Validate(in)
	if err == nil || errors.Is(err, domain.ErrValidation) {
		return err
	}
	return fmt.Errorf("%w: validate input: %w", domain.ErrInternal, err)
}

func (s *AuthService) isThrottled(ctx context.Context, email string) bool {
	if s.throttle == nil {
		return false
	}
	blocked, err := s.throttle.Blocked(ctx, email)
	if err != nil {
		s.log.Warn().Err(err).Msg("login throttle check failed, allowing attempt")
		return false
	}
	return blocked
}

func (s *AuthService) badCredentials(ctx context.Context, email string) error {
	if s.throttle != nil {
		if err := s.throttle.RecordFailure(ctx, email); err != nil {
			s.log.Warn().Err(err).Msg("failed to record login failure")
		}
	}
	metrics.LoginsTotal.WithLabelValues("bad_credentials").Inc()
	return domain.ErrInvalidCredentials
}

func (s *AuthService) verifyDummy(ctx context.Context, password string) {
	if hash := s.dummyPasswordHash(ctx); hash != "" {
		_, _ = s.hasher.Verify(ctx, password, hash)
	}
}

// dummyPasswordHash hashes dummyPassword on first use and keeps retrying on
// later calls until it succeeds. The hash is detached from the caller's
// cancellation so an aborted request cannot leave it unset.
func (s *AuthService) dummyPasswordHash(ctx context.Context) string {
	s.dummyMu.Lock()
	defer s.dummyMu.Unlock()

	if s.dummyHash != "" {
		return s.dummyHash
	}

	hctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	hash, err := s.hasher.Hash(hctx, dummyPassword)
	if err != nil {
		s.log.Warn().Err(err).Msg("failed to prepare dummy hash")
		return ""
	}
	s.dummyHash = hash
	return hash
}

func (s *AuthService) registerFailed(op string, err error) error {
	metrics.RegistrationsTotal.WithLabelValues("error").Inc()
	return fmt.Errorf("%w: register: %s: %w", domain.ErrInternal, op, err)
}

func (s *AuthService) loginFailed(op string, err error) error {
	metrics.LoginsTotal.WithLabelValues("error").Inc()
	return fmt.Errorf("%w: login: %s: %w", domain.ErrInternal, op, err)
}
