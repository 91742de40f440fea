package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/inotebook/backend/internal/core/domain"
)

// stubUserDirectory mirrors the Mongo adapter: Create enforces email
// uniqueness atomically, FindByID strips the hash.
type stubUserDirectory struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
	nextID  int

	findErr   error
	createErr error
	created   int
}

func newStubUserDirectory() *stubUserDirectory {
	return &stubUserDirectory{byEmail: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserDirectory) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	u, ok := r.byEmail[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserDirectory) FindByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.byEmail {
		if u.ID == id {
			clone := cloneUser(u)
			clone.PasswordHash = ""
			return clone, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserDirectory) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.byEmail[user.Email]; exists {
		return nil, domain.ErrDuplicateEmail
	}
	r.nextID++
	stored := cloneUser(user)
	stored.ID = fmt.Sprintf("user-%d", r.nextID)
	r.byEmail[stored.Email] = stored
	r.created++
	return cloneUser(stored), nil
}

func (r *stubUserDirectory) stored(email string) *domain.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.byEmail[email])
}

type stubThrottle struct {
	mu       sync.Mutex
	failures map[string]int
	max      int
	err      error
	resets   int
}

func newStubThrottle(max int) *stubThrottle {
	return &stubThrottle{failures: make(map[string]int), max: max}
}

func (t *stubThrottle) Blocked(_ context.Context, email string) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.err != nil {
		return false, t.err
	}
	return t.failures[email] >= t.max, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failures[email]++
	return t.err
}

func (t *stubThrottle) Reset(_ context.Context, email string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.failures, email)
	t.resets++
	return t.err
}

type stubHasher struct {
	hashErr   error
	verifyErr error
}

func (h *stubHasher) Hash(_ context.Context, plaintext string) (string, error) {
	if h.hashErr != nil {
		return "", h.hashErr
	}
	return "hashed:" + plaintext, nil
}

func (h *stubHasher) Verify(_ context.Context, plaintext, hash string) (bool, error) {
	if h.verifyErr != nil {
		return false, h.verifyErr
	}
	return hash == "hashed:"+plaintext, nil
}

// recordingHasher fails Hash with each queued error in turn and records the
// hashes Verify was asked to compare against.
type recordingHasher struct {
	stubHasher

	mu         sync.Mutex
	hashErrs   []error
	hashCtxErr []error
	verified   []string
}

func (h *recordingHasher) Hash(ctx context.Context, plaintext string) (string, error) {
	h.mu.Lock()
	h.hashCtxErr = append(h.hashCtxErr, ctx.Err())
	var err error
	if len(h.hashErrs) > 0 {
		err, h.hashErrs = h.hashErrs[0], h.hashErrs[1:]
	}
	h.mu.Unlock()
	if err != nil {
		return "", err
	}
	return h.stubHasher.Hash(ctx, plaintext)
}

func (h *recordingHasher) Verify(ctx context.Context, plaintext, hash string) (bool, error) {
	h.mu.Lock()
	h.verified = append(h.verified, hash)
	h.mu.Unlock()
	return h.stubHasher.Verify(ctx, plaintext, hash)
}
