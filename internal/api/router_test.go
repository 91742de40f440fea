package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/inotebook/backend/internal/api/middleware"
	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/core/ports"
)

type stubAuthService struct {
	registerErr error
	loginErr    error
	user        *domain.User
}

func (s *stubAuthService) Register(_ context.Context, in ports.RegisterInput) (*ports.AuthResult, error) {
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return &ports.AuthResult{User: &domain.User{ID: "u1", Name: in.Name, Email: in.Email}, Token: "tok-u1"}, nil
}

func (s *stubAuthService) Login(_ context.Context, _ ports.LoginInput) (*ports.AuthResult, error) {
	if s.loginErr != nil {
		return nil, s.loginErr
	}
	return &ports.AuthResult{User: s.user, Token: "tok-u1"}, nil
}

func (s *stubAuthService) GetCurrentUser(_ context.Context, userID string) (*domain.User, error) {
	if s.user == nil || s.user.ID != userID {
		return nil, domain.ErrUserNotFound
	}
	return s.user, nil
}

type stubNoteService struct {
	err error
}

func (s *stubNoteService) FetchAll(_ context.Context, userID string) ([]*domain.Note, error) {
	return []*domain.Note{{ID: "n1", UserID: userID}}, s.err
}

func (s *stubNoteService) Add(_ context.Context, userID string, in ports.NoteInput) (*domain.Note, error) {
	return &domain.Note{ID: "n2", UserID: userID, Title: in.Title}, s.err
}

func (s *stubNoteService) Update(_ context.Context, userID, noteID string, _ ports.NoteUpdateInput) (*domain.Note, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Note{ID: noteID, UserID: userID}, nil
}

func (s *stubNoteService) Delete(_ context.Context, userID, noteID string) (*domain.Note, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domain.Note{ID: noteID, UserID: userID}, nil
}

// stubVerifier accepts "tok-<id>" and rejects everything else.
type stubVerifier struct{}

func (stubVerifier) Verify(token string) (string, error) {
	id, ok := strings.CutPrefix(token, "tok-")
	if !ok {
		return "", domain.ErrInvalidToken
	}
	return id, nil
}

func newTestRouter(auth *stubAuthService, notes *stubNoteService) *echo.Echo {
	return NewRouter(Deps{
		Auth:   auth,
		Notes:  notes,
		Tokens: stubVerifier{},
		Log:    zerolog.Nop(),
	})
}

func do(e *echo.Echo, method, path, body, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(middleware.TokenHeader, token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json %q: %v", rec.Body.String(), err)
	}
	return resp
}

func TestRouter_CreateUser(t *testing.T) {
	e := newTestRouter(&stubAuthService{}, &stubNoteService{})

	rec := do(e, http.MethodPost, "/api/auth/createuser", `{"name":"Ann","email":"ann@x.com","password":"hunter2"}`, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if resp := decode(t, rec); resp["authToken"] != "tok-u1" || resp["success"] != true {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestRouter_ErrorEnvelope(t *testing.T) {
	validation := &domain.ValidationError{Fields: []domain.FieldError{
		{Field: "name", Msg: "name must be at least 3 characters"},
		{Field: "email", Msg: "Enter a valid email"},
	}}

	cases := []struct {
		name    string
		auth    *stubAuthService
		path    string
		body    string
		code    int
		message string
	}{
		{
			name: "duplicate email",
			auth: &stubAuthService{registerErr: domain.ErrDuplicateEmail},
			path: "/api/auth/createuser", body: `{}`,
			code: http.StatusBadRequest, message: "Sorry a user with this email already exists",
		},
		{
			name: "invalid credentials",
			auth: &stubAuthService{loginErr: domain.ErrInvalidCredentials},
			path: "/api/auth/login", body: `{}`,
			code: http.StatusBadRequest, message: "Please try to login with correct credentials",
		},
		{
			name: "throttled",
			auth: &stubAuthService{loginErr: domain.ErrTooManyAttempts},
			path: "/api/auth/login", body: `{}`,
			code: http.StatusTooManyRequests, message: "Too many failed login attempts, try again later",
		},
		{
			name: "internal error hides cause",
			auth: &stubAuthService{registerErr: fmt.Errorf("%w: register: create user: %w", domain.ErrInternal, errors.New("mongo: connection refused"))},
			path: "/api/auth/createuser", body: `{}`,
			code: http.StatusInternalServerError, message: "Internal server error",
		},
		{
			name: "internal error wrapping a domain sentinel stays 500",
			auth: &stubAuthService{registerErr: fmt.Errorf("%w: register: hash password: %w", domain.ErrInternal, domain.ErrHashing)},
			path: "/api/auth/createuser", body: `{}`,
			code: http.StatusInternalServerError, message: "Internal server error",
		},
		{
			name: "malformed body",
			auth: &stubAuthService{},
			path: "/api/auth/login", body: `{`,
			code: http.StatusBadRequest, message: "invalid payload",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := newTestRouter(tc.auth, &stubNoteService{})

			rec := do(e, http.MethodPost, tc.path, tc.body, "")

			if rec.Code != tc.code {
				t.Fatalf("expected %d, got %d", tc.code, rec.Code)
			}
			resp := decode(t, rec)
			if resp["success"] != false || resp["error"] != tc.message {
				t.Fatalf("unexpected payload: %+v", resp)
			}
			if strings.Contains(rec.Body.String(), "mongo") {
				t.Fatalf("internal cause leaked: %s", rec.Body.String())
			}
		})
	}

	t.Run("validation", func(t *testing.T) {
		e := newTestRouter(&stubAuthService{registerErr: validation}, &stubNoteService{})

		rec := do(e, http.MethodPost, "/api/auth/createuser", `{}`, "")

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400, got %d", rec.Code)
		}
		errs, ok := decode(t, rec)["errors"].([]any)
		if !ok || len(errs) != 2 {
			t.Fatalf("expected 2 field errors, got %s", rec.Body.String())
		}
		first := errs[0].(map[string]any)
		if first["field"] != "name" || first["msg"] == "" {
			t.Fatalf("unexpected field error: %+v", first)
		}
	})
}

func TestRouter_GetUser(t *testing.T) {
	auth := &stubAuthService{user: &domain.User{ID: "u1", Name: "Ann", Email: "ann@x.com"}}
	e := newTestRouter(auth, &stubNoteService{})

	t.Run("missing token", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/auth/getUser", "", "")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
		if resp := decode(t, rec); resp["error"] != "Please authenticate using a valid token" {
			t.Fatalf("unexpected payload: %+v", resp)
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/auth/getUser", "", "forged")
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401, got %d", rec.Code)
		}
	})

	t.Run("valid token", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/auth/getUser", "", "tok-u1")
		if rec.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", rec.Code)
		}
		user, ok := decode(t, rec)["user"].(map[string]any)
		if !ok || user["_id"] != "u1" {
			t.Fatalf("unexpected payload: %s", rec.Body.String())
		}
	})

	t.Run("deleted user", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/auth/getUser", "", "tok-gone")
		if rec.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", rec.Code)
		}
	})
}

func TestRouter_Notes(t *testing.T) {
	e := newTestRouter(&stubAuthService{}, &stubNoteService{})

	if rec := do(e, http.MethodGet, "/api/notes/fetchallnotes", "", ""); rec.Code != http.StatusUnauthorized {
		t.Fatalf("notes must require a token, got %d", rec.Code)
	}

	rec := do(e, http.MethodGet, "/api/notes/fetchallnotes", "", "tok-u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = do(e, http.MethodPut, "/api/notes/updatenote/n7", `{"title":"Renamed"}`, "tok-u1")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if note := decode(t, rec)["note"].(map[string]any); note["_id"] != "n7" || note["user"] != "u1" {
		t.Fatalf("unexpected note: %+v", note)
	}

	missing := newTestRouter(&stubAuthService{}, &stubNoteService{err: domain.ErrNoteNotFound})
	if rec := do(missing, http.MethodDelete, "/api/notes/deletenote/n7", "", "tok-u1"); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestRouter_UnknownRoute(t *testing.T) {
	e := newTestRouter(&stubAuthService{}, &stubNoteService{})

	rec := do(e, http.MethodGet, "/nope", "", "")

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	if resp := decode(t, rec); resp["success"] != false {
		t.Fatalf("unexpected payload: %+v", resp)
	}
}

func TestRouter_OperationalEndpoints(t *testing.T) {
	e := newTestRouter(&stubAuthService{}, &stubNoteService{})

	if rec := do(e, http.MethodGet, "/health", "", ""); rec.Code != http.StatusOK {
		t.Fatalf("health: expected 200, got %d", rec.Code)
	}

	rec := do(e, http.MethodGet, "/metrics", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inotebook_http_request_duration_seconds") {
		t.Fatalf("expected request histogram in metrics output")
	}
}
