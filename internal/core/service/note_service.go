package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/core/ports"
	"github.com/inotebook/backend/internal/pkg/metrics"
	"github.com/inotebook/backend/internal/pkg/validation"
)

// NoteService implements ports.NoteService on top of a NoteRepository.
type NoteService struct {
	repo     ports.NoteRepository
	validate *validation.Validator
	timeout  time.Duration
	log      zerolog.Logger
}

func NewNoteService(repo ports.NoteRepository, log zerolog.Logger, timeout time.Duration) *NoteService {
	if timeout <= 0 {
		timeout = defaultOperationTimeout
	}
	return &NoteService{
		repo:     repo,
		validate: validation.New(),
		timeout:  timeout,
		log:      log,
	}
}

// FetchAll returns the user's notes, newest first.
func (s *NoteService) FetchAll(ctx context.Context, userID string) ([]*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, s.failed("fetch_all", err)
	}
	if notes == nil {
		notes = []*domain.Note{}
	}
	metrics.NoteOperationsTotal.WithLabelValues("fetch_all", "success").Inc()
	return notes, nil
}

func (s *NoteService) Add(ctx context.Context, userID string, in ports.NoteInput) (*domain.Note, error) {
	if err := s.validateInput("add", in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tag := strings.TrimSpace(in.Tag)
	if tag == "" {
		tag = domain.DefaultNoteTag
	}

	note, err := s.repo.Create(ctx, &domain.Note{
		UserID:      userID,
		Title:       in.Title,
		Description: in.Description,
		Tag:         tag,
		Date:        time.Now().UTC(),
	})
	if err != nil {
		return nil, s.failed("add", err)
	}

	metrics.NoteOperationsTotal.WithLabelValues("add", "success").Inc()
	s.log.Debug().Str("user_id", userID).Str("note_id", note.ID).Msg("note created")
	return note, nil
}

// Update applies the provided fields to the user's note. Fields left nil
// keep their stored value.
func (s *NoteService) Update(ctx context.Context, userID, noteID string, in ports.NoteUpdateInput) (*domain.Note, error) {
	if err := s.validateInput("update", in); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	note, err := s.repo.Update(ctx, userID, noteID, ports.NoteChanges{
		Title:       in.Title,
		Description: in.Description,
		Tag:         in.Tag,
	})
	if err != nil {
		return nil, s.failed("update", err)
	}

	metrics.NoteOperationsTotal.WithLabelValues("update", "success").Inc()
	s.log.Debug().Str("user_id", userID).Str("note_id", noteID).Msg("note updated")
	return note, nil
}

func (s *NoteService) Delete(ctx context.Context, userID, noteID string) (*domain.Note, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	note, err := s.repo.Delete(ctx, userID, noteID)
	if err != nil {
		return nil, s.failed("delete", err)
	}

	metrics.NoteOperationsTotal.WithLabelValues("delete", "success").Inc()
	s.log.Debug().Str("user_id", userID).Str("note_id", noteID).Msg("note deleted")
	return note, nil
}

func (s *NoteService) validateInput(op string, in any) error {
	err := s.validate.Validate(in)
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrValidation) {
		metrics.NoteOperationsTotal.WithLabelValues(op, "invalid").Inc()
		return err
	}
	return s.failed(op, err)
}

func (s *NoteService) failed(op string, err error) error {
	if errors.Is(err, domain.ErrNoteNotFound) {
		metrics.NoteOperationsTotal.WithLabelValues(op, "not_found").Inc()
		return domain.ErrNoteNotFound
	}
	metrics.NoteOperationsTotal.WithLabelValues(op, "error").Inc()
	return fmt.Errorf("%w: %s note: %w", domain.ErrInternal, op, err)
}
