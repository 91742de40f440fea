package ports

import (
	"context"

	"github.com/inotebook/backend/internal/core/domain"
)

// NoteInput is the payload for creating a note.
type NoteInput struct {
	Title       string `json:"title"       validate:"min=3"`
	Description string `json:"description" validate:"min=5"`
	Tag         string `json:"tag"`
}

// NoteUpdateInput is the payload for a partial note update.
type NoteUpdateInput struct {
	Title       *string `json:"title"       validate:"omitnil,min=3"`
	Description *string `json:"description" validate:"omitnil,min=5"`
	Tag         *string `json:"tag"`
}

type NoteService interface {
	FetchAll(ctx context.Context, userID string) ([]*domain.Note, error)
	Add(ctx context.Context, userID string, in NoteInput) (*domain.Note, error)
	Update(ctx context.Context, userID, noteID string, in NoteUpdateInput) (*domain.Note, error)
	Delete(ctx context.Context, userID, noteID string) (*domain.Note, error)
}
