package ports

import (
	"context"

	"github.com/inotebook/backend/internal/core/domain"
)

// NoteChanges holds the fields of a partial update; nil means unchanged.
type NoteChanges struct {
	Title       *string
	Description *string
	Tag         *string
}

// Empty reports whether no field is set.
func (c NoteChanges) Empty() bool {
	return c.Title == nil && c.Description == nil && c.Tag == nil
}

// NoteRepository persists notes. Every lookup is scoped to the owner, so a
// note belonging to someone else behaves exactly like a missing note.
type NoteRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Note, error)
	Create(ctx context.Context, note *domain.Note) (*domain.Note, error)
	Update(ctx context.Context, userID, noteID string, changes NoteChanges) (*domain.Note, error)
	Delete(ctx context.Context, userID, noteID string) (*domain.Note, error)
}
