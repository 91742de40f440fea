package domain

import "time"

// DefaultNoteTag is applied when a note is created without a tag.
const DefaultNoteTag = "General"

// Note is a piece of text owned by exactly one user.
type Note struct {
	ID          string    `json:"_id"`
	UserID      string    `json:"user"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Tag         string    `json:"tag"`
	Date        time.Time `json:"date"`
}
