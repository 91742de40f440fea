package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inotebook/backend/internal/core/domain"
	"github.com/inotebook/backend/internal/core/ports"
)

const collectionNotes = "notes"

// NoteRepository implements ports.NoteRepository. Every query filters on the
// owner as well as the note id.
type NoteRepository struct {
	col *mongo.Collection
}

func NewNoteRepository(db *mongo.Database) *NoteRepository {
	return &NoteRepository{col: db.Collection(collectionNotes)}
}

type mongoNote struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	User        primitive.ObjectID `bson:"user"`
	Title       string             `bson:"title"`
	Description string             `bson:"description"`
	Tag         string             `bson:"tag"`
	Date        time.Time          `bson:"date"`
}

func (n mongoNote) toDomain() *domain.Note {
	return &domain.Note{
		ID:          n.ID.Hex(),
		UserID:      n.User.Hex(),
		Title:       n.Title,
		Description: n.Description,
		Tag:         n.Tag,
		Date:        n.Date.UTC(),
	}
}

// ListByUser returns the owner's notes, newest first.
func (r *NoteRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Note, error) {
	owner, err := toObjectID(userID)
	if err != nil {
		return []*domain.Note{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"user": owner}, options.Find().SetSort(bson.D{{Key: "date", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("find notes: %w", err)
	}

	var docs []mongoNote
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode notes: %w", err)
	}

	notes := make([]*domain.Note, 0, len(docs))
	for _, d := range docs {
		notes = append(notes, d.toDomain())
	}
	return notes, nil
}

func (r *NoteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	owner, err := toObjectID(note.UserID)
	if err != nil {
		return nil, fmt.Errorf("note owner: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	doc := mongoNote{
		ID:          primitive.NewObjectID(),
		User:        owner,
		Title:       note.Title,
		Description: note.Description,
		Tag:         note.Tag,
		Date:        note.Date,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert note: %w", err)
	}
	return doc.toDomain(), nil
}

// Update sets the provided fields and returns the note as stored afterwards.
// With no changes it returns the current note.
func (r *NoteRepository) Update(ctx context.Context, userID, noteID string, changes ports.NoteChanges) (*domain.Note, error) {
	filter, err := ownedFilter(userID, noteID)
	if err != nil {
		return nil, domain.ErrNoteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if changes.Empty() {
		return decodeNote(r.col.FindOne(ctx, filter))
	}

	set := bson.M{}
	if changes.Title != nil {
		set["title"] = *changes.Title
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.Tag != nil {
		set["tag"] = *changes.Tag
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	return decodeNote(r.col.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, opts))
}

// Delete removes the note and returns it as it was before deletion.
func (r *NoteRepository) Delete(ctx context.Context, userID, noteID string) (*domain.Note, error) {
	filter, err := ownedFilter(userID, noteID)
	if err != nil {
		return nil, domain.ErrNoteNotFound
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	return decodeNote(r.col.FindOneAndDelete(ctx, filter))
}

// EnsureIndexes creates the owner/date index used by ListByUser.
func (r *NoteRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, indexTimeout)
	defer cancel()

	_, err := r.col.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}},
	})
	return err
}

func ownedFilter(userID, noteID string) (bson.M, error) {
	id, err := toObjectID(noteID)
	if err != nil {
		return nil, err
	}
	owner, err := toObjectID(userID)
	if err != nil {
		return nil, err
	}
	return bson.M{"_id": id, "user": owner}, nil
}

func decodeNote(res *mongo.SingleResult) (*domain.Note, error) {
	var doc mongoNote
	if err := res.Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrNoteNotFound
		}
		return nil, fmt.Errorf("decode note: %w", err)
	}
	return doc.toDomain(), nil
}
