package storage

import (
	"context"
	"errors"

	"github.com/xaenox/study-bot/internal/models"
)

// ErrNotFound is returned when a record to update or delete does not exist
var ErrNotFound = errors.New("record not found")

// Storage durably keeps notebook records across restarts.
// Tags and comments of a note are written through their own methods;
// SaveNote ignores Note.Tags and Note.Comments.
type Storage interface {
	Load(ctx context.Context) (*models.Snapshot, error)

	SaveNote(ctx context.Context, note models.Note) error
	DeleteNote(ctx context.Context, noteID string) error

	SaveTag(ctx context.Context, tag models.Tag) error
	DeleteTag(ctx context.Context, tagID string) error

	// ReplaceNoteTags makes tagIDs the complete tag set of the note
	ReplaceNoteTags(ctx context.Context, noteID string, tagIDs []string) error

	// SaveComment inserts the comment or replaces the one with the same ID
	SaveComment(ctx context.Context, comment models.Comment) error

	Close() error
}
