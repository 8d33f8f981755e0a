package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/study-bot/internal/models"
	"github.com/xaenox/study-bot/internal/storage"
)

func TestMemoryStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, s.SaveTag(ctx, models.Tag{ID: "t1", Name: "grammar", ColorHex: "FF0000", CreatedAt: now}))
	require.NoError(t, s.SaveTag(ctx, models.Tag{ID: "t2", Name: "verbs", ColorHex: "00FF00", CreatedAt: now}))
	require.NoError(t, s.SaveNote(ctx, models.Note{ID: "n1", Title: "Past Tense", CreationDate: now, LastCheckInDate: now}))
	require.NoError(t, s.SaveNote(ctx, models.Note{ID: "n2", Title: "Articles", CreationDate: now, LastCheckInDate: now}))
	require.NoError(t, s.ReplaceNoteTags(ctx, "n1", []string{"t1", "t2"}))
	require.NoError(t, s.SaveComment(ctx, models.Comment{ID: "c1", NoteID: "n1", Content: "irregular", Date: now}))

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Notes, 2)
	assert.Equal(t, "n1", snap.Notes[0].ID)
	assert.Equal(t, "n2", snap.Notes[1].ID)
	assert.Len(t, snap.Tags, 2)
	assert.ElementsMatch(t, []models.Link{{NoteID: "n1", TagID: "t1"}, {NoteID: "n1", TagID: "t2"}}, snap.Links)
	assert.Len(t, snap.Comments, 1)

	t.Run("UpdateKeepsOrder", func(t *testing.T) {
		require.NoError(t, s.SaveNote(ctx, models.Note{ID: "n1", Title: "Simple Past", CreationDate: now, LastCheckInDate: now}))
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Simple Past", snap.Notes[0].Title)
		assert.Equal(t, "n2", snap.Notes[1].ID)
	})

	t.Run("SaveCommentReplacesSameID", func(t *testing.T) {
		require.NoError(t, s.SaveComment(ctx, models.Comment{ID: "c1", NoteID: "n1", Content: "irregular verb", Date: now}))
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		require.Len(t, snap.Comments, 1)
		assert.Equal(t, "irregular verb", snap.Comments[0].Content)
	})

	t.Run("DeleteTagDropsLinks", func(t *testing.T) {
		require.NoError(t, s.DeleteTag(ctx, "t2"))
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Equal(t, []models.Link{{NoteID: "n1", TagID: "t1"}}, snap.Links)
	})

	t.Run("DeleteNoteDropsComments", func(t *testing.T) {
		require.NoError(t, s.DeleteNote(ctx, "n1"))
		snap, err := s.Load(ctx)
		require.NoError(t, err)
		assert.Len(t, snap.Notes, 1)
		assert.Empty(t, snap.Links)
		assert.Empty(t, snap.Comments)
	})
}

func TestMemoryStorage_NotFound(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStorage()

	assert.ErrorIs(t, s.DeleteNote(ctx, "missing"), storage.ErrNotFound)
	assert.ErrorIs(t, s.DeleteTag(ctx, "missing"), storage.ErrNotFound)
	assert.ErrorIs(t, s.ReplaceNoteTags(ctx, "missing", nil), storage.ErrNotFound)
	assert.ErrorIs(t, s.SaveComment(ctx, models.Comment{ID: "c", NoteID: "missing"}), storage.ErrNotFound)
}
