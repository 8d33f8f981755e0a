package archive_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/study-bot/internal/archive"
	"github.com/xaenox/study-bot/internal/models"
	"github.com/xaenox/study-bot/internal/notebook"
	"github.com/xaenox/study-bot/internal/storage"
)

func seed(t *testing.T) *storage.MemoryStorage {
	t.Helper()
	ctx := context.Background()
	store := storage.NewMemoryStorage()
	at := time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)
	nb := notebook.New(store, notebook.WithClock(func() time.Time { return at }))

	tag, err := nb.CreateTag(ctx, "grammar", "")
	require.NoError(t, err)
	note, err := nb.CreateNote(ctx, "Past Tense", "went", 2)
	require.NoError(t, err)
	_, err = nb.SetNoteTags(ctx, note.ID, []string{tag.ID})
	require.NoError(t, err)
	_, err = nb.AddComment(ctx, note.ID, "irregular")
	require.NoError(t, err)
	return store
}

func TestExportRestore(t *testing.T) {
	for _, format := range []archive.Format{archive.FormatYAML, archive.FormatJSON} {
		t.Run(string(format), func(t *testing.T) {
			ctx := context.Background()
			src := seed(t)

			var buf bytes.Buffer
			require.NoError(t, archive.Export(ctx, src, &buf, format))

			snap, err := archive.Decode(&buf, format)
			require.NoError(t, err)

			dst := storage.NewMemoryStorage()
			require.NoError(t, archive.Restore(ctx, dst, snap))

			nb := notebook.New(dst)
			require.NoError(t, nb.Load(ctx))

			notes := nb.ListNotes()
			require.Len(t, notes, 1)
			assert.Equal(t, "Past Tense", notes[0].Title)
			assert.Equal(t, models.LevelProficient, notes[0].Level)
			require.Len(t, notes[0].Tags, 1)
			assert.Equal(t, "grammar", notes[0].Tags[0].Name)
			require.Len(t, notes[0].Comments, 1)
			assert.True(t, notes[0].CreationDate.Equal(time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)))
		})
	}
}

func TestRestoreTwiceKeepsOneCopy(t *testing.T) {
	ctx := context.Background()
	snap, err := seed(t).Load(ctx)
	require.NoError(t, err)

	dst := storage.NewMemoryStorage()
	require.NoError(t, archive.Restore(ctx, dst, snap))
	require.NoError(t, archive.Restore(ctx, dst, snap))

	nb := notebook.New(dst)
	require.NoError(t, nb.Load(ctx))

	notes := nb.ListNotes()
	require.Len(t, notes, 1)
	assert.Len(t, notes[0].Tags, 1)
	require.Len(t, notes[0].Comments, 1)
	assert.Equal(t, snap.Comments[0].ID, notes[0].Comments[0].ID)
}

func TestParseFormat(t *testing.T) {
	f, err := archive.ParseFormat("YML")
	require.NoError(t, err)
	assert.Equal(t, archive.FormatYAML, f)

	f, err = archive.ParseFormat("json")
	require.NoError(t, err)
	assert.Equal(t, archive.FormatJSON, f)

	_, err = archive.ParseFormat("xml")
	assert.Error(t, err)
}
