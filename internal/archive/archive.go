// Package archive moves whole notebooks in and out of storage as YAML or JSON
// documents, for backups and for moving between the memory and Postgres
// backends.
package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xaenox/study-bot/internal/models"
	"github.com/xaenox/study-bot/internal/storage"
	"gopkg.in/yaml.v3"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatYAML, "yml", "":
		return FormatYAML, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// Encode writes snap to w
func Encode(w io.Writer, snap *models.Snapshot, format Format) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	default:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(snap); err != nil {
			return err
		}
		return enc.Close()
	}
}

// Decode reads a snapshot written by Encode
func Decode(r io.Reader, format Format) (*models.Snapshot, error) {
	snap := &models.Snapshot{}
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(snap)
	default:
		err = yaml.NewDecoder(r).Decode(snap)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode archive: %w", err)
	}
	return snap, nil
}

// Export dumps everything in store
func Export(ctx context.Context, store storage.Storage, w io.Writer, format Format) error {
	snap, err := store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load storage: %w", err)
	}
	return Encode(w, snap, format)
}

// Restore writes snap into store, tags first so links always resolve.
// Records with existing IDs are overwritten, so restoring the same archive
// twice leaves one copy of everything.
func Restore(ctx context.Context, store storage.Storage, snap *models.Snapshot) error {
	for _, tag := range snap.Tags {
		if err := store.SaveTag(ctx, tag); err != nil {
			return fmt.Errorf("failed to restore tag %s: %w", tag.ID, err)
		}
	}
	for _, note := range snap.Notes {
		note.Level = models.ClampLevel(int(note.Level))
		if err := store.SaveNote(ctx, note); err != nil {
			return fmt.Errorf("failed to restore note %s: %w", note.ID, err)
		}
	}

	byNote := make(map[string][]string)
	var order []string
	for _, link := range snap.Links {
		if _, seen := byNote[link.NoteID]; !seen {
			order = append(order, link.NoteID)
		}
		byNote[link.NoteID] = append(byNote[link.NoteID], link.TagID)
	}
	for _, noteID := range order {
		if err := store.ReplaceNoteTags(ctx, noteID, byNote[noteID]); err != nil {
			return fmt.Errorf("failed to restore tags of note %s: %w", noteID, err)
		}
	}

	for _, c := range snap.Comments {
		if err := store.SaveComment(ctx, c); err != nil {
			return fmt.Errorf("failed to restore comment %s: %w", c.ID, err)
		}
	}
	return nil
}
