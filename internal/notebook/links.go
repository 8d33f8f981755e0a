package notebook

import (
	"context"
	"fmt"

	"github.com/xaenox/study-bot/internal/models"
	"go.uber.org/zap"
)

// linkIndex is the single source of truth for which notes carry which tags.
// Both directions are kept in the same structure and only changed together.
type linkIndex struct {
	byNote map[string]map[string]struct{}
	byTag  map[string]map[string]struct{}
}

func newLinkIndex() *linkIndex {
	return &linkIndex{
		byNote: make(map[string]map[string]struct{}),
		byTag:  make(map[string]map[string]struct{}),
	}
}

func (idx *linkIndex) link(noteID, tagID string) {
	if idx.byNote[noteID] == nil {
		idx.byNote[noteID] = make(map[string]struct{})
	}
	if idx.byTag[tagID] == nil {
		idx.byTag[tagID] = make(map[string]struct{})
	}
	idx.byNote[noteID][tagID] = struct{}{}
	idx.byTag[tagID][noteID] = struct{}{}
}

func (idx *linkIndex) unlink(noteID, tagID string) {
	if tags := idx.byNote[noteID]; tags != nil {
		delete(tags, tagID)
		if len(tags) == 0 {
			delete(idx.byNote, noteID)
		}
	}
	if notes := idx.byTag[tagID]; notes != nil {
		delete(notes, noteID)
		if len(notes) == 0 {
			delete(idx.byTag, tagID)
		}
	}
}

func (idx *linkIndex) has(noteID, tagID string) bool {
	_, ok := idx.byNote[noteID][tagID]
	return ok
}

func (idx *linkIndex) dropNote(noteID string) {
	for tagID := range idx.byNote[noteID] {
		idx.unlink(noteID, tagID)
	}
}

func (idx *linkIndex) dropTag(tagID string) {
	for noteID := range idx.byTag[tagID] {
		idx.unlink(noteID, tagID)
	}
}

// diff splits the move from the current tag set of a note to want into
// the tag IDs to add and the ones to remove.
func (idx *linkIndex) diff(noteID string, want map[string]struct{}) (added, removed []string) {
	current := idx.byNote[noteID]
	for tagID := range want {
		if _, ok := current[tagID]; !ok {
			added = append(added, tagID)
		}
	}
	for tagID := range current {
		if _, ok := want[tagID]; !ok {
			removed = append(removed, tagID)
		}
	}
	return added, removed
}

// SetNoteTags makes tagIDs the complete tag set of the note. Duplicate IDs are
// ignored. Unknown IDs fail the whole call and nothing changes.
func (nb *Notebook) SetNoteTags(ctx context.Context, noteID string, tagIDs []string) (models.Note, error) {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if _, ok := nb.notes[noteID]; !ok {
		return models.Note{}, noteNotFound(noteID)
	}

	want := make(map[string]struct{}, len(tagIDs))
	ordered := make([]string, 0, len(tagIDs))
	for _, tagID := range tagIDs {
		if _, ok := nb.tags[tagID]; !ok {
			return models.Note{}, tagNotFound(tagID)
		}
		if _, dup := want[tagID]; dup {
			continue
		}
		want[tagID] = struct{}{}
		ordered = append(ordered, tagID)
	}

	added, removed := nb.links.diff(noteID, want)
	if len(added) == 0 && len(removed) == 0 {
		return nb.noteView(noteID), nil
	}

	if err := nb.store.ReplaceNoteTags(ctx, noteID, ordered); err != nil {
		nb.logger.Error("Failed to persist note tags",
			zap.Error(err),
			zap.String("note_id", noteID))
		return models.Note{}, fmt.Errorf("failed to save tags of note %s: %w", noteID, err)
	}

	for _, tagID := range added {
		nb.links.link(noteID, tagID)
	}
	for _, tagID := range removed {
		nb.links.unlink(noteID, tagID)
	}

	nb.logger.Debug("Note tags updated",
		zap.String("note_id", noteID),
		zap.Strings("added", added),
		zap.Strings("removed", removed))

	return nb.noteView(noteID), nil
}

// TagNotes returns the notes carrying the tag, in note insertion order.
func (nb *Notebook) TagNotes(tagID string) ([]models.Note, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	if _, ok := nb.tags[tagID]; !ok {
		return nil, tagNotFound(tagID)
	}

	notes := make([]models.Note, 0, len(nb.links.byTag[tagID]))
	for _, noteID := range nb.noteOrder {
		if nb.links.has(noteID, tagID) {
			notes = append(notes, nb.noteView(noteID))
		}
	}
	return notes, nil
}

// TagNoteCount returns how many notes carry the tag
func (nb *Notebook) TagNoteCount(tagID string) (int, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	if _, ok := nb.tags[tagID]; !ok {
		return 0, tagNotFound(tagID)
	}
	return len(nb.links.byTag[tagID]), nil
}

// Verify checks that both directions of the relationship agree and only
// reference live entities.
func (nb *Notebook) Verify() error {
	nb.mu.RLock()
	defer nb.mu.RUnlock()
	return nb.verifyLocked()
}

func (nb *Notebook) verifyLocked() error {
	for noteID, tags := range nb.links.byNote {
		if _, ok := nb.notes[noteID]; !ok {
			return &ConsistencyError{NoteID: noteID, Detail: "link references a deleted note"}
		}
		for tagID := range tags {
			if _, ok := nb.tags[tagID]; !ok {
				return &ConsistencyError{NoteID: noteID, TagID: tagID, Detail: "link references a deleted tag"}
			}
			if _, ok := nb.links.byTag[tagID][noteID]; !ok {
				return &ConsistencyError{NoteID: noteID, TagID: tagID, Detail: "missing from tag side"}
			}
		}
	}
	for tagID, notes := range nb.links.byTag {
		for noteID := range notes {
			if _, ok := nb.links.byNote[noteID][tagID]; !ok {
				return &ConsistencyError{NoteID: noteID, TagID: tagID, Detail: "missing from note side"}
			}
		}
	}
	return nil
}
