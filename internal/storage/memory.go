package storage

import (
	"context"
	"sync"

	"github.com/xaenox/study-bot/internal/models"
)

type MemoryStorage struct {
	mu       sync.RWMutex
	notes    map[string]models.Note
	tags     map[string]models.Tag
	links    map[string][]string // note ID -> tag IDs
	comments []models.Comment

	noteOrder []string
	tagOrder  []string
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		notes: make(map[string]models.Note),
		tags:  make(map[string]models.Tag),
		links: make(map[string][]string),
	}
}

func (s *MemoryStorage) Load(ctx context.Context) (*models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := &models.Snapshot{
		Notes:    make([]models.Note, 0, len(s.noteOrder)),
		Tags:     make([]models.Tag, 0, len(s.tagOrder)),
		Links:    []models.Link{},
		Comments: append([]models.Comment{}, s.comments...),
	}
	for _, id := range s.noteOrder {
		snap.Notes = append(snap.Notes, s.notes[id])
		for _, tagID := range s.links[id] {
			snap.Links = append(snap.Links, models.Link{NoteID: id, TagID: tagID})
		}
	}
	for _, id := range s.tagOrder {
		snap.Tags = append(snap.Tags, s.tags[id])
	}
	return snap, nil
}

func (s *MemoryStorage) SaveNote(ctx context.Context, note models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[note.ID]; !exists {
		s.noteOrder = append(s.noteOrder, note.ID)
	}
	note.Tags = nil
	note.Comments = nil
	s.notes[note.ID] = note
	return nil
}

func (s *MemoryStorage) DeleteNote(ctx context.Context, noteID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[noteID]; !exists {
		return ErrNotFound
	}
	delete(s.notes, noteID)
	delete(s.links, noteID)
	s.noteOrder = removeID(s.noteOrder, noteID)

	kept := s.comments[:0]
	for _, c := range s.comments {
		if c.NoteID != noteID {
			kept = append(kept, c)
		}
	}
	s.comments = kept
	return nil
}

func (s *MemoryStorage) SaveTag(ctx context.Context, tag models.Tag) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tags[tag.ID]; !exists {
		s.tagOrder = append(s.tagOrder, tag.ID)
	}
	s.tags[tag.ID] = tag
	return nil
}

func (s *MemoryStorage) DeleteTag(ctx context.Context, tagID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.tags[tagID]; !exists {
		return ErrNotFound
	}
	delete(s.tags, tagID)
	s.tagOrder = removeID(s.tagOrder, tagID)
	for noteID, tagIDs := range s.links {
		s.links[noteID] = removeID(tagIDs, tagID)
	}
	return nil
}

func (s *MemoryStorage) ReplaceNoteTags(ctx context.Context, noteID string, tagIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[noteID]; !exists {
		return ErrNotFound
	}
	for _, id := range tagIDs {
		if _, exists := s.tags[id]; !exists {
			return ErrNotFound
		}
	}
	s.links[noteID] = append([]string(nil), tagIDs...)
	return nil
}

func (s *MemoryStorage) SaveComment(ctx context.Context, comment models.Comment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[comment.NoteID]; !exists {
		return ErrNotFound
	}
	for i, c := range s.comments {
		if c.ID == comment.ID {
			s.comments[i] = comment
			return nil
		}
	}
	s.comments = append(s.comments, comment)
	return nil
}

func (s *MemoryStorage) Close() error {
	// Nothing to close for in-memory storage
	return nil
}

func removeID(ids []string, id string) []string {
	out := ids[:0]
	for _, v := range ids {
		if v != id {
			out = append(out, v)
		}
	}
	return out
}
