// Package notebook holds the in-memory authority over notes, tags and comments.
//
// A Notebook serializes every mutation behind one lock and writes through to a
// storage.Storage before the change becomes visible, so readers never observe a
// half-applied update. Values handed out are copies; editing them has no effect
// on the notebook.
package notebook

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/xaenox/study-bot/internal/models"
	"github.com/xaenox/study-bot/internal/storage"
	"go.uber.org/zap"
)

// DefaultCooldown is the minimum time between two check-ins of the same note
const DefaultCooldown = 60 * time.Minute

type Notebook struct {
	mu sync.RWMutex

	notes     map[string]*models.Note
	noteOrder []string
	tags      map[string]*models.Tag
	tagOrder  []string
	comments  map[string][]models.Comment
	links     *linkIndex

	store        storage.Storage
	logger       *zap.Logger
	now          func() time.Time
	newID        func() string
	cooldown     time.Duration
	defaultColor string
}

type Option func(*Notebook)

func WithLogger(logger *zap.Logger) Option {
	return func(nb *Notebook) {
		if logger != nil {
			nb.logger = logger
		}
	}
}

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(nb *Notebook) {
		if now != nil {
			nb.now = now
		}
	}
}

// WithCooldown sets the check-in cooldown. Non-positive values are ignored.
func WithCooldown(d time.Duration) Option {
	return func(nb *Notebook) {
		if d > 0 {
			nb.cooldown = d
		}
	}
}

// WithDefaultTagColor sets the color used when CreateTag gets none
func WithDefaultTagColor(hex string) Option {
	return func(nb *Notebook) {
		if c := normalizeColor(hex); c != "" {
			nb.defaultColor = c
		}
	}
}

// New returns an empty notebook writing through to store. Call Load to pick up
// previously persisted records.
func New(store storage.Storage, opts ...Option) *Notebook {
	nb := &Notebook{
		notes:        make(map[string]*models.Note),
		tags:         make(map[string]*models.Tag),
		comments:     make(map[string][]models.Comment),
		links:        newLinkIndex(),
		store:        store,
		logger:       zap.NewNop(),
		now:          time.Now,
		newID:        uuid.NewString,
		cooldown:     DefaultCooldown,
		defaultColor: models.DefaultTagColor,
	}
	for _, opt := range opts {
		opt(nb)
	}
	return nb
}

// Cooldown returns the configured check-in cooldown
func (nb *Notebook) Cooldown() time.Duration {
	return nb.cooldown
}

// Load replaces the notebook contents with the storage snapshot. A snapshot
// with links to missing records is rejected and the current contents stay.
// Mutations wait until the swap is done, so none of them is lost.
func (nb *Notebook) Load(ctx context.Context) error {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	snap, err := nb.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load notebook: %w", err)
	}

	notes := make(map[string]*models.Note, len(snap.Notes))
	noteOrder := make([]string, 0, len(snap.Notes))
	tags := make(map[string]*models.Tag, len(snap.Tags))
	tagOrder := make([]string, 0, len(snap.Tags))
	comments := make(map[string][]models.Comment)
	links := newLinkIndex()

	for _, tag := range snap.Tags {
		tag := tag
		tags[tag.ID] = &tag
		tagOrder = append(tagOrder, tag.ID)
	}
	for _, note := range snap.Notes {
		note := note
		note.Tags = nil
		note.Comments = nil
		note.Level = models.ClampLevel(int(note.Level))
		notes[note.ID] = &note
		noteOrder = append(noteOrder, note.ID)
	}
	for _, link := range snap.Links {
		if _, ok := notes[link.NoteID]; !ok {
			return &ConsistencyError{NoteID: link.NoteID, TagID: link.TagID, Detail: "stored link references a missing note"}
		}
		if _, ok := tags[link.TagID]; !ok {
			return &ConsistencyError{NoteID: link.NoteID, TagID: link.TagID, Detail: "stored link references a missing tag"}
		}
		links.link(link.NoteID, link.TagID)
	}
	for _, c := range snap.Comments {
		if _, ok := notes[c.NoteID]; !ok {
			nb.logger.Warn("Dropping orphan comment",
				zap.String("comment_id", c.ID),
				zap.String("note_id", c.NoteID))
			continue
		}
		comments[c.NoteID] = append(comments[c.NoteID], c)
	}

	nb.notes, nb.noteOrder = notes, noteOrder
	nb.tags, nb.tagOrder = tags, tagOrder
	nb.comments = comments
	nb.links = links

	nb.logger.Info("Notebook loaded",
		zap.Int("notes", len(notes)),
		zap.Int("tags", len(tags)),
		zap.Int("links", len(snap.Links)))

	return nb.verifyLocked()
}

func (nb *Notebook) CreateNote(ctx context.Context, title, content string, level int) (models.Note, error) {
	if strings.TrimSpace(title) == "" {
		return models.Note{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	now := nb.now()
	note := models.Note{
		ID:              nb.newID(),
		Title:           title,
		Content:         content,
		Level:           models.ClampLevel(level),
		CreationDate:    now,
		LastCheckInDate: now,
	}

	if err := nb.store.SaveNote(ctx, note); err != nil {
		nb.logger.Error("Failed to save note", zap.Error(err), zap.String("note_id", note.ID))
		return models.Note{}, fmt.Errorf("failed to save note: %w", err)
	}

	nb.notes[note.ID] = &note
	nb.noteOrder = append(nb.noteOrder, note.ID)

	nb.logger.Debug("Note created", zap.String("note_id", note.ID), zap.String("title", title))
	return nb.noteView(note.ID), nil
}

// NoteEdit is a partial update; nil fields are left as they are
type NoteEdit struct {
	Title   *string
	Content *string
	Level   *int
}

func (nb *Notebook) UpdateNote(ctx context.Context, id string, edit NoteEdit) (models.Note, error) {
	if edit.Title != nil && strings.TrimSpace(*edit.Title) == "" {
		return models.Note{}, &ValidationError{Field: "title", Reason: "must not be empty"}
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	current, ok := nb.notes[id]
	if !ok {
		return models.Note{}, noteNotFound(id)
	}

	updated := *current
	if edit.Title != nil {
		updated.Title = *edit.Title
	}
	if edit.Content != nil {
		updated.Content = *edit.Content
	}
	if edit.Level != nil {
		updated.Level = models.ClampLevel(*edit.Level)
	}

	if err := nb.store.SaveNote(ctx, updated); err != nil {
		nb.logger.Error("Failed to update note", zap.Error(err), zap.String("note_id", id))
		return models.Note{}, fmt.Errorf("failed to update note %s: %w", id, err)
	}
	*current = updated

	return nb.noteView(id), nil
}

// DeleteNote removes the note, its comments and every tag link it has.
func (nb *Notebook) DeleteNote(ctx context.Context, id string) error {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if _, ok := nb.notes[id]; !ok {
		return noteNotFound(id)
	}

	if err := nb.store.DeleteNote(ctx, id); err != nil {
		nb.logger.Error("Failed to delete note", zap.Error(err), zap.String("note_id", id))
		return fmt.Errorf("failed to delete note %s: %w", id, err)
	}

	nb.links.dropNote(id)
	delete(nb.comments, id)
	delete(nb.notes, id)
	nb.noteOrder = removeID(nb.noteOrder, id)

	nb.logger.Debug("Note deleted", zap.String("note_id", id))
	return nil
}

func (nb *Notebook) GetNote(id string) (models.Note, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	if _, ok := nb.notes[id]; !ok {
		return models.Note{}, noteNotFound(id)
	}
	return nb.noteView(id), nil
}

// ListNotes returns every note in creation order
func (nb *Notebook) ListNotes() []models.Note {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	notes := make([]models.Note, 0, len(nb.noteOrder))
	for _, id := range nb.noteOrder {
		notes = append(notes, nb.noteView(id))
	}
	return notes
}

func (nb *Notebook) CreateTag(ctx context.Context, name, colorHex string) (models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Tag{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	color := normalizeColor(colorHex)
	if color == "" {
		color = nb.defaultColor
	}

	tag := models.Tag{
		ID:        nb.newID(),
		Name:      name,
		ColorHex:  color,
		CreatedAt: nb.now(),
	}

	if err := nb.store.SaveTag(ctx, tag); err != nil {
		nb.logger.Error("Failed to save tag", zap.Error(err), zap.String("tag", name))
		return models.Tag{}, fmt.Errorf("failed to save tag: %w", err)
	}

	nb.tags[tag.ID] = &tag
	nb.tagOrder = append(nb.tagOrder, tag.ID)

	nb.logger.Debug("Tag created", zap.String("tag_id", tag.ID), zap.String("name", name))
	return tag, nil
}

// TagEdit is a partial update; nil fields are left as they are
type TagEdit struct {
	Name     *string
	ColorHex *string
}

func (nb *Notebook) UpdateTag(ctx context.Context, id string, edit TagEdit) (models.Tag, error) {
	if edit.Name != nil && strings.TrimSpace(*edit.Name) == "" {
		return models.Tag{}, &ValidationError{Field: "name", Reason: "must not be empty"}
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	current, ok := nb.tags[id]
	if !ok {
		return models.Tag{}, tagNotFound(id)
	}

	updated := *current
	if edit.Name != nil {
		updated.Name = strings.TrimSpace(*edit.Name)
	}
	if edit.ColorHex != nil {
		if c := normalizeColor(*edit.ColorHex); c != "" {
			updated.ColorHex = c
		}
	}

	if err := nb.store.SaveTag(ctx, updated); err != nil {
		nb.logger.Error("Failed to update tag", zap.Error(err), zap.String("tag_id", id))
		return models.Tag{}, fmt.Errorf("failed to update tag %s: %w", id, err)
	}
	*current = updated

	return updated, nil
}

// DeleteTag removes the tag from every note carrying it and then from the
// notebook. The notes themselves stay.
func (nb *Notebook) DeleteTag(ctx context.Context, id string) error {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	if _, ok := nb.tags[id]; !ok {
		return tagNotFound(id)
	}

	if err := nb.store.DeleteTag(ctx, id); err != nil {
		nb.logger.Error("Failed to delete tag", zap.Error(err), zap.String("tag_id", id))
		return fmt.Errorf("failed to delete tag %s: %w", id, err)
	}

	detached := len(nb.links.byTag[id])
	nb.links.dropTag(id)
	delete(nb.tags, id)
	nb.tagOrder = removeID(nb.tagOrder, id)

	nb.logger.Debug("Tag deleted", zap.String("tag_id", id), zap.Int("detached_notes", detached))
	return nil
}

func (nb *Notebook) GetTag(id string) (models.Tag, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	tag, ok := nb.tags[id]
	if !ok {
		return models.Tag{}, tagNotFound(id)
	}
	return *tag, nil
}

// FindTag looks a tag up by ID first and then by case-insensitive name.
func (nb *Notebook) FindTag(ref string) (models.Tag, error) {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	if tag, ok := nb.tags[ref]; ok {
		return *tag, nil
	}
	for _, id := range nb.tagOrder {
		if strings.EqualFold(nb.tags[id].Name, ref) {
			return *nb.tags[id], nil
		}
	}
	return models.Tag{}, tagNotFound(ref)
}

// ListTags returns every tag in creation order
func (nb *Notebook) ListTags() []models.Tag {
	nb.mu.RLock()
	defer nb.mu.RUnlock()

	tags := make([]models.Tag, 0, len(nb.tagOrder))
	for _, id := range nb.tagOrder {
		tags = append(tags, *nb.tags[id])
	}
	return tags
}

// AddComment appends a comment to the note
func (nb *Notebook) AddComment(ctx context.Context, noteID, content string) (models.Comment, error) {
	if strings.TrimSpace(content) == "" {
		return models.Comment{}, &ValidationError{Field: "content", Reason: "must not be empty"}
	}

	nb.mu.Lock()
	defer nb.mu.Unlock()

	if _, ok := nb.notes[noteID]; !ok {
		return models.Comment{}, noteNotFound(noteID)
	}

	comment := models.Comment{
		ID:      nb.newID(),
		NoteID:  noteID,
		Content: content,
		Date:    nb.now(),
	}

	if err := nb.store.SaveComment(ctx, comment); err != nil {
		nb.logger.Error("Failed to save comment", zap.Error(err), zap.String("note_id", noteID))
		return models.Comment{}, fmt.Errorf("failed to save comment: %w", err)
	}
	nb.comments[noteID] = append(nb.comments[noteID], comment)

	return comment, nil
}

// noteView copies a note together with its derived tags and comments.
// Callers must hold nb.mu.
func (nb *Notebook) noteView(id string) models.Note {
	note := *nb.notes[id]
	note.Tags = []models.Tag{}
	for _, tagID := range nb.tagOrder {
		if nb.links.has(id, tagID) {
			note.Tags = append(note.Tags, *nb.tags[tagID])
		}
	}
	note.Comments = append([]models.Comment{}, nb.comments[id]...)
	return note
}

func normalizeColor(hex string) string {
	return strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(hex), "#"))
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
