package models

import "time"

// DefaultTagColor is the RGB hex color given to tags created without one.
const DefaultTagColor = "FF0000"

// Tag is a named, colored label that can be applied to many notes
type Tag struct {
	ID        string    `json:"id" yaml:"id"`
	Name      string    `json:"name" yaml:"name"`
	ColorHex  string    `json:"color_hex" yaml:"color_hex"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// SameAppearance reports whether two tags look identical to the user.
// Store operations compare tags by ID only.
func (t Tag) SameAppearance(other Tag) bool {
	return t.Name == other.Name && t.ColorHex == other.ColorHex
}

// Note is a study item with its check-in history
type Note struct {
	ID              string    `json:"id" yaml:"id"`
	Title           string    `json:"title" yaml:"title"`
	Content         string    `json:"content" yaml:"content"`
	Level           Level     `json:"level" yaml:"level"`
	CreationDate    time.Time `json:"creation_date" yaml:"creation_date"`
	LastCheckInDate time.Time `json:"last_check_in_date" yaml:"last_check_in_date"`
	StudyCount      int       `json:"study_count" yaml:"study_count"`

	// Filled in snapshots only; the relationship itself lives in Link rows.
	Tags     []Tag     `json:"tags,omitempty" yaml:"-"`
	Comments []Comment `json:"comments,omitempty" yaml:"-"`
}

// HasTag reports whether the note carries the tag with the given ID
func (n Note) HasTag(tagID string) bool {
	for _, t := range n.Tags {
		if t.ID == tagID {
			return true
		}
	}
	return false
}

// Comment is an append-only remark owned by exactly one note
type Comment struct {
	ID      string    `json:"id" yaml:"id"`
	NoteID  string    `json:"note_id" yaml:"note_id"`
	Content string    `json:"content" yaml:"content"`
	Date    time.Time `json:"date" yaml:"date"`
}

// Link is one (note, tag) pair of the relationship index
type Link struct {
	NoteID string `json:"note_id" yaml:"note_id"`
	TagID  string `json:"tag_id" yaml:"tag_id"`
}

// Snapshot is the persisted form of a whole notebook.
// Each slice is in insertion order.
type Snapshot struct {
	Notes    []Note    `json:"notes" yaml:"notes"`
	Tags     []Tag     `json:"tags" yaml:"tags"`
	Links    []Link    `json:"links" yaml:"links"`
	Comments []Comment `json:"comments" yaml:"comments"`
}
