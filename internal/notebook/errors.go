package notebook

import (
	"errors"
	"fmt"
	"time"
)

// ValidationError reports structurally invalid caller input
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports a reference to an entity that is not in the notebook
type NotFoundError struct {
	Kind string
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
}

// CooldownError is returned by CheckIn while the note is still cooling down
type CooldownError struct {
	NoteID    string
	Remaining time.Duration
	// Minutes is Remaining rounded up to whole minutes
	Minutes int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("note %q checked in recently, try again in %d minutes", e.NoteID, e.Minutes)
}

// ConsistencyError means the note->tag and tag->note views disagree.
// Seeing one is a bug in this package.
type ConsistencyError struct {
	NoteID string
	TagID  string
	Detail string
}

func (e *ConsistencyError) Error() string {
	return fmt.Sprintf("relationship drift between note %q and tag %q: %s", e.NoteID, e.TagID, e.Detail)
}

func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsCooldown(err error) bool {
	var target *CooldownError
	return errors.As(err, &target)
}

func noteNotFound(id string) error { return &NotFoundError{Kind: "note", ID: id} }
func tagNotFound(id string) error  { return &NotFoundError{Kind: "tag", ID: id} }
