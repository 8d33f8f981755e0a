package notebook

import (
	"context"
	"fmt"
	"time"

	"github.com/xaenox/study-bot/internal/models"
	"go.uber.org/zap"
)

// State tells whether a note can be checked in right now
type State int

const (
	StateEligible State = iota
	StateCooling
)

func (s State) String() string {
	if s == StateCooling {
		return "cooling"
	}
	return "eligible"
}

// CheckInState is derived from the last check-in; it is never stored.
func CheckInState(note models.Note, now time.Time, cooldown time.Duration) State {
	if now.Sub(note.LastCheckInDate) < cooldown {
		return StateCooling
	}
	return StateEligible
}

// remainingMinutes rounds the wait up to whole minutes
func remainingMinutes(remaining time.Duration) int {
	minutes := remaining / time.Minute
	if remaining%time.Minute != 0 {
		minutes++
	}
	return int(minutes)
}

// CheckIn records a study session at now. While the note is cooling down it
// returns a *CooldownError and changes nothing.
func (nb *Notebook) CheckIn(ctx context.Context, noteID string, now time.Time) (models.Note, error) {
	nb.mu.Lock()
	defer nb.mu.Unlock()

	current, ok := nb.notes[noteID]
	if !ok {
		return models.Note{}, noteNotFound(noteID)
	}

	if CheckInState(*current, now, nb.cooldown) == StateCooling {
		remaining := nb.cooldown - now.Sub(current.LastCheckInDate)
		err := &CooldownError{
			NoteID:    noteID,
			Remaining: remaining,
			Minutes:   remainingMinutes(remaining),
		}
		nb.logger.Info("Check-in rejected",
			zap.String("note_id", noteID),
			zap.Duration("remaining", remaining))
		return models.Note{}, err
	}

	updated := *current
	updated.StudyCount++
	updated.LastCheckInDate = now

	if err := nb.store.SaveNote(ctx, updated); err != nil {
		nb.logger.Error("Failed to save check-in", zap.Error(err), zap.String("note_id", noteID))
		return models.Note{}, fmt.Errorf("failed to save check-in of note %s: %w", noteID, err)
	}
	*current = updated

	nb.logger.Debug("Note checked in",
		zap.String("note_id", noteID),
		zap.Int("study_count", updated.StudyCount))

	return nb.noteView(noteID), nil
}

// CheckInNow is CheckIn with the notebook clock
func (nb *Notebook) CheckInNow(ctx context.Context, noteID string) (models.Note, error) {
	return nb.CheckIn(ctx, noteID, nb.now())
}
