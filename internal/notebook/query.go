package notebook

import (
	"fmt"
	"sort"
	"strings"

	"github.com/xaenox/study-bot/internal/models"
)

type SortKey int

const (
	SortCreationDate SortKey = iota
	SortLevel
	SortStudyCount
)

func (k SortKey) String() string {
	switch k {
	case SortLevel:
		return "level"
	case SortStudyCount:
		return "studycount"
	default:
		return "date"
	}
}

// ParseSortKey accepts "level", "studycount"/"count" and "date"/"created".
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "date", "created", "creationdate":
		return SortCreationDate, nil
	case "level":
		return SortLevel, nil
	case "studycount", "count", "study":
		return SortStudyCount, nil
	}
	return SortCreationDate, fmt.Errorf("unknown sort key %q", s)
}

// NoteQuery selects and orders notes. The zero value lists every note,
// newest first.
type NoteQuery struct {
	// TagID keeps only notes carrying this tag; empty keeps all
	TagID     string
	SortKey   SortKey
	Ascending bool
}

// Query filters and stably sorts notes into a new slice. Notes with equal keys
// keep their input order in both directions.
func Query(notes []models.Note, q NoteQuery) []models.Note {
	out := make([]models.Note, 0, len(notes))
	for _, n := range notes {
		if q.TagID == "" || n.HasTag(q.TagID) {
			out = append(out, n)
		}
	}

	cmp := compareBy(q.SortKey)
	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(out[i], out[j])
		if q.Ascending {
			return c < 0
		}
		return c > 0
	})
	return out
}

func compareBy(key SortKey) func(a, b models.Note) int {
	switch key {
	case SortLevel:
		return func(a, b models.Note) int { return int(a.Level) - int(b.Level) }
	case SortStudyCount:
		return func(a, b models.Note) int { return a.StudyCount - b.StudyCount }
	default:
		return func(a, b models.Note) int { return a.CreationDate.Compare(b.CreationDate) }
	}
}

// QueryNotes runs q over a snapshot of the notebook
func (nb *Notebook) QueryNotes(q NoteQuery) ([]models.Note, error) {
	if q.TagID != "" {
		if _, err := nb.GetTag(q.TagID); err != nil {
			return nil, err
		}
	}
	return Query(nb.ListNotes(), q), nil
}
