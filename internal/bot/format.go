package bot

import (
	"fmt"
	"strings"
	"time"

	"github.com/xaenox/study-bot/internal/models"
	"github.com/xaenox/study-bot/internal/notebook"
)

// overridden in tests
var timeNow = time.Now

const dateLayout = "2006-01-02 15:04"

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatTags(tags []models.Tag) string {
	names := make([]string, len(tags))
	for i, tag := range tags {
		names[i] = "#" + strings.ReplaceAll(tag.Name, " ", "_")
	}
	return strings.Join(names, " ")
}

func formatNoteLine(note models.Note) string {
	line := fmt.Sprintf("%s %s [%s] studied %d×", shortID(note.ID), note.Title, note.Level, note.StudyCount)
	if len(note.Tags) > 0 {
		line += " " + formatTags(note.Tags)
	}
	return line
}

func formatNote(note models.Note, state notebook.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s [%s]\n", note.Title, note.Level)
	if note.Content != "" {
		fmt.Fprintf(&sb, "\n%s\n\n", note.Content)
	}
	fmt.Fprintf(&sb, "ID: %s\n", note.ID)
	fmt.Fprintf(&sb, "Created: %s\n", note.CreationDate.Format(dateLayout))
	fmt.Fprintf(&sb, "Last check-in: %s (%s)\n", note.LastCheckInDate.Format(dateLayout), state)
	fmt.Fprintf(&sb, "Studied: %d times\n", note.StudyCount)
	if len(note.Tags) > 0 {
		fmt.Fprintf(&sb, "Tags: %s\n", formatTags(note.Tags))
	}
	if len(note.Comments) > 0 {
		sb.WriteString("\nComments:\n")
		for _, c := range note.Comments {
			fmt.Fprintf(&sb, "- %s (%s)\n", c.Content, c.Date.Format(dateLayout))
		}
	}
	return sb.String()
}
