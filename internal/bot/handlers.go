package bot

import (
	"context"
	"fmt"
	"strings"

	"github.com/xaenox/study-bot/internal/models"
	"github.com/xaenox/study-bot/internal/notebook"
	"github.com/xaenox/study-bot/internal/translator"
	"go.uber.org/zap"
)

const minRefLength = 4

type usageError struct {
	usage string
}

func (e *usageError) Error() string { return "usage: " + e.usage }

func usage(u string) error { return &usageError{usage: u} }

// resolveNote accepts a full note ID or an unambiguous prefix of one
func (b *Bot) resolveNote(ref string) (models.Note, error) {
	ref = strings.TrimSpace(ref)
	if note, err := b.notebook.GetNote(ref); err == nil {
		return note, nil
	}
	if len(ref) < minRefLength {
		return models.Note{}, &notebook.NotFoundError{Kind: "note", ID: ref}
	}

	var matches []models.Note
	for _, note := range b.notebook.ListNotes() {
		if strings.HasPrefix(note.ID, ref) {
			matches = append(matches, note)
		}
	}
	switch len(matches) {
	case 0:
		return models.Note{}, &notebook.NotFoundError{Kind: "note", ID: ref}
	case 1:
		return matches[0], nil
	}
	return models.Note{}, &notebook.ValidationError{Field: "note", Reason: fmt.Sprintf("%q matches %d notes", ref, len(matches))}
}

func splitFirst(args string) (string, string) {
	fields := strings.SplitN(strings.TrimSpace(args), " ", 2)
	if len(fields) == 1 {
		return fields[0], ""
	}
	return fields[0], strings.TrimSpace(fields[1])
}

func (b *Bot) handleNewNote(ctx context.Context, args string) (string, error) {
	const u = "/note <title> | <content> [| <level>]"
	parts := strings.Split(args, "|")
	if strings.TrimSpace(parts[0]) == "" {
		return "", usage(u)
	}

	title := strings.TrimSpace(parts[0])
	content := ""
	if len(parts) > 1 {
		content = strings.TrimSpace(parts[1])
	}
	level := models.LevelBeginner
	if len(parts) > 2 {
		parsed, err := models.ParseLevel(parts[2])
		if err != nil {
			return "", usage(u)
		}
		level = parsed
	}

	note, err := b.notebook.CreateNote(ctx, title, content, int(level))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("📝 Saved %q [%s] as %s", note.Title, note.Level, shortID(note.ID)), nil
}

// parseListArgs reads "[tag] [sort key] [asc|desc]" in any order.
// Words that are neither a direction nor a sort key name the tag, and a
// #-prefixed word always does.
func parseListArgs(args string) (tagRef string, q notebook.NoteQuery) {
	var tagWords []string
	for _, word := range strings.Fields(args) {
		if strings.HasPrefix(word, "#") {
			if name := strings.TrimPrefix(word, "#"); name != "" {
				tagWords = append(tagWords, name)
			}
			continue
		}
		switch strings.ToLower(word) {
		case "asc":
			q.Ascending = true
			continue
		case "desc":
			q.Ascending = false
			continue
		case "all":
			continue
		}
		if key, keyErr := notebook.ParseSortKey(word); keyErr == nil {
			q.SortKey = key
			continue
		}
		tagWords = append(tagWords, word)
	}
	return strings.Join(tagWords, " "), q
}

func (b *Bot) handleListNotes(args string) (string, error) {
	tagRef, q := parseListArgs(args)
	if tagRef != "" {
		tag, err := b.notebook.FindTag(tagRef)
		if err != nil {
			return "", err
		}
		q.TagID = tag.ID
	}

	notes, err := b.notebook.QueryNotes(q)
	if err != nil {
		return "", err
	}
	if len(notes) == 0 {
		return "You don't have any notes yet.", nil
	}

	var sb strings.Builder
	direction := "desc"
	if q.Ascending {
		direction = "asc"
	}
	fmt.Fprintf(&sb, "Your notes (by %s, %s):\n\n", q.SortKey, direction)
	for _, note := range notes {
		sb.WriteString(formatNoteLine(note))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (b *Bot) handleShow(args string) (string, error) {
	if args == "" {
		return "", usage("/show <note>")
	}
	note, err := b.resolveNote(args)
	if err != nil {
		return "", err
	}
	return formatNote(note, notebook.CheckInState(note, timeNow(), b.notebook.Cooldown())), nil
}

func (b *Bot) handleEdit(ctx context.Context, args string) (string, error) {
	const u = "/edit <note> title|content|level <value>"
	ref, rest := splitFirst(args)
	field, value := splitFirst(rest)
	if ref == "" || field == "" || value == "" {
		return "", usage(u)
	}

	note, err := b.resolveNote(ref)
	if err != nil {
		return "", err
	}

	var edit notebook.NoteEdit
	switch strings.ToLower(field) {
	case "title":
		edit.Title = &value
	case "content":
		edit.Content = &value
	case "level":
		level, err := models.ParseLevel(value)
		if err != nil {
			return "", usage(u)
		}
		l := int(level)
		edit.Level = &l
	default:
		return "", usage(u)
	}

	updated, err := b.notebook.UpdateNote(ctx, note.ID, edit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✏️ Updated %q [%s]", updated.Title, updated.Level), nil
}

func (b *Bot) handleDeleteNote(ctx context.Context, args string) (string, error) {
	if args == "" {
		return "", usage("/delnote <note>")
	}
	note, err := b.resolveNote(args)
	if err != nil {
		return "", err
	}
	if err := b.notebook.DeleteNote(ctx, note.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 Deleted %q", note.Title), nil
}

func (b *Bot) handleNewTag(ctx context.Context, args string) (string, error) {
	if args == "" {
		return "", usage("/tag <name> [color]")
	}
	// A trailing word that looks like a color is the color, the rest is the name
	name, color := args, ""
	if i := strings.LastIndex(args, " "); i > 0 && looksLikeColor(args[i+1:]) {
		name, color = args[:i], args[i+1:]
	}

	tag, err := b.notebook.CreateTag(ctx, name, color)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🏷 Created tag %s (#%s)", tag.Name, tag.ColorHex), nil
}

func looksLikeColor(s string) bool {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if !strings.ContainsRune("0123456789abcdefABCDEF", r) {
			return false
		}
	}
	return true
}

func (b *Bot) handleListTags() string {
	tags := b.notebook.ListTags()
	if len(tags) == 0 {
		return "You don't have any tags yet."
	}

	var sb strings.Builder
	sb.WriteString("Your tags:\n")
	for _, tag := range tags {
		count, err := b.notebook.TagNoteCount(tag.ID)
		if err != nil {
			// deleted between the two calls
			continue
		}
		fmt.Fprintf(&sb, "#%s (#%s) - %d notes\n", strings.ReplaceAll(tag.Name, " ", "_"), tag.ColorHex, count)
	}
	return sb.String()
}

func (b *Bot) handleRenameTag(ctx context.Context, args string) (string, error) {
	ref, name := splitFirst(args)
	if ref == "" || name == "" {
		return "", usage("/renametag <tag> <new name>")
	}
	tag, err := b.notebook.FindTag(ref)
	if err != nil {
		return "", err
	}
	updated, err := b.notebook.UpdateTag(ctx, tag.ID, notebook.TagEdit{Name: &name})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🏷 Renamed %s to %s", tag.Name, updated.Name), nil
}

func (b *Bot) handleColorTag(ctx context.Context, args string) (string, error) {
	ref, color := splitFirst(args)
	if ref == "" || color == "" {
		return "", usage("/colortag <tag> <hex>")
	}
	tag, err := b.notebook.FindTag(ref)
	if err != nil {
		return "", err
	}
	updated, err := b.notebook.UpdateTag(ctx, tag.ID, notebook.TagEdit{ColorHex: &color})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🎨 %s is now #%s", updated.Name, updated.ColorHex), nil
}

func (b *Bot) handleDeleteTag(ctx context.Context, args string) (string, error) {
	if args == "" {
		return "", usage("/deltag <tag>")
	}
	tag, err := b.notebook.FindTag(args)
	if err != nil {
		return "", err
	}
	if err := b.notebook.DeleteTag(ctx, tag.ID); err != nil {
		return "", err
	}
	return fmt.Sprintf("🗑 Deleted tag %s", tag.Name), nil
}

func (b *Bot) handleSetTags(ctx context.Context, args string) (string, error) {
	ref, rest := splitFirst(args)
	if ref == "" || rest == "" {
		return "", usage("/settags <note> <tag> [tag...] | none")
	}
	note, err := b.resolveNote(ref)
	if err != nil {
		return "", err
	}

	tagIDs := []string{}
	if !strings.EqualFold(rest, "none") {
		for _, tagRef := range strings.Fields(rest) {
			tag, err := b.notebook.FindTag(strings.TrimPrefix(tagRef, "#"))
			if err != nil {
				return "", err
			}
			tagIDs = append(tagIDs, tag.ID)
		}
	}

	updated, err := b.notebook.SetNoteTags(ctx, note.ID, tagIDs)
	if err != nil {
		return "", err
	}
	if len(updated.Tags) == 0 {
		return fmt.Sprintf("🏷 %q has no tags now", updated.Title), nil
	}
	return fmt.Sprintf("🏷 %q tagged %s", updated.Title, formatTags(updated.Tags)), nil
}

func (b *Bot) handleCheckIn(ctx context.Context, args string) (string, error) {
	if args == "" {
		return "", usage("/checkin <note>")
	}
	note, err := b.resolveNote(args)
	if err != nil {
		return "", err
	}
	updated, err := b.notebook.CheckIn(ctx, note.ID, timeNow())
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("✅ Checked in %q. Studied %d times.", updated.Title, updated.StudyCount), nil
}

func (b *Bot) handleComment(ctx context.Context, args string) (string, error) {
	ref, text := splitFirst(args)
	if ref == "" || text == "" {
		return "", usage("/comment <note> <text>")
	}
	note, err := b.resolveNote(ref)
	if err != nil {
		return "", err
	}
	if _, err := b.notebook.AddComment(ctx, note.ID, text); err != nil {
		return "", err
	}
	return fmt.Sprintf("💬 Comment added to %q", note.Title), nil
}

func (b *Bot) handleTranslate(ctx context.Context, chatID int64, args string) (string, error) {
	ref, lang := splitFirst(args)
	if ref == "" {
		return "", usage("/translate <note> [language]")
	}
	if b.translator == nil {
		return "Translation is not configured.", nil
	}
	if lang == "" {
		lang = b.targetLang
	}

	note, err := b.resolveNote(ref)
	if err != nil {
		return "", err
	}

	text := note.Title
	if note.Content != "" {
		text += "\n" + note.Content
	}

	// The callback runs on a dispatcher goroutine and writes only through the notebook API.
	err = b.translator.Submit(note.ID, text, lang, func(res translator.Result) {
		b.deliverTranslation(context.WithoutCancel(ctx), chatID, note.Title, res)
	})
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("🌐 Translating %q into %s...", note.Title, lang), nil
}

func (b *Bot) deliverTranslation(ctx context.Context, chatID int64, title string, res translator.Result) {
	if res.Err != nil {
		b.sendErrorMessage(chatID, fmt.Sprintf("Could not translate %q.", title))
		return
	}

	comment := fmt.Sprintf("[%s] %s", res.TargetLang, res.Text)
	if _, err := b.notebook.AddComment(ctx, res.NoteID, comment); err != nil {
		// The note may have been deleted while translating; still show the result.
		b.logger.Warn("Failed to store translation",
			zap.Error(err),
			zap.String("note_id", res.NoteID))
	}
	b.sendMessage(chatID, fmt.Sprintf("🌐 %s (%s):\n%s", title, res.TargetLang, res.Text))
}
