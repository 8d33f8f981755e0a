package bot

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xaenox/study-bot/internal/notebook"
	"github.com/xaenox/study-bot/internal/storage"
	"github.com/xaenox/study-bot/internal/translator"
)

const chatID = 100

type fakeSender struct {
	mu   sync.Mutex
	sent []string
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg.Text)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeSender) all() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return strings.Join(f.sent, "\n")
}

func (f *fakeSender) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

type fixture struct {
	bot  *Bot
	out  *fakeSender
	nb   *notebook.Notebook
	now  time.Time
	disp *translator.Dispatcher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		out: &fakeSender{},
		now: time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	f.nb = notebook.New(storage.NewMemoryStorage(), notebook.WithClock(clock))
	f.disp = translator.NewDispatcher(translator.EchoTranslator{}, 1, time.Second, nil)
	f.bot = newBot(f.out, f.nb, f.disp, Options{TargetLanguage: "English"}, nil)

	prev := timeNow
	timeNow = clock
	t.Cleanup(func() { timeNow = prev })
	return f
}

func (f *fixture) run(command, args string) string {
	f.bot.handleCommand(context.Background(), chatID, command, args)
	return f.out.last()
}

func TestBot_NoteLifecycle(t *testing.T) {
	f := newFixture(t)

	reply := f.run("note", "Past Tense | went, saw, came | familiar")
	assert.Contains(t, reply, `Saved "Past Tense" [familiar]`)

	notes := f.nb.ListNotes()
	require.Len(t, notes, 1)
	ref := shortID(notes[0].ID)

	assert.Contains(t, f.run("tag", "grammar 00ff00"), "Created tag grammar (#00FF00)")
	assert.Contains(t, f.run("tag", "irregular verbs"), "Created tag irregular verbs (#FF0000)")

	reply = f.run("settags", ref+" grammar")
	assert.Contains(t, reply, "tagged #grammar")

	assert.Contains(t, f.run("tags", ""), "#grammar (#00FF00) - 1 notes")

	reply = f.run("show", ref)
	assert.Contains(t, reply, "Past Tense [familiar]")
	assert.Contains(t, reply, "Tags: #grammar")
	assert.Contains(t, reply, "(cooling)")

	reply = f.run("deltag", "grammar")
	assert.Contains(t, reply, "Deleted tag grammar")
	assert.NotContains(t, f.run("show", ref), "#grammar")

	assert.Contains(t, f.run("delnote", ref), `Deleted "Past Tense"`)
	assert.Empty(t, f.nb.ListNotes())
}

func TestBot_CheckInCooldown(t *testing.T) {
	f := newFixture(t)
	f.run("note", "Articles | a, an, the")
	ref := f.nb.ListNotes()[0].ID

	f.now = f.now.Add(30 * time.Minute)
	assert.Contains(t, f.run("checkin", ref), "Try again in 30 minutes")

	f.now = f.now.Add(31 * time.Minute)
	assert.Contains(t, f.run("checkin", ref), "Studied 1 times")
}

func TestBot_ListNotes(t *testing.T) {
	f := newFixture(t)
	f.run("tag", "x")
	f.run("note", "A | | 1")
	f.now = f.now.Add(time.Minute)
	f.run("note", "B | | 3")
	f.now = f.now.Add(time.Minute)
	f.run("note", "C | | 2")

	for _, n := range f.nb.ListNotes() {
		if n.Title != "B" {
			f.run("settags", n.ID+" x")
		}
	}

	reply := f.run("notes", "x level asc")
	assert.Contains(t, reply, "by level, asc")
	a := strings.Index(reply, " A [")
	c := strings.Index(reply, " C [")
	require.True(t, a >= 0 && c >= 0)
	assert.Less(t, a, c)
	assert.NotContains(t, reply, " B [")

	assert.Contains(t, f.run("notes", "nosuchtag"), `No tag matches "nosuchtag"`)
}

func TestBot_EditAndComment(t *testing.T) {
	f := newFixture(t)
	f.run("note", "Colour | spelling")
	ref := f.nb.ListNotes()[0].ID

	assert.Contains(t, f.run("edit", ref+" title Color"), `Updated "Color"`)
	assert.Contains(t, f.run("edit", ref+" level 7"), "[mastered]")
	assert.Contains(t, f.run("edit", ref+" colour x"), "Usage:")
	assert.Contains(t, f.run("comment", ref+" US spelling"), "Comment added")

	note, err := f.nb.GetNote(ref)
	require.NoError(t, err)
	assert.Equal(t, "Color", note.Title)
	require.Len(t, note.Comments, 1)
}

func TestBot_Translate(t *testing.T) {
	f := newFixture(t)
	f.run("note", "Bonjour | hello")
	ref := f.nb.ListNotes()[0].ID

	f.run("translate", ref)
	f.disp.Wait()

	// the result may arrive before the acknowledgement
	sent := f.out.all()
	assert.Contains(t, sent, `Translating "Bonjour" into English`)
	assert.Contains(t, sent, "Bonjour (English)")
	note, err := f.nb.GetNote(ref)
	require.NoError(t, err)
	require.Len(t, note.Comments, 1)
	assert.True(t, strings.HasPrefix(note.Comments[0].Content, "[English] Bonjour"))
}

func TestBot_TranslateWithoutTranslator(t *testing.T) {
	f := newFixture(t)
	f.bot.translator = nil
	f.run("note", "Bonjour | hello")
	ref := f.nb.ListNotes()[0].ID

	assert.Equal(t, "Translation is not configured.", f.run("translate", ref))
	note, err := f.nb.GetNote(ref)
	require.NoError(t, err)
	assert.Empty(t, note.Comments)
}

func TestBot_Errors(t *testing.T) {
	f := newFixture(t)

	assert.Contains(t, f.run("note", ""), "Usage: /note")
	assert.Contains(t, f.run("show", "abcdef"), `No note matches "abcdef"`)
	assert.Contains(t, f.run("tag", ""), "Usage: /tag")
	assert.Contains(t, f.run("dance", ""), "Unknown command")
}

func TestBot_ListNotesByKeywordTag(t *testing.T) {
	f := newFixture(t)
	f.run("tag", "count")
	f.run("note", "Ein | one")
	f.run("note", "Zwei | two")
	ref := f.nb.ListNotes()[0].ID
	f.run("settags", ref+" count")

	reply := f.run("notes", "#count")
	assert.Contains(t, reply, "Ein")
	assert.NotContains(t, reply, "Zwei")
}

func TestBot_AllowedUsers(t *testing.T) {
	b := newBot(&fakeSender{}, nil, nil, Options{AllowedUsers: []int64{7}}, nil)
	assert.True(t, b.isAllowed(7))
	assert.False(t, b.isAllowed(8))

	open := newBot(&fakeSender{}, nil, nil, Options{}, nil)
	assert.True(t, open.isAllowed(8))
}

func TestParseListArgs(t *testing.T) {
	tag, q := parseListArgs("irregular verbs count asc")
	assert.Equal(t, "irregular verbs", tag)
	assert.Equal(t, notebook.SortStudyCount, q.SortKey)
	assert.True(t, q.Ascending)

	tag, q = parseListArgs("#level level")
	assert.Equal(t, "level", tag)
	assert.Equal(t, notebook.SortLevel, q.SortKey)

	tag, q = parseListArgs("")
	assert.Empty(t, tag)
	assert.Equal(t, notebook.SortCreationDate, q.SortKey)
	assert.False(t, q.Ascending)
}

func TestLooksLikeColor(t *testing.T) {
	assert.True(t, looksLikeColor("#00ff00"))
	assert.True(t, looksLikeColor("ABCDEF"))
	assert.False(t, looksLikeColor("verbs"))
	assert.False(t, looksLikeColor("12345"))
}
