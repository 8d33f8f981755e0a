package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/xaenox/study-bot/internal/notebook"
	"github.com/xaenox/study-bot/internal/translator"
	"go.uber.org/zap"
)

// sender is the part of tgbotapi.BotAPI the handlers need
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Bot struct {
	api        *tgbotapi.BotAPI
	out        sender
	notebook   *notebook.Notebook
	translator *translator.Dispatcher
	targetLang string
	allowed    map[int64]struct{}
	logger     *zap.Logger
}

type Options struct {
	TargetLanguage string
	// AllowedUsers limits who may talk to the bot; empty allows everyone
	AllowedUsers []int64
}

func New(token string, nb *notebook.Notebook, dispatcher *translator.Dispatcher, opts Options, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot: %w", err)
	}

	b := newBot(api, nb, dispatcher, opts, logger)
	b.api = api
	return b, nil
}

func newBot(out sender, nb *notebook.Notebook, dispatcher *translator.Dispatcher, opts Options, logger *zap.Logger) *Bot {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowed := make(map[int64]struct{}, len(opts.AllowedUsers))
	for _, id := range opts.AllowedUsers {
		allowed[id] = struct{}{}
	}
	return &Bot{
		out:        out,
		notebook:   nb,
		translator: dispatcher,
		targetLang: opts.TargetLanguage,
		allowed:    allowed,
		logger:     logger,
	}
}

// Start polls Telegram until ctx is cancelled
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Info("Bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			go b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}
	if !b.isAllowed(message.From.ID) {
		b.logger.Warn("Ignoring message from unknown user", zap.Int64("user_id", message.From.ID))
		return
	}

	if !message.IsCommand() {
		b.sendMessage(message.Chat.ID, "Send /help to see what I can do.")
		return
	}

	b.handleCommand(ctx, message.Chat.ID, message.Command(), message.CommandArguments())
}

func (b *Bot) isAllowed(userID int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[userID]
	return ok
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) {
	args = strings.TrimSpace(args)

	var (
		reply string
		err   error
	)
	switch command {
	case "start":
		reply = welcomeText
	case "help":
		reply = helpText
	case "note":
		reply, err = b.handleNewNote(ctx, args)
	case "notes":
		reply, err = b.handleListNotes(args)
	case "show":
		reply, err = b.handleShow(args)
	case "edit":
		reply, err = b.handleEdit(ctx, args)
	case "delnote":
		reply, err = b.handleDeleteNote(ctx, args)
	case "tag":
		reply, err = b.handleNewTag(ctx, args)
	case "tags":
		reply = b.handleListTags()
	case "renametag":
		reply, err = b.handleRenameTag(ctx, args)
	case "colortag":
		reply, err = b.handleColorTag(ctx, args)
	case "deltag":
		reply, err = b.handleDeleteTag(ctx, args)
	case "settags":
		reply, err = b.handleSetTags(ctx, args)
	case "checkin":
		reply, err = b.handleCheckIn(ctx, args)
	case "comment":
		reply, err = b.handleComment(ctx, args)
	case "translate":
		reply, err = b.handleTranslate(ctx, chatID, args)
	default:
		reply = "Unknown command. Use /help to see available commands."
	}

	if err != nil {
		b.sendErrorMessage(chatID, b.describeError(command, err))
		return
	}
	b.sendMessage(chatID, reply)
}

// describeError turns notebook errors into something a user can act on
func (b *Bot) describeError(command string, err error) string {
	var (
		usage      *usageError
		cooldown   *notebook.CooldownError
		notFound   *notebook.NotFoundError
		validation *notebook.ValidationError
	)
	switch {
	case errors.As(err, &usage):
		return "Usage: " + usage.usage
	case errors.As(err, &cooldown):
		return fmt.Sprintf("You studied this note recently. Try again in %d minutes.", cooldown.Minutes)
	case errors.As(err, &notFound):
		return fmt.Sprintf("No %s matches %q.", notFound.Kind, notFound.ID)
	case errors.As(err, &validation):
		return "Invalid input: " + validation.Error()
	case errors.Is(err, translator.ErrInFlight):
		return "That note is already being translated."
	}

	b.logger.Error("Command failed", zap.Error(err), zap.String("command", command))
	return "Sorry, something went wrong. Please try again."
}

func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("Failed to send message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

func (b *Bot) sendErrorMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, "⚠️ "+text)
	if _, err := b.out.Send(msg); err != nil {
		b.logger.Error("Failed to send error message",
			zap.Error(err),
			zap.Int64("chat_id", chatID))
	}
}

const welcomeText = `Welcome to StudyBot! 📚
Keep vocabulary and grammar notes, tag them, and check in every time you study one.

Use /help to see all available commands.`

const helpText = `Available commands:
/note <title> | <content> [| <level>] - Create a note
/notes [tag] [level|count|date] [asc|desc] - List notes
/show <note> - Show a note
/edit <note> title|content|level <value> - Edit a note
/delnote <note> - Delete a note
/tag <name> [color] - Create a tag
/tags - Show your tags
/renametag <tag> <new name> - Rename a tag
/colortag <tag> <hex> - Recolor a tag
/deltag <tag> - Delete a tag
/settags <note> <tag> [tag...] | none - Replace the tags of a note
/checkin <note> - Record a study session (once per hour)
/comment <note> <text> - Add a comment
/translate <note> [language] - Translate a note

Notes can be referred to by the first characters of their ID, tags by name.
Levels: beginner, familiar, proficient, mastered (or 0-3).`
