package translator

import (
	"context"
	"errors"
	"strings"
)

// ErrEmptyText is returned when there is nothing to translate
var ErrEmptyText = errors.New("nothing to translate")

// Translator turns note content into another language
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// EchoTranslator returns the text unchanged. Tests use it in place of a
// network translator; the bot never stores its output as a real translation.
type EchoTranslator struct{}

func (EchoTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}
	return text, nil
}
