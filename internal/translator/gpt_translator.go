package translator

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

type GPTTranslator struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float64
	logger      *zap.Logger
}

func NewGPTTranslator(apiKey, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTTranslator {
	return newGPTTranslator(openai.NewClient(apiKey), model, maxTokens, temperature, logger)
}

// NewGPTTranslatorWithBaseURL points the client at an OpenAI compatible endpoint
func NewGPTTranslatorWithBaseURL(apiKey, baseURL, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTTranslator {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return newGPTTranslator(openai.NewClientWithConfig(cfg), model, maxTokens, temperature, logger)
}

func newGPTTranslator(client *openai.Client, model string, maxTokens int, temperature float64, logger *zap.Logger) *GPTTranslator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GPTTranslator{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		logger:      logger,
	}
}

func buildPrompt(text, targetLang string) string {
	return fmt.Sprintf(`Translate the following study note into %s.
Keep line breaks and list markers. Reply with the translation only, without quotes or commentary.

Note: %s`, targetLang, text)
}

func (t *GPTTranslator) Translate(ctx context.Context, text, targetLang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyText
	}

	resp, err := t.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: t.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are a careful translator for a language learner's notebook.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: buildPrompt(text, targetLang),
				},
			},
			MaxTokens:   t.maxTokens,
			Temperature: float32(t.temperature),
		},
	)
	if err != nil {
		t.logger.Error("Failed to get GPT translation", zap.Error(err))
		return "", fmt.Errorf("translation request failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", errors.New("translation response has no choices")
	}

	translated := strings.TrimSpace(resp.Choices[0].Message.Content)
	if translated == "" {
		return "", errors.New("translation response is empty")
	}
	return translated, nil
}
