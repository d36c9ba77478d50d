package gensvc

import (
	"context"

	"github.com/pkg/errors"
	openai "github.com/sashabaranov/go-openai"

	"github.com/trezcool/mwalimu/core/composer"
)

// openAIGenerator runs single-turn chat completions against the OpenAI API.
type openAIGenerator struct {
	client      *openai.Client
	model       string
	temperature float32
}

var _ composer.TextGenerator = (*openAIGenerator)(nil)

// NewOpenAIGenerator returns nil when no API key is configured; the composer
// treats a nil generator as its degraded mode.
func NewOpenAIGenerator(apiKey, model string, temperature float64) composer.TextGenerator {
	if apiKey == "" {
		return nil
	}
	return &openAIGenerator{
		client:      openai.NewClient(apiKey),
		model:       model,
		temperature: float32(temperature),
	}
}

func (g *openAIGenerator) Complete(ctx context.Context, system, prompt string) (string, error) {
	res, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       g.model,
		Temperature: g.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", err
	}
	if len(res.Choices) == 0 {
		return "", errors.New("no completion choices returned")
	}
	return res.Choices[0].Message.Content, nil
}
