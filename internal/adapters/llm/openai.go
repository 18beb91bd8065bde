package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"eventhub/config"
	"eventhub/internal/domain"
)

type openAIGateway struct {
	client      openai.Client
	model       string
	timeout     time.Duration
	temperature float64
}

// NewOpenAIGateway returns a CompletionGateway backed by the OpenAI chat
// completions API (or any compatible endpoint via BaseURL, e.g. a local
// Ollama). Each call is bounded by the configured timeout; retries are the
// orchestrator's responsibility.
func NewOpenAIGateway(cfg config.AssistantConfig) domain.CompletionGateway {
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	return &openAIGateway{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		timeout:     cfg.Timeout,
		temperature: cfg.Temperature,
	}
}

func (g *openAIGateway) Complete(ctx context.Context, req domain.CompletionRequest) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(g.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(buildUserMessage(req)),
		},
	}
	if g.temperature > 0 {
		params.Temperature = openai.Float(g.temperature)
	}

	resp, err := g.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices returned")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("chat completion: empty response")
	}
	return content, nil
}

// buildUserMessage lays out the draft, the outstanding fields, and the new
// user message for the extraction model.
func buildUserMessage(req domain.CompletionRequest) string {
	var b strings.Builder
	b.WriteString("CURRENT DRAFT:\n")
	b.WriteString(req.DraftJSON)
	b.WriteString("\n\nSTILL MISSING: ")
	if len(req.Missing) == 0 {
		b.WriteString("(none)")
	} else {
		b.WriteString(strings.Join(req.Missing, ", "))
	}
	b.WriteString("\n\nUSER MESSAGE:\n")
	b.WriteString(req.UserMessage)
	return b.String()
}
