package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	GroqBaseURL  = "https://api.groq.com/openai/v1"
	DefaultModel = "llama3-8b-8192"

	// Fixed sampling parameters for every completion call.
	temperature = 0.7
	maxTokens   = 1024
)

var ErrEmptyCompletion = errors.New("no response from completion provider")

// GroqClient calls Groq's OpenAI-compatible chat completions endpoint. Model
// ids are passed through to the provider as-is; no membership check is done
// against the advertised model set.
type GroqClient struct {
	llm *openai.LLM
}

func NewGroqClient(apiKey, baseURL string) (*GroqClient, error) {
	if baseURL == "" {
		baseURL = GroqBaseURL
	}

	client, err := openai.New(
		openai.WithToken(apiKey),
		openai.WithBaseURL(baseURL),
		openai.WithModel(DefaultModel),
	)
	if err != nil {
		return nil, fmt.Errorf("could not create completion client: %w", err)
	}

	return &GroqClient{llm: client}, nil
}

func (c *GroqClient) Complete(ctx context.Context, model string, fragments []Fragment) (Completion, error) {
	if model == "" {
		model = DefaultModel
	}

	messages := make([]llms.MessageContent, 0, len(fragments))
	for _, f := range fragments {
		messages = append(messages, llms.TextParts(roleToMessageType(f.Role), f.Content))
	}

	resp, err := c.llm.GenerateContent(ctx, messages,
		llms.WithModel(model),
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return Completion{}, fmt.Errorf("completion request failed: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return Completion{}, ErrEmptyCompletion
	}

	choice := resp.Choices[0]
	return Completion{Content: choice.Content, Usage: choice.GenerationInfo}, nil
}

func roleToMessageType(role string) llms.ChatMessageType {
	switch role {
	case RoleSystem:
		return llms.ChatMessageTypeSystem
	case RoleAssistant:
		return llms.ChatMessageTypeAI
	default:
		return llms.ChatMessageTypeHuman
	}
}
