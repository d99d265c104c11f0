package agent

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/keval-dev/keval/internal/apierr"
	"github.com/keval-dev/keval/internal/config"
)

// OpenAI answers questions with a single chat completion against any
// OpenAI-compatible endpoint. It has no tool access: a condition that
// allows MCP servers cannot be evaluated with this adapter, and saying so
// is a configuration error, not a transient fault.
type OpenAI struct {
	client openai.Client
	model  string
}

func NewOpenAI(cfg config.Agent) *OpenAI {
	var opts []openaiopt.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, openaiopt.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaiopt.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{client: openai.NewClient(opts...), model: cfg.Model}
}

func (a *OpenAI) Query(ctx context.Context, q Query) (*Result, error) {
	if len(q.Servers) > 0 {
		return nil, &Error{Reason: "the openai agent does not support MCP servers; use the claude or sandbox agent"}
	}

	messages := []openai.ChatCompletionMessageParamUnion{}
	if q.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(q.SystemPrompt))
	}
	messages = append(messages, openai.UserMessage(q.Question))

	completion, err := a.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(a.model),
		Messages: messages,
	})
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("chat completion: %v", err), Transient: apierr.Transient(err)}
	}
	if len(completion.Choices) == 0 {
		return nil, &Error{Reason: "chat completion returned no choices", Transient: true}
	}

	return &Result{
		Response: completion.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
	}, nil
}
