package judge

import (
	"context"
	"fmt"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/keval-dev/keval/internal/apierr"
	"github.com/keval-dev/keval/internal/config"
)

// OpenAI scores responses with a chat completion against any
// OpenAI-compatible endpoint.
type OpenAI struct {
	client      openai.Client
	model       string
	temperature float64
}

func NewOpenAI(cfg config.Judge) *OpenAI {
	var opts []openaiopt.RequestOption
	if cfg.APIKey != "" {
		opts = append(opts, openaiopt.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openaiopt.WithBaseURL(cfg.BaseURL))
	}
	return &OpenAI{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
	}
}

func (j *OpenAI) Score(ctx context.Context, req ScoreRequest) (*Result, error) {
	userMessage := fmt.Sprintf(
		"## Question\n%s\n\n## Golden Answer\n%s\n\n## Agent Response\n%s",
		req.Question, req.GoldenAnswer, req.Response,
	)

	completion, err := j.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: shared.ChatModel(j.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userMessage),
		},
		Temperature: openai.Float(j.temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	})
	if err != nil {
		return nil, &Error{Reason: fmt.Sprintf("chat completion: %v", err), Transient: apierr.Transient(err)}
	}
	if len(completion.Choices) == 0 {
		return nil, &Error{Reason: "chat completion returned no choices", Transient: true}
	}

	return ParseResponse(completion.Choices[0].Message.Content)
}
