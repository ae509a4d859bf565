package extract

import (
	"context"
	"fmt"
	"net/http"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/packages/param"
	"github.com/openai/openai-go/shared"
)

// Completer is the language-model collaborator: system prompt plus user
// content in, raw completion text out.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

type OpenAICompleter struct {
	client oai.Client
	model  string
}

func NewOpenAICompleter(apiKey, model string, timeout time.Duration) *OpenAICompleter {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if timeout > 0 {
		opts = append(opts, option.WithHTTPClient(&http.Client{Timeout: timeout}))
	}
	return &OpenAICompleter{client: oai.NewClient(opts...), model: model}
}

func (c *OpenAICompleter) Complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(c.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(system),
			oai.UserMessage(user),
		},
		Temperature: param.NewOpt(0.0),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty choices in completion response")
	}
	return resp.Choices[0].Message.Content, nil
}
