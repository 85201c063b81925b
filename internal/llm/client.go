// Package llm is the narrow seam between this module and the hosted
// language model.
package llm

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kazz187/pomofocus/internal/config"
)

type Role string

const (
	RoleSystem    Role = openai.ChatMessageRoleSystem
	RoleUser      Role = openai.ChatMessageRoleUser
	RoleAssistant Role = openai.ChatMessageRoleAssistant
)

type Message struct {
	Role    Role
	Content string
}

type Request struct {
	Messages    []Message
	MaxTokens   int
	Temperature float32
}

// Completer returns the text of the first choice for a chat request. An
// empty string means the model produced no choice.
type Completer interface {
	Complete(ctx context.Context, req Request) (string, error)
}

var ErrNotConfigured = errors.New("openai api key is not configured")

type OpenAI struct {
	client *openai.Client
	model  string
}

var _ Completer = (*OpenAI)(nil)

func NewOpenAI(env *config.OpenAIEnv) *OpenAI {
	o := &OpenAI{model: env.Model}
	if env.APIKey == "" {
		return o
	}
	cfg := openai.DefaultConfig(env.APIKey)
	if env.BaseURL != "" {
		cfg.BaseURL = env.BaseURL
	}
	o.client = openai.NewClientWithConfig(cfg)
	return o
}

func (o *OpenAI) Complete(ctx context.Context, req Request) (string, error) {
	if o.client == nil {
		return "", ErrNotConfigured
	}
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content})
	}
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       o.model,
		Messages:    messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}
