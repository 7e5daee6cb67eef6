// Package completion wraps the OpenAI chat completion API behind a small
// interface so discovery widening and narrative document analysis can run
// without the rest of the pipeline knowing which model backs them. The
// pipeline degrades gracefully when no completer is configured.
package completion

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	// defaultModel is used when no model is configured
	defaultModel = "gpt-4o-mini"
	// defaultMaxTokens bounds completion length
	defaultMaxTokens = 2048
)

// Completer produces a completion for a system + user prompt pair
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Client is the OpenAI-backed Completer
type Client struct {
	api       *openai.Client
	model     string
	maxTokens int
}

// Option configures the Client
type Option func(*Client)

// WithModel overrides the default model
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the completion token budget
func WithMaxTokens(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// New creates an OpenAI-backed completion client
func New(apiKey string, opts ...Option) *Client {
	client := &Client{
		api:       openai.NewClient(apiKey),
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Complete sends the prompt pair and returns the first choice content
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	}

	// reasoning models reject the legacy max_tokens parameter
	if isReasoningModel(c.model) {
		req.MaxCompletionTokens = c.maxTokens
	} else {
		req.MaxTokens = c.maxTokens
	}

	resp, err := c.api.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", ErrCompletionFailed
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	return resp.Choices[0].Message.Content, nil
}

func isReasoningModel(model string) bool {
	for _, prefix := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(model, prefix) {
			return true
		}
	}

	return false
}
