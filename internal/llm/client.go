// Package llm wraps the Anthropic Messages API behind a small completion
// interface used by the hybrid date extractor.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	anthropic "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/tripline/server/internal/config"
	"github.com/tripline/server/internal/metrics"
)

var (
	// ErrModelDisabled is returned by DisabledCompleter.
	ErrModelDisabled = errors.New("language model disabled: no API key configured")
	// ErrEmptyReply is returned when the model answers without any text block.
	ErrEmptyReply = errors.New("language model returned no text")
)

// Completer sends a single-turn prompt and returns the model's text reply.
type Completer interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// AnthropicClient implements Completer with the Anthropic Messages API.
type AnthropicClient struct {
	client    anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicClient builds a client from LLM config. SDK retries are capped at one.
func NewAnthropicClient(cfg config.LLMConfig, opts ...option.RequestOption) *AnthropicClient {
	reqOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(1),
	}
	if cfg.BaseURL != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(cfg.BaseURL))
	}
	reqOpts = append(reqOpts, opts...)

	return &AnthropicClient{
		client:    anthropic.NewClient(reqOpts...),
		model:     cfg.Model,
		maxTokens: int64(cfg.MaxTokens),
	}
}

// New returns an AnthropicClient when an API key is configured and a
// DisabledCompleter otherwise.
func New(cfg config.LLMConfig) Completer {
	if !cfg.Enabled() {
		return DisabledCompleter{}
	}
	return NewAnthropicClient(cfg)
}

// Complete implements Completer.
func (c *AnthropicClient) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	start := time.Now()
	msg, err := c.client.Messages.New(ctx, params)
	metrics.LLMLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.LLMRequestsTotal.WithLabelValues("error").Inc()
		return "", fmt.Errorf("anthropic messages call: %w", err)
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	if b.Len() == 0 {
		metrics.LLMRequestsTotal.WithLabelValues("empty").Inc()
		return "", ErrEmptyReply
	}

	metrics.LLMRequestsTotal.WithLabelValues("success").Inc()
	return b.String(), nil
}

// DisabledCompleter always fails, so the primary extractor defers to the
// fallback for anything the rules cannot settle alone.
type DisabledCompleter struct{}

// Complete implements Completer.
func (DisabledCompleter) Complete(context.Context, string, string) (string, error) {
	metrics.LLMRequestsTotal.WithLabelValues("disabled").Inc()
	return "", ErrModelDisabled
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, prompt string) (string, error)

// Complete implements Completer.
func (f CompleterFunc) Complete(ctx context.Context, system, prompt string) (string, error) {
	return f(ctx, system, prompt)
}
