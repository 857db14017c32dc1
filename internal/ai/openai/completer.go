// Package openai talks to OpenAI-compatible chat completion endpoints. The
// fireworks provider is the same wire format served by Fireworks, where the
// Dobby models are hosted.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/ai"
)

const (
	FireworksBaseURL = "https://api.fireworks.ai/inference/v1/"
	FireworksModel   = "accounts/sentientfoundation/models/dobby-unhinged-llama-3-3-70b-new"
	OpenAIModel      = "gpt-4o"

	defaultTimeout = 60 * time.Second
)

// Options tune a Completer. Zero values fall back to the provider defaults.
type Options struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
	// TopK is sent as an extra body field; only some providers accept it.
	TopK int
}

// Completer sends one chat completion per call and never retries.
type Completer struct {
	client openai.Client
	model  string
	topK   int
	logger *zap.Logger
}

var _ ai.Completer = (*Completer)(nil)

// NewFireworks returns a Completer for the Fireworks inference API.
func NewFireworks(opts Options, logger *zap.Logger) (*Completer, error) {
	if opts.BaseURL == "" {
		opts.BaseURL = FireworksBaseURL
	}
	if opts.Model == "" {
		opts.Model = FireworksModel
	}
	if opts.TopK == 0 {
		opts.TopK = 40
	}
	return New(opts, logger)
}

// New returns a Completer for the OpenAI API or any compatible endpoint.
func New(opts Options, logger *zap.Logger) (*Completer, error) {
	apiKey := strings.TrimSpace(opts.APIKey)
	if apiKey == "" {
		return nil, errors.New("openai api key is required")
	}

	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = OpenAIModel
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	requestOpts := []option.RequestOption{
		option.WithAPIKey(apiKey),
		option.WithMaxRetries(0),
		option.WithRequestTimeout(timeout),
	}
	if base := strings.TrimSpace(opts.BaseURL); base != "" {
		requestOpts = append(requestOpts, option.WithBaseURL(base))
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Completer{
		client: openai.NewClient(requestOpts...),
		model:  model,
		topK:   opts.TopK,
		logger: logger,
	}, nil
}

// Complete sends the system and user prompt as one chat completion request.
func (c *Completer) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if strings.TrimSpace(userPrompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(userPrompt))

	params := openai.ChatCompletionNewParams{
		Messages:         messages,
		Model:            openai.ChatModel(c.model),
		MaxTokens:        openai.Int(2048),
		TopP:             openai.Float(1),
		PresencePenalty:  openai.Float(0),
		FrequencyPenalty: openai.Float(0),
		Temperature:      openai.Float(0.6),
	}

	var extra []option.RequestOption
	if c.topK > 0 {
		extra = append(extra, option.WithJSONSet("top_k", c.topK))
	}

	started := time.Now()
	completion, err := c.client.Chat.Completions.New(ctx, params, extra...)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}

	c.logger.Debug("chat completion finished",
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("choices", len(completion.Choices)),
	)

	if len(completion.Choices) == 0 {
		return "", ai.ErrEmptyResponse
	}

	content := strings.TrimSpace(completion.Choices[0].Message.Content)
	if content == "" {
		return "", ai.ErrEmptyResponse
	}

	return content, nil
}

func (c *Completer) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}
