package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/careergini/orchestrator/pkg/observability"
)

// Defaults for the local Ollama backend.
const (
	DefaultBaseURL   = "http://localhost:11434/v1"
	DefaultModel     = "phi3:mini"
	DefaultMaxTokens = 1024
)

// profileSettings maps a task profile to its sampling configuration.
// Reasoning runs hotter for routing and generation; fast and coding run
// cooler for concise, factual output.
type profileSettings struct {
	temperature float64
	topP        float64
}

var profiles = map[TaskProfile]profileSettings{
	ProfileReasoning: {temperature: 0.7, topP: 0.9},
	ProfileFast:      {temperature: 0.3, topP: 0.95},
	ProfileCoding:    {temperature: 0.2, topP: 0.9},
}

// Ollama implements Client against an Ollama server's OpenAI-compatible
// endpoint. It is safe for concurrent use.
type Ollama struct {
	client    openai.Client
	baseURL   string
	models    map[TaskProfile]string
	maxTokens int
	retry     RetryConfig
	metrics   observability.MetricsRecorder
}

// OllamaOption configures the Ollama client.
type OllamaOption func(*Ollama)

// WithBaseURL sets the OpenAI-compatible endpoint.
// Ollama serves it under /v1 (e.g. "http://ollama:11434/v1").
func WithBaseURL(url string) OllamaOption {
	return func(o *Ollama) { o.baseURL = url }
}

// WithModel sets the model for all task profiles.
func WithModel(model string) OllamaOption {
	return func(o *Ollama) {
		for p := range profiles {
			o.models[p] = model
		}
	}
}

// WithProfileModel sets the model for one task profile.
func WithProfileModel(profile TaskProfile, model string) OllamaOption {
	return func(o *Ollama) { o.models[profile] = model }
}

// WithMaxTokens sets the default response cap.
func WithMaxTokens(n int) OllamaOption {
	return func(o *Ollama) {
		if n > 0 {
			o.maxTokens = n
		}
	}
}

// WithRetryConfig sets the retry policy for transient failures.
func WithRetryConfig(cfg RetryConfig) OllamaOption {
	return func(o *Ollama) { o.retry = cfg }
}

// WithMetrics sets the recorder for completion call metrics.
func WithMetrics(m observability.MetricsRecorder) OllamaOption {
	return func(o *Ollama) {
		if m != nil {
			o.metrics = m
		}
	}
}

// NewOllama creates a client for a local Ollama server.
func NewOllama(opts ...OllamaOption) *Ollama {
	o := &Ollama{
		baseURL: DefaultBaseURL,
		models: map[TaskProfile]string{
			ProfileReasoning: DefaultModel,
			ProfileFast:      DefaultModel,
			ProfileCoding:    DefaultModel,
		},
		maxTokens: DefaultMaxTokens,
		retry:     NoRetry,
		metrics:   observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(o)
	}

	// Ollama ignores the key but the SDK requires one. SDK-level retries
	// are disabled; the retry policy lives in this package.
	o.client = openai.NewClient(
		option.WithBaseURL(o.baseURL),
		option.WithAPIKey("ollama"),
		option.WithMaxRetries(0),
	)
	return o
}

// Complete implements Client.
func (o *Ollama) Complete(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()

	profile := req.Profile
	if profile == "" {
		profile = ProfileFast
	}

	result := WithRetry(ctx, o.retry, func(ctx context.Context) (*Response, error) {
		return o.complete(ctx, req)
	})
	o.metrics.RecordCompletion(ctx, string(profile), time.Since(start), result.Err)
	if result.Err != nil {
		return nil, result.Err
	}

	result.Value.Duration = time.Since(start)
	return result.Value, nil
}

func (o *Ollama) complete(ctx context.Context, req Request) (*Response, error) {
	profile := req.Profile
	if profile == "" {
		profile = ProfileFast
	}
	settings := profiles[profile]

	model, ok := o.models[profile]
	if !ok {
		model = DefaultModel
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			messages = append(messages, openai.SystemMessage(m.Content))
		case RoleAssistant:
			messages = append(messages, openai.AssistantMessage(m.Content))
		default:
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = o.maxTokens
	}

	completion, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    messages,
		Temperature: openai.Float(settings.temperature),
		TopP:        openai.Float(settings.topP),
		MaxTokens:   openai.Int(int64(maxTokens)),
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, NewError("complete", ctx.Err(), false)
		}
		return nil, NewError("complete", err, isRetryableTransport(err))
	}

	if len(completion.Choices) == 0 {
		return nil, NewError("complete", ErrEmptyCompletion, false)
	}

	choice := completion.Choices[0]
	return &Response{
		Content:      choice.Message.Content,
		Model:        completion.Model,
		FinishReason: string(choice.FinishReason),
		Usage: TokenUsage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
			TotalTokens:  int(completion.Usage.TotalTokens),
		},
	}, nil
}

// Health checks that the backend is reachable and reports loaded models.
func (o *Ollama) Health(ctx context.Context) error {
	page, err := o.client.Models.List(ctx)
	if err != nil {
		return NewError("health", fmt.Errorf("backend unreachable at %s: %w", o.baseURL, err), true)
	}
	if page == nil || len(page.Data) == 0 {
		return NewError("health", errors.New("no models loaded"), false)
	}
	return nil
}

// isRetryableTransport classifies SDK errors worth retrying:
// rate limits, server-side failures, and connection-level errors.
func isRetryableTransport(err error) bool {
	var apierr *openai.Error
	if errors.As(err, &apierr) {
		return apierr.StatusCode == 429 || apierr.StatusCode >= 500
	}
	msg := err.Error()
	return strings.Contains(msg, "connection refused") ||
		strings.Contains(msg, "connection reset") ||
		strings.Contains(msg, "EOF")
}
