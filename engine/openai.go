package engine

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"

	"github.com/pageglot/pageglot"
)

// OpenAIFactory backs the translation capability with OpenAI chat
// completions. Each created engine is bound to one language pair.
type OpenAIFactory struct {
	client      *openai.Client
	model       string
	temperature float32
	configured  bool
}

// OpenAIConfig holds configuration for the OpenAI-backed engine.
type OpenAIConfig struct {
	APIKey      string  // API key; engines are Unavailable without one
	Model       string  // Model to use (default: "gpt-4o-mini")
	Temperature float32 // Generation temperature (default: 0.3)
	BaseURL     string  // Custom base URL (optional)
}

// NewOpenAIFactory creates the factory.
func NewOpenAIFactory(cfg OpenAIConfig) *OpenAIFactory {
	config := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.3
	}

	return &OpenAIFactory{
		client:      openai.NewClientWithConfig(config),
		model:       model,
		temperature: temperature,
		configured:  cfg.APIKey != "",
	}
}

// Probe reports Available when the factory has credentials. Remote
// models involve no download phase.
func (f *OpenAIFactory) Probe(ctx context.Context, source, target string) (Availability, error) {
	if !f.configured {
		return Unavailable, nil
	}
	return Available, nil
}

// Create builds an engine for the pair. There is nothing to download,
// so progress jumps straight to completion.
func (f *OpenAIFactory) Create(ctx context.Context, source, target string, progress ProgressFunc) (Engine, error) {
	if !f.configured {
		return nil, &pageglot.CapabilityError{Capability: "translation"}
	}
	if progress != nil {
		progress(1.0)
	}
	return &openAIEngine{factory: f, source: source, target: target}, nil
}

type openAIEngine struct {
	factory *OpenAIFactory
	source  string
	target  string
}

func (e *openAIEngine) systemPrompt() string {
	targetName := pageglot.GetLanguageName(e.target)

	var b strings.Builder
	b.WriteString("You are a translation engine. Translate the user's text")
	if e.source != "" && e.source != pageglot.AutoDetect {
		b.WriteString(" from ")
		b.WriteString(pageglot.GetLanguageName(e.source))
	}
	b.WriteString(" into natural, idiomatic ")
	b.WriteString(targetName)
	b.WriteString(". Preserve meaningful whitespace and punctuation. ")
	b.WriteString("Return only the translation, with no commentary and no quotes.")
	return b.String()
}

// Translate translates one text.
func (e *openAIEngine) Translate(ctx context.Context, text string) (string, error) {
	resp, err := e.factory.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: e.factory.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: e.factory.temperature,
	})
	if err != nil {
		return "", &pageglot.EngineError{
			Message:   "chat completion failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}
	if len(resp.Choices) == 0 {
		return "", &pageglot.EngineError{Message: "empty completion", Retryable: true}
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// TranslateStreaming streams translation chunks as they arrive.
func (e *openAIEngine) TranslateStreaming(ctx context.Context, text string) (<-chan string, error) {
	stream, err := e.factory.client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model: e.factory.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: e.systemPrompt()},
			{Role: openai.ChatMessageRoleUser, Content: text},
		},
		Temperature: e.factory.temperature,
		Stream:      true,
	})
	if err != nil {
		return nil, &pageglot.EngineError{
			Message:   "streaming completion failed",
			Cause:     err,
			Retryable: isRetryableError(err),
		}
	}

	out := make(chan string)
	go func() {
		defer close(out)
		defer stream.Close()
		for {
			chunk, err := stream.Recv()
			if err != nil {
				return
			}
			if len(chunk.Choices) == 0 {
				continue
			}
			delta := chunk.Choices[0].Delta.Content
			if delta == "" {
				continue
			}
			select {
			case out <- delta:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

func (e *openAIEngine) Close() error {
	return nil
}

func isRetryableError(err error) bool {
	errStr := strings.ToLower(err.Error())
	retryablePatterns := []string{
		"rate limit",
		"timeout",
		"connection refused",
		"temporary",
		"503",
		"502",
		"429",
	}

	for _, pattern := range retryablePatterns {
		if strings.Contains(errStr, pattern) {
			return true
		}
	}
	return false
}

// Verify interface compliance.
var (
	_ Factory = (*OpenAIFactory)(nil)
	_ Engine  = (*openAIEngine)(nil)
)
