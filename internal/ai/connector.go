// Package ai holds the LLM provider adapters and the sequential fallback
// orchestrator. Each adapter performs one call with a provider-specific
// payload, a configured model, and a hard timeout imposed by the
// orchestrator; failures surface as uniform errors the orchestrator consumes.
package ai

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/googleai"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/time/rate"

	"github.com/radvalidate/pkg/models"
)

// ProviderName identifies a supported LLM backend.
type ProviderName string

const (
	ProviderOpenAI ProviderName = "openai"
	ProviderClaude ProviderName = "claude"
	ProviderGemini ProviderName = "gemini"
	ProviderOllama ProviderName = "ollama"
)

// Provider is the thin adapter boundary the orchestrator calls through.
type Provider interface {
	Name() string
	Model() string
	Call(ctx context.Context, prompt string) (*models.ProviderResponse, error)
}

// ConnectorConfig configures one provider adapter.
type ConnectorConfig struct {
	Provider    ProviderName `koanf:"provider"`
	APIKey      string       `koanf:"api_key"`
	Model       string       `koanf:"model"`
	BaseURL     string       `koanf:"base_url"`
	Temperature float64      `koanf:"temperature"`
	MaxTokens   int          `koanf:"max_tokens"`
	// RateLimit is requests per second; zero disables limiting.
	RateLimit float64 `koanf:"rate_limit"`
}

// Connector adapts one langchaingo model to the Provider interface.
type Connector struct {
	provider ProviderName
	model    string
	llm      llms.Model
	cfg      ConnectorConfig
	limiter  *rate.Limiter
}

// NewConnector builds the langchaingo model for the configured provider.
func NewConnector(ctx context.Context, cfg ConnectorConfig) (*Connector, error) {
	var (
		model llms.Model
		err   error
	)

	switch cfg.Provider {
	case ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(cfg.APIKey),
			openai.WithModel(cfg.Model),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	case ProviderClaude:
		model, err = anthropic.New(
			anthropic.WithToken(cfg.APIKey),
			anthropic.WithModel(cfg.Model),
		)
	case ProviderGemini:
		model, err = googleai.New(ctx,
			googleai.WithAPIKey(cfg.APIKey),
			googleai.WithDefaultModel(cfg.Model),
		)
	case ProviderOllama:
		baseURL := cfg.BaseURL
		if baseURL == "" {
			baseURL = "http://localhost:11434"
		}
		model, err = ollama.New(
			ollama.WithServerURL(baseURL),
			ollama.WithModel(cfg.Model),
		)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", cfg.Provider, err)
	}

	c := &Connector{
		provider: cfg.Provider,
		model:    cfg.Model,
		llm:      model,
		cfg:      cfg,
	}
	if cfg.RateLimit > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}
	return c, nil
}

func (c *Connector) Name() string  { return string(c.provider) }
func (c *Connector) Model() string { return c.model }

// Call performs one provider call. The context carries the orchestrator's
// per-call timeout; when it fires the in-flight call is abandoned.
func (c *Connector) Call(ctx context.Context, prompt string) (*models.ProviderResponse, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	callOpts := []llms.CallOption{
		llms.WithTemperature(c.cfg.Temperature),
	}
	if c.cfg.MaxTokens > 0 {
		callOpts = append(callOpts, llms.WithMaxTokens(c.cfg.MaxTokens))
	}

	start := time.Now()
	resp, err := c.llm.GenerateContent(ctx,
		[]llms.MessageContent{llms.TextParts(llms.ChatMessageTypeHuman, prompt)},
		callOpts...,
	)
	latency := time.Since(start)
	if err != nil {
		return nil, fmt.Errorf("%s call failed: %w", c.provider, err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%s returned no choices", c.provider)
	}

	choice := resp.Choices[0]
	prompTok, complTok, totalTok := usageFromGenerationInfo(choice.GenerationInfo)

	log.Debug().
		Str("provider", string(c.provider)).
		Str("model", c.model).
		Int("prompt_tokens", prompTok).
		Int("completion_tokens", complTok).
		Dur("latency", latency).
		Msg("provider call succeeded")

	return &models.ProviderResponse{
		Provider:         string(c.provider),
		Model:            c.model,
		Content:          choice.Content,
		PromptTokens:     prompTok,
		CompletionTokens: complTok,
		TotalTokens:      totalTok,
		LatencyMs:        latency.Milliseconds(),
	}, nil
}

// usageFromGenerationInfo pulls token counts out of the provider-specific
// GenerationInfo map. Key names differ per backend; unknown shapes yield
// zeroes rather than errors.
func usageFromGenerationInfo(info map[string]any) (prompt, completion, total int) {
	prompt = intFromAny(info, "PromptTokens", "prompt_tokens", "InputTokens", "input_tokens")
	completion = intFromAny(info, "CompletionTokens", "completion_tokens", "OutputTokens", "output_tokens")
	total = intFromAny(info, "TotalTokens", "total_tokens")
	if total == 0 {
		total = prompt + completion
	}
	return prompt, completion, total
}

func intFromAny(info map[string]any, keys ...string) int {
	for _, key := range keys {
		v, ok := info[key]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case int:
			return n
		case int32:
			return int(n)
		case int64:
			return int(n)
		case float64:
			return int(n)
		case string:
			if parsed, err := strconv.Atoi(n); err == nil {
				return parsed
			}
		}
	}
	return 0
}
