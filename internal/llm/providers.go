package llm

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/employeepulse/internal/config"
)

// Provider represents an LLM provider type
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderOllama    Provider = "ollama"
)

const defaultOllamaURL = "http://localhost:11434"

// NewModel creates the langchaingo model for the configured provider.
func NewModel(cfg config.LLMConfig) (llms.Model, error) {
	log.Debug().
		Str("provider", cfg.Provider).
		Str("model", cfg.Model).
		Float64("temperature", cfg.Temperature).
		Msg("Creating LLM model")

	var (
		model llms.Model
		err   error
	)
	switch Provider(cfg.Provider) {
	case ProviderAnthropic:
		model, err = createAnthropicModel(cfg)
	case ProviderOpenAI:
		model, err = createOpenAIModel(cfg)
	case ProviderOllama:
		model, err = createOllamaModel(cfg)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create model for provider %s: %w", cfg.Provider, err)
	}
	return model, nil
}

// NewFromConfig builds a Client. Without a credential the client is returned
// unconfigured and every analysis takes the heuristic path.
func NewFromConfig(cfg config.LLMConfig) (*Client, error) {
	opts := Options{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}
	if !cfg.Configured() {
		log.Warn().Str("provider", cfg.Provider).Msg("LLM API key not configured; using heuristic analysis")
		return New(nil, opts), nil
	}

	model, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}
	return New(model, opts), nil
}

func createAnthropicModel(cfg config.LLMConfig) (llms.Model, error) {
	opts := []anthropic.Option{
		anthropic.WithToken(cfg.APIKey),
		anthropic.WithModel(cfg.Model),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
	}
	return anthropic.New(opts...)
}

func createOpenAIModel(cfg config.LLMConfig) (llms.Model, error) {
	opts := []openai.Option{
		openai.WithModel(cfg.Model),
		openai.WithToken(cfg.APIKey),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	return openai.New(opts...)
}

func createOllamaModel(cfg config.LLMConfig) (llms.Model, error) {
	serverURL := cfg.BaseURL
	if serverURL == "" {
		serverURL = defaultOllamaURL
	}
	return ollama.New(
		ollama.WithServerURL(serverURL),
		ollama.WithModel(cfg.Model),
	)
}
