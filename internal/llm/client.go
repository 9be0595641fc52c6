// Package llm talks to a language model with a JSON-schema structured output
// contract and falls back to the heuristic scorer whenever that fails.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	lcschema "github.com/tmc/langchaingo/schema"

	"github.com/employeepulse/internal/heuristic"
	"github.com/employeepulse/pkg/models"
)

const (
	jsonInstruction = "Return ONLY valid JSON that strictly matches the provided JSON schema. " +
		"Do not include any extra commentary, code fences, or explanations."

	analysisSystemPrompt = "Be precise and consistent. " +
		"Use a wide range of sentiment values (not just -1/0/1). " +
		"Classify burnout risk as High only for strong, repeated stress signals."

	defaultTimeout = 60 * time.Second
)

// Generator is the part of a langchaingo model the client needs.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// Options are the per-client defaults. Zero Timeout means 60s.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature float64
	Timeout     time.Duration
}

// StructuredRequest is a single structured-output call. Zero fields fall
// back to the client Options.
type StructuredRequest struct {
	System      string
	Prompt      string
	Model       string
	Temperature *float64
	MaxTokens   int
}

// Client wraps one model. A nil model means "not configured".
type Client struct {
	model Generator
	opts  Options
}

func New(model Generator, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Client{model: model, opts: opts}
}

// Configured reports whether calls will reach a model.
func (c *Client) Configured() bool {
	return c != nil && c.model != nil
}

// GenerateStructured issues one model request and decodes the reply into
// target after validating it against target's schema. Failures are returned
// wrapped in one of the package sentinels. There is no retry.
func (c *Client) GenerateStructured(ctx context.Context, req StructuredRequest, target any) error {
	if !c.Configured() {
		return ErrNotConfigured
	}

	schema, err := SchemaFor(target)
	if err != nil {
		return err
	}
	schemaJSON, err := SchemaJSON(schema)
	if err != nil {
		return fmt.Errorf("render schema: %w", err)
	}

	system := jsonInstruction
	if req.System != "" {
		system = req.System + "\n\n" + jsonInstruction
	}
	user := "You must produce output that validates against this JSON schema.\n" +
		"JSON Schema: " + schemaJSON + "\n\n" +
		"Task: " + req.Prompt

	callOpts := c.callOptions(req)

	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(lcschema.ChatMessageTypeSystem, system),
		llms.TextParts(lcschema.ChatMessageTypeHuman, user),
	}, callOpts...)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	if resp == nil || len(resp.Choices) == 0 {
		return fmt.Errorf("%w: response has no choices", ErrMalformedOutput)
	}

	value, strategy, err := DecodeJSON(resp.Choices[0].Content)
	if err != nil {
		return err
	}
	log.Debug().
		Str("strategy", strategy).
		Dur("latency", time.Since(start)).
		Msg("Decoded structured LLM output")

	if err := schema.Value.VisitJSON(value); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMalformedOutput, err)
	}
	if err := json.Unmarshal(normalized, target); err != nil {
		return fmt.Errorf("%w: %w", ErrSchemaMismatch, err)
	}
	return nil
}

func (c *Client) callOptions(req StructuredRequest) []llms.CallOption {
	model := req.Model
	if model == "" {
		model = c.opts.Model
	}
	temperature := c.opts.Temperature
	if req.Temperature != nil {
		temperature = *req.Temperature
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = c.opts.MaxTokens
	}

	opts := []llms.CallOption{llms.WithTemperature(temperature)}
	if model != "" {
		opts = append(opts, llms.WithModel(model))
	}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}
	return opts
}

type promptMessage struct {
	ID     string           `json:"id"`
	UserID string           `json:"userId"`
	Text   string           `json:"text"`
	TS     models.EpochTime `json:"ts"`
}

// Analyze scores messages for sentiment and burnout risk. It never fails: an
// unconfigured client, an empty input or any model failure yields the
// heuristic summary.
func (c *Client) Analyze(ctx context.Context, messages []models.Message) models.AnalysisSummary {
	if !c.Configured() || len(messages) == 0 {
		return heuristic.Summarize(messages)
	}

	recent := heuristic.Recent(messages, heuristic.MaxMessages)
	payload := make([]promptMessage, len(recent))
	for i, m := range recent {
		payload[i] = promptMessage{ID: m.ID, UserID: m.AuthorID, Text: m.Text, TS: m.Timestamp}
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to encode messages for analysis")
		return heuristic.Summarize(messages)
	}

	var summary models.AnalysisSummary
	err = c.GenerateStructured(ctx, StructuredRequest{
		System: analysisSystemPrompt,
		Prompt: "Messages: " + string(encoded),
	}, &summary)
	if err != nil {
		log.Warn().
			Err(err).
			Str("error_kind", ErrorKind(err)).
			Int("messages", len(recent)).
			Msg("Structured analysis failed, using heuristic")
		return heuristic.Summarize(messages)
	}

	log.Debug().
		Float64("overall_sentiment", summary.OverallSentiment).
		Str("burnout", string(summary.BurnoutRiskLevel)).
		Int("items", len(summary.Items)).
		Msg("LLM analysis complete")
	return summary
}
