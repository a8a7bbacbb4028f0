/*
Package oracle wraps the external generative-text service and the two best-effort calls
built on it: minting persona names and producing simulated peer replies.

Callers never see an oracle error. Every failure, including a missing credential,
degrades to a static fallback string.
*/
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"biochat/internal/pkg/logx"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

// ErrEmptyResponse is returned when the service answers with no text.
var ErrEmptyResponse = errors.New("oracle returned an empty response")

// TextGenerator is an opaque function from prompt to text.
type TextGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)

	// Name identifies the backend in logs.
	Name() string
}

// oracleLogger tags the Oracle component logger with the backend name, or "fallback".
func oracleLogger(gen TextGenerator) zerolog.Logger {
	name := "fallback"
	if gen != nil {
		name = gen.Name()
	}
	return logx.Component("Oracle").With().Str("generator", name).Logger()
}

// GenAIGenerator generates text with Google's Gemini API.
type GenAIGenerator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewTextGenerator returns a Gemini-backed generator, or nil when apiKey is empty.
// A nil generator puts the oracles in fallback-only mode, which is a valid runtime mode.
func NewTextGenerator(ctx context.Context, apiKey, model string, timeout time.Duration) (TextGenerator, error) {
	if apiKey == "" {
		return nil, nil
	}

	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIGenerator{
		client:  client,
		model:   model,
		timeout: timeout,
	}, nil
}

// Generate sends prompt as a single user turn and returns the response text.
func (g *GenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}

	return text, nil
}

// Name returns the generator name used in logs.
func (g *GenAIGenerator) Name() string {
	return "genai:" + g.model
}
