package oracle

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"biochat/internal/pkg/randx"
)

// identityPrompt is the fixed instruction for minting a persona name.
const identityPrompt = "Generate a single, creative, unique, and slightly funny biological or medical username. " +
	"It should be 1 or 2 words max. Examples: 'Happy Neuron', 'Captain Mitosis', 'Dr. Amoeba', 'Vagus Nerve'. " +
	"Return ONLY the name, no extra text."

// FallbackNames is the pool used whenever the oracle cannot mint a name.
var FallbackNames = []string{"Mystic Macrophage", "Dizzy Dendrite", "Quantum Quack", "Salty Synapse", "Happy Hormone"}

// IdentityGenerator mints persona names. It is stateless and safe for concurrent use.
type IdentityGenerator struct {
	gen    TextGenerator
	logger zerolog.Logger
}

// NewIdentityGenerator returns a generator backed by gen. A nil gen means fallback-only.
func NewIdentityGenerator(gen TextGenerator) *IdentityGenerator {
	return &IdentityGenerator{
		gen:    gen,
		logger: oracleLogger(gen),
	}
}

// Generate returns a display name for a new participant. One attempt, no retries.
func (g *IdentityGenerator) Generate(ctx context.Context) string {
	if g.gen == nil {
		g.logger.Debug().Msg("Oracle not configured, using fallback name")
		return randx.Pick(FallbackNames)
	}

	raw, err := g.gen.Generate(ctx, identityPrompt)
	if err != nil {
		g.logger.Warn().Err(err).Msg("Failed to generate name, using fallback")
		return randx.Pick(FallbackNames)
	}

	name := CleanName(raw)
	if name == "" {
		g.logger.Warn().Str("raw", raw).Msg("Oracle returned an unusable name, using fallback")
		return randx.Pick(FallbackNames)
	}

	return name
}

// CleanName trims surrounding whitespace and removes every single and double quote.
func CleanName(raw string) string {
	name := strings.TrimSpace(raw)
	name = strings.NewReplacer(`'`, "", `"`, "").Replace(name)
	return strings.TrimSpace(name)
}
