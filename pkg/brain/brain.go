// Package brain implements the ask-anything entry point: a single
// provider-ordered fallback loop, simpler than the agent-level chain.
package brain

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/backend"
	"github.com/zen-systems/cortexgate/pkg/keypool"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

// Apology is the fixed terminal message after total exhaustion.
const Apology = "🌙 Mi conexión con las estrellas de la IA está un poco nublada en este momento, querido aliado. " +
	"Dame un momento para recalibrar mis circuitos cósmicos... " +
	"Inténtalo de nuevo en unos segundos, y estaré listo para guiarte. ✨"

// PrimaryTier is the pool-backed multimodal provider's tier name.
const PrimaryTier = "google"

const primaryAttempts = 3

// PrimaryFactory builds the primary provider bound to one pool
// credential.
type PrimaryFactory func(apiKey string) (provider.Multimodal, error)

// Tier is one fallback position. A nil Provider means the tier is not
// configured and is skipped without counting as a failed attempt.
type Tier struct {
	Name     string
	Provider provider.Provider
}

// Chain walks the ordered tiers until one answers.
type Chain struct {
	pool        *keypool.Pool
	primary     PrimaryFactory
	tiers       []Tier
	transcriber backend.Transcriber
}

// New builds the chain. tiers are tried in order; the tier named
// PrimaryTier draws up to 3 distinct credentials from the pool.
func New(pool *keypool.Pool, primary PrimaryFactory, tiers []Tier, transcriber backend.Transcriber) *Chain {
	return &Chain{pool: pool, primary: primary, tiers: tiers, transcriber: transcriber}
}

// Ask runs the fallback loop. It never returns an error: exhaustion of
// every tier yields the fixed apology.
func (c *Chain) Ask(ctx context.Context, text string, atts []provider.Attachment) string {
	var audio []byte
	hasImage := false
	for _, att := range atts {
		switch att.Kind {
		case provider.AttachmentAudio:
			if audio == nil {
				audio = att.Data
			}
		case provider.AttachmentImage:
			hasImage = true
		}
	}

	for _, tier := range c.tiers {
		if tier.Name == PrimaryTier {
			if answer, ok := c.askPrimary(ctx, text, atts); ok {
				return answer
			}
			continue
		}

		if tier.Provider == nil {
			log.Warn().Str("provider", tier.Name).Msg("brain: skipping, no credential")
			continue
		}

		prompt := c.approximate(ctx, text, audio, hasImage)
		reply, err := tier.Provider.Generate(ctx, tier.Provider.Models()[0], prompt)
		if err != nil {
			log.Error().Err(err).Str("provider", tier.Name).Msg("brain: tier failed")
			continue
		}
		log.Info().Str("provider", tier.Name).Msg("brain: answered")
		return reply.Content
	}

	log.Error().Msg("brain: all providers failed")
	return Apology
}

// askPrimary tries up to 3 distinct pool credentials on the multimodal
// primary before conceding the tier.
func (c *Chain) askPrimary(ctx context.Context, text string, atts []provider.Attachment) (string, bool) {
	for attempt := 0; attempt < primaryAttempts; attempt++ {
		key, ok := c.pool.ActiveKey()
		if !ok {
			log.Warn().Msg("brain: skipping primary, no credential")
			return "", false
		}

		p, err := c.primary(key)
		if err != nil {
			return "", false
		}

		reply, err := p.GenerateParts(ctx, p.Models()[0], text, atts)
		if err == nil {
			log.Info().Str("provider", PrimaryTier).Int("attempt", attempt+1).Msg("brain: answered")
			return reply.Content, true
		}

		status := 500
		if provider.IsRateLimited(err) {
			status = 429
		}
		c.pool.ReportFailure(key, status)
		log.Warn().Err(err).Int("attempt", attempt+1).Msg("brain: primary attempt failed")
	}
	log.Warn().Msg("brain: primary credentials exhausted, falling back")
	return "", false
}

// approximate adapts a multimodal request for a text-only tier: audio
// becomes an appended transcription, images a textual notice.
func (c *Chain) approximate(ctx context.Context, text string, audio []byte, hasImage bool) string {
	prompt := text

	if audio != nil && c.transcriber != nil {
		if transcription := c.transcriber.Transcribe(ctx, audio); transcription != "" {
			prompt = strings.TrimSpace(prompt + "\n[Audio Transcription]: " + transcription)
		} else {
			log.Warn().Msg("brain: transcription failed, proceeding with text only")
		}
	}
	if hasImage {
		prompt = "[SYSTEM: User sent an image but the multimodal tier failed. Process this context based on text only.] " + prompt
	}
	return prompt
}
