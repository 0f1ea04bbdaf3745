package cortex

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/agent"
	"github.com/zen-systems/cortexgate/pkg/backend"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

// Terminal strings. Only total exhaustion of a chain reaches the user
// as an apology; no internal detail ever does.
const (
	ApologyMaintenance = "🔧 Mis sistemas principales están en mantenimiento preventivo. Dame 30 segundos para recalibrar."
	ApologyTotal       = "🔥 Error Crítico: Todos los núcleos de IA están fuera de línea. Por favor contacta a soporte."
)

// Cortex owns one instance of each agent and orchestrates dispatch and
// fallback. Route never returns an error: the channel adapter always
// gets a user-facing string.
type Cortex struct {
	classifier  *Classifier
	agents      map[string]agent.Agent
	backups     []provider.Provider
	transcriber backend.Transcriber
}

// New builds the router. backups are the direct last-resort providers
// in priority order (only configured ones should be passed);
// transcriber may be nil to disable the audio rescue.
func New(classifier *Classifier, agents []agent.Agent, backups []provider.Provider, transcriber backend.Transcriber) *Cortex {
	byName := make(map[string]agent.Agent, len(agents))
	for _, a := range agents {
		byName[a.Name()] = a
	}
	return &Cortex{
		classifier:  classifier,
		agents:      byName,
		backups:     backups,
		transcriber: transcriber,
	}
}

// Route classifies the query, dispatches to the winning agent and
// recovers through the fallback chains on retryable failures.
func (c *Cortex) Route(ctx context.Context, query string, reqctx *agent.Context, atts []provider.Attachment) string {
	logger := log.With().Str("request_id", uuid.NewString()).Logger()

	decision := c.classifier.Classify(query)
	logger.Info().
		Str("agent", decision.Agent).
		Float64("confidence", decision.Confidence).
		Str("reasoning", decision.Reasoning).
		Msg("cortex: routing")

	specialist, ok := c.agents[decision.Agent]
	if !ok || decision.Agent == agent.Conversation {
		return c.extendedFallback(ctx, logger, query, reqctx, atts)
	}

	answer, err := specialist.Execute(ctx, query, reqctx, atts)
	if err == nil {
		return answer
	}
	logger.Error().Err(err).Str("agent", decision.Agent).Msg("cortex: specialist failed")

	// One strategy rescue, rate-limit failures only: a different
	// provider plausibly has quota where this one did not.
	if provider.IsRateLimited(err) {
		logger.Warn().Msg("cortex: rate limited, strategy rescue")
		if rescue, rerr := c.strategyRescue(ctx, query, reqctx); rerr == nil {
			return rescue
		} else {
			logger.Error().Err(rerr).Msg("cortex: strategy rescue failed")
		}
	}
	return ApologyMaintenance
}

func (c *Cortex) strategyRescue(ctx context.Context, query string, reqctx *agent.Context) (string, error) {
	strategy, ok := c.agents[agent.Strategy]
	if !ok {
		return "", &provider.Error{Err: errNoAgent(agent.Strategy)}
	}
	return strategy.Execute(ctx, query, reqctx, nil)
}

// extendedFallback is the conversation path's full chain:
// conversation → strategy → sales → direct backups → apology. Every
// step is independently recovered; a failure in one never stops the
// next from running.
func (c *Cortex) extendedFallback(ctx context.Context, logger zerolog.Logger, query string, reqctx *agent.Context, atts []provider.Attachment) string {
	if conv, ok := c.agents[agent.Conversation]; ok {
		answer, err := conv.Execute(ctx, query, reqctx, atts)
		if err == nil {
			return answer
		}
		logger.Warn().Err(err).Msg("cortex: conversation failed, walking chain")

		// Audio rescue: downstream agents are text-only, so an empty
		// query with an audio attachment would leave them blind.
		// Transcription failure is non-fatal.
		if strings.TrimSpace(query) == "" {
			if text := c.transcribeFirstAudio(ctx, atts); text != "" {
				logger.Info().Int("chars", len(text)).Msg("cortex: audio transcribed for fallback")
				query = text
			}
		}
	}

	if strategy, ok := c.agents[agent.Strategy]; ok {
		answer, err := strategy.Execute(ctx, query, reqctx, nil)
		if err == nil {
			return answer
		}
		logger.Warn().Err(err).Msg("cortex: strategy fallback failed")
	}

	if sales, ok := c.agents[agent.Sales]; ok {
		answer, err := sales.Execute(ctx, query, reqctx, nil)
		if err == nil {
			return "⚡ [Respaldo] " + answer
		}
		logger.Warn().Err(err).Msg("cortex: sales fallback failed")
	}

	for _, p := range c.backups {
		reply, err := p.Generate(ctx, p.Models()[0], query)
		if err == nil {
			return "🥥 [Respaldo " + p.Name() + "] " + reply.Content
		}
		logger.Warn().Err(err).Str("provider", p.Name()).Msg("cortex: direct backup failed")
	}

	logger.Error().Msg("cortex: total exhaustion")
	return ApologyTotal
}

func (c *Cortex) transcribeFirstAudio(ctx context.Context, atts []provider.Attachment) string {
	if c.transcriber == nil {
		return ""
	}
	for _, att := range atts {
		if att.Kind == provider.AttachmentAudio {
			return c.transcriber.Transcribe(ctx, att.Data)
		}
	}
	return ""
}

type errNoAgent string

func (e errNoAgent) Error() string { return "agent not registered: " + string(e) }
