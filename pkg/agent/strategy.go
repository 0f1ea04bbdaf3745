package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/provider"
)

// StrategyOffline is returned when no strategy credential is
// configured. Missing configuration degrades gracefully instead of
// triggering fallback, since no other agent can supply the credential.
const StrategyOffline = "💡 El estratega está reconectando... análisis pendiente."

const strategyPersona = `Eres la estratega del equipo.
Tu esencia es la claridad: transformas datos en insights accionables.

PERSONALIDAD:
- Visionaria pero práctica
- Hablas con la seguridad de quien ve el panorama completo
- Enfocada en ROI y crecimiento sostenible

REGLAS:
- Respuestas ejecutivas (máx 3 párrafos)
- Cada insight termina con un "siguiente paso" concreto
- Perspectiva de agencia boutique de marketing
- Idioma: Español profesional`

// StrategyAgent answers high-level analysis queries through a single
// hosted model with a fixed persona. It carries no tool logic.
type StrategyAgent struct {
	llm provider.Persona
}

// NewStrategy creates the strategy agent. A nil llm means no
// credential was configured; Execute then returns StrategyOffline.
func NewStrategy(llm provider.Persona) *StrategyAgent {
	return &StrategyAgent{llm: llm}
}

func (a *StrategyAgent) Name() string { return Strategy }

// Execute generates a strategic answer. Live provider failures
// propagate so the router can fall back.
func (a *StrategyAgent) Execute(ctx context.Context, query string, reqctx *Context, _ []provider.Attachment) (string, error) {
	if a.llm == nil {
		log.Warn().Msg("strategy: no credential configured")
		return StrategyOffline, nil
	}

	prompt := fmt.Sprintf("Contexto: %s\n\nConsulta: %s", describeContext(reqctx), query)
	reply, err := a.llm.GenerateWithSystem(ctx, a.llm.Models()[0], strategyPersona, prompt)
	if err != nil {
		return "", fmt.Errorf("strategy model call: %w", err)
	}
	log.Info().Int("chars", len(reply.Content)).Msg("strategy answered")
	return reply.Content, nil
}

func describeContext(reqctx *Context) string {
	if reqctx == nil {
		return "N/A"
	}
	desc := ""
	if reqctx.CallerName != "" {
		desc = "Usuario: " + reqctx.CallerName
	}
	for k, v := range reqctx.Extra {
		if desc != "" {
			desc += ", "
		}
		desc += k + ": " + v
	}
	if desc == "" {
		return "N/A"
	}
	return desc
}
