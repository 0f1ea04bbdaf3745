package agent

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/keypool"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

// ConversationOffline is returned when no primary credential can be
// obtained at all.
const ConversationOffline = "🎙️ Estoy reconectando. Inténtalo en un minuto."

const conversationPersona = `Eres el cerebro central de operaciones de la agencia.
Tono: Relajado, humano, profesional pero cercano.
Usa emojis con naturalidad 🤙.

Misión 🚀:
- Actuar como Project Manager (PM) proactivo.
- Si detectas una tarea o proyecto (ej: "Vernal", "Lanzamiento"):
  1. 🧠 "Pide la palabra": Ofrece contexto inmediato de la memoria.
  2. "Oye, sobre Vernal, recuerda que tenemos pendiente X...".
  3. Coordina con los demás agentes pero tú das la cara.

Herramientas 🛠️:
- recall_memory: Úsala SIEMPRE que se mencione un cliente o proyecto pasado.
- sync_mail_and_tasks: Úsala si preguntan por correos o pendientes.
- request_strategy: Úsala si necesitas un plan detallado, blueprint o análisis complejo.`

const maxToolRounds = 3

// ModelSession runs one tool-enabled generation against the primary
// provider. Satisfied by provider.GoogleProvider.
type ModelSession interface {
	Session(ctx context.Context, model, system, prompt string, atts []provider.Attachment, tools []provider.ToolDecl) (*provider.SessionResult, error)
}

// SessionFactory builds a session bound to one credential. The
// credential is threaded per request; nothing is stored on the agent.
type SessionFactory func(apiKey string) (ModelSession, error)

// ConversationAgent is the default agent: a tool-enabled model session
// over an ordered model preference chain, with credential rotation on
// rate limits.
type ConversationAgent struct {
	pool       *keypool.Pool
	models     []string
	newSession SessionFactory

	recall     *RecallAgent
	scheduling *SchedulingAgent
	strategy   *StrategyAgent
}

// NewConversation creates the conversation agent. models is the
// preference chain, most capable first.
func NewConversation(pool *keypool.Pool, models []string, newSession SessionFactory, recall *RecallAgent, scheduling *SchedulingAgent, strategy *StrategyAgent) *ConversationAgent {
	return &ConversationAgent{
		pool:       pool,
		models:     models,
		newSession: newSession,
		recall:     recall,
		scheduling: scheduling,
		strategy:   strategy,
	}
}

func (a *ConversationAgent) Name() string { return Conversation }

// Execute runs the enriched query through the model chain. On a
// rate-limited failure it reports the credential and retries the same
// tier with a fresh key before advancing; other failures advance the
// tier directly. At most len(models) attempts, then a terminal error.
func (a *ConversationAgent) Execute(ctx context.Context, query string, reqctx *Context, atts []provider.Attachment) (string, error) {
	enriched := query
	if reqctx != nil && reqctx.CallerName != "" {
		enriched = "[Usuario: " + reqctx.CallerName + "] " + enriched
	}
	if len(atts) > 0 {
		enriched += fmt.Sprintf("\n[Adjuntos: %d]", len(atts))
	}

	tier := 0
	var lastErr error
	for attempt := 0; attempt < len(a.models) && tier < len(a.models); attempt++ {
		key, ok := a.pool.ActiveKey()
		if !ok {
			log.Warn().Msg("conversation: no credential available")
			return ConversationOffline, nil
		}

		sess, err := a.newSession(key)
		if err != nil {
			return ConversationOffline, nil
		}

		answer, err := a.run(ctx, sess, a.models[tier], enriched, atts, reqctx)
		if err == nil {
			log.Info().Str("model", a.models[tier]).Int("chars", len(answer)).Msg("conversation answered")
			return answer, nil
		}
		lastErr = err

		if provider.IsRateLimited(err) {
			// Fresh key on the same tier first; the failed key just
			// entered cooldown so the pool rotates for us.
			a.pool.ReportFailure(key, 429)
			log.Warn().Err(err).Str("model", a.models[tier]).Msg("conversation: rate limited, rotating key")
		} else {
			a.pool.ReportFailure(key, 500)
			tier++
			log.Warn().Err(err).Msg("conversation: advancing model tier")
		}
	}

	return "", fmt.Errorf("conversation: all model tiers failed: %w", lastErr)
}

// run drives one session including tool rounds: when the model calls a
// declared tool, its validated result is fed back and the session is
// resumed, up to maxToolRounds.
func (a *ConversationAgent) run(ctx context.Context, sess ModelSession, model, prompt string, atts []provider.Attachment, reqctx *Context) (string, error) {
	current := prompt
	for round := 0; round < maxToolRounds; round++ {
		res, err := sess.Session(ctx, model, conversationPersona, current, atts, a.toolDecls())
		if err != nil {
			return "", err
		}
		if res.ToolCall == nil {
			return res.Reply.Content, nil
		}

		log.Info().Str("tool", res.ToolCall.Name).Msg("conversation: tool call")
		output, err := a.invokeTool(ctx, res.ToolCall, reqctx)
		if err != nil {
			output = fmt.Sprintf("La herramienta falló: %v", err)
		}
		current = fmt.Sprintf("%s\n\n[Resultado de %s]:\n%s", current, res.ToolCall.Name, output)
		atts = nil
	}

	// Too many tool rounds: force a plain completion.
	res, err := sess.Session(ctx, model, conversationPersona, current, nil, nil)
	if err != nil {
		return "", err
	}
	return res.Reply.Content, nil
}
