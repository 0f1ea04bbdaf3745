package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/backend"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

const salesPersona = `Eres el prospector del equipo.
Tu misión es ejecutar acciones de ventas y prospección con precisión quirúrgica.

PERSONALIDAD:
- Veloz y directo
- Enfocado en conversión y resultados
- Hablas como un vendedor consultivo de alto nivel

REGLAS:
- Confirma acciones antes de ejecutar
- Reporta éxito/fallo claramente
- Idioma: Español, tono comercial ejecutivo`

const outreachAction = "sales_outreach"

var (
	taskKeywords     = []string{"crea tarea", "anota", "seguimiento", "apunta"}
	outreachKeywords = []string{"envía", "contacta", "prospecta", "outreach"}
	titleStripWords  = []string{"crea tarea", "seguimiento", "anota", "apunta"}
)

// SalesAgent executes sales actions: keyword-triggered task creation
// and outreach workflows, with a hosted model for everything else.
type SalesAgent struct {
	llm        provider.Persona
	tasks      backend.TaskBackend
	automation backend.AutomationTrigger
}

// NewSales creates the sales agent. A nil llm disables the free-form
// branch; action branches keep working.
func NewSales(llm provider.Persona, tasks backend.TaskBackend, automation backend.AutomationTrigger) *SalesAgent {
	return &SalesAgent{llm: llm, tasks: tasks, automation: automation}
}

func (a *SalesAgent) Name() string { return Sales }

// Execute dispatches on keywords. The action branches report success
// or failure as strings; only the model fallthrough propagates errors.
func (a *SalesAgent) Execute(ctx context.Context, query string, reqctx *Context, _ []provider.Attachment) (string, error) {
	lower := strings.ToLower(query)

	if containsAny(lower, taskKeywords) {
		return a.createFollowup(ctx, query), nil
	}
	if containsAny(lower, outreachKeywords) {
		return a.triggerOutreach(ctx, query, reqctx), nil
	}
	return a.decide(ctx, query)
}

func (a *SalesAgent) createFollowup(ctx context.Context, query string) string {
	collections, err := a.tasks.ListCollections(ctx)
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	if len(collections) == 0 {
		return "❌ No encontré colecciones de seguimiento."
	}

	title := extractTitle(query, titleStripWords)
	if title == "" {
		title = "Seguimiento"
	}
	if _, err := a.tasks.CreateItem(ctx, collections[0].ID, "🎯 "+title, ""); err != nil {
		return fmt.Sprintf("❌ Error creando tarea: %v", err)
	}
	log.Info().Str("title", title).Msg("sales: followup created")
	return fmt.Sprintf("⚡ **Seguimiento creado:** %s", title)
}

func (a *SalesAgent) triggerOutreach(ctx context.Context, query string, reqctx *Context) string {
	payload := map[string]any{"query": query}
	if reqctx != nil && reqctx.CallerName != "" {
		payload["caller"] = reqctx.CallerName
	}

	result, err := a.automation.Trigger(ctx, outreachAction, payload)
	if err != nil {
		return fmt.Sprintf("❌ Error: %v", err)
	}
	if result.Status == backend.TriggerSuccess {
		return "⚡ Outreach activado."
	}
	return fmt.Sprintf("⚠️ Outreach no ejecutado (%s): %s", result.Status, result.Detail)
}

func (a *SalesAgent) decide(ctx context.Context, query string) (string, error) {
	if a.llm == nil {
		return "⚠️ Ventas sin conexión (falta credencial).", nil
	}
	reply, err := a.llm.GenerateWithSystem(ctx, a.llm.Models()[0], salesPersona, query)
	if err != nil {
		return "", fmt.Errorf("sales model call: %w", err)
	}
	return reply.Content, nil
}

// extractTitle strips the trigger words from the query and trims the
// result to a short item title.
func extractTitle(query string, stripWords []string) string {
	lower := strings.ToLower(query)
	title := query
	for _, w := range stripWords {
		if idx := strings.Index(lower, w); idx >= 0 {
			title = title[:idx] + title[idx+len(w):]
			lower = lower[:idx] + lower[idx+len(w):]
		}
	}
	title = strings.TrimSpace(title)
	if len(title) > 100 {
		title = title[:100]
	}
	return title
}
