package agent

import (
	"context"
	"fmt"

	"github.com/zen-systems/cortexgate/pkg/provider"
)

// Tool names surfaced to the conversation model.
const (
	toolRecallMemory     = "recall_memory"
	toolSyncMailAndTasks = "sync_mail_and_tasks"
	toolRequestStrategy  = "request_strategy"
)

type toolHandler func(ctx context.Context, args map[string]any, reqctx *Context) (string, error)

// capability binds one declared tool schema to its handler. The table
// is the single source of truth: declarations shown to the model and
// the validation applied to its calls come from the same entry.
type capability struct {
	decl    provider.ToolDecl
	handler toolHandler
}

func (a *ConversationAgent) capabilities() []capability {
	return []capability{
		{
			decl: provider.ToolDecl{
				Name:        toolRecallMemory,
				Description: "Busca contexto, info de clientes o historial en la base de conocimiento. Úsala SIEMPRE que se mencione un cliente o proyecto pasado.",
				Params: map[string]provider.ParamDecl{
					"query": {Type: "string", Description: "Qué buscar en la memoria"},
				},
				Required: []string{"query"},
			},
			handler: func(ctx context.Context, args map[string]any, reqctx *Context) (string, error) {
				return a.recall.Execute(ctx, args["query"].(string), reqctx, nil)
			},
		},
		{
			decl: provider.ToolDecl{
				Name:        toolSyncMailAndTasks,
				Description: "Revisa los correos vigilados y crea tareas de seguimiento si hay algo nuevo. Devuelve un resumen. Úsala para responder \"¿Revisaste el correo?\".",
			},
			handler: func(ctx context.Context, _ map[string]any, _ *Context) (string, error) {
				return a.scheduling.SyncReport(ctx), nil
			},
		},
		{
			decl: provider.ToolDecl{
				Name:        toolRequestStrategy,
				Description: "Pide al estratega un plan, análisis o blueprint. Úsala cuando pidan flujos, arquitectura o análisis complejos.",
				Params: map[string]provider.ParamDecl{
					"request": {Type: "string", Description: "La solicitud de análisis"},
				},
				Required: []string{"request"},
			},
			handler: func(ctx context.Context, args map[string]any, reqctx *Context) (string, error) {
				return a.strategy.Execute(ctx, args["request"].(string), reqctx, nil)
			},
		},
	}
}

func (a *ConversationAgent) toolDecls() []provider.ToolDecl {
	caps := a.capabilities()
	decls := make([]provider.ToolDecl, 0, len(caps))
	for _, c := range caps {
		decls = append(decls, c.decl)
	}
	return decls
}

// invokeTool validates the model's arguments against the declared
// schema and runs the matching handler.
func (a *ConversationAgent) invokeTool(ctx context.Context, call *provider.ToolCall, reqctx *Context) (string, error) {
	for _, c := range a.capabilities() {
		if c.decl.Name != call.Name {
			continue
		}
		if err := validateArgs(c.decl, call.Args); err != nil {
			return "", err
		}
		return c.handler(ctx, call.Args, reqctx)
	}
	return "", fmt.Errorf("unknown tool %q", call.Name)
}

func validateArgs(decl provider.ToolDecl, args map[string]any) error {
	for _, required := range decl.Required {
		if _, ok := args[required]; !ok {
			return fmt.Errorf("tool %s: missing required argument %q", decl.Name, required)
		}
	}
	for name, value := range args {
		param, ok := decl.Params[name]
		if !ok {
			return fmt.Errorf("tool %s: unexpected argument %q", decl.Name, name)
		}
		switch param.Type {
		case "string":
			if _, ok := value.(string); !ok {
				return fmt.Errorf("tool %s: argument %q must be a string", decl.Name, name)
			}
		case "number":
			if _, ok := value.(float64); !ok {
				return fmt.Errorf("tool %s: argument %q must be a number", decl.Name, name)
			}
		case "boolean":
			if _, ok := value.(bool); !ok {
				return fmt.Errorf("tool %s: argument %q must be a boolean", decl.Name, name)
			}
		}
	}
	return nil
}
