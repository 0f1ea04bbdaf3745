package cortex

import (
	"context"
	"errors"
	"testing"

	"github.com/zen-systems/cortexgate/pkg/agent"
	"github.com/zen-systems/cortexgate/pkg/backend"
	"github.com/zen-systems/cortexgate/pkg/config"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

// stubAgent answers or fails with a fixed outcome and records queries.
type stubAgent struct {
	name    string
	reply   string
	err     error
	Queries []string
}

func (s *stubAgent) Name() string { return s.name }

func (s *stubAgent) Execute(_ context.Context, query string, _ *agent.Context, _ []provider.Attachment) (string, error) {
	s.Queries = append(s.Queries, query)
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

func rateLimitErr() error {
	return &provider.Error{Status: 429, Err: errors.New("RESOURCE_EXHAUSTED: quota hit")}
}

func serverErr() error {
	return &provider.Error{Status: 500, Err: errors.New("internal error")}
}

func newCortex(agents []agent.Agent, backups []provider.Provider, transcriber backend.Transcriber) *Cortex {
	return New(NewClassifier(config.DefaultRoutingConfig()), agents, backups, transcriber)
}

func TestRouteDispatchesToSpecialist(t *testing.T) {
	sales := &stubAgent{name: agent.Sales, reply: "lead calificado"}
	c := newCortex([]agent.Agent{sales}, nil, nil)

	got := c.Route(context.Background(), "prospecta este lead", nil, nil)
	if got != "lead calificado" {
		t.Fatalf("expected specialist answer, got %q", got)
	}
	if len(sales.Queries) != 1 {
		t.Fatalf("expected 1 dispatch, got %d", len(sales.Queries))
	}
}

func TestRouteRecallEndToEnd(t *testing.T) {
	recall := agent.NewRecall(&backend.MemoryKnowledge{}, "org-default")
	c := newCortex([]agent.Agent{recall}, nil, nil)

	got := c.Route(context.Background(), "recuerda qué dijimos de Vernal", nil, nil)
	if got != agent.RecallNotFound {
		t.Fatalf("expected recall sentinel, got %q", got)
	}
}

func TestRouteRateLimitedSpecialistGetsOneStrategyRescue(t *testing.T) {
	sales := &stubAgent{name: agent.Sales, err: rateLimitErr()}
	strategy := &stubAgent{name: agent.Strategy, reply: "análisis de respaldo"}
	c := newCortex([]agent.Agent{sales, strategy}, nil, nil)

	got := c.Route(context.Background(), "prospecta este lead", nil, nil)
	if got != "análisis de respaldo" {
		t.Fatalf("expected strategy rescue answer, got %q", got)
	}
}

func TestRouteNonRateLimitSpecialistFailureIsApology(t *testing.T) {
	sales := &stubAgent{name: agent.Sales, err: serverErr()}
	strategy := &stubAgent{name: agent.Strategy, reply: "no debería correr"}
	c := newCortex([]agent.Agent{sales, strategy}, nil, nil)

	got := c.Route(context.Background(), "prospecta este lead", nil, nil)
	if got != ApologyMaintenance {
		t.Fatalf("expected maintenance apology, got %q", got)
	}
	if len(strategy.Queries) != 0 {
		t.Fatal("strategy rescue must only run for rate-limit failures")
	}
}

func TestRouteRescueFailureFallsToApology(t *testing.T) {
	sales := &stubAgent{name: agent.Sales, err: rateLimitErr()}
	strategy := &stubAgent{name: agent.Strategy, err: serverErr()}
	c := newCortex([]agent.Agent{sales, strategy}, nil, nil)

	got := c.Route(context.Background(), "prospecta este lead", nil, nil)
	if got != ApologyMaintenance {
		t.Fatalf("expected maintenance apology, got %q", got)
	}
}

func TestRouteConversationFallsBackToStrategy(t *testing.T) {
	conv := &stubAgent{name: agent.Conversation, err: rateLimitErr()}
	strategy := &stubAgent{name: agent.Strategy, reply: "respuesta estratégica"}
	c := newCortex([]agent.Agent{conv, strategy}, nil, nil)

	got := c.Route(context.Background(), "hola, ¿cómo vas?", nil, nil)
	if got != "respuesta estratégica" {
		t.Fatalf("expected strategy fallback answer, got %q", got)
	}
}

func TestRouteChainReachesSalesWithBackupPrefix(t *testing.T) {
	conv := &stubAgent{name: agent.Conversation, err: serverErr()}
	strategy := &stubAgent{name: agent.Strategy, err: serverErr()}
	sales := &stubAgent{name: agent.Sales, reply: "respondo yo"}
	c := newCortex([]agent.Agent{conv, strategy, sales}, nil, nil)

	got := c.Route(context.Background(), "hola", nil, nil)
	if got != "⚡ [Respaldo] respondo yo" {
		t.Fatalf("expected prefixed sales fallback, got %q", got)
	}
}

func TestRouteDirectBackupAfterAgentsFail(t *testing.T) {
	conv := &stubAgent{name: agent.Conversation, err: serverErr()}
	strategy := &stubAgent{name: agent.Strategy, err: serverErr()}
	sales := &stubAgent{name: agent.Sales, err: serverErr()}
	deepseek := provider.NewMock("deepseek").Reply("respaldo directo")
	c := newCortex([]agent.Agent{conv, strategy, sales}, []provider.Provider{deepseek}, nil)

	got := c.Route(context.Background(), "hola", nil, nil)
	if got != "🥥 [Respaldo deepseek] respaldo directo" {
		t.Fatalf("expected direct backup answer, got %q", got)
	}
}

func TestRouteBackupOrderIsRespected(t *testing.T) {
	conv := &stubAgent{name: agent.Conversation, err: serverErr()}
	first := provider.NewMock("deepseek").Fail(serverErr())
	second := provider.NewMock("openai").Reply("último recurso")
	c := newCortex([]agent.Agent{conv}, []provider.Provider{first, second}, nil)

	got := c.Route(context.Background(), "hola", nil, nil)
	if got != "🥥 [Respaldo openai] último recurso" {
		t.Fatalf("expected second backup to answer, got %q", got)
	}
	if first.Calls() != 1 {
		t.Fatalf("first backup must be tried first, got %d calls", first.Calls())
	}
}

func TestRouteTotalExhaustionReturnsExactApology(t *testing.T) {
	conv := &stubAgent{name: agent.Conversation, err: serverErr()}
	strategy := &stubAgent{name: agent.Strategy, err: serverErr()}
	sales := &stubAgent{name: agent.Sales, err: serverErr()}
	backup := provider.NewMock("deepseek").Fail(serverErr())
	c := newCortex([]agent.Agent{conv, strategy, sales}, []provider.Provider{backup}, nil)

	got := c.Route(context.Background(), "hola", nil, nil)
	if got != ApologyTotal {
		t.Fatalf("expected exact terminal apology, got %q", got)
	}
}

func TestRouteAudioRescueTranscribesForDownstreamAgents(t *testing.T) {
	conv := &stubAgent{name: agent.Conversation, err: serverErr()}
	strategy := &stubAgent{name: agent.Strategy, reply: "entendido"}
	transcriber := &backend.StaticTranscriber{Text: "hola desde el audio"}
	c := newCortex([]agent.Agent{conv, strategy}, nil, transcriber)

	atts := []provider.Attachment{{Kind: provider.AttachmentAudio, Data: []byte{1, 2}, MIME: "audio/ogg"}}
	got := c.Route(context.Background(), "", nil, atts)
	if got != "entendido" {
		t.Fatalf("expected strategy answer, got %q", got)
	}
	if len(strategy.Queries) != 1 || strategy.Queries[0] != "hola desde el audio" {
		t.Fatalf("expected transcribed query downstream, got %v", strategy.Queries)
	}
}

func TestRouteAudioRescueFailureIsNonFatal(t *testing.T) {
	conv := &stubAgent{name: agent.Conversation, err: serverErr()}
	strategy := &stubAgent{name: agent.Strategy, reply: "sigo aquí"}
	transcriber := &backend.StaticTranscriber{Text: ""}
	c := newCortex([]agent.Agent{conv, strategy}, nil, transcriber)

	atts := []provider.Attachment{{Kind: provider.AttachmentAudio, Data: []byte{1}, MIME: "audio/ogg"}}
	got := c.Route(context.Background(), "", nil, atts)
	if got != "sigo aquí" {
		t.Fatalf("chain must continue after failed transcription, got %q", got)
	}
	if strategy.Queries[0] != "" {
		t.Fatalf("expected original empty query, got %q", strategy.Queries[0])
	}
}
