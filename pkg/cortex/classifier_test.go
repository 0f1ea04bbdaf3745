package cortex

import (
	"strings"
	"testing"

	"github.com/zen-systems/cortexgate/pkg/config"
)

func TestClassifyByKeyword(t *testing.T) {
	c := NewClassifier(config.DefaultRoutingConfig())

	cases := []struct {
		query string
		agent string
	}{
		{"dame la estrategia para el Q3", "strategy"},
		{"prospecta ese mercado", "sales"},
		{"recuerda qué dijimos de Vernal", "recall"},
		{"agenda una reunión el lunes", "scheduling"},
		{"RECUERDA el plan de vuelo", "strategy"}, // "plan" declared before "recuerda"... see ordering test
	}
	for _, tc := range cases {
		got := c.Classify(tc.query)
		if got.Agent != tc.agent {
			t.Fatalf("Classify(%q) = %q, want %q", tc.query, got.Agent, tc.agent)
		}
		if got.Confidence != 0.9 {
			t.Fatalf("Classify(%q) confidence = %v, want 0.9", tc.query, got.Confidence)
		}
		if !strings.Contains(got.Reasoning, "Keyword") {
			t.Fatalf("Classify(%q) reasoning must cite the keyword, got %q", tc.query, got.Reasoning)
		}
	}
}

func TestClassifyFirstDeclaredAgentWins(t *testing.T) {
	c := NewClassifier(config.DefaultRoutingConfig())

	// "analiza" belongs to strategy (declared first), "lead" to sales.
	got := c.Classify("analiza este lead")
	if got.Agent != "strategy" {
		t.Fatalf("expected first-declared agent to win, got %q", got.Agent)
	}
}

func TestClassifyDefaultsToConversation(t *testing.T) {
	c := NewClassifier(config.DefaultRoutingConfig())

	got := c.Classify("hola, ¿cómo vas?")
	if got.Agent != "conversation" {
		t.Fatalf("expected default agent, got %q", got.Agent)
	}
	if got.Confidence != 0.7 {
		t.Fatalf("default confidence = %v, want 0.7", got.Confidence)
	}
}

func TestClassifyMatchesCaseInsensitively(t *testing.T) {
	c := NewClassifier(config.DefaultRoutingConfig())

	got := c.Classify("ESTRATEGIA ya")
	if got.Agent != "strategy" {
		t.Fatalf("expected case-insensitive match, got %q", got.Agent)
	}
}

func TestClassifyHonorsCustomRuleOrder(t *testing.T) {
	routing := &config.RoutingConfig{
		Intents: []config.IntentRule{
			{Agent: "recall", Keywords: []string{"vernal"}},
			{Agent: "strategy", Keywords: []string{"vernal", "plan"}},
		},
		DefaultAgent: "conversation",
	}
	c := NewClassifier(routing)

	if got := c.Classify("el plan vernal"); got.Agent != "recall" {
		t.Fatalf("declaration order must break ties, got %q", got.Agent)
	}
}
