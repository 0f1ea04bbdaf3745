package agent

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/zen-systems/cortexgate/pkg/backend"
)

func TestRecallNotFoundSentinel(t *testing.T) {
	a := NewRecall(&backend.MemoryKnowledge{}, "org-default")

	got, err := a.Execute(context.Background(), "qué dijimos de Vernal", nil, nil)
	if err != nil {
		t.Fatalf("recall must never raise: %v", err)
	}
	if got != RecallNotFound {
		t.Fatalf("expected exact sentinel, got %q", got)
	}
}

func TestRecallSearchFailureBecomesString(t *testing.T) {
	search := &backend.MemoryKnowledge{Err: errors.New("vector backend down")}
	a := NewRecall(search, "org-default")

	got, err := a.Execute(context.Background(), "busca contexto", nil, nil)
	if err != nil {
		t.Fatalf("recall must never raise: %v", err)
	}
	if !strings.Contains(got, "Error consultando memoria") {
		t.Fatalf("expected error string, got %q", got)
	}
}

func TestRecallFormatsSnippetsInOrder(t *testing.T) {
	search := &backend.MemoryKnowledge{Snippets: []backend.Snippet{
		{Content: "primero", Source: "notas.md"},
		{Content: "segundo", Source: ""},
	}}
	a := NewRecall(search, "org-default")

	got, err := a.Execute(context.Background(), "recuerda Vernal", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first := strings.Index(got, "primero")
	second := strings.Index(got, "segundo")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("snippet order not preserved: %q", got)
	}
	if !strings.Contains(got, "notas.md") {
		t.Fatalf("expected source label, got %q", got)
	}
	if !strings.Contains(got, "Neural DB") {
		t.Fatalf("expected default source label, got %q", got)
	}
}

func TestRecallTruncatesSnippets(t *testing.T) {
	long := strings.Repeat("á", 400)
	search := &backend.MemoryKnowledge{Snippets: []backend.Snippet{{Content: long, Source: "doc"}}}
	a := NewRecall(search, "org-default")

	got, err := a.Execute(context.Background(), "busca", nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(got, strings.Repeat("á", 301)) {
		t.Fatal("snippet not truncated to 300 characters")
	}
	if !strings.Contains(got, strings.Repeat("á", 300)) {
		t.Fatal("truncation cut below 300 characters")
	}
}

func TestRecallScopesToContextOrg(t *testing.T) {
	search := &backend.MemoryKnowledge{}
	a := NewRecall(search, "org-default")

	if _, err := a.Execute(context.Background(), "busca", &Context{OrgID: "org-42"}, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := a.Execute(context.Background(), "busca", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(search.Scopes) != 2 {
		t.Fatalf("expected 2 searches, got %d", len(search.Scopes))
	}
	if search.Scopes[0] != "org-42" {
		t.Fatalf("expected context org scope, got %q", search.Scopes[0])
	}
	if search.Scopes[1] != "org-default" {
		t.Fatalf("expected default org fallback, got %q", search.Scopes[1])
	}
}
