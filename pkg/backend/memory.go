package backend

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// MemoryKnowledge is an in-memory KnowledgeSearcher for tests and
// local runs. Matching is naive substring over snippet content.
type MemoryKnowledge struct {
	mu       sync.Mutex
	Snippets []Snippet
	Err      error
	Queries  []string
	Scopes   []string
}

func (m *MemoryKnowledge) Search(ctx context.Context, query string, scopeID string, limit int) ([]Snippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Queries = append(m.Queries, query)
	m.Scopes = append(m.Scopes, scopeID)
	if m.Err != nil {
		return nil, m.Err
	}
	out := make([]Snippet, 0, limit)
	for _, s := range m.Snippets {
		if len(out) == limit {
			break
		}
		out = append(out, s)
	}
	return out, nil
}

// MemoryTasks is an in-memory TaskBackend.
type MemoryTasks struct {
	mu          sync.Mutex
	Collections []Collection
	Items       map[string][]Item
	Err         error
	nextID      int
}

func (m *MemoryTasks) ListCollections(ctx context.Context) ([]Collection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]Collection(nil), m.Collections...), nil
}

func (m *MemoryTasks) ListItems(ctx context.Context, collectionID string) ([]Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]Item(nil), m.Items[collectionID]...), nil
}

func (m *MemoryTasks) CreateItem(ctx context.Context, collectionID, title, body string) (*Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	m.nextID++
	item := Item{ID: fmt.Sprintf("item-%d", m.nextID), Title: title, Body: body}
	if m.Items == nil {
		m.Items = make(map[string][]Item)
	}
	m.Items[collectionID] = append(m.Items[collectionID], item)
	return &item, nil
}

func (m *MemoryTasks) Summarize(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	if len(m.Collections) == 0 {
		return "No hay colecciones registradas.", nil
	}
	var sb strings.Builder
	sb.WriteString("Resumen de seguimiento:\n")
	for _, c := range m.Collections {
		sb.WriteString(fmt.Sprintf("- %s: %d elementos\n", c.Title, len(m.Items[c.ID])))
	}
	return sb.String(), nil
}

// MemoryMail is an in-memory MailBackend. Every search returns the
// fixed message set; filters are recorded for assertions.
type MemoryMail struct {
	mu       sync.Mutex
	Messages []Message
	Err      error
	Filters  []string
}

func (m *MemoryMail) SearchMessages(ctx context.Context, filter string) ([]Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Filters = append(m.Filters, filter)
	if m.Err != nil {
		return nil, m.Err
	}
	return append([]Message(nil), m.Messages...), nil
}

// MemoryAutomation records triggered actions.
type MemoryAutomation struct {
	mu      sync.Mutex
	Result  *TriggerResult
	Actions []string
}

func (m *MemoryAutomation) Trigger(ctx context.Context, action string, payload map[string]any) (*TriggerResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Actions = append(m.Actions, action)
	if m.Result != nil {
		return m.Result, nil
	}
	return &TriggerResult{Status: TriggerSuccess}, nil
}

// StaticTranscriber returns a fixed transcription.
type StaticTranscriber struct {
	Text string
}

func (s *StaticTranscriber) Transcribe(ctx context.Context, audio []byte) string {
	return s.Text
}
