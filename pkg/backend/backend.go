// Package backend holds the capability interfaces the routing core
// consumes from external collaborators, plus their HTTP
// implementations. The core treats every backend as replaceable; only
// these interfaces are load-bearing.
package backend

import "context"

// Snippet is one ranked knowledge-base result. Order is owned by the
// search backend and assumed relevance-descending.
type Snippet struct {
	Content string `json:"content"`
	Source  string `json:"source"`
}

// KnowledgeSearcher performs semantic search scoped to an organization.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query string, scopeID string, limit int) ([]Snippet, error)
}

// Collection is one tracked-item container (a database, a board).
type Collection struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Item is one tracked record.
type Item struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body,omitempty"`
}

// TaskBackend manages tracked items in the task/document service.
type TaskBackend interface {
	ListCollections(ctx context.Context) ([]Collection, error)
	ListItems(ctx context.Context, collectionID string) ([]Item, error)
	CreateItem(ctx context.Context, collectionID, title, body string) (*Item, error)
	Summarize(ctx context.Context) (string, error)
}

// Message is one mail search hit.
type Message struct {
	Subject string `json:"subject"`
	From    string `json:"from"`
	Snippet string `json:"snippet,omitempty"`
}

// MailBackend searches the mail service.
type MailBackend interface {
	SearchMessages(ctx context.Context, filter string) ([]Message, error)
}

// TriggerStatus classifies an automation trigger outcome.
type TriggerStatus string

const (
	TriggerSuccess TriggerStatus = "success"
	TriggerError   TriggerStatus = "error"
	TriggerSkipped TriggerStatus = "skipped"
)

// TriggerResult reports what the automation service did.
type TriggerResult struct {
	Status TriggerStatus `json:"status"`
	Detail string        `json:"detail,omitempty"`
}

// AutomationTrigger fires a named workflow in the automation service.
type AutomationTrigger interface {
	Trigger(ctx context.Context, action string, payload map[string]any) (*TriggerResult, error)
}

// Transcriber converts audio to text. Best-effort: implementations
// return an empty string on failure, never an error.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte) string
}

// Embedder produces a query embedding for semantic search.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
