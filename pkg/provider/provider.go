package provider

import "context"

// Provider is a hosted-model API reachable through one credential set.
type Provider interface {
	// Generate sends a text prompt to the model and returns its reply.
	Generate(ctx context.Context, model string, prompt string) (*Reply, error)

	// Name returns the provider's identifier.
	Name() string

	// Models returns the supported models, most capable first.
	Models() []string
}

// Persona is implemented by providers that take a system prompt
// separately from the user prompt.
type Persona interface {
	Provider

	// GenerateWithSystem sends a prompt under the given persona.
	GenerateWithSystem(ctx context.Context, model string, system string, prompt string) (*Reply, error)
}

// Multimodal is implemented by providers that accept binary attachments
// alongside the prompt.
type Multimodal interface {
	Provider

	// GenerateParts sends a prompt plus attachments to the model.
	GenerateParts(ctx context.Context, model string, prompt string, atts []Attachment) (*Reply, error)
}

// Reply is a normalized model response.
type Reply struct {
	Content  string `json:"content"`
	Provider string `json:"provider"`
	Model    string `json:"model"`
}

// AttachmentKind identifies the media type of an attachment.
type AttachmentKind string

const (
	AttachmentImage AttachmentKind = "image"
	AttachmentAudio AttachmentKind = "audio"
)

// Attachment is a binary blob handed in by a channel adapter. It is
// immutable and consumed at most once per request.
type Attachment struct {
	Kind AttachmentKind
	Data []byte
	MIME string
}

// ToolDecl declares one callable capability exposed to a model, with a
// typed argument schema the caller validates before dispatching.
type ToolDecl struct {
	Name        string
	Description string
	Params      map[string]ParamDecl
	Required    []string
}

// ParamDecl describes one tool argument.
type ParamDecl struct {
	Type        string // "string", "number", "boolean"
	Description string
}

// ToolCall is a model's request to invoke a declared tool.
type ToolCall struct {
	Name string
	Args map[string]any
}

// SessionResult is the outcome of a tool-enabled generation: either a
// plain reply or a tool call, never both.
type SessionResult struct {
	Reply    *Reply
	ToolCall *ToolCall
}
