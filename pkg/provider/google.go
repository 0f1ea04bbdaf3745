package provider

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/genai"
)

const googleTimeout = 60 * time.Second

// GoogleProvider implements the Provider interface for Gemini models.
// It holds only the credential for the current call: a fresh client is
// built per request so a rotated key never leaks across requests.
type GoogleProvider struct {
	apiKey string
}

// NewGoogleProvider creates a Gemini provider bound to one credential.
func NewGoogleProvider(apiKey string) (*GoogleProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("google API key is required")
	}
	return &GoogleProvider{apiKey: apiKey}, nil
}

// Name returns the provider identifier.
func (p *GoogleProvider) Name() string {
	return "google"
}

// Models returns the supported Gemini models, most capable first.
func (p *GoogleProvider) Models() []string {
	return []string{
		"gemini-2.0-flash",
		"gemini-1.5-flash",
		"gemini-1.5-flash-8b",
	}
}

func (p *GoogleProvider) client(ctx context.Context) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  p.apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create google client: %w", err)
	}
	return client, nil
}

// Generate sends a text prompt to Gemini.
func (p *GoogleProvider) Generate(ctx context.Context, model string, prompt string) (*Reply, error) {
	return p.GenerateParts(ctx, model, prompt, nil)
}

// GenerateParts sends a prompt plus attachments to Gemini.
func (p *GoogleProvider) GenerateParts(ctx context.Context, model string, prompt string, atts []Attachment) (*Reply, error) {
	res, err := p.Session(ctx, model, "", prompt, atts, nil)
	if err != nil {
		return nil, err
	}
	return res.Reply, nil
}

// Session runs one tool-enabled generation. When the model requests a
// declared tool the result carries the call instead of a reply; the
// caller validates arguments and dispatches.
func (p *GoogleProvider) Session(ctx context.Context, model, system, prompt string, atts []Attachment, tools []ToolDecl) (*SessionResult, error) {
	ctx, cancel := context.WithTimeout(ctx, googleTimeout)
	defer cancel()

	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	parts := []*genai.Part{{Text: prompt}}
	for _, att := range atts {
		parts = append(parts, &genai.Part{
			InlineData: &genai.Blob{Data: att.Data, MIMEType: att.MIME},
		})
	}
	contents := []*genai.Content{{Parts: parts}}

	var cfg *genai.GenerateContentConfig
	if system != "" || len(tools) > 0 {
		cfg = &genai.GenerateContentConfig{}
		if system != "" {
			cfg.SystemInstruction = &genai.Content{Parts: []*genai.Part{{Text: system}}}
		}
		if len(tools) > 0 {
			cfg.Tools = []*genai.Tool{{FunctionDeclarations: toFunctionDecls(tools)}}
		}
	}

	resp, err := client.Models.GenerateContent(ctx, model, contents, cfg)
	if err != nil {
		return nil, fmt.Errorf("google API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return nil, &Error{Temporary: true, Err: fmt.Errorf("google returned no candidates")}
	}

	var content string
	if resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if part.FunctionCall != nil {
				return &SessionResult{ToolCall: &ToolCall{
					Name: part.FunctionCall.Name,
					Args: part.FunctionCall.Args,
				}}, nil
			}
			if part.Text != "" {
				content += part.Text
			}
		}
	}

	return &SessionResult{Reply: &Reply{Content: content, Provider: p.Name(), Model: model}}, nil
}

// Embed produces a retrieval-query embedding for the given text.
func (p *GoogleProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, googleTimeout)
	defer cancel()

	client, err := p.client(ctx)
	if err != nil {
		return nil, err
	}

	contents := []*genai.Content{{Parts: []*genai.Part{{Text: text}}}}
	resp, err := client.Models.EmbedContent(ctx, "text-embedding-004", contents, &genai.EmbedContentConfig{
		TaskType: "RETRIEVAL_QUERY",
	})
	if err != nil {
		return nil, fmt.Errorf("google embedding error: %w", err)
	}
	if resp == nil || len(resp.Embeddings) == 0 {
		return nil, &Error{Temporary: true, Err: fmt.Errorf("google returned no embeddings")}
	}
	return resp.Embeddings[0].Values, nil
}

func toFunctionDecls(tools []ToolDecl) []*genai.FunctionDeclaration {
	decls := make([]*genai.FunctionDeclaration, 0, len(tools))
	for _, tool := range tools {
		props := make(map[string]*genai.Schema, len(tool.Params))
		for name, param := range tool.Params {
			props[name] = &genai.Schema{
				Type:        paramType(param.Type),
				Description: param.Description,
			}
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        tool.Name,
			Description: tool.Description,
			Parameters: &genai.Schema{
				Type:       genai.TypeObject,
				Properties: props,
				Required:   tool.Required,
			},
		})
	}
	return decls
}

func paramType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	default:
		return genai.TypeString
	}
}
