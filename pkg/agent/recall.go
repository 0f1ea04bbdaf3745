package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/zen-systems/cortexgate/pkg/backend"
	"github.com/zen-systems/cortexgate/pkg/provider"
)

// RecallNotFound is the exact sentinel returned when the knowledge
// search yields zero results.
const RecallNotFound = "🔍 No encontré información relevante en la base de conocimiento."

const (
	recallLimit        = 5
	recallSnippetChars = 300
)

// RecallAgent answers from the knowledge base. It never returns an
// error: backend failures become user-facing error strings because no
// other agent can reach the knowledge store either.
type RecallAgent struct {
	search     backend.KnowledgeSearcher
	defaultOrg string
}

// NewRecall creates the recall agent. defaultOrg scopes searches when
// the request context carries no organization.
func NewRecall(search backend.KnowledgeSearcher, defaultOrg string) *RecallAgent {
	return &RecallAgent{search: search, defaultOrg: defaultOrg}
}

func (a *RecallAgent) Name() string { return Recall }

// Execute runs the scoped semantic search and formats up to 5 ranked
// snippets, preserving backend order.
func (a *RecallAgent) Execute(ctx context.Context, query string, reqctx *Context, _ []provider.Attachment) (string, error) {
	org := a.defaultOrg
	if reqctx != nil && reqctx.OrgID != "" {
		org = reqctx.OrgID
	}

	results, err := a.search.Search(ctx, query, org, recallLimit)
	if err != nil {
		log.Error().Err(err).Msg("recall: search failed")
		return fmt.Sprintf("Error consultando memoria: %v", err), nil
	}
	if len(results) == 0 {
		return RecallNotFound, nil
	}

	var sb strings.Builder
	sb.WriteString("📚 **Encontrado en memoria:**\n\n")
	for i, r := range results {
		source := r.Source
		if source == "" {
			source = "Neural DB"
		}
		sb.WriteString(fmt.Sprintf("**%d.** _%s_\n%s...\n\n", i+1, source, truncateRunes(r.Content, recallSnippetChars)))
	}
	log.Info().Int("snippets", len(results)).Msg("recall: snippets retrieved")
	return sb.String(), nil
}

func truncateRunes(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
