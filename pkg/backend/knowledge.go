package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const knowledgeTimeout = 15 * time.Second

// VectorSearch implements KnowledgeSearcher against a vector-RPC
// endpoint: the query is embedded first, then matched server-side
// against stored document chunks.
type VectorSearch struct {
	http     *resty.Client
	embedder Embedder
}

// NewVectorSearch creates a knowledge searcher for the given endpoint.
func NewVectorSearch(baseURL, serviceKey string, embedder Embedder) *VectorSearch {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(knowledgeTimeout).
		SetHeader("apikey", serviceKey).
		SetHeader("Authorization", "Bearer "+serviceKey).
		SetHeader("Content-Type", "application/json")

	return &VectorSearch{http: client, embedder: embedder}
}

type matchRequest struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
	FilterOrgID    string    `json:"filter_organization_id"`
}

type matchRow struct {
	Content  string `json:"content"`
	Metadata struct {
		FileName string `json:"file_name"`
		Source   string `json:"source"`
	} `json:"metadata"`
}

// Search embeds the query and runs the match RPC scoped to scopeID.
// Result order is the backend's ranking and is preserved as-is.
func (s *VectorSearch) Search(ctx context.Context, query string, scopeID string, limit int) ([]Snippet, error) {
	embedding, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var rows []matchRow
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(matchRequest{
			QueryEmbedding: embedding,
			MatchThreshold: 0.5,
			MatchCount:     limit,
			FilterOrgID:    scopeID,
		}).
		SetResult(&rows).
		Post("/rest/v1/rpc/match_documents")
	if err != nil {
		return nil, fmt.Errorf("knowledge search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("knowledge search returned status %d: %s", resp.StatusCode(), resp.String())
	}

	snippets := make([]Snippet, 0, len(rows))
	for _, row := range rows {
		source := row.Metadata.FileName
		if source == "" {
			source = row.Metadata.Source
		}
		if source == "" {
			source = "Neural DB"
		}
		snippets = append(snippets, Snippet{Content: row.Content, Source: source})
	}

	log.Debug().Int("hits", len(snippets)).Str("scope", scopeID).Msg("knowledge search")
	return snippets, nil
}
