package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	tasksTimeout      = 15 * time.Second
	tasksAPIVersion   = "2022-06-28"
	tasksListPageSize = 25
)

// TaskService implements TaskBackend against a Notion-style REST API.
type TaskService struct {
	http *resty.Client
}

// NewTaskService creates a task backend client.
func NewTaskService(baseURL, token string) *TaskService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(tasksTimeout).
		SetAuthToken(token).
		SetHeader("Notion-Version", tasksAPIVersion).
		SetHeader("Content-Type", "application/json")

	return &TaskService{http: client}
}

type searchResponse struct {
	Results []struct {
		ID    string `json:"id"`
		Title []struct {
			PlainText string `json:"plain_text"`
		} `json:"title"`
	} `json:"results"`
}

// ListCollections returns the databases visible to the integration.
func (s *TaskService) ListCollections(ctx context.Context) ([]Collection, error) {
	var body searchResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"filter":    map[string]string{"property": "object", "value": "database"},
			"page_size": tasksListPageSize,
		}).
		SetResult(&body).
		Post("/v1/search")
	if err != nil {
		return nil, fmt.Errorf("list collections request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list collections returned status %d", resp.StatusCode())
	}

	collections := make([]Collection, 0, len(body.Results))
	for _, result := range body.Results {
		title := "Untitled"
		if len(result.Title) > 0 {
			title = result.Title[0].PlainText
		}
		collections = append(collections, Collection{ID: result.ID, Title: title})
	}
	return collections, nil
}

type queryResponse struct {
	Results []struct {
		ID         string `json:"id"`
		Properties map[string]struct {
			Title []struct {
				PlainText string `json:"plain_text"`
			} `json:"title"`
		} `json:"properties"`
	} `json:"results"`
}

// ListItems returns the items tracked in one collection.
func (s *TaskService) ListItems(ctx context.Context, collectionID string) ([]Item, error) {
	var body queryResponse
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(map[string]any{"page_size": 100}).
		SetResult(&body).
		Post("/v1/databases/" + collectionID + "/query")
	if err != nil {
		return nil, fmt.Errorf("list items request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("list items returned status %d", resp.StatusCode())
	}

	items := make([]Item, 0, len(body.Results))
	for _, result := range body.Results {
		item := Item{ID: result.ID}
		for _, prop := range result.Properties {
			if len(prop.Title) > 0 {
				item.Title = prop.Title[0].PlainText
				break
			}
		}
		items = append(items, item)
	}
	return items, nil
}

// CreateItem inserts a new tracked item into a collection.
func (s *TaskService) CreateItem(ctx context.Context, collectionID, title, body string) (*Item, error) {
	page := map[string]any{
		"parent": map[string]string{"database_id": collectionID},
		"properties": map[string]any{
			"Name": map[string]any{
				"title": []map[string]any{
					{"text": map[string]string{"content": title}},
				},
			},
		},
	}
	if body != "" {
		page["children"] = []map[string]any{
			{
				"object": "block",
				"type":   "paragraph",
				"paragraph": map[string]any{
					"rich_text": []map[string]any{
						{"text": map[string]string{"content": body}},
					},
				},
			},
		}
	}

	var created struct {
		ID string `json:"id"`
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetBody(page).
		SetResult(&created).
		Post("/v1/pages")
	if err != nil {
		return nil, fmt.Errorf("create item request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("create item returned status %d: %s", resp.StatusCode(), resp.String())
	}

	return &Item{ID: created.ID, Title: title, Body: body}, nil
}

// Summarize reports the tracked collections and their item counts.
func (s *TaskService) Summarize(ctx context.Context) (string, error) {
	collections, err := s.ListCollections(ctx)
	if err != nil {
		return "", err
	}
	if len(collections) == 0 {
		return "No hay colecciones registradas.", nil
	}

	var sb strings.Builder
	sb.WriteString("Resumen de seguimiento:\n")
	for _, collection := range collections {
		items, err := s.ListItems(ctx, collection.ID)
		if err != nil {
			return "", err
		}
		sb.WriteString(fmt.Sprintf("- %s: %d elementos\n", collection.Title, len(items)))
	}
	return sb.String(), nil
}
