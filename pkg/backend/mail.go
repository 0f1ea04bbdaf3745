package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
)

const mailTimeout = 15 * time.Second

// MailService implements MailBackend against the mail proxy, which
// exposes Gmail-style query filters over a flat REST surface.
type MailService struct {
	http *resty.Client
}

// NewMailService creates a mail backend client.
func NewMailService(baseURL, token string) *MailService {
	client := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(mailTimeout).
		SetAuthToken(token)

	return &MailService{http: client}
}

// SearchMessages runs a filter query (e.g. "from:andrea newer_than:2d")
// and returns the matching message headers.
func (s *MailService) SearchMessages(ctx context.Context, filter string) ([]Message, error) {
	var body struct {
		Messages []Message `json:"messages"`
	}
	resp, err := s.http.R().
		SetContext(ctx).
		SetQueryParam("q", filter).
		SetResult(&body).
		Get("/v1/messages")
	if err != nil {
		return nil, fmt.Errorf("mail search request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("mail search returned status %d", resp.StatusCode())
	}
	return body.Messages, nil
}
