package backend

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const automationTimeout = 10 * time.Second

// WebhookTrigger implements AutomationTrigger against a single webhook
// entry point. The action name travels inside the payload; the
// automation service routes internally.
type WebhookTrigger struct {
	http    *resty.Client
	url     string
	authKey string
}

// NewWebhookTrigger creates an automation trigger client. An empty URL
// yields a trigger that reports every call as skipped.
func NewWebhookTrigger(url, authKey string) *WebhookTrigger {
	return &WebhookTrigger{
		http:    resty.New().SetTimeout(automationTimeout),
		url:     url,
		authKey: authKey,
	}
}

// Trigger fires the named workflow. Delivery is best-effort: transport
// and status failures come back as an error-status result, not a Go
// error, so callers report rather than retry.
func (t *WebhookTrigger) Trigger(ctx context.Context, action string, payload map[string]any) (*TriggerResult, error) {
	if t.url == "" {
		log.Warn().Str("action", action).Msg("automation: webhook URL not set, action skipped")
		return &TriggerResult{Status: TriggerSkipped, Detail: "no URL configured"}, nil
	}

	resp, err := t.http.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"action": action,
			"data":   payload,
			"source": "cortexgate",
			"auth":   t.authKey,
		}).
		Post(t.url)
	if err != nil {
		log.Error().Err(err).Str("action", action).Msg("automation: connection failed")
		return &TriggerResult{Status: TriggerError, Detail: err.Error()}, nil
	}
	if resp.IsError() {
		log.Error().Int("status", resp.StatusCode()).Str("action", action).Msg("automation: trigger rejected")
		return &TriggerResult{
			Status: TriggerError,
			Detail: fmt.Sprintf("status %d", resp.StatusCode()),
		}, nil
	}

	log.Info().Str("action", action).Msg("automation: triggered")
	return &TriggerResult{Status: TriggerSuccess}, nil
}
