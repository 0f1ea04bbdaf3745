// Package agent implements the five specialized agents the router
// dispatches to. Every agent answers with a user-facing string;
// provider failures that a different agent could plausibly absorb are
// returned as errors for the router's fallback chain, everything else
// is converted to an apologetic string locally.
package agent

import (
	"context"
	"strings"

	"github.com/zen-systems/cortexgate/pkg/provider"
)

// Agent names, also the identifiers used in routing config.
const (
	Strategy     = "strategy"
	Sales        = "sales"
	Recall       = "recall"
	Scheduling   = "scheduling"
	Conversation = "conversation"
)

// Context carries per-request caller information. Agents read it and
// may pass an enriched copy downward; they never mutate it.
type Context struct {
	CallerName string
	OrgID      string
	Extra      map[string]string
}

// Agent is one specialized responder.
type Agent interface {
	Name() string
	Execute(ctx context.Context, query string, reqctx *Context, atts []provider.Attachment) (string, error)
}

func containsAny(haystack string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(haystack, n) {
			return true
		}
	}
	return false
}
