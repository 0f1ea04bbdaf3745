// Package cortex is the routing core: the keyword intent classifier
// and the orchestration state machine that dispatches to agents and
// walks the fallback chains when they fail.
package cortex

import (
	"fmt"
	"strings"

	"github.com/zen-systems/cortexgate/pkg/config"
)

// Decision is one routing verdict, produced fresh per request.
type Decision struct {
	Agent      string
	Confidence float64
	Reasoning  string
}

// Classifier maps an utterance to an agent by ordered keyword rules.
// Isolated behind an interface-sized surface so it can later be
// replaced by a model-based classifier without touching the router.
type Classifier struct {
	rules        []config.IntentRule
	defaultAgent string
}

// NewClassifier builds a classifier from routing config. Rule order is
// preserved: the first declared agent with a matching keyword wins.
func NewClassifier(routing *config.RoutingConfig) *Classifier {
	return &Classifier{rules: routing.Intents, defaultAgent: routing.DefaultAgent}
}

// Classify is deterministic and side-effect-free: lowercase substring
// match over the rules in declaration order, default agent otherwise.
func (c *Classifier) Classify(query string) Decision {
	lower := strings.ToLower(query)

	for _, rule := range c.rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lower, kw) {
				return Decision{
					Agent:      rule.Agent,
					Confidence: 0.9,
					Reasoning:  fmt.Sprintf("Keyword: %q", kw),
				}
			}
		}
	}

	return Decision{
		Agent:      c.defaultAgent,
		Confidence: 0.7,
		Reasoning:  "Conversación general",
	}
}
