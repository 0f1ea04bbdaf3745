package keypool

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// rateLimitStep is the per-failure cooldown increment for 429s.
	rateLimitStep = 30 * time.Second
	// flatCooldown is applied for non-rate-limit failures.
	flatCooldown = 30 * time.Second
	// maxCooldown caps the linear backoff growth.
	maxCooldown = 10 * time.Minute
)

type credential struct {
	secret        string
	fails         int
	cooldownUntil time.Time
}

// Pool hands out the least-penalized available credential for one
// rate-limited provider. All reads and mutations go through a single
// mutex; call volume is low relative to lock overhead.
type Pool struct {
	mu   sync.Mutex
	keys []*credential
	now  func() time.Time
}

// Option configures a Pool.
type Option func(*Pool)

// WithClock overrides the pool's time source.
func WithClock(now func() time.Time) Option {
	return func(p *Pool) {
		p.now = now
	}
}

// New builds a pool from the primary key and the configured key pool.
// The primary key is inserted at the front of selection priority;
// duplicates and empty entries are dropped.
func New(primary string, pool []string, opts ...Option) *Pool {
	p := &Pool{now: time.Now}
	for _, opt := range opts {
		opt(p)
	}

	seen := make(map[string]bool)
	if primary != "" {
		p.keys = append(p.keys, &credential{secret: primary})
		seen[primary] = true
	}
	for _, secret := range pool {
		if secret == "" || seen[secret] {
			continue
		}
		p.keys = append(p.keys, &credential{secret: secret})
		seen[secret] = true
	}

	log.Info().Int("keys", len(p.keys)).Msg("key pool loaded")
	return p
}

// Size returns the number of credentials in the pool.
func (p *Pool) Size() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.keys)
}

// ActiveKey selects the credential with the fewest failures among those
// not in cooldown, breaking ties by insertion order. When every
// credential is cooling down it performs an emergency reset: cooldowns
// are cleared and each failure count is decremented by one, so the next
// call always makes forward progress. Returns false only for an empty
// pool.
func (p *Pool) ActiveKey() (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.keys) == 0 {
		return "", false
	}

	selected := p.selectLocked()
	if selected == nil {
		// Emergency reset. This re-risks keys the provider may still be
		// limiting, which is why it is logged as its own event.
		log.Error().Msg("key pool: all keys in cooldown, emergency reset")
		for _, k := range p.keys {
			k.cooldownUntil = time.Time{}
			if k.fails > 0 {
				k.fails--
			}
		}
		selected = p.selectLocked()
	}

	return selected.secret, true
}

func (p *Pool) selectLocked() *credential {
	now := p.now()
	var best *credential
	for _, k := range p.keys {
		if k.cooldownUntil.After(now) {
			continue
		}
		if best == nil || k.fails < best.fails {
			best = k
		}
	}
	return best
}

// ReportFailure records a failed call on the given key. Rate-limit
// failures (status 429) cool the key down for 30s times its failure
// count, capped at ten minutes; any other status applies a flat 30s.
func (p *Pool) ReportFailure(secret string, status int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, k := range p.keys {
		if k.secret != secret {
			continue
		}
		k.fails++

		wait := flatCooldown
		if status == 429 {
			wait = rateLimitStep * time.Duration(k.fails)
			if wait > maxCooldown {
				wait = maxCooldown
			}
		}
		k.cooldownUntil = p.now().Add(wait)

		log.Warn().
			Str("key", prefix(k.secret)).
			Int("status", status).
			Int("fails", k.fails).
			Dur("cooldown", wait).
			Msg("key pool: failure reported")
		return
	}
}

// KeyStatus is a read-only snapshot of one credential.
type KeyStatus struct {
	Prefix           string `json:"key_prefix"`
	Fails            int    `json:"fails"`
	InCooldown       bool   `json:"in_cooldown"`
	SecondsRemaining int    `json:"cooldown_remaining"`
}

// Status is a read-only snapshot of the pool, for observability only.
type Status struct {
	Total     int         `json:"total_keys"`
	Available int         `json:"available_keys"`
	Blocked   int         `json:"blocked_keys"`
	Keys      []KeyStatus `json:"keys_detail"`
}

// Status reports the pool state without mutating it.
func (p *Pool) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()

	now := p.now()
	st := Status{Total: len(p.keys), Keys: make([]KeyStatus, 0, len(p.keys))}
	for _, k := range p.keys {
		blocked := !k.cooldownUntil.IsZero() && k.cooldownUntil.After(now)
		remaining := 0
		if blocked {
			remaining = int(k.cooldownUntil.Sub(now).Seconds())
			st.Blocked++
		} else {
			st.Available++
		}
		st.Keys = append(st.Keys, KeyStatus{
			Prefix:           prefix(k.secret),
			Fails:            k.fails,
			InCooldown:       blocked,
			SecondsRemaining: remaining,
		})
	}
	return st
}

func prefix(secret string) string {
	if len(secret) <= 8 {
		return secret
	}
	return secret[:8] + "..."
}
