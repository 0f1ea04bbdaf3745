package keypool

import (
	"testing"
	"time"
)

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestPool(keys ...string) (*Pool, *fakeClock) {
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	var primary string
	var rest []string
	if len(keys) > 0 {
		primary = keys[0]
		rest = keys[1:]
	}
	return New(primary, rest, WithClock(clock.now)), clock
}

func TestNewDedupesAndKeepsPrimaryFirst(t *testing.T) {
	pool, _ := newTestPool("primary-key", "pool-key-1", "primary-key", "", "pool-key-1")
	if pool.Size() != 2 {
		t.Fatalf("expected 2 keys, got %d", pool.Size())
	}
	key, ok := pool.ActiveKey()
	if !ok || key != "primary-key" {
		t.Fatalf("expected primary-key first, got %q ok=%v", key, ok)
	}
}

func TestEmptyPoolReturnsNoKey(t *testing.T) {
	pool, _ := newTestPool()
	if _, ok := pool.ActiveKey(); ok {
		t.Fatalf("expected no key from empty pool")
	}
}

func TestRateLimitCooldownGrowsLinearly(t *testing.T) {
	pool, clock := newTestPool("key-aaaaaaaa", "key-bbbbbbbb")

	// Three consecutive 429s on the same key: cooldown must reach 90s.
	for i := 0; i < 3; i++ {
		pool.ReportFailure("key-aaaaaaaa", 429)
	}

	clock.advance(89 * time.Second)
	key, ok := pool.ActiveKey()
	if !ok || key != "key-bbbbbbbb" {
		t.Fatalf("expected the clean key while cooldown active, got %q", key)
	}

	clock.advance(2 * time.Second)
	// Cooldown elapsed, but the failed key keeps its penalty.
	key, _ = pool.ActiveKey()
	if key != "key-bbbbbbbb" {
		t.Fatalf("expected least-penalized key, got %q", key)
	}
}

func TestNonRateLimitFailureGetsFlatCooldown(t *testing.T) {
	pool, clock := newTestPool("key-aaaaaaaa")
	pool.ReportFailure("key-aaaaaaaa", 500)
	pool.ReportFailure("key-aaaaaaaa", 500)
	pool.ReportFailure("key-aaaaaaaa", 500)

	// Flat 30s regardless of failure count.
	clock.advance(31 * time.Second)
	st := pool.Status()
	if st.Available != 1 {
		t.Fatalf("expected key available after flat cooldown, got %+v", st)
	}
}

func TestCooldownIsCapped(t *testing.T) {
	pool, clock := newTestPool("key-aaaaaaaa")
	for i := 0; i < 50; i++ {
		pool.ReportFailure("key-aaaaaaaa", 429)
	}
	clock.advance(10*time.Minute + time.Second)
	st := pool.Status()
	if st.Available != 1 {
		t.Fatalf("expected cooldown capped at 10m, got %+v", st)
	}
}

func TestEmergencyResetNeverDeadlocks(t *testing.T) {
	pool, _ := newTestPool("key-aaaaaaaa", "key-bbbbbbbb")
	pool.ReportFailure("key-aaaaaaaa", 429)
	pool.ReportFailure("key-bbbbbbbb", 429)

	st := pool.Status()
	if st.Blocked != 2 {
		t.Fatalf("expected both keys blocked, got %+v", st)
	}

	// Liveness: the very next call must hand out a key.
	key, ok := pool.ActiveKey()
	if !ok || key == "" {
		t.Fatalf("expected a key after emergency reset")
	}

	// Reset decrements penalties back to zero here.
	st = pool.Status()
	if st.Available != 2 {
		t.Fatalf("expected all keys available after reset, got %+v", st)
	}
	for _, k := range st.Keys {
		if k.Fails != 0 {
			t.Fatalf("expected fails decremented to 0, got %+v", k)
		}
	}
}

func TestActiveKeyPrefersFewestFailures(t *testing.T) {
	pool, clock := newTestPool("key-aaaaaaaa", "key-bbbbbbbb", "key-cccccccc")
	pool.ReportFailure("key-aaaaaaaa", 429)
	pool.ReportFailure("key-aaaaaaaa", 429)
	pool.ReportFailure("key-bbbbbbbb", 429)
	clock.advance(5 * time.Minute)

	key, _ := pool.ActiveKey()
	if key != "key-cccccccc" {
		t.Fatalf("expected untouched key to win, got %q", key)
	}
}

func TestStatusSnapshot(t *testing.T) {
	pool, _ := newTestPool("key-aaaaaaaa", "key-bbbbbbbb")
	pool.ReportFailure("key-bbbbbbbb", 429)

	st := pool.Status()
	if st.Total != 2 || st.Available != 1 || st.Blocked != 1 {
		t.Fatalf("unexpected status: %+v", st)
	}
	if st.Keys[0].Prefix != "key-aaaa..." {
		t.Fatalf("unexpected prefix: %q", st.Keys[0].Prefix)
	}
	if !st.Keys[1].InCooldown || st.Keys[1].SecondsRemaining == 0 {
		t.Fatalf("expected second key cooling down: %+v", st.Keys[1])
	}
}
