package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Marker remembers that a (loan, kind) pair was recently notified. Mark
// reports whether the key was freshly set; false means it is still inside
// the throttle window.
type Marker interface {
	Mark(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// Throttled wraps a Notifier and drops repeats of the same kind for the same
// loan inside the ttl window. A failing marker backend fails open: the notice
// still goes out.
type Throttled struct {
	next   Notifier
	marker Marker
	ttl    time.Duration
	logger *slog.Logger
}

func NewThrottled(next Notifier, marker Marker, ttl time.Duration, logger *slog.Logger) *Throttled {
	return &Throttled{next: next, marker: marker, ttl: ttl, logger: logger}
}

func (t *Throttled) Notify(ctx context.Context, msg Notification) error {
	fresh, err := t.marker.Mark(ctx, string(msg.Kind)+":"+msg.LoanID, t.ttl)
	if err != nil {
		t.logger.WarnContext(ctx, "notification throttle check failed",
			"loan_id", msg.LoanID, "kind", msg.Kind, "error", err)
		return t.next.Notify(ctx, msg)
	}
	if !fresh {
		return nil
	}
	return t.next.Notify(ctx, msg)
}

// MemoryMarker keeps throttle marks in a mutex-guarded map. Expired entries
// are reaped lazily on access.
type MemoryMarker struct {
	mu      sync.Mutex
	expiry  map[string]time.Time
	clock   func() time.Time
}

// MemoryMarkerOption configures a MemoryMarker.
type MemoryMarkerOption func(*MemoryMarker)

// WithMarkerClock sets the clock function for testability.
func WithMarkerClock(clock func() time.Time) MemoryMarkerOption {
	return func(m *MemoryMarker) {
		if clock != nil {
			m.clock = clock
		}
	}
}

func NewMemoryMarker(opts ...MemoryMarkerOption) *MemoryMarker {
	m := &MemoryMarker{
		expiry: make(map[string]time.Time),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m *MemoryMarker) Mark(_ context.Context, key string, ttl time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock()
	if deadline, ok := m.expiry[key]; ok && now.Before(deadline) {
		return false, nil
	}
	m.expiry[key] = now.Add(ttl)
	return true, nil
}

const throttleKeyPrefix = "notify:"

// RedisMarker shares throttle marks across instances via SET NX with expiry.
type RedisMarker struct {
	client *redis.Client
}

func NewRedisMarker(client *redis.Client) *RedisMarker {
	return &RedisMarker{client: client}
}

func (m *RedisMarker) Mark(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	return m.client.SetNX(ctx, throttleKeyPrefix+key, "1", ttl).Result()
}
