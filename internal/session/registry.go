package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/daSkciN/estoque-app-front/internal/cache"
	"github.com/daSkciN/estoque-app-front/internal/domain"
	"github.com/daSkciN/estoque-app-front/internal/notify"
	"github.com/daSkciN/estoque-app-front/internal/sales"
)

const (
	DefaultTTL = 30 * time.Minute

	// SweepInterval is how often idle sessions are evicted
	SweepInterval = time.Minute

	cacheTimeout = time.Second
)

// Session is the state one browser owns: its sale cart and its toasts.
type Session struct {
	ID      string
	Cart    *sales.Manager
	Inbox   *notify.Inbox
	Notices notify.Notifier

	lastSeen time.Time
}

type Deps struct {
	Catalog       sales.Catalog
	Orders        sales.OrderSubmitter
	Recorder      sales.Recorder
	Cache         cache.CartCache
	InboxCapacity int
	Logger        *slog.Logger
}

// Registry hands out sessions by id, creating them lazily. Carts are
// written through to the cache so an evicted or restarted session can be
// restored.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	deps     Deps
	now      func() time.Time
}

func NewRegistry(deps Deps, ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if deps.Cache == nil {
		deps.Cache = cache.NoopCache{}
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		deps:     deps,
		now:      time.Now,
	}
}

// Get returns the session for id, restoring its cart from the cache the
// first time it is seen by this process.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		r.mu.Unlock()
		return s
	}
	r.mu.Unlock()

	restored := r.restore(ctx, id)
	created := r.newSession(id, restored)

	r.mu.Lock()
	defer r.mu.Unlock()
	// another request for the same id may have won the race
	if s, ok := r.sessions[id]; ok {
		s.lastSeen = r.now()
		return s
	}
	created.lastSeen = r.now()
	r.sessions[id] = created
	return created
}

func (r *Registry) restore(ctx context.Context, id string) []domain.CartLine {
	ctx, cancel := context.WithTimeout(ctx, cacheTimeout)
	defer cancel()

	lines, err := r.deps.Cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			r.deps.Logger.WarnContext(ctx, "cart restore failed", "session_id", id, "error", err)
		}
		return nil
	}
	return lines
}

func (r *Registry) newSession(id string, restored []domain.CartLine) *Session {
	inbox := notify.NewInbox(r.deps.InboxCapacity)
	notices := notify.WithLogging(inbox, r.deps.Logger.With("session_id", id))

	opts := []sales.Option{
		sales.WithSessionID(id),
		sales.WithLogger(r.deps.Logger),
		sales.OnChange(func(lines []domain.CartLine) { r.persist(id, lines) }),
	}
	if len(restored) > 0 {
		opts = append(opts, sales.WithLines(restored))
	}
	if r.deps.Recorder != nil {
		opts = append(opts, sales.WithRecorder(r.deps.Recorder))
	}

	return &Session{
		ID:      id,
		Cart:    sales.NewManager(r.deps.Catalog, r.deps.Orders, notices, opts...),
		Inbox:   inbox,
		Notices: notices,
	}
}

func (r *Registry) persist(id string, lines []domain.CartLine) {
	ctx, cancel := context.WithTimeout(context.Background(), cacheTimeout)
	defer cancel()

	var err error
	if len(lines) == 0 {
		err = r.deps.Cache.Delete(ctx, id)
	} else {
		err = r.deps.Cache.Set(ctx, id, lines)
	}
	if err != nil {
		r.deps.Logger.Warn("cart persist failed", "session_id", id, "error", err)
	}
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// Sweep evicts sessions idle for longer than the TTL. Sessions with a
// checkout in flight are kept.
func (r *Registry) Sweep() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	cutoff := r.now().Add(-r.ttl)
	evicted := 0
	for id, s := range r.sessions {
		if s.lastSeen.After(cutoff) || s.Cart.State() == domain.CartStateSubmitting {
			continue
		}
		delete(r.sessions, id)
		evicted++
	}
	return evicted
}

// Run sweeps on a ticker until ctx is cancelled.
func (r *Registry) Run(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n := r.Sweep(); n > 0 {
				r.deps.Logger.Info("evicted idle sessions", "count", n)
			}
		case <-ctx.Done():
			return
		}
	}
}
