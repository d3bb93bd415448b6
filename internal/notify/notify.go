package notify

import (
	"context"
	"log/slog"
	"sync"

	"github.com/daSkciN/estoque-app-front/internal/domain"
)

// Notifier is the toast sink handed to the cart manager and form services.
type Notifier interface {
	Notify(ctx context.Context, n domain.Notification)
}

const DefaultCapacity = 32

// Inbox buffers toasts for one session until the UI drains them. When full
// the oldest toast is dropped.
type Inbox struct {
	mu       sync.Mutex
	items    []domain.Notification
	capacity int
}

func NewInbox(capacity int) *Inbox {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Inbox{capacity: capacity}
}

func (i *Inbox) Notify(_ context.Context, n domain.Notification) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if len(i.items) == i.capacity {
		copy(i.items, i.items[1:])
		i.items = i.items[:len(i.items)-1]
	}
	i.items = append(i.items, n)
}

// Drain returns the buffered toasts oldest first and empties the inbox.
func (i *Inbox) Drain() []domain.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	out := i.items
	i.items = nil
	if out == nil {
		return []domain.Notification{}
	}
	return out
}

func (i *Inbox) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.items)
}

type loggingNotifier struct {
	next   Notifier
	logger *slog.Logger
}

// WithLogging logs every toast before forwarding it.
func WithLogging(next Notifier, logger *slog.Logger) Notifier {
	return loggingNotifier{next: next, logger: logger}
}

func (l loggingNotifier) Notify(ctx context.Context, n domain.Notification) {
	level := slog.LevelInfo
	if n.Variant == domain.VariantDestructive {
		level = slog.LevelWarn
	}
	l.logger.Log(ctx, level, "notification", "title", n.Title, "description", n.Description)
	l.next.Notify(ctx, n)
}

// Discard drops every toast.
type Discard struct{}

func (Discard) Notify(context.Context, domain.Notification) {}
