package cache

import (
	"context"
	"errors"

	"github.com/daSkciN/estoque-app-front/internal/domain"
)

// CartCache persists the in-progress lines of a session so a restart does
// not lose them.
type CartCache interface {
	Get(ctx context.Context, sessionID string) ([]domain.CartLine, error)
	Set(ctx context.Context, sessionID string, lines []domain.CartLine) error
	Delete(ctx context.Context, sessionID string) error
}

var ErrCacheMiss = errors.New("cache miss")

// NoopCache is used when no Redis address is configured.
type NoopCache struct{}

func (NoopCache) Get(context.Context, string) ([]domain.CartLine, error) {
	return nil, ErrCacheMiss
}

func (NoopCache) Set(context.Context, string, []domain.CartLine) error { return nil }

func (NoopCache) Delete(context.Context, string) error { return nil }
