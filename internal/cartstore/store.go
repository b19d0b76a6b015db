// Package cartstore persists per-session carts. Carts are ephemeral UX
// state: losing one costs the shopper a few clicks, so the store is a
// TTL'd cache tier, not the durable order repository.
package cartstore

import (
	"context"
	"errors"

	"github.com/kosuite/shopcore/internal/domain"
)

type Store interface {
	Get(ctx context.Context, sessionID string) (*domain.Cart, error)
	Set(ctx context.Context, sessionID string, cart *domain.Cart) error
	Delete(ctx context.Context, sessionID string) error
}

// ErrNotFound is returned when no cart exists for the session.
var ErrNotFound = errors.New("cart not found")
