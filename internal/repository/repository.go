// Package repository defines the typed persistence boundary for orders.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/kosuite/shopcore/internal/domain"
)

// OrderRepository is the single source of truth for orders, shared across
// concurrent webhook deliveries. Lookups that match nothing return
// *errors.ErrNotFound.
type OrderRepository interface {
	Create(ctx context.Context, order *domain.Order) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error)

	// UpdateStatus commits a lifecycle transition. paymentMethod is recorded
	// when non-empty; paidAt/cancelledAt are stamped with at according to the
	// target status.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentMethod string, at time.Time) error

	// MarkCommissionTracked atomically claims the affiliate-commission flag.
	// It reports true only for the caller that flipped the flag from false
	// to true; every other concurrent or later caller gets false. This is
	// the system's only defence against duplicate commission payouts.
	MarkCommissionTracked(ctx context.Context, id uuid.UUID) (bool, error)

	// ClearCommissionTracked releases a claim after a failed tracking call
	// so a webhook redelivery can retry the payout.
	ClearCommissionTracked(ctx context.Context, id uuid.UUID) error

	// NextOrderSequence reserves the next value for order-number generation.
	NextOrderSequence(ctx context.Context) (int64, error)
}
