package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/pkg/errors"
)

type orderRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewOrderRepository creates a new Postgres-backed order repository
func NewOrderRepository(db *sql.DB, logger *zap.Logger) *orderRepository {
	return &orderRepository{
		db:     db,
		logger: logger,
	}
}

const orderColumns = `
	id, order_number, customer, items, summary, status, payment_method,
	affiliate_id, affiliate_commission_tracked,
	created_at, updated_at, paid_at, cancelled_at
`

func (r *orderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (
			id, order_number, customer, items, summary, status, payment_method,
			affiliate_id, affiliate_commission_tracked, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	now := time.Now().UTC()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}

	customer, err := json.Marshal(order.Customer)
	if err != nil {
		return fmt.Errorf("marshal customer: %w", err)
	}
	items, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("marshal items: %w", err)
	}
	summary, err := json.Marshal(order.Summary)
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		order.ID,
		order.OrderNumber,
		customer,
		items,
		summary,
		order.Status,
		order.PaymentMethod,
		order.AffiliateID,
		order.AffiliateCommissionTracked,
		order.CreatedAt,
		order.UpdatedAt,
	)

	if err != nil {
		r.logger.Error("Failed to create order", zap.Error(err))
		return err
	}

	return nil
}

func (r *orderRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, id), id.String())
}

func (r *orderRepository) FindByNumber(ctx context.Context, orderNumber string) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE order_number = $1`
	return r.scanOrder(r.db.QueryRowContext(ctx, query, orderNumber), orderNumber)
}

func (r *orderRepository) scanOrder(row *sql.Row, ref string) (*domain.Order, error) {
	var (
		order         domain.Order
		customer      []byte
		items         []byte
		summary       []byte
		paymentMethod sql.NullString
		affiliateID   sql.NullString
		paidAt        sql.NullTime
		cancelledAt   sql.NullTime
	)

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&customer,
		&items,
		&summary,
		&order.Status,
		&paymentMethod,
		&affiliateID,
		&order.AffiliateCommissionTracked,
		&order.CreatedAt,
		&order.UpdatedAt,
		&paidAt,
		&cancelledAt,
	)

	if err == sql.ErrNoRows {
		return nil, &errors.ErrNotFound{Resource: "order", ID: ref}
	}
	if err != nil {
		r.logger.Error("Failed to scan order", zap.Error(err))
		return nil, err
	}

	if err := json.Unmarshal(customer, &order.Customer); err != nil {
		return nil, fmt.Errorf("unmarshal customer: %w", err)
	}
	if err := json.Unmarshal(items, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal items: %w", err)
	}
	if err := json.Unmarshal(summary, &order.Summary); err != nil {
		return nil, fmt.Errorf("unmarshal summary: %w", err)
	}

	if paymentMethod.Valid {
		order.PaymentMethod = paymentMethod.String
	}
	if affiliateID.Valid {
		order.AffiliateID = &affiliateID.String
	}
	if paidAt.Valid {
		t := paidAt.Time
		order.PaidAt = &t
	}
	if cancelledAt.Valid {
		t := cancelledAt.Time
		order.CancelledAt = &t
	}

	return &order, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.OrderStatus, paymentMethod string, at time.Time) error {
	query := `
		UPDATE orders
		SET status = $2,
		    payment_method = CASE WHEN $3 <> '' THEN $3 ELSE payment_method END,
		    paid_at = CASE WHEN $2 = 'paid' THEN $4 ELSE paid_at END,
		    cancelled_at = CASE WHEN $2 = 'cancelled' THEN $4 ELSE cancelled_at END,
		    updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id, status, paymentMethod, at)
	if err != nil {
		r.logger.Error("Failed to update order status", zap.Error(err))
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}

	return nil
}

// MarkCommissionTracked is a conditional update: only the caller whose
// UPDATE matches the row wins the claim. Two concurrent deliveries of the
// same paid webhook race here and Postgres guarantees exactly one winner.
func (r *orderRepository) MarkCommissionTracked(ctx context.Context, id uuid.UUID) (bool, error) {
	query := `
		UPDATE orders
		SET affiliate_commission_tracked = TRUE, updated_at = $2
		WHERE id = $1 AND affiliate_commission_tracked = FALSE
	`

	result, err := r.db.ExecContext(ctx, query, id, time.Now().UTC())
	if err != nil {
		r.logger.Error("Failed to mark commission tracked", zap.Error(err))
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows == 1, nil
}

func (r *orderRepository) ClearCommissionTracked(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE orders
		SET affiliate_commission_tracked = FALSE, updated_at = $2
		WHERE id = $1
	`

	if _, err := r.db.ExecContext(ctx, query, id, time.Now().UTC()); err != nil {
		r.logger.Error("Failed to clear commission tracked", zap.Error(err))
		return err
	}
	return nil
}

func (r *orderRepository) NextOrderSequence(ctx context.Context) (int64, error) {
	var seq int64
	if err := r.db.QueryRowContext(ctx, `SELECT nextval('order_number_seq')`).Scan(&seq); err != nil {
		r.logger.Error("Failed to reserve order sequence", zap.Error(err))
		return 0, err
	}
	return seq, nil
}
