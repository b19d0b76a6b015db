package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/metrics"
	"github.com/kosuite/shopcore/pkg/errors"
)

func newLifecycleFixture(t *testing.T) (*LifecycleService, *mockOrderRepo, *mockMailer, *mockTracker) {
	t.Helper()
	repo := newMockOrderRepo()
	mail := &mockMailer{}
	tracker := &mockTracker{}
	svc := NewLifecycleService(repo, mail, tracker, metrics.New(prometheus.NewRegistry()), zap.NewNop())
	return svc, repo, mail, tracker
}

func pendingOrder(number string, affiliateID *string) *domain.Order {
	return &domain.Order{
		OrderNumber: number,
		Customer: domain.CustomerDetails{
			Email:     "chef@example.com",
			FirstName: "Alex",
		},
		Items: []domain.CartItem{{
			ProductID: "prod-1", VariantID: "var-1", VariantName: "Single",
			Price: decimal.RequireFromString("35.00"), Quantity: 2,
		}},
		Summary: domain.Summary{
			Subtotal:  decimal.RequireFromString("70.00"),
			TaxAmount: decimal.RequireFromString("14.00"),
			Total:     decimal.RequireFromString("84.00"),
		},
		Status:      domain.OrderStatusPending,
		AffiliateID: affiliateID,
	}
}

func completedEvent(number string) domain.PaymentEvent {
	return domain.PaymentEvent{
		Event:               domain.EventOrderCompleted,
		OrderID:             "gw-123",
		MerchantOrderExtRef: number,
		PaymentMethod:       domain.PaymentMethodInfo{Type: "card"},
	}
}

func TestApply_CompletedTransitionsToPaid(t *testing.T) {
	svc, repo, mail, _ := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	repo.put(order)

	err := svc.Apply(context.Background(), completedEvent("KOS-2026-1001"))
	require.NoError(t, err)

	stored := repo.get(order.ID)
	assert.Equal(t, domain.OrderStatusPaid, stored.Status)
	require.NotNil(t, stored.PaidAt)
	assert.Equal(t, "card", stored.PaymentMethod)

	require.Equal(t, 1, mail.sentCount())
	assert.Contains(t, mail.sent[0].Subject, "KOS-2026-1001")
	assert.Equal(t, "chef@example.com", mail.sent[0].To)
}

func TestApply_UnknownOrderIsCorrelationError(t *testing.T) {
	svc, _, mail, tracker := newLifecycleFixture(t)

	err := svc.Apply(context.Background(), completedEvent("KOS-2026-9999"))

	var nf *errors.ErrNotFound
	require.ErrorAs(t, err, &nf)
	assert.Zero(t, mail.sentCount(), "no side effects for unmatched events")
	assert.Zero(t, tracker.callCount())
}

func TestApply_UnknownEventTypeIsIgnored(t *testing.T) {
	svc, repo, mail, _ := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	repo.put(order)

	evt := domain.PaymentEvent{
		Event:               "ORDER_SOMETHING_NEW",
		MerchantOrderExtRef: "KOS-2026-1001",
	}

	require.NoError(t, svc.Apply(context.Background(), evt))
	assert.Equal(t, domain.OrderStatusPending, repo.get(order.ID).Status)
	assert.Zero(t, mail.sentCount())
}

func TestApply_AuthorisedThenCompleted(t *testing.T) {
	svc, repo, _, _ := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	repo.put(order)

	authEvt := domain.PaymentEvent{
		Event:               domain.EventOrderAuthorised,
		MerchantOrderExtRef: "KOS-2026-1001",
		PaymentMethod:       domain.PaymentMethodInfo{Type: "card"},
	}
	require.NoError(t, svc.Apply(context.Background(), authEvt))
	assert.Equal(t, domain.OrderStatusAuthorized, repo.get(order.ID).Status)

	require.NoError(t, svc.Apply(context.Background(), completedEvent("KOS-2026-1001")))
	assert.Equal(t, domain.OrderStatusPaid, repo.get(order.ID).Status)
}

func TestApply_CancelledSetsTimestampAndMails(t *testing.T) {
	svc, repo, mail, _ := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	repo.put(order)

	evt := domain.PaymentEvent{
		Event:               domain.EventOrderCancelled,
		MerchantOrderExtRef: "KOS-2026-1001",
	}
	require.NoError(t, svc.Apply(context.Background(), evt))

	stored := repo.get(order.ID)
	assert.Equal(t, domain.OrderStatusCancelled, stored.Status)
	require.NotNil(t, stored.CancelledAt)
	require.Equal(t, 1, mail.sentCount())
	assert.Contains(t, mail.sent[0].Subject, "cancelled")
}

func TestApply_FailedMailsCustomer(t *testing.T) {
	svc, repo, mail, _ := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	repo.put(order)

	evt := domain.PaymentEvent{
		Event:               domain.EventOrderPaymentFailed,
		MerchantOrderExtRef: "KOS-2026-1001",
	}
	require.NoError(t, svc.Apply(context.Background(), evt))

	assert.Equal(t, domain.OrderStatusFailed, repo.get(order.ID).Status)
	require.Equal(t, 1, mail.sentCount())
	assert.Contains(t, mail.sent[0].Subject, "Payment failed")
}

func TestApply_CompletedAfterCancelledIsAcknowledgedWithoutMutation(t *testing.T) {
	svc, repo, mail, _ := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	order.Status = domain.OrderStatusCancelled
	repo.put(order)

	require.NoError(t, svc.Apply(context.Background(), completedEvent("KOS-2026-1001")))
	assert.Equal(t, domain.OrderStatusCancelled, repo.get(order.ID).Status)
	assert.Zero(t, mail.sentCount())
}

func TestApply_CommissionTrackedAtMostOnce(t *testing.T) {
	svc, repo, mail, tracker := newLifecycleFixture(t)
	affID := "aff-42"
	order := pendingOrder("KOS-2026-1001", &affID)
	repo.put(order)

	evt := completedEvent("KOS-2026-1001")

	// Gateways retry webhooks; the same completed event arrives twice.
	require.NoError(t, svc.Apply(context.Background(), evt))
	require.NoError(t, svc.Apply(context.Background(), evt))

	assert.Equal(t, 1, tracker.callCount(), "exactly one affiliate call across duplicate deliveries")
	assert.True(t, repo.get(order.ID).AffiliateCommissionTracked)
	assert.Equal(t, 1, mail.sentCount(), "confirmation mail only on the actual transition")

	require.Len(t, tracker.calls, 1)
	conv := tracker.calls[0]
	assert.Equal(t, "aff-42", conv.AffiliateID)
	assert.Equal(t, "KOS-2026-1001", conv.OrderNumber)
	assert.Equal(t, order.ID.String(), conv.OrderID)
	assert.True(t, conv.Amount.Equal(decimal.RequireFromString("84.00")))
}

func TestApply_ConcurrentDuplicatesTrackOnce(t *testing.T) {
	svc, repo, _, tracker := newLifecycleFixture(t)
	affID := "aff-42"
	order := pendingOrder("KOS-2026-1001", &affID)
	order.Status = domain.OrderStatusPaid
	repo.put(order)

	evt := completedEvent("KOS-2026-1001")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Apply(context.Background(), evt))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, tracker.callCount(), "CAS on the flag must admit one winner")
}

func TestApply_NoCommissionWithoutAffiliate(t *testing.T) {
	svc, repo, _, tracker := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	repo.put(order)

	require.NoError(t, svc.Apply(context.Background(), completedEvent("KOS-2026-1001")))
	assert.Zero(t, tracker.callCount())
	assert.False(t, repo.get(order.ID).AffiliateCommissionTracked)
}

func TestApply_AffiliateFailureDoesNotUnwindTransition(t *testing.T) {
	svc, repo, _, tracker := newLifecycleFixture(t)
	affID := "aff-42"
	order := pendingOrder("KOS-2026-1001", &affID)
	repo.put(order)
	tracker.err = fmt.Errorf("affiliate API down")

	err := svc.Apply(context.Background(), completedEvent("KOS-2026-1001"))

	require.NoError(t, err, "webhook must still succeed")
	stored := repo.get(order.ID)
	assert.Equal(t, domain.OrderStatusPaid, stored.Status)
	// The claim is released so a redelivery can retry the payout.
	assert.False(t, stored.AffiliateCommissionTracked)
}

func TestApply_MailFailureDoesNotUnwindTransition(t *testing.T) {
	svc, repo, mail, _ := newLifecycleFixture(t)
	order := pendingOrder("KOS-2026-1001", nil)
	repo.put(order)
	mail.err = fmt.Errorf("mail API down")

	require.NoError(t, svc.Apply(context.Background(), completedEvent("KOS-2026-1001")))
	assert.Equal(t, domain.OrderStatusPaid, repo.get(order.ID).Status)
}
