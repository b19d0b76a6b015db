package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kosuite/shopcore/internal/affiliate"
	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/mailer"
	"github.com/kosuite/shopcore/internal/payment"
	"github.com/kosuite/shopcore/pkg/errors"
)

type mockOrderRepo struct {
	m      sync.Mutex
	orders map[uuid.UUID]*domain.Order
	seq    int64

	createErr error
	updateErr error
}

func newMockOrderRepo() *mockOrderRepo {
	return &mockOrderRepo{orders: make(map[uuid.UUID]*domain.Order), seq: 1000}
}

func (m *mockOrderRepo) put(order *domain.Order) {
	m.m.Lock()
	defer m.m.Unlock()
	if order.ID == uuid.Nil {
		order.ID = uuid.New()
	}
	clone := *order
	m.orders[order.ID] = &clone
}

func (m *mockOrderRepo) get(id uuid.UUID) *domain.Order {
	m.m.Lock()
	defer m.m.Unlock()
	if o, ok := m.orders[id]; ok {
		clone := *o
		return &clone
	}
	return nil
}

func (m *mockOrderRepo) Create(_ context.Context, order *domain.Order) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.put(order)
	return nil
}

func (m *mockOrderRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	if o := m.get(id); o != nil {
		return o, nil
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: id.String()}
}

func (m *mockOrderRepo) FindByNumber(_ context.Context, orderNumber string) (*domain.Order, error) {
	m.m.Lock()
	defer m.m.Unlock()
	for _, o := range m.orders {
		if o.OrderNumber == orderNumber {
			clone := *o
			return &clone, nil
		}
	}
	return nil, &errors.ErrNotFound{Resource: "order", ID: orderNumber}
}

func (m *mockOrderRepo) UpdateStatus(_ context.Context, id uuid.UUID, status domain.OrderStatus, paymentMethod string, at time.Time) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	o.Status = status
	if paymentMethod != "" {
		o.PaymentMethod = paymentMethod
	}
	switch status {
	case domain.OrderStatusPaid:
		t := at
		o.PaidAt = &t
	case domain.OrderStatusCancelled:
		t := at
		o.CancelledAt = &t
	}
	o.UpdatedAt = at
	return nil
}

func (m *mockOrderRepo) MarkCommissionTracked(_ context.Context, id uuid.UUID) (bool, error) {
	m.m.Lock()
	defer m.m.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return false, &errors.ErrNotFound{Resource: "order", ID: id.String()}
	}
	if o.AffiliateCommissionTracked {
		return false, nil
	}
	o.AffiliateCommissionTracked = true
	return true, nil
}

func (m *mockOrderRepo) ClearCommissionTracked(_ context.Context, id uuid.UUID) error {
	m.m.Lock()
	defer m.m.Unlock()
	if o, ok := m.orders[id]; ok {
		o.AffiliateCommissionTracked = false
	}
	return nil
}

func (m *mockOrderRepo) NextOrderSequence(_ context.Context) (int64, error) {
	m.m.Lock()
	defer m.m.Unlock()
	m.seq++
	return m.seq, nil
}

type mockMailer struct {
	m    sync.Mutex
	sent []mailer.Message
	err  error
}

func (m *mockMailer) Send(_ context.Context, msg mailer.Message) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func (m *mockMailer) sentCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.sent)
}

type mockTracker struct {
	m     sync.Mutex
	calls []affiliate.Conversion
	err   error
}

func (m *mockTracker) TrackSale(_ context.Context, conv affiliate.Conversion) error {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return m.err
	}
	m.calls = append(m.calls, conv)
	return nil
}

func (m *mockTracker) callCount() int {
	m.m.Lock()
	defer m.m.Unlock()
	return len(m.calls)
}

type mockGateway struct {
	m        sync.Mutex
	requests []payment.CreateOrderRequest
	token    string
	err      error
}

func (m *mockGateway) CreateOrder(_ context.Context, req payment.CreateOrderRequest) (string, error) {
	m.m.Lock()
	defer m.m.Unlock()
	if m.err != nil {
		return "", m.err
	}
	m.requests = append(m.requests, req)
	return m.token, nil
}
