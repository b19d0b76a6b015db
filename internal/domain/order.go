package domain

import (
	"time"

	"github.com/google/uuid"
)

// CustomerDetails is the contact and address snapshot taken at checkout.
type CustomerDetails struct {
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2,omitempty"`
	City         string `json:"city"`
	Postcode     string `json:"postcode"`
	Country      string `json:"country"`
	VATNumber    string `json:"vat_number,omitempty"`
	IsVatExempt  bool   `json:"is_vat_exempt"`
}

// Order is the durable record of a transaction. Items and Summary are
// snapshots frozen at submission time; only the lifecycle fields (status,
// timestamps, payment method, commission flag) change afterwards, and only
// via webhook-driven transitions.
type Order struct {
	ID                         uuid.UUID
	OrderNumber                string
	Customer                   CustomerDetails
	Items                      []CartItem
	Summary                    Summary
	Status                     OrderStatus
	PaymentMethod              string
	AffiliateID                *string
	AffiliateCommissionTracked bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
	PaidAt                     *time.Time
	CancelledAt                *time.Time
}

// OrderStatus represents the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusAuthorized OrderStatus = "authorized"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusCancelled  OrderStatus = "cancelled"
	OrderStatusFailed     OrderStatus = "failed"

	// OrderStatusAbandoned marks an order whose payment session could not be
	// created at checkout. Only the checkout path sets it; webhooks never do.
	OrderStatusAbandoned OrderStatus = "abandoned"
)

// IsValid checks if the order status is a known value.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending,
		OrderStatusAuthorized,
		OrderStatusPaid,
		OrderStatusCancelled,
		OrderStatusFailed,
		OrderStatusAbandoned:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transition may leave this status.
// Refunds are handled outside this subsystem, so paid is terminal here.
func (s OrderStatus) IsTerminal() bool {
	switch s {
	case OrderStatusPaid, OrderStatusCancelled, OrderStatusFailed, OrderStatusAbandoned:
		return true
	default:
		return false
	}
}

// CanTransitionTo checks if a status transition is valid.
func (s OrderStatus) CanTransitionTo(newStatus OrderStatus) bool {
	switch s {
	case OrderStatusPending:
		return newStatus == OrderStatusAuthorized ||
			newStatus == OrderStatusPaid ||
			newStatus == OrderStatusCancelled ||
			newStatus == OrderStatusFailed
	case OrderStatusAuthorized:
		// Manual-capture flows settle or void an authorised payment later.
		return newStatus == OrderStatusPaid ||
			newStatus == OrderStatusCancelled
	default:
		return false
	}
}
