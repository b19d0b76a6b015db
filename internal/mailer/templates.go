package mailer

import (
	"fmt"

	"github.com/kosuite/shopcore/internal/domain"
)

// Outcome mail bodies. Plain text on purpose: these are receipts, not
// marketing.

func OrderConfirmation(order *domain.Order) Message {
	return Message{
		To:      order.Customer.Email,
		Subject: fmt.Sprintf("Order %s confirmed", order.OrderNumber),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nThanks for your order %s.\n\nTotal: £%s\nPayment method: %s\n\nWe'll email you again when it ships.\n",
			order.Customer.FirstName, order.OrderNumber,
			order.Summary.Total.StringFixed(2), order.PaymentMethod,
		),
	}
}

func OrderCancelled(order *domain.Order) Message {
	return Message{
		To:      order.Customer.Email,
		Subject: fmt.Sprintf("Order %s cancelled", order.OrderNumber),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nYour order %s (£%s) has been cancelled. You have not been charged.\n",
			order.Customer.FirstName, order.OrderNumber,
			order.Summary.Total.StringFixed(2),
		),
	}
}

func OrderPaymentFailed(order *domain.Order) Message {
	return Message{
		To:      order.Customer.Email,
		Subject: fmt.Sprintf("Payment failed for order %s", order.OrderNumber),
		TextBody: fmt.Sprintf(
			"Hi %s,\n\nPayment for order %s (£%s) did not go through. No money was taken.\nYou can retry from your basket at any time.\n",
			order.Customer.FirstName, order.OrderNumber,
			order.Summary.Total.StringFixed(2),
		),
	}
}
