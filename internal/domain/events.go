package domain

// Payment-gateway webhook event types. Unknown values are logged and
// ignored so new gateway event types do not break the receiver.
const (
	EventOrderCompleted     = "ORDER_COMPLETED"
	EventOrderAuthorised    = "ORDER_AUTHORISED"
	EventOrderCancelled     = "ORDER_CANCELLED"
	EventOrderPaymentFailed = "ORDER_PAYMENT_FAILED"
)

// PaymentEvent is an inbound webhook payload. It is transient: it is never
// persisted, its only effect is driving an order transition.
type PaymentEvent struct {
	Event               string            `json:"event"`
	OrderID             string            `json:"order_id"`
	MerchantOrderExtRef string            `json:"merchant_order_ext_ref"`
	PaymentMethod       PaymentMethodInfo `json:"payment_method"`
}

// PaymentMethodInfo carries the gateway's description of how the customer
// paid. Only the type is recorded on the order.
type PaymentMethodInfo struct {
	Type string `json:"type"`
}
