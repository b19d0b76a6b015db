package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/payment"
	"github.com/kosuite/shopcore/internal/repository"
	"github.com/kosuite/shopcore/pkg/errors"
)

// PaymentGateway is the slice of the payment client checkout needs.
type PaymentGateway interface {
	CreateOrder(ctx context.Context, req payment.CreateOrderRequest) (string, error)
}

type CheckoutService struct {
	repo          repository.OrderRepository
	gateway       PaymentGateway
	carts         *CartService
	publicBaseURL string
	logger        *zap.Logger
}

// NewCheckoutService creates a new checkout service
func NewCheckoutService(
	repo repository.OrderRepository,
	gateway PaymentGateway,
	carts *CartService,
	publicBaseURL string,
	logger *zap.Logger,
) *CheckoutService {
	return &CheckoutService{
		repo:          repo,
		gateway:       gateway,
		carts:         carts,
		publicBaseURL: strings.TrimSuffix(publicBaseURL, "/"),
		logger:        logger,
	}
}

// CheckoutRequest is the browser's submission: who is buying, plus the
// referral id the storefront picked up from its affiliate cookie.
type CheckoutRequest struct {
	Customer    domain.CustomerDetails `json:"customer"`
	AffiliateID *string                `json:"affiliate_id,omitempty"`
}

// CheckoutResult carries what the front end needs to open the payment popup.
type CheckoutResult struct {
	OrderNumber   string `json:"order_number"`
	CheckoutToken string `json:"checkout_token"`
}

// Submit validates the customer, snapshots the cart into a pending order and
// opens a gateway payment session. If the gateway call fails the order is
// marked abandoned so the caller never observes a half-created checkout.
func (s *CheckoutService) Submit(ctx context.Context, sessionID string, req CheckoutRequest) (*CheckoutResult, error) {
	cart, err := s.carts.Get(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}

	if verr := validateCheckout(req.Customer, cart); verr.HasErrors() {
		return nil, verr
	}

	orderNumber, err := s.nextOrderNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("generate order number: %w", err)
	}

	now := time.Now().UTC()
	order := &domain.Order{
		OrderNumber: orderNumber,
		Customer:    req.Customer,
		Items:       append([]domain.CartItem(nil), cart.Items...),
		Summary:     cart.Summary,
		Status:      domain.OrderStatusPending,
		AffiliateID: req.AffiliateID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}

	token, err := s.gateway.CreateOrder(ctx, payment.CreateOrderRequest{
		Amount:              cart.Summary.Total.Shift(2).IntPart(),
		Currency:            "GBP",
		MerchantOrderExtRef: orderNumber,
		WebhookURL:          s.publicBaseURL + "/v1/webhooks/payment",
		CustomerEmail:       req.Customer.Email,
	})
	if err != nil {
		// The order must not linger as pending when no payment session
		// exists; abandoned keeps the record for audit without deleting it.
		if abandonErr := s.repo.UpdateStatus(ctx, order.ID, domain.OrderStatusAbandoned, "", time.Now().UTC()); abandonErr != nil {
			s.logger.Error("Failed to abandon order after gateway failure",
				zap.String("order_number", orderNumber),
				zap.Error(abandonErr),
			)
		}
		return nil, fmt.Errorf("create payment session: %w", err)
	}

	if err := s.carts.Clear(ctx, sessionID); err != nil {
		s.logger.Warn("Failed to clear cart after checkout",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
	}

	s.logger.Info("Checkout submitted",
		zap.String("order_number", orderNumber),
		zap.String("country", req.Customer.Country),
	)

	return &CheckoutResult{
		OrderNumber:   orderNumber,
		CheckoutToken: token,
	}, nil
}

// nextOrderNumber produces the human-legible merchant reference,
// e.g. KOS-2026-1042.
func (s *CheckoutService) nextOrderNumber(ctx context.Context) (string, error) {
	seq, err := s.repo.NextOrderSequence(ctx)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("KOS-%d-%d", time.Now().UTC().Year(), seq), nil
}

func validateCheckout(c domain.CustomerDetails, cart *domain.Cart) *errors.ValidationErrors {
	verr := &errors.ValidationErrors{}

	if len(cart.Items) == 0 {
		verr.Add("cart", "cart is empty")
	}

	if strings.TrimSpace(c.Email) == "" {
		verr.Add("email", "email is required")
	} else if _, err := mail.ParseAddress(c.Email); err != nil {
		verr.Add("email", "email is not a valid address")
	}

	if digits := countDigits(c.Phone); digits < 10 {
		verr.Add("phone", "phone must contain at least 10 digits")
	}

	required := []struct {
		field, value, message string
	}{
		{"first_name", c.FirstName, "first name is required"},
		{"last_name", c.LastName, "last name is required"},
		{"address_line1", c.AddressLine1, "address is required"},
		{"city", c.City, "city is required"},
		{"postcode", c.Postcode, "postcode is required"},
		{"country", c.Country, "country is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			verr.Add(f.field, f.message)
		}
	}

	return verr
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
