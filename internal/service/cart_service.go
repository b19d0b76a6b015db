package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/cartstore"
	"github.com/kosuite/shopcore/internal/domain"
	"github.com/kosuite/shopcore/internal/pricing"
)

type CartService struct {
	store  cartstore.Store
	logger *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(store cartstore.Store, logger *zap.Logger) *CartService {
	return &CartService{
		store:  store,
		logger: logger,
	}
}

// Get returns the session's cart, materializing an empty GB cart on first use.
func (s *CartService) Get(ctx context.Context, sessionID string) (*domain.Cart, error) {
	cart, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, cartstore.ErrNotFound) {
		now := time.Now().UTC()
		return &domain.Cart{
			SessionID:       sessionID,
			CustomerCountry: "GB",
			Summary:         pricing.Quote(nil, "GB", false),
			CreatedAt:       now,
			UpdatedAt:       now,
		}, nil
	}
	if err != nil {
		return nil, err
	}
	return cart, nil
}

// AddItem adds a variant to the cart, merging quantity with an existing line.
func (s *CartService) AddItem(ctx context.Context, sessionID string, item domain.CartItem) (*domain.Cart, error) {
	if item.Quantity < 1 {
		return nil, fmt.Errorf("quantity must be at least 1")
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range cart.Items {
		if cart.Items[i].VariantID == item.VariantID {
			cart.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart.Items = append(cart.Items, item)
	}

	return s.save(ctx, cart)
}

// UpdateQuantity sets a line's quantity. Anything below 1 removes the line.
func (s *CartService) UpdateQuantity(ctx context.Context, sessionID, variantID string, quantity int) (*domain.Cart, error) {
	if quantity < 1 {
		return s.RemoveItem(ctx, sessionID, variantID)
	}

	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i := range cart.Items {
		if cart.Items[i].VariantID == variantID {
			cart.Items[i].Quantity = quantity
			return s.save(ctx, cart)
		}
	}

	return nil, fmt.Errorf("variant %s not in cart", variantID)
}

// RemoveItem drops a line from the cart.
func (s *CartService) RemoveItem(ctx context.Context, sessionID, variantID string) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	for i, item := range cart.Items {
		if item.VariantID == variantID {
			cart.Items = append(cart.Items[:i], cart.Items[i+1:]...)
			return s.save(ctx, cart)
		}
	}

	return nil, fmt.Errorf("variant %s not in cart", variantID)
}

// SetDestination records the shipping country and VAT exemption, which both
// feed the pricing quote.
func (s *CartService) SetDestination(ctx context.Context, sessionID, country string, vatExempt bool) (*domain.Cart, error) {
	cart, err := s.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	cart.CustomerCountry = country
	cart.IsVatExempt = vatExempt
	return s.save(ctx, cart)
}

// Clear empties the session's cart after a successful checkout.
func (s *CartService) Clear(ctx context.Context, sessionID string) error {
	return s.store.Delete(ctx, sessionID)
}

// save recomputes derived totals and persists. Totals are never patched in
// place; the quote is the only writer of cart.Summary.
func (s *CartService) save(ctx context.Context, cart *domain.Cart) (*domain.Cart, error) {
	cart.Summary = pricing.Quote(cart.Items, cart.CustomerCountry, cart.IsVatExempt)
	cart.UpdatedAt = time.Now().UTC()

	if err := s.store.Set(ctx, cart.SessionID, cart); err != nil {
		return nil, err
	}
	return cart, nil
}
