package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kosuite/shopcore/internal/cartstore"
	"github.com/kosuite/shopcore/internal/domain"
)

func newCartFixture(t *testing.T) *CartService {
	t.Helper()
	return NewCartService(cartstore.NewMemoryStore(), zap.NewNop())
}

func thermoItem(qty int) domain.CartItem {
	return domain.CartItem{
		ProductID:   "prod-thermo",
		VariantID:   "var-250",
		VariantName: "250 pack",
		Price:       decimal.RequireFromString("35.00"),
		Quantity:    qty,
	}
}

func TestCart_AddItemRecomputesTotals(t *testing.T) {
	svc := newCartFixture(t)
	ctx := context.Background()

	cart, err := svc.AddItem(ctx, "sess-1", thermoItem(1))
	require.NoError(t, err)
	assert.True(t, cart.Summary.Subtotal.Equal(decimal.RequireFromString("35.00")))
	assert.True(t, cart.Summary.ShippingCost.Equal(decimal.RequireFromString("4.99")))

	// Second add merges into the existing line and crosses the
	// free-shipping threshold.
	cart, err = svc.AddItem(ctx, "sess-1", thermoItem(1))
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.True(t, cart.Summary.Subtotal.Equal(decimal.RequireFromString("70.00")))
	assert.True(t, cart.Summary.ShippingCost.IsZero())
	assert.True(t, cart.Summary.Total.Equal(decimal.RequireFromString("84.00")))
}

func TestCart_UpdateQuantityBelowOneRemovesLine(t *testing.T) {
	svc := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", thermoItem(2))
	require.NoError(t, err)

	cart, err := svc.UpdateQuantity(ctx, "sess-1", "var-250", 0)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.True(t, cart.Summary.Subtotal.IsZero())
}

func TestCart_RemoveUnknownVariant(t *testing.T) {
	svc := newCartFixture(t)

	_, err := svc.RemoveItem(context.Background(), "sess-1", "var-nope")
	assert.Error(t, err)
}

func TestCart_SetDestinationRepricesCart(t *testing.T) {
	svc := newCartFixture(t)
	ctx := context.Background()

	_, err := svc.AddItem(ctx, "sess-1", thermoItem(2))
	require.NoError(t, err)

	cart, err := svc.SetDestination(ctx, "sess-1", "FR", false)
	require.NoError(t, err)
	assert.True(t, cart.Summary.TaxAmount.IsZero(), "exports are zero-rated")
	assert.True(t, cart.Summary.ShippingCost.Equal(decimal.RequireFromString("12.50")))

	cart, err = svc.SetDestination(ctx, "sess-1", "GB", true)
	require.NoError(t, err)
	assert.True(t, cart.Summary.TaxAmount.IsZero(), "VAT exemption zeroes tax")
	assert.True(t, cart.Summary.ShippingCost.IsZero())
}

func TestCart_GetMaterializesEmptyCart(t *testing.T) {
	svc := newCartFixture(t)

	cart, err := svc.Get(context.Background(), "fresh-session")
	require.NoError(t, err)
	assert.Equal(t, "GB", cart.CustomerCountry)
	assert.Empty(t, cart.Items)
}

func TestCart_AddItemRejectsZeroQuantity(t *testing.T) {
	svc := newCartFixture(t)

	_, err := svc.AddItem(context.Background(), "sess-1", thermoItem(0))
	assert.Error(t, err)
}
