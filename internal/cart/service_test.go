package cart

import (
	"context"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/leonardcser/storefront-mcp/internal/cache"
	"github.com/leonardcser/storefront-mcp/internal/commerce"
	"github.com/leonardcser/storefront-mcp/internal/commerce/commercetest"
	"github.com/leonardcser/storefront-mcp/internal/domain"
	"github.com/leonardcser/storefront-mcp/internal/gateway"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m, goleak.IgnoreTopFunction("net/http.(*persistConn).writeLoop"),
		goleak.IgnoreTopFunction("net/http.(*persistConn).readLoop"),
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"))
}

type fixture struct {
	svc *Service
	gw  *gateway.Gateway
	srv *commercetest.Server
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store, err := cache.OpenBolt(filepath.Join(t.TempDir(), "cache.db"), cache.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	srv := commercetest.Catalog()
	t.Cleanup(srv.Close)

	client := commerce.New(srv.URL, "", time.Second)
	c := cache.New(store)
	gw := gateway.New(c, gateway.Sources{Commerce: client}, 0)
	return &fixture{svc: NewService(c, client, gw, nil), gw: gw, srv: srv}
}

func (f *fixture) cached(t *testing.T) *domain.Cart {
	t.Helper()
	c, err := f.svc.Current()
	require.NoError(t, err)
	return c
}

func sameCart(t *testing.T, want, got *domain.Cart) {
	t.Helper()
	if diff := cmp.Diff(want, got, cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })); diff != "" {
		t.Fatalf("cart mismatch (-want +got):\n%s", diff)
	}
}

func TestAddItemLineCreatesCartOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddItemLine(ctx, "var_red_s", 1, nil)
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, "reg_1", c.RegionID)
	assert.Equal(t, 1, f.srv.Calls(commercetest.CreateCart))

	c, err = f.svc.AddItemLine(ctx, "var_mug", 2, nil)
	require.NoError(t, err)
	assert.Len(t, c.Items, 2)
	assert.Equal(t, 1, f.srv.Calls(commercetest.CreateCart))
	assert.Equal(t, 2, f.srv.Calls(commercetest.AddLineItem))

	sameCart(t, c, f.cached(t))
	state, err := f.svc.State()
	require.NoError(t, err)
	assert.Equal(t, CartWithItems, state)
}

func TestAddItemLineSendsMetadata(t *testing.T) {
	f := newFixture(t)
	recipient := gofakeit.Email()

	c, err := f.svc.AddItemLine(context.Background(), "var_mug", 1, map[string]any{"gift_to": recipient})
	require.NoError(t, err)
	body := f.srv.LastBody(commercetest.AddLineItem)
	assert.Equal(t, map[string]any{"gift_to": recipient}, body["metadata"])
	assert.Equal(t, recipient, c.Items[0].Metadata["gift_to"])
}

func TestAddItemLineWithoutRegion(t *testing.T) {
	f := newFixture(t)
	f.srv.SetRegions(nil)

	_, err := f.svc.AddItemLine(context.Background(), "var_mug", 1, nil)
	assert.ErrorIs(t, err, ErrRegionUnavailable)
	assert.Zero(t, f.srv.Calls(commercetest.CreateCart))
	assert.Nil(t, f.cached(t))
}

func TestInvalidQuantities(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItemLine(ctx, "var_mug", 0, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	_, err = f.svc.UpdateItemLine(ctx, "li_1", -1, nil)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
	assert.Zero(t, f.srv.TotalCalls())
}

func TestMutationsWithoutCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.UpdateItemLine(ctx, "li_1", 2, nil)
	assert.ErrorIs(t, err, ErrNoCart)
	_, err = f.svc.DeleteItemLine(ctx, "li_1")
	assert.ErrorIs(t, err, ErrNoCart)
	_, err = f.svc.ApplyPromotion(ctx, "WELCOME10")
	assert.ErrorIs(t, err, ErrNoCart)
	_, err = f.svc.CompleteOrder(ctx, "")
	assert.ErrorIs(t, err, ErrNoCart)
	_, err = f.svc.Checkout(ctx, "pp_system_default")
	assert.ErrorIs(t, err, ErrNoCart)
	assert.Zero(t, f.srv.TotalCalls())
}

func TestUpdateItemLineCachesServerCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	start := domain.Cart{ID: "cart_1", RegionID: "reg_1", Items: []domain.LineItem{
		{ID: "li_1", VariantID: "var_mug", ProductID: "p_mug", Quantity: 2, UnitPrice: decimal.NewFromInt(25)},
	}}
	f.srv.PutCart(start)
	require.NoError(t, f.gw.Cache().Set(gateway.KeyCart, start))

	c, err := f.svc.UpdateItemLine(ctx, "li_1", 5, map[string]any{})
	require.NoError(t, err)
	require.Len(t, c.Items, 1)
	assert.Equal(t, 5, c.Items[0].Quantity)
	assert.Equal(t, 5, f.cached(t).Items[0].Quantity)
}

func TestUpdateToZeroDeletesLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)

	c, err = f.svc.UpdateItemLine(ctx, c.Items[0].ID, 0, nil)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 1, f.srv.Calls(commercetest.DeleteLineItem))
	assert.Zero(t, f.srv.Calls(commercetest.UpdateLineItem))
}

func TestEmptyMutationKeepsCachedCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)
	f.srv.SetEmptyMutations(true)

	events, cancel := f.svc.Hub().Subscribe()
	defer cancel()

	got, err := f.svc.AddItemLine(ctx, "var_red_s", 1, nil)
	require.NoError(t, err)
	sameCart(t, before, got)

	got, err = f.svc.UpdateItemLine(ctx, before.Items[0].ID, 4, nil)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Items[0].Quantity)
	sameCart(t, before, f.cached(t))
	assert.Empty(t, events)
}

func TestDeleteItemLineTrustsEmptyCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)

	c, err = f.svc.DeleteItemLine(ctx, c.Items[0].ID)
	require.NoError(t, err)
	assert.Empty(t, c.Items)

	cached := f.cached(t)
	require.NotNil(t, cached)
	assert.Empty(t, cached.Items)
	state, err := f.svc.State()
	require.NoError(t, err)
	assert.Equal(t, CartExists, state)
}

func TestFailedMutationLeavesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	before, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)

	f.srv.FailNext(commercetest.UpdateLineItem, http.StatusInternalServerError)
	_, err = f.svc.UpdateItemLine(ctx, before.Items[0].ID, 3, nil)
	require.Error(t, err)
	assert.True(t, commerce.IsStatus(err, http.StatusInternalServerError))
	sameCart(t, before, f.cached(t))
}

func TestCompleteOrderClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	first, err := f.svc.AddItemLine(ctx, "var_mug", 2, nil)
	require.NoError(t, err)

	order, err := f.svc.CompleteOrder(ctx, first.ID)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(50).Equal(order.Total))

	c, err := f.gw.Cart(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)
	state, err := f.svc.State()
	require.NoError(t, err)
	assert.Equal(t, Completed, state)

	second, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, f.srv.Calls(commercetest.CreateCart))

	state, err = f.svc.State()
	require.NoError(t, err)
	assert.Equal(t, CartWithItems, state)
}

func TestRefusedCompletionStillClearsCart(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)
	_, err = f.svc.DeleteItemLine(ctx, c.Items[0].ID)
	require.NoError(t, err)

	_, err = f.svc.CompleteOrder(ctx, "")
	var cerr *CompletionError
	require.ErrorAs(t, err, &cerr)
	assert.Equal(t, c.ID, cerr.CartID)
	assert.Equal(t, "cart has no items", cerr.Message)
	assert.Nil(t, f.cached(t))

	state, err := f.svc.State()
	require.NoError(t, err)
	assert.Equal(t, NoCart, state)
}

func TestCompletedStateSharedThroughStore(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)
	_, err = f.svc.CompleteOrder(ctx, "")
	require.NoError(t, err)

	other := NewService(f.gw.Cache(), commerce.New(f.srv.URL, "", time.Second), f.gw, nil)
	state, err := other.State()
	require.NoError(t, err)
	assert.Equal(t, Completed, state)

	_, err = other.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)
	state, err = f.svc.State()
	require.NoError(t, err)
	assert.Equal(t, CartWithItems, state)
}

func TestPromotions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.AddItemLine(ctx, "var_mug", 2, nil)
	require.NoError(t, err)

	c, err := f.svc.ApplyPromotion(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.Equal(t, []string{"WELCOME10"}, c.PromotionCodes())
	assert.True(t, decimal.NewFromInt(45).Equal(c.Total))

	_, err = f.svc.ApplyPromotion(ctx, "INVALID")
	assert.True(t, commerce.IsStatus(err, http.StatusBadRequest))
	assert.Equal(t, []string{"WELCOME10"}, f.cached(t).PromotionCodes())

	c, err = f.svc.RemovePromotion(ctx, "WELCOME10")
	require.NoError(t, err)
	assert.Empty(t, c.PromotionCodes())
	assert.True(t, decimal.NewFromInt(50).Equal(f.cached(t).Total))
}

func TestCheckout(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	providers, err := f.svc.PaymentProviders(ctx)
	require.NoError(t, err)
	require.Len(t, providers, 1)

	_, err = f.svc.AddItemLine(ctx, "var_blue_s", 1, nil)
	require.NoError(t, err)

	order, err := f.svc.Checkout(ctx, providers[0].ID)
	require.NoError(t, err)
	assert.NotEmpty(t, order.ID)
	assert.Equal(t, "reg_1", f.srv.LastQuery(commercetest.PaymentProviders)[len("region_id="):])
	assert.Equal(t, 1, f.srv.Calls(commercetest.PaymentSession))
	assert.Nil(t, f.cached(t))
}
