package cart

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/storefront-mcp/internal/domain"
)

func TestHubCoalescesPendingEvents(t *testing.T) {
	h := NewHub()
	events, cancel := h.Subscribe()
	defer cancel()

	h.Publish(Event{State: CartExists, Cart: &domain.Cart{ID: "cart_1"}})
	h.Publish(Event{State: CartWithItems, Cart: &domain.Cart{ID: "cart_1"}})

	e := <-events
	assert.Equal(t, CartWithItems, e.State)
	assert.Empty(t, events)
}

func TestHubCancelClosesChannel(t *testing.T) {
	h := NewHub()
	events, cancel := h.Subscribe()
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)
	h.Publish(Event{State: NoCart})
}

func TestServicePublishesMutations(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	events, cancel := f.svc.Hub().Subscribe()
	defer cancel()

	c, err := f.svc.AddItemLine(ctx, "var_mug", 1, nil)
	require.NoError(t, err)
	e := <-events
	assert.Equal(t, CartWithItems, e.State)
	assert.Equal(t, c.ID, e.Cart.ID)

	_, err = f.svc.CompleteOrder(ctx, "")
	require.NoError(t, err)
	e = <-events
	assert.Equal(t, Completed, e.State)
	assert.Nil(t, e.Cart)
}

func TestViewFollowsHub(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	view := NewView(f.gw)
	c, err := view.Refresh(ctx)
	require.NoError(t, err)
	assert.Nil(t, c)

	stop := view.Attach(ctx, f.svc.Hub())
	defer stop()

	added, err := f.svc.AddItemLine(ctx, "var_mug", 3, nil)
	require.NoError(t, err)
	assert.Eventually(t, func() bool {
		snap := view.Snapshot()
		return snap != nil && snap.ID == added.ID && snap.ItemCount() == 3
	}, time.Second, 10*time.Millisecond)

	_, err = f.svc.CompleteOrder(ctx, "")
	require.NoError(t, err)
	assert.Eventually(t, func() bool { return view.Snapshot() == nil }, time.Second, 10*time.Millisecond)
}

func TestViewUnsubscribesWhenContextEnds(t *testing.T) {
	f := newFixture(t)
	hub := f.svc.Hub()
	view := NewView(f.gw)

	ctx, cancel := context.WithCancel(context.Background())
	stop := view.Attach(ctx, hub)
	defer stop()
	require.Equal(t, 1, hub.subscribers())

	cancel()
	assert.Eventually(t, func() bool { return hub.subscribers() == 0 }, time.Second, 5*time.Millisecond)
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "no-cart", NoCart.String())
	assert.Equal(t, "completed", Completed.String())
	assert.Equal(t, "unknown", State(42).String())
}
