package cart

import (
	"context"
	"sync"

	"github.com/leonardcser/storefront-mcp/internal/domain"
	"github.com/leonardcser/storefront-mcp/internal/logger"
)

// Loader reads the cached cart, re-pulling it when stale.
type Loader interface {
	Cart(ctx context.Context) (*domain.Cart, error)
}

// View holds the cart snapshot an observer renders from. It never mutates
// the cart; it re-reads it through the loader.
type View struct {
	loader Loader

	mu   sync.RWMutex
	cart *domain.Cart
}

func NewView(l Loader) *View {
	return &View{loader: l}
}

// Refresh re-pulls the cart and replaces the snapshot. On error the
// previous snapshot is kept.
func (v *View) Refresh(ctx context.Context) (*domain.Cart, error) {
	c, err := v.loader.Cart(ctx)
	if err != nil {
		return nil, err
	}
	v.mu.Lock()
	v.cart = c
	v.mu.Unlock()
	return c, nil
}

// Snapshot returns the last pulled cart, nil when there is none.
func (v *View) Snapshot() *domain.Cart {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.cart
}

// Attach refreshes the view on every hub event until ctx is done or the
// returned stop func is called. stop waits for the refresh loop to exit.
func (v *View) Attach(ctx context.Context, h *Hub) (stop func()) {
	events, cancel := h.Subscribe()
	ctx, cancelCtx := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-events:
				if !ok {
					return
				}
				if _, err := v.Refresh(ctx); err != nil {
					logger.Warnf("[cart] view refresh failed: %v", err)
				}
			}
		}
	}()
	return func() {
		cancelCtx()
		cancel()
		<-done
	}
}
