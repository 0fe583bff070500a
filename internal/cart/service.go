// Package cart keeps the session cart in sync with the commerce backend.
//
// The service is the only writer of the cached cart entry. Mutations go to
// the backend first and the cache is updated from the backend's answer; a
// failed call leaves the last cached cart authoritative. There is no
// locking: concurrent mutations race and the last response to land wins.
package cart

import (
	"context"

	"github.com/leonardcser/storefront-mcp/internal/cache"
	"github.com/leonardcser/storefront-mcp/internal/commerce"
	"github.com/leonardcser/storefront-mcp/internal/domain"
	"github.com/leonardcser/storefront-mcp/internal/gateway"
	"github.com/leonardcser/storefront-mcp/internal/logger"
)

// KeyCompleted holds the id of the last completed order until the next cart
// is created. It lives in the shared store so every process sharing the
// cache reports the same state.
const KeyCompleted = "completedOrder"

// Backend is the subset of the commerce API the service drives.
type Backend interface {
	CreateCart(ctx context.Context, regionID string) (*domain.Cart, error)
	AddLineItem(ctx context.Context, cartID, variantID string, quantity int, metadata map[string]any) (*domain.Cart, error)
	UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int, metadata map[string]any) (*domain.Cart, error)
	DeleteLineItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error)
	AddPromotions(ctx context.Context, cartID string, codes []string) (*domain.Cart, error)
	RemovePromotions(ctx context.Context, cartID string, codes []string) (*domain.Cart, error)
	CompleteCart(ctx context.Context, cartID string) (*commerce.Completion, error)
	ListPaymentProviders(ctx context.Context, regionID string) ([]domain.PaymentProvider, error)
	CreatePaymentCollection(ctx context.Context, cartID string) (string, error)
	CreatePaymentSession(ctx context.Context, collectionID, providerID string) error
}

// RegionSource resolves the region new carts are created in.
type RegionSource interface {
	Region(ctx context.Context) (domain.Region, bool, error)
}

type Service struct {
	cache   *cache.Cache
	backend Backend
	regions RegionSource
	hub     *Hub
}

// NewService wires a cart service. hub may be nil.
func NewService(c *cache.Cache, backend Backend, regions RegionSource, hub *Hub) *Service {
	if hub == nil {
		hub = NewHub()
	}
	return &Service{cache: c, backend: backend, regions: regions, hub: hub}
}

func (s *Service) Hub() *Hub { return s.hub }

// Current returns the cached cart, or nil.
func (s *Service) Current() (*domain.Cart, error) {
	var c domain.Cart
	ok, err := s.cache.Get(gateway.KeyCart, &c)
	if err != nil || !ok || c.ID == "" {
		return nil, err
	}
	return &c, nil
}

func (s *Service) State() (State, error) {
	c, err := s.Current()
	if err != nil {
		return NoCart, err
	}
	if c == nil {
		done, err := s.cache.Has(KeyCompleted)
		if err != nil || !done {
			return NoCart, err
		}
		return Completed, nil
	}
	switch {
	case len(c.Items) > 0:
		return CartWithItems, nil
	default:
		return CartExists, nil
	}
}

func (s *Service) createCart(ctx context.Context) (*domain.Cart, error) {
	region, ok, err := s.regions.Region(ctx)
	if err != nil {
		logger.Errorf("[cart] resolve region failed: %v", err)
		return nil, err
	}
	if !ok || region.ID == "" {
		return nil, ErrRegionUnavailable
	}
	c, err := s.backend.CreateCart(ctx, region.ID)
	if err != nil {
		logger.Errorf("[cart] create cart in %s failed: %v", region.ID, err)
		return nil, err
	}
	if err := s.cache.Set(gateway.KeyCart, c); err != nil {
		return nil, err
	}
	if err := s.cache.Clear(KeyCompleted); err != nil {
		return nil, err
	}
	logger.Infof("[cart] created cart %s in region %s", c.ID, region.ID)
	return c, nil
}

func (s *Service) requireCart() (*domain.Cart, error) {
	c, err := s.Current()
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, ErrNoCart
	}
	return c, nil
}

// AddItemLine adds quantity units of a variant, creating the cart first
// when none is cached.
func (s *Service) AddItemLine(ctx context.Context, variantID string, quantity int, metadata map[string]any) (*domain.Cart, error) {
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	c, err := s.Current()
	if err != nil {
		return nil, err
	}
	if c == nil {
		if c, err = s.createCart(ctx); err != nil {
			return nil, err
		}
	}
	updated, err := s.backend.AddLineItem(ctx, c.ID, variantID, quantity, metadata)
	if err != nil {
		logger.Errorf("[cart] add %s to cart %s failed: %v", variantID, c.ID, err)
		return nil, err
	}
	return s.keepUnlessEmpty("add line item", updated)
}

// UpdateItemLine sets the quantity of a line. Quantity 0 removes the line.
func (s *Service) UpdateItemLine(ctx context.Context, lineID string, quantity int, metadata map[string]any) (*domain.Cart, error) {
	if quantity < 0 {
		return nil, ErrInvalidQuantity
	}
	if quantity == 0 {
		return s.DeleteItemLine(ctx, lineID)
	}
	c, err := s.requireCart()
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.UpdateLineItem(ctx, c.ID, lineID, quantity, metadata)
	if err != nil {
		logger.Errorf("[cart] update line %s in cart %s failed: %v", lineID, c.ID, err)
		return nil, err
	}
	return s.keepUnlessEmpty("update line item", updated)
}

// DeleteItemLine removes a line. The backend's parent cart is cached even
// when it has no items left.
func (s *Service) DeleteItemLine(ctx context.Context, lineID string) (*domain.Cart, error) {
	c, err := s.requireCart()
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.DeleteLineItem(ctx, c.ID, lineID)
	if err != nil {
		logger.Errorf("[cart] delete line %s from cart %s failed: %v", lineID, c.ID, err)
		return nil, err
	}
	return updated, s.store(updated)
}

func (s *Service) ApplyPromotion(ctx context.Context, codes ...string) (*domain.Cart, error) {
	c, err := s.requireCart()
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.AddPromotions(ctx, c.ID, codes)
	if err != nil {
		logger.Errorf("[cart] apply promotions %v to cart %s failed: %v", codes, c.ID, err)
		return nil, err
	}
	return s.keepUnlessEmpty("apply promotion", updated)
}

func (s *Service) RemovePromotion(ctx context.Context, codes ...string) (*domain.Cart, error) {
	c, err := s.requireCart()
	if err != nil {
		return nil, err
	}
	updated, err := s.backend.RemovePromotions(ctx, c.ID, codes)
	if err != nil {
		logger.Errorf("[cart] remove promotions %v from cart %s failed: %v", codes, c.ID, err)
		return nil, err
	}
	return s.keepUnlessEmpty("remove promotion", updated)
}

// keepUnlessEmpty caches updated when it has items. An empty answer to a
// mutation that cannot empty the cart is not trusted: the cached cart is
// returned unchanged instead.
func (s *Service) keepUnlessEmpty(op string, updated *domain.Cart) (*domain.Cart, error) {
	if len(updated.Items) > 0 {
		return updated, s.store(updated)
	}
	logger.Warnf("[cart] %s on cart %s returned no items, keeping cached cart", op, updated.ID)
	return s.Current()
}

func (s *Service) store(c *domain.Cart) error {
	if err := s.cache.Set(gateway.KeyCart, c); err != nil {
		return err
	}
	state := CartExists
	if len(c.Items) > 0 {
		state = CartWithItems
	}
	s.hub.Publish(Event{State: state, Cart: c})
	return nil
}

// CompleteOrder turns the cart into an order and forgets it. cartID may be
// empty to complete the cached cart. Any successful answer clears the cached
// cart, including one that is not an order (for example a payment that still
// needs action): that case returns a *CompletionError and leaves the service
// in NoCart rather than Completed. The next AddItemLine starts a new cart.
func (s *Service) CompleteOrder(ctx context.Context, cartID string) (*domain.Order, error) {
	if cartID == "" {
		c, err := s.requireCart()
		if err != nil {
			return nil, err
		}
		cartID = c.ID
	}
	res, err := s.backend.CompleteCart(ctx, cartID)
	if err != nil {
		logger.Errorf("[cart] complete cart %s failed: %v", cartID, err)
		return nil, err
	}
	if err := s.cache.Clear(gateway.KeyCart); err != nil {
		return nil, err
	}
	if res.Type != "order" {
		cerr := &CompletionError{CartID: cartID}
		if res.Error != nil {
			cerr.Message = res.Error.Message
		}
		logger.Errorf("[cart] %v", cerr)
		s.hub.Publish(Event{State: NoCart})
		return nil, cerr
	}
	if err := s.cache.Set(KeyCompleted, res.Order.ID); err != nil {
		return nil, err
	}
	logger.Infof("[cart] cart %s completed as order %s", cartID, res.Order.ID)
	s.hub.Publish(Event{State: Completed})
	return res.Order, nil
}

// PaymentProviders lists providers for the cart's region, or the default
// region when there is no cart.
func (s *Service) PaymentProviders(ctx context.Context) ([]domain.PaymentProvider, error) {
	c, err := s.Current()
	if err != nil {
		return nil, err
	}
	regionID := ""
	if c != nil {
		regionID = c.RegionID
	}
	if regionID == "" {
		region, ok, err := s.regions.Region(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrRegionUnavailable
		}
		regionID = region.ID
	}
	providers, err := s.backend.ListPaymentProviders(ctx, regionID)
	if err != nil {
		logger.Errorf("[cart] list payment providers for %s failed: %v", regionID, err)
		return nil, err
	}
	return providers, nil
}

// Checkout opens a payment collection for the cached cart, initializes a
// session with providerID and completes the order.
func (s *Service) Checkout(ctx context.Context, providerID string) (*domain.Order, error) {
	c, err := s.requireCart()
	if err != nil {
		return nil, err
	}
	collectionID, err := s.backend.CreatePaymentCollection(ctx, c.ID)
	if err != nil {
		logger.Errorf("[cart] create payment collection for %s failed: %v", c.ID, err)
		return nil, err
	}
	if err := s.backend.CreatePaymentSession(ctx, collectionID, providerID); err != nil {
		logger.Errorf("[cart] create %s payment session for %s failed: %v", providerID, c.ID, err)
		return nil, err
	}
	return s.CompleteOrder(ctx, c.ID)
}
