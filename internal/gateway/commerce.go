package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/leonardcser/storefront-mcp/internal/domain"
	"github.com/leonardcser/storefront-mcp/internal/logger"
)

var ErrProductNotFound = errors.New("product not found")

// Regions is fetchRegionData.
func (g *Gateway) Regions(ctx context.Context) ([]domain.Region, error) {
	return load(ctx, g, KeyRegions, "regions", emptySlice[domain.Region], g.src.Commerce.ListRegions)
}

// RegionID returns the id of the first region, or "" when there is none.
func (g *Gateway) RegionID(ctx context.Context) (string, error) {
	regions, err := g.Regions(ctx)
	if err != nil {
		return "", err
	}
	if len(regions) == 0 {
		return "", nil
	}
	return regions[0].ID, nil
}

// Region returns the first region.
func (g *Gateway) Region(ctx context.Context) (domain.Region, bool, error) {
	regions, err := g.Regions(ctx)
	if err != nil || len(regions) == 0 {
		return domain.Region{}, false, err
	}
	return regions[0], true, nil
}

// Products is fetchProductData. Prices are resolved for the first region.
func (g *Gateway) Products(ctx context.Context) ([]domain.Product, error) {
	regionID, err := g.RegionID(ctx)
	if err != nil {
		return nil, err
	}
	return load(ctx, g, KeyProducts, "products", emptySlice[domain.Product], func(ctx context.Context) ([]domain.Product, error) {
		return g.src.Commerce.ListProducts(ctx, regionID)
	})
}

// ProductDetails is fetchProductDetails. A fresh product list satisfies
// the lookup without a network call; a fetched product is merged back into
// the cached list rather than replacing it.
func (g *Gateway) ProductDetails(ctx context.Context, id string) (*domain.Product, error) {
	regionID, err := g.RegionID(ctx)
	if err != nil {
		return nil, err
	}
	v, err := g.share(ctx, KeyProducts+"#"+id, func(ctx context.Context) (any, error) {
		var list []domain.Product
		ok, err := g.fresh(ctx, KeyProducts, &list)
		if err != nil {
			return nil, err
		}
		if ok {
			if p, found := findProduct(list, id); found {
				logger.Infof("[products] serving product %s from cache", id)
				return &p, nil
			}
		}

		logger.Infof("[products] fetching product %s from API", id)
		p, err := g.src.Commerce.GetProduct(ctx, id, regionID)
		if err != nil {
			logger.Errorf("[products] fetch product %s failed: %v", id, err)
			return nil, err
		}
		if p != nil {
			return p, g.mergeProduct(*p)
		}

		logger.Warnf("[products] empty response for product %s, serving cached value", id)
		list = nil
		if _, err := g.cache.Get(KeyProducts, &list); err != nil {
			return nil, err
		}
		if cached, found := findProduct(list, id); found {
			return &cached, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrProductNotFound, id)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Product), nil
}

// mergeProduct updates p in the cached product list in place, appending it
// when absent.
func (g *Gateway) mergeProduct(p domain.Product) error {
	var list []domain.Product
	if _, err := g.cache.Get(KeyProducts, &list); err != nil {
		return err
	}
	replaced := false
	for i := range list {
		if list[i].ID == p.ID {
			list[i] = p
			replaced = true
		}
	}
	if !replaced {
		list = append(list, p)
	}
	return g.cache.Set(KeyProducts, list)
}

func findProduct(list []domain.Product, id string) (domain.Product, bool) {
	for _, p := range list {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

// Cart is fetchCartData. It returns nil when no cart is cached. A stale
// cart is re-pulled from the backend by id; the server snapshot replaces
// the cached one only when it has items.
func (g *Gateway) Cart(ctx context.Context) (*domain.Cart, error) {
	var cached domain.Cart
	ok, err := g.cache.Get(KeyCart, &cached)
	if err != nil || !ok || cached.ID == "" {
		return nil, err
	}
	v, err := g.share(ctx, KeyCart, func(ctx context.Context) (any, error) {
		valid, err := g.cache.IsValid(KeyCart, g.expiry)
		if err != nil {
			return nil, err
		}
		if valid && !forced(ctx) {
			logger.Infof("[cart] serving cart %s from cache", cached.ID)
			return &cached, nil
		}

		logger.Infof("[cart] fetching cart %s from API", cached.ID)
		remote, err := g.src.Commerce.GetCart(ctx, cached.ID)
		if err != nil {
			logger.Errorf("[cart] fetch cart %s failed: %v", cached.ID, err)
			return nil, err
		}
		if len(remote.Items) > 0 {
			return remote, g.cache.Set(KeyCart, remote)
		}
		logger.Warnf("[cart] cart %s came back empty, serving cached value", cached.ID)
		return &cached, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Cart), nil
}
