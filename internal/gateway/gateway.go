// Package gateway serves storefront reads cache-first.
//
// Every loader follows the same protocol: a fresh cache entry is returned
// without touching the network; otherwise the remote source is called and a
// non-empty result overwrites the entry. An empty result falls back to
// whatever is cached, even if stale. Remote errors are returned as-is and
// never retried.
package gateway

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/leonardcser/storefront-mcp/internal/cache"
	"github.com/leonardcser/storefront-mcp/internal/cms"
	"github.com/leonardcser/storefront-mcp/internal/domain"
	"github.com/leonardcser/storefront-mcp/internal/logger"
)

// Cache keys.
const (
	KeyRegions  = "regionsData"
	KeyProducts = "productData"
	KeyCart     = "cartData"
	KeySections = "sectionsWithCategories"
)

// ErrUnavailable is returned by loaders whose remote source is not
// configured.
var ErrUnavailable = errors.New("gateway: source not configured")

type Commerce interface {
	ListRegions(ctx context.Context) ([]domain.Region, error)
	ListProducts(ctx context.Context, regionID string) ([]domain.Product, error)
	GetProduct(ctx context.Context, id, regionID string) (*domain.Product, error)
	GetCart(ctx context.Context, id string) (*domain.Cart, error)
}

type Content interface {
	About(ctx context.Context, locale string) (*cms.About, error)
	CSR(ctx context.Context, locale string) (*cms.CSR, error)
	Contact(ctx context.Context, locale string) (*cms.Contact, error)
	FAQs(ctx context.Context, locale string) ([]cms.FAQ, error)
	Legals(ctx context.Context, locale string) ([]cms.Legal, error)
	News(ctx context.Context, locale string) ([]cms.NewsArticle, error)
	HomeSliders(ctx context.Context, locale string) ([]cms.HomeSlider, error)
}

type RPC interface {
	RPC(ctx context.Context, fn string, args, out any) error
}

// Sources are the remote collaborators. Content and RPC may be nil.
type Sources struct {
	Commerce Commerce
	Content  Content
	RPC      RPC
}

type Gateway struct {
	cache  *cache.Cache
	src    Sources
	expiry time.Duration
	sf     singleflight.Group
}

// New returns a gateway over c. expiry <= 0 means cache.DefaultExpiry.
func New(c *cache.Cache, src Sources, expiry time.Duration) *Gateway {
	if expiry <= 0 {
		expiry = cache.DefaultExpiry
	}
	return &Gateway{cache: c, src: src, expiry: expiry}
}

// Cache exposes the underlying envelope cache.
func (g *Gateway) Cache() *cache.Cache { return g.cache }

type forceKey struct{}

// Force marks ctx so that loaders skip the freshness check and go to the
// network, as a pull-to-refresh would. Empty results still fall back to
// the cache.
func Force(ctx context.Context) context.Context {
	return context.WithValue(ctx, forceKey{}, true)
}

func forced(ctx context.Context) bool {
	v, _ := ctx.Value(forceKey{}).(bool)
	return v
}

// fresh reports whether key holds a fresh entry and decodes it into dst.
func (g *Gateway) fresh(ctx context.Context, key string, dst any) (bool, error) {
	if forced(ctx) {
		return false, nil
	}
	valid, err := g.cache.IsValid(key, g.expiry)
	if err != nil || !valid {
		return false, err
	}
	return g.cache.Get(key, dst)
}

// share runs fn once per flight key. The flight runs on a context detached
// from the caller's cancellation, so one caller giving up does not fail the
// others; each caller still returns as soon as its own ctx is done. Forced
// loads never join a plain flight.
func (g *Gateway) share(ctx context.Context, key string, fn func(context.Context) (any, error)) (any, error) {
	if forced(ctx) {
		key += "|force"
	}
	flight := context.WithoutCancel(ctx)
	ch := g.sf.DoChan(key, func() (any, error) { return fn(flight) })
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case r := <-ch:
		return r.Val, r.Err
	}
}

// load runs the cache-first protocol for one key. Concurrent loads of the
// same key share one remote call.
func load[T any](ctx context.Context, g *Gateway, key, name string, empty func(T) bool, fetch func(context.Context) (T, error)) (T, error) {
	v, err := g.share(ctx, key, func(ctx context.Context) (any, error) {
		var cached T
		ok, err := g.fresh(ctx, key, &cached)
		if err != nil {
			return cached, err
		}
		if ok {
			logger.Infof("[%s] serving %s from cache", name, key)
			return cached, nil
		}

		logger.Infof("[%s] fetching %s from API", name, key)
		result, err := fetch(ctx)
		if err != nil {
			logger.Errorf("[%s] fetch %s failed: %v", name, key, err)
			return result, err
		}
		if !empty(result) {
			return result, g.cache.Set(key, result)
		}

		logger.Warnf("[%s] empty response for %s, serving cached value", name, key)
		var stale T
		_, err = g.cache.Get(key, &stale)
		return stale, err
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

func emptySlice[T any](s []T) bool { return len(s) == 0 }

func nilPtr[T any](p *T) bool { return p == nil }
