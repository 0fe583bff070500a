package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/leonardcser/storefront-mcp/internal/domain"
)

func (c *Client) ListRegions(ctx context.Context) ([]domain.Region, error) {
	var resp struct {
		Regions []domain.Region `json:"regions"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/regions", nil, nil, &resp); err != nil {
		return nil, err
	}
	if err := domain.ValidateAll(resp.Regions); err != nil {
		return nil, err
	}
	return resp.Regions, nil
}

func productQuery(regionID string) url.Values {
	q := url.Values{"fields": {productFields}}
	if regionID != "" {
		q.Set("region_id", regionID)
	}
	return q
}

func (c *Client) ListProducts(ctx context.Context, regionID string) ([]domain.Product, error) {
	var resp struct {
		Products []domain.Product `json:"products"`
	}
	if err := c.do(ctx, http.MethodGet, "/store/products", productQuery(regionID), nil, &resp); err != nil {
		return nil, err
	}
	if err := domain.ValidateAll(resp.Products); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct returns nil without error when the backend answers with an
// empty product.
func (c *Client) GetProduct(ctx context.Context, id, regionID string) (*domain.Product, error) {
	var resp struct {
		Product *domain.Product `json:"product"`
	}
	path := fmt.Sprintf("/store/products/%s", url.PathEscape(id))
	if err := c.do(ctx, http.MethodGet, path, productQuery(regionID), nil, &resp); err != nil {
		return nil, err
	}
	if resp.Product == nil {
		return nil, nil
	}
	if err := resp.Product.Validate(); err != nil {
		return nil, err
	}
	return resp.Product, nil
}
