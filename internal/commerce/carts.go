package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/leonardcser/storefront-mcp/internal/domain"
)

type cartResponse struct {
	Cart *domain.Cart `json:"cart"`
}

// lineItemDeleteResponse is the body of a line-item deletion; Parent is the
// cart after removal.
type lineItemDeleteResponse struct {
	ID      string       `json:"id"`
	Deleted bool         `json:"deleted"`
	Parent  *domain.Cart `json:"parent"`
}

// Completion is the outcome of completing a cart. Type is "order" on
// success; "cart" means the backend refused and Error explains why.
type Completion struct {
	Type  string        `json:"type"`
	Order *domain.Order `json:"order,omitempty"`
	Cart  *domain.Cart  `json:"cart,omitempty"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

func cartPath(id string, rest ...string) string {
	p := "/store/carts/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + url.PathEscape(r)
	}
	return p
}

var cartQuery = url.Values{"fields": {cartFields}}

func checkCart(op string, c *domain.Cart) (*domain.Cart, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: %s: response without cart", domain.ErrMalformed, op)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Client) GetCart(ctx context.Context, id string) (*domain.Cart, error) {
	var resp cartResponse
	if err := c.do(ctx, http.MethodGet, cartPath(id), cartQuery, nil, &resp); err != nil {
		return nil, err
	}
	return checkCart("get cart", resp.Cart)
}

func (c *Client) CreateCart(ctx context.Context, regionID string) (*domain.Cart, error) {
	var resp cartResponse
	body := map[string]any{"region_id": regionID}
	if err := c.do(ctx, http.MethodPost, "/store/carts", cartQuery, body, &resp); err != nil {
		return nil, err
	}
	return checkCart("create cart", resp.Cart)
}

func (c *Client) AddLineItem(ctx context.Context, cartID, variantID string, quantity int, metadata map[string]any) (*domain.Cart, error) {
	var resp cartResponse
	body := map[string]any{"variant_id": variantID, "quantity": quantity}
	if metadata != nil {
		body["metadata"] = metadata
	}
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "line-items"), cartQuery, body, &resp); err != nil {
		return nil, err
	}
	return checkCart("add line item", resp.Cart)
}

func (c *Client) UpdateLineItem(ctx context.Context, cartID, lineID string, quantity int, metadata map[string]any) (*domain.Cart, error) {
	var resp cartResponse
	body := map[string]any{"quantity": quantity}
	if metadata != nil {
		body["metadata"] = metadata
	}
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "line-items", lineID), cartQuery, body, &resp); err != nil {
		return nil, err
	}
	return checkCart("update line item", resp.Cart)
}

// DeleteLineItem removes a line and returns the parent cart.
func (c *Client) DeleteLineItem(ctx context.Context, cartID, lineID string) (*domain.Cart, error) {
	var resp lineItemDeleteResponse
	if err := c.do(ctx, http.MethodDelete, cartPath(cartID, "line-items", lineID), cartQuery, nil, &resp); err != nil {
		return nil, err
	}
	return checkCart("delete line item", resp.Parent)
}

func (c *Client) AddPromotions(ctx context.Context, cartID string, codes []string) (*domain.Cart, error) {
	var resp cartResponse
	body := map[string]any{"promo_codes": codes}
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "promotions"), cartQuery, body, &resp); err != nil {
		return nil, err
	}
	return checkCart("add promotions", resp.Cart)
}

func (c *Client) RemovePromotions(ctx context.Context, cartID string, codes []string) (*domain.Cart, error) {
	var resp cartResponse
	body := map[string]any{"promo_codes": codes}
	if err := c.do(ctx, http.MethodDelete, cartPath(cartID, "promotions"), cartQuery, body, &resp); err != nil {
		return nil, err
	}
	return checkCart("remove promotions", resp.Cart)
}

func (c *Client) CompleteCart(ctx context.Context, cartID string) (*Completion, error) {
	var resp Completion
	if err := c.do(ctx, http.MethodPost, cartPath(cartID, "complete"), nil, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Type == "order" {
		if resp.Order == nil {
			return nil, fmt.Errorf("%w: completion without order", domain.ErrMalformed)
		}
		if err := resp.Order.Validate(); err != nil {
			return nil, err
		}
	}
	return &resp, nil
}
