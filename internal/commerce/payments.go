package commerce

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/leonardcser/storefront-mcp/internal/domain"
)

func (c *Client) ListPaymentProviders(ctx context.Context, regionID string) ([]domain.PaymentProvider, error) {
	var resp struct {
		PaymentProviders []domain.PaymentProvider `json:"payment_providers"`
	}
	q := url.Values{"region_id": {regionID}}
	if err := c.do(ctx, http.MethodGet, "/store/payment-providers", q, nil, &resp); err != nil {
		return nil, err
	}
	if err := domain.ValidateAll(resp.PaymentProviders); err != nil {
		return nil, err
	}
	return resp.PaymentProviders, nil
}

type paymentCollectionResponse struct {
	PaymentCollection *struct {
		ID string `json:"id"`
	} `json:"payment_collection"`
}

// CreatePaymentCollection opens a payment collection for cartID and returns
// its id.
func (c *Client) CreatePaymentCollection(ctx context.Context, cartID string) (string, error) {
	var resp paymentCollectionResponse
	body := map[string]any{"cart_id": cartID}
	if err := c.do(ctx, http.MethodPost, "/store/payment-collections", nil, body, &resp); err != nil {
		return "", err
	}
	if resp.PaymentCollection == nil || resp.PaymentCollection.ID == "" {
		return "", fmt.Errorf("%w: payment collection without id", domain.ErrMalformed)
	}
	return resp.PaymentCollection.ID, nil
}

// CreatePaymentSession initializes a session with providerID on the
// collection.
func (c *Client) CreatePaymentSession(ctx context.Context, collectionID, providerID string) error {
	path := fmt.Sprintf("/store/payment-collections/%s/payment-sessions", url.PathEscape(collectionID))
	body := map[string]any{"provider_id": providerID}
	return c.do(ctx, http.MethodPost, path, nil, body, nil)
}
