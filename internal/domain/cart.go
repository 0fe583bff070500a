package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Cart is the server's view of a shopper's cart. Aggregates are computed
// by the backend after every mutation and never recomputed locally.
type Cart struct {
	ID            string          `json:"id"`
	RegionID      string          `json:"region_id"`
	CurrencyCode  string          `json:"currency_code,omitempty"`
	Email         string          `json:"email,omitempty"`
	Items         []LineItem      `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	DiscountTotal decimal.Decimal `json:"discount_total"`
	Total         decimal.Decimal `json:"total"`
	Promotions    []Promotion     `json:"promotions,omitempty"`
	CompletedAt   *time.Time      `json:"completed_at,omitempty"`
}

type LineItem struct {
	ID           string          `json:"id"`
	VariantID    string          `json:"variant_id"`
	ProductID    string          `json:"product_id"`
	Title        string          `json:"title,omitempty"`
	ProductTitle string          `json:"product_title,omitempty"`
	VariantTitle string          `json:"variant_title,omitempty"`
	Thumbnail    string          `json:"thumbnail,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
}

type Promotion struct {
	ID   string `json:"id"`
	Code string `json:"code"`
}

// Subtotal is the undiscounted price of the line.
func (li LineItem) Subtotal() decimal.Decimal {
	return li.UnitPrice.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// Line returns the line item with the given line id.
func (c Cart) Line(id string) (LineItem, bool) {
	for _, li := range c.Items {
		if li.ID == id {
			return li, true
		}
	}
	return LineItem{}, false
}

// ItemCount is the total quantity across all lines.
func (c Cart) ItemCount() int {
	n := 0
	for _, li := range c.Items {
		n += li.Quantity
	}
	return n
}

// PromotionCodes lists the codes applied to the cart.
func (c Cart) PromotionCodes() []string {
	codes := make([]string, 0, len(c.Promotions))
	for _, p := range c.Promotions {
		if p.Code != "" {
			codes = append(codes, p.Code)
		}
	}
	return codes
}

// TotalMoney pairs the cart total with its currency.
func (c Cart) TotalMoney() (Money, error) {
	cur, err := ParseCurrency(c.CurrencyCode)
	if err != nil {
		return Money{}, err
	}
	return Money{Amount: c.Total, Currency: cur}, nil
}

func (c Cart) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("%w: cart without id", ErrMalformed)
	}
	for i, li := range c.Items {
		if li.ID == "" {
			return fmt.Errorf("%w: cart %s line %d without id", ErrMalformed, c.ID, i)
		}
		if li.Quantity < 1 {
			return fmt.Errorf("%w: cart %s line %s has quantity %d", ErrMalformed, c.ID, li.ID, li.Quantity)
		}
	}
	return nil
}
