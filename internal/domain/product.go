package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// DefaultOptionTitle is the option the commerce backend creates for
// products sold in a single configuration.
const DefaultOptionTitle = "Default option"

type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Subtitle    string          `json:"subtitle,omitempty"`
	Description string          `json:"description,omitempty"`
	Handle      string          `json:"handle,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	Options     []ProductOption `json:"options"`
	Variants    []Variant       `json:"variants"`
}

// ProductOption is a dimension the shopper chooses along, e.g. Size.
type ProductOption struct {
	ID     string        `json:"id"`
	Title  string        `json:"title"`
	Values []OptionValue `json:"values,omitempty"`
}

// OptionValue is one value of an option. On variants, OptionID links the
// value back to the product option it belongs to.
type OptionValue struct {
	ID       string `json:"id,omitempty"`
	Value    string `json:"value"`
	OptionID string `json:"option_id,omitempty"`
}

type Variant struct {
	ID                string           `json:"id"`
	Title             string           `json:"title"`
	SKU               string           `json:"sku,omitempty"`
	ManageInventory   bool             `json:"manage_inventory"`
	AllowBackorder    bool             `json:"allow_backorder"`
	InventoryQuantity int              `json:"inventory_quantity"`
	VariantRank       int              `json:"variant_rank"`
	Options           []OptionValue    `json:"options"`
	CalculatedPrice   *CalculatedPrice `json:"calculated_price,omitempty"`

	Material      string   `json:"material,omitempty"`
	OriginCountry string   `json:"origin_country,omitempty"`
	Weight        *float64 `json:"weight,omitempty"`
	Length        *float64 `json:"length,omitempty"`
	Width         *float64 `json:"width,omitempty"`
	Height        *float64 `json:"height,omitempty"`
}

type CalculatedPrice struct {
	CalculatedAmount decimal.Decimal `json:"calculated_amount"`
	OriginalAmount   decimal.Decimal `json:"original_amount"`
	CurrencyCode     string          `json:"currency_code"`
}

// Price returns the region-calculated price of v, if the backend sent one.
func (v Variant) Price() (Money, bool) {
	if v.CalculatedPrice == nil {
		return Money{}, false
	}
	cur, err := ParseCurrency(v.CalculatedPrice.CurrencyCode)
	if err != nil {
		return Money{}, false
	}
	return Money{Amount: v.CalculatedPrice.CalculatedAmount, Currency: cur}, true
}

func (p Product) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: product without id", ErrMalformed)
	}
	for i, v := range p.Variants {
		if v.ID == "" {
			return fmt.Errorf("%w: product %s variant %d without id", ErrMalformed, p.ID, i)
		}
	}
	return nil
}

// VariantByID returns the variant with the given id.
func (p Product) VariantByID(id string) (Variant, bool) {
	for _, v := range p.Variants {
		if v.ID == id {
			return v, true
		}
	}
	return Variant{}, false
}
