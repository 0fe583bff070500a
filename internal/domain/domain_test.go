package domain

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/currency"
)

func TestCartValidate(t *testing.T) {
	tests := []struct {
		name      string
		cart      Cart
		wantError string
	}{
		{
			name: "cart with items: ok",
			cart: Cart{ID: "cart_1", Items: []LineItem{{ID: "li_1", Quantity: 2}}},
		},
		{
			name: "empty cart: ok",
			cart: Cart{ID: "cart_1"},
		},
		{
			name:      "missing id: error",
			cart:      Cart{},
			wantError: "cart without id",
		},
		{
			name:      "zero quantity line: error",
			cart:      Cart{ID: "cart_1", Items: []LineItem{{ID: "li_1", Quantity: 0}}},
			wantError: "line li_1 has quantity 0",
		},
		{
			name:      "line without id: error",
			cart:      Cart{ID: "cart_1", Items: []LineItem{{Quantity: 1}}},
			wantError: "line 0 without id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cart.Validate()
			if tt.wantError == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMalformed)
			assert.Contains(t, err.Error(), tt.wantError)
		})
	}
}

func TestCartDecodesBackendPayload(t *testing.T) {
	payload := `{
		"id": "cart_1",
		"region_id": "reg_1",
		"currency_code": "qar",
		"items": [
			{"id": "li_1", "variant_id": "var_1", "product_id": "p_1", "quantity": 2, "unit_price": 12.5},
			{"id": "li_2", "variant_id": "var_2", "product_id": "p_2", "quantity": 1, "unit_price": "3"}
		],
		"subtotal": 28,
		"total": 28,
		"promotions": [{"id": "promo_1", "code": "WELCOME10"}]
	}`

	var c Cart
	require.NoError(t, json.Unmarshal([]byte(payload), &c))
	require.NoError(t, c.Validate())

	assert.Equal(t, 3, c.ItemCount())
	assert.True(t, decimal.NewFromInt(25).Equal(c.Items[0].Subtotal()))
	assert.Equal(t, []string{"WELCOME10"}, c.PromotionCodes())

	li, ok := c.Line("li_2")
	require.True(t, ok)
	assert.Equal(t, "var_2", li.VariantID)

	total, err := c.TotalMoney()
	require.NoError(t, err)
	assert.Equal(t, currency.MustParseISO("QAR"), total.Currency)
	assert.Equal(t, "28.00 QAR", total.String())
}

func TestRegionValidate(t *testing.T) {
	assert.NoError(t, Region{ID: "reg_1", CurrencyCode: "usd"}.Validate())
	assert.NoError(t, Region{ID: "reg_1"}.Validate())
	assert.ErrorIs(t, Region{}.Validate(), ErrMalformed)
	assert.ErrorIs(t, Region{ID: "reg_1", CurrencyCode: "zzz"}.Validate(), ErrMalformed)
}

func TestVariantPrice(t *testing.T) {
	v := Variant{ID: "var_1", CalculatedPrice: &CalculatedPrice{
		CalculatedAmount: decimal.RequireFromString("19.99"),
		CurrencyCode:     "eur",
	}}
	m, ok := v.Price()
	require.True(t, ok)
	assert.Equal(t, "19.99 EUR", m.String())

	_, ok = Variant{ID: "var_2"}.Price()
	assert.False(t, ok)
}

func TestValidateAll(t *testing.T) {
	products := []Product{{ID: "p_1"}, {ID: "p_2", Variants: []Variant{{}}}}
	err := ValidateAll(products)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "product p_2 variant 0 without id")
}
