package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardcser/storefront-mcp/internal/commerce/commercetest"
	"github.com/leonardcser/storefront-mcp/internal/domain"
)

func TestResolveVariant(t *testing.T) {
	shirt := commercetest.Shirt()

	tests := []struct {
		name      string
		selected  map[string]string
		wantID    string
		wantReady bool
	}{
		{
			name:      "blue small matches third variant",
			selected:  map[string]string{"Color": "Blue", "Size": "S"},
			wantID:    "var_blue_s",
			wantReady: true,
		},
		{
			name:      "red medium",
			selected:  map[string]string{"Size": "M", "Color": "Red"},
			wantID:    "var_red_m",
			wantReady: true,
		},
		{
			name:     "blue medium has no variant",
			selected: map[string]string{"Color": "Blue", "Size": "M"},
			wantID:   "var_red_s",
		},
		{
			name:     "partial selection",
			selected: map[string]string{"Color": "Blue"},
			wantID:   "var_red_s",
		},
		{
			name:   "nothing selected",
			wantID: "var_red_s",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sel := ResolveVariant(shirt, tt.selected)
			require.NotNil(t, sel.Variant)
			assert.Equal(t, tt.wantID, sel.Variant.ID)
			assert.Equal(t, tt.wantReady, sel.ReadyToAddToCart)
		})
	}
}

func TestResolveVariantIgnoresValueOrder(t *testing.T) {
	shirt := commercetest.Shirt()
	v := &shirt.Variants[2]
	v.Options[0], v.Options[1] = v.Options[1], v.Options[0]

	sel := ResolveVariant(shirt, map[string]string{"Color": "Blue", "Size": "S"})
	require.True(t, sel.ReadyToAddToCart)
	assert.Equal(t, "var_blue_s", sel.Variant.ID)
}

func TestResolveVariantPositionalFallback(t *testing.T) {
	shirt := commercetest.Shirt()
	for i := range shirt.Variants {
		for j := range shirt.Variants[i].Options {
			shirt.Variants[i].Options[j].OptionID = ""
		}
	}

	sel := ResolveVariant(shirt, map[string]string{"Color": "Blue", "Size": "S"})
	require.True(t, sel.ReadyToAddToCart)
	assert.Equal(t, "var_blue_s", sel.Variant.ID)
}

func TestResolveVariantUnknownOptionID(t *testing.T) {
	shirt := commercetest.Shirt()
	shirt.Variants[2].Options[0].OptionID = "opt_gone"

	sel := ResolveVariant(shirt, map[string]string{"Color": "Blue", "Size": "S"})
	assert.False(t, sel.ReadyToAddToCart)
}

func TestDefaultOptionIsReady(t *testing.T) {
	mug := commercetest.Mug()

	sel := ResolveVariant(mug, nil)
	require.True(t, sel.ReadyToAddToCart)
	assert.Equal(t, "var_mug", sel.Variant.ID)
	assert.Empty(t, SelectableOptions(mug))
	assert.Empty(t, InitialSelection(mug))
}

func TestResolveVariantWithoutVariants(t *testing.T) {
	sel := ResolveVariant(domain.Product{ID: "p_empty"}, map[string]string{"Color": "Red"})
	assert.Nil(t, sel.Variant)
	assert.False(t, sel.ReadyToAddToCart)
}

func TestSelectableOptions(t *testing.T) {
	shirt := commercetest.Shirt()
	shirt.Options[1].Values = nil

	opts := SelectableOptions(shirt)
	assert.Equal(t, []Option{
		{Title: "Color", Values: []string{"Red", "Blue"}},
		{Title: "Size", Values: []string{"S", "M"}},
	}, opts)
}

func TestInitialSelectionResolvesFirstVariant(t *testing.T) {
	shirt := commercetest.Shirt()

	sel := InitialSelection(shirt)
	assert.Equal(t, map[string]string{"Color": "Red", "Size": "S"}, sel)
	assert.Equal(t, "var_red_s", ResolveVariant(shirt, sel).Variant.ID)
}

func TestAvailable(t *testing.T) {
	shirt := commercetest.Shirt()

	assert.True(t, Available(shirt.Variants[0], 5))
	assert.False(t, Available(shirt.Variants[0], 6))
	assert.False(t, Available(shirt.Variants[1], 1))
	assert.False(t, Available(shirt.Variants[0], 0))

	backorder := shirt.Variants[1]
	backorder.AllowBackorder = true
	assert.True(t, Available(backorder, 3))

	unmanaged := domain.Variant{ID: "var_x"}
	assert.True(t, Available(unmanaged, 100))
}
