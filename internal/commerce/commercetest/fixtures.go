package commercetest

import (
	"github.com/shopspring/decimal"

	"github.com/leonardcser/storefront-mcp/internal/domain"
)

// Regions is a single-region setup priced in QAR.
func Regions() []domain.Region {
	return []domain.Region{{ID: "reg_1", Name: "Qatar", CurrencyCode: "qar"}}
}

// Shirt has options [Color, Size] and variants {Red,S}, {Red,M}, {Blue,S}.
func Shirt() domain.Product {
	opt := func(id, value, optionID string) domain.OptionValue {
		return domain.OptionValue{ID: id, Value: value, OptionID: optionID}
	}
	price := func(amount string) *domain.CalculatedPrice {
		return &domain.CalculatedPrice{CalculatedAmount: decimal.RequireFromString(amount), CurrencyCode: "qar"}
	}
	return domain.Product{
		ID:    "p_shirt",
		Title: "Shirt",
		Options: []domain.ProductOption{
			{ID: "opt_color", Title: "Color", Values: []domain.OptionValue{{Value: "Red"}, {Value: "Blue"}}},
			{ID: "opt_size", Title: "Size", Values: []domain.OptionValue{{Value: "S"}, {Value: "M"}}},
		},
		Variants: []domain.Variant{
			{
				ID: "var_red_s", Title: "Red / S", ManageInventory: true, InventoryQuantity: 5,
				Options:         []domain.OptionValue{opt("ov_1", "Red", "opt_color"), opt("ov_2", "S", "opt_size")},
				CalculatedPrice: price("10"),
			},
			{
				ID: "var_red_m", Title: "Red / M", ManageInventory: true, InventoryQuantity: 0,
				Options:         []domain.OptionValue{opt("ov_1", "Red", "opt_color"), opt("ov_3", "M", "opt_size")},
				CalculatedPrice: price("10"),
			},
			{
				ID: "var_blue_s", Title: "Blue / S", ManageInventory: true, InventoryQuantity: 2,
				Options:         []domain.OptionValue{opt("ov_4", "Blue", "opt_color"), opt("ov_2", "S", "opt_size")},
				CalculatedPrice: price("12.5"),
			},
		},
	}
}

// Mug is sold in a single configuration under the default option.
func Mug() domain.Product {
	return domain.Product{
		ID:      "p_mug",
		Title:   "Mug",
		Options: []domain.ProductOption{{ID: "opt_default", Title: domain.DefaultOptionTitle}},
		Variants: []domain.Variant{{
			ID:              "var_mug",
			Title:           "Default variant",
			Options:         []domain.OptionValue{{Value: "Default option value", OptionID: "opt_default"}},
			CalculatedPrice: &domain.CalculatedPrice{CalculatedAmount: decimal.NewFromInt(25), CurrencyCode: "qar"},
		}},
	}
}

// Catalog starts a server with Regions and the Shirt and Mug products.
func Catalog() *Server {
	return New(Regions(), []domain.Product{Shirt(), Mug()})
}
