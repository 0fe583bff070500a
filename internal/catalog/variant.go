// Package catalog resolves shopper option selections to product variants.
package catalog

import (
	"github.com/leonardcser/storefront-mcp/internal/domain"
)

// Selection is the outcome of resolving a shopper's option choices.
// Variant is the matched variant, or the product's base variant when
// nothing matched; it is nil only for products without variants.
type Selection struct {
	Variant          *domain.Variant
	ReadyToAddToCart bool
}

// ResolveVariant finds the variant whose option values all equal the
// values selected for their options. selected maps option titles to
// values.
//
// Each variant value is tied to its product option through OptionID, so
// the order of a variant's values does not matter. Values sent without an
// OptionID are paired with the product option at the same position.
func ResolveVariant(p domain.Product, selected map[string]string) Selection {
	if len(p.Variants) == 0 {
		return Selection{}
	}
	if DefaultOnly(p) {
		return Selection{Variant: &p.Variants[0], ReadyToAddToCart: true}
	}
	for i := range p.Variants {
		if matches(p, p.Variants[i], selected) {
			return Selection{Variant: &p.Variants[i], ReadyToAddToCart: true}
		}
	}
	return Selection{Variant: &p.Variants[0]}
}

// DefaultOnly reports whether p is sold in a single configuration under
// the backend's default option.
func DefaultOnly(p domain.Product) bool {
	return len(p.Options) == 1 && p.Options[0].Title == domain.DefaultOptionTitle
}

func matches(p domain.Product, v domain.Variant, selected map[string]string) bool {
	if len(v.Options) == 0 {
		return false
	}
	for i, ov := range v.Options {
		title, ok := optionTitle(p, ov, i)
		if !ok {
			return false
		}
		want, ok := selected[title]
		if !ok || want != ov.Value {
			return false
		}
	}
	return true
}

func optionTitle(p domain.Product, ov domain.OptionValue, pos int) (string, bool) {
	if ov.OptionID != "" {
		for _, o := range p.Options {
			if o.ID == ov.OptionID {
				return o.Title, true
			}
		}
		return "", false
	}
	if pos < len(p.Options) {
		return p.Options[pos].Title, true
	}
	return "", false
}
