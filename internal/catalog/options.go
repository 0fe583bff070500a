package catalog

import (
	"github.com/leonardcser/storefront-mcp/internal/domain"
)

// Option is a choosable dimension with its distinct values in first-seen
// order.
type Option struct {
	Title  string
	Values []string
}

// SelectableOptions lists the options a shopper has to choose from. The
// default option is hidden. Values missing from the option declaration are
// collected from the variants.
func SelectableOptions(p domain.Product) []Option {
	if DefaultOnly(p) {
		return nil
	}
	out := make([]Option, 0, len(p.Options))
	for _, o := range p.Options {
		if o.Title == domain.DefaultOptionTitle {
			continue
		}
		opt := Option{Title: o.Title}
		seen := make(map[string]bool)
		add := func(v string) {
			if v != "" && !seen[v] {
				seen[v] = true
				opt.Values = append(opt.Values, v)
			}
		}
		for _, v := range o.Values {
			add(v.Value)
		}
		for _, variant := range p.Variants {
			for i, ov := range variant.Options {
				if title, ok := optionTitle(p, ov, i); ok && title == o.Title {
					add(ov.Value)
				}
			}
		}
		out = append(out, opt)
	}
	return out
}

// InitialSelection preselects the values of the first variant, as the
// product screen does on open.
func InitialSelection(p domain.Product) map[string]string {
	sel := make(map[string]string)
	if len(p.Variants) == 0 || DefaultOnly(p) {
		return sel
	}
	for i, ov := range p.Variants[0].Options {
		if title, ok := optionTitle(p, ov, i); ok {
			sel[title] = ov.Value
		}
	}
	return sel
}

// Available reports whether qty units of v can be ordered. Variants whose
// inventory is not managed, or that allow backorders, are always available.
func Available(v domain.Variant, qty int) bool {
	if qty < 1 {
		return false
	}
	if !v.ManageInventory || v.AllowBackorder {
		return true
	}
	return v.InventoryQuantity >= qty
}
