package tools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/storefront-mcp/internal/catalog"
	"github.com/leonardcser/storefront-mcp/internal/domain"
	"github.com/leonardcser/storefront-mcp/internal/gateway"
)

type handler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

// refreshed applies the "refresh" argument: a forced read skips fresh
// cache entries.
func refreshed(ctx context.Context, req mcp.CallToolRequest) context.Context {
	if req.GetBool("refresh", false) {
		return gateway.Force(ctx)
	}
	return ctx
}

// RegionsHandler returns the handler for the "regions" tool.
func RegionsHandler(gw *gateway.Gateway) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		regions, err := gw.Regions(refreshed(ctx, req))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load regions", err), nil
		}
		if len(regions) == 0 {
			return mcp.NewToolResultText("No regions."), nil
		}
		var sb strings.Builder
		for i, r := range regions {
			fmt.Fprintf(&sb, "%d. %s (%s) %s", i+1, r.Name, r.ID, strings.ToUpper(r.CurrencyCode))
			if i < len(regions)-1 {
				sb.WriteString("\n")
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

// ProductsHandler returns the handler for the "products" tool.
func ProductsHandler(gw *gateway.Gateway) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		products, err := gw.Products(refreshed(ctx, req))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load products", err), nil
		}
		return mcp.NewToolResultText(formatProducts(products)), nil
	}
}

// ProductDetailsHandler returns the handler for the "product-details" tool.
func ProductDetailsHandler(gw *gateway.Gateway) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id, err := req.RequireString("id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		p, err := gw.ProductDetails(refreshed(ctx, req), id)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load product", err), nil
		}
		return mcp.NewToolResultText(formatProduct(*p)), nil
	}
}

type resolveInput struct {
	ProductID string            `json:"product_id"`
	Selected  map[string]string `json:"selected"`
	Quantity  int               `json:"quantity"`
}

// ResolveVariantHandler returns the handler for the "resolve-variant" tool.
func ResolveVariantHandler(gw *gateway.Gateway) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in resolveInput
		if err := req.BindArguments(&in); err != nil {
			return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
		}
		if in.ProductID == "" {
			return mcp.NewToolResultError("product_id is required"), nil
		}
		if in.Quantity == 0 {
			in.Quantity = 1
		}
		p, err := gw.ProductDetails(ctx, in.ProductID)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load product", err), nil
		}
		if len(in.Selected) == 0 {
			in.Selected = catalog.InitialSelection(*p)
		}
		sel := catalog.ResolveVariant(*p, in.Selected)
		return mcp.NewToolResultText(formatSelection(sel, in.Quantity)), nil
	}
}

// SectionsHandler returns the handler for the "sections" tool.
func SectionsHandler(gw *gateway.Gateway) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		sections, err := gw.Sections(refreshed(ctx, req))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load sections", err), nil
		}
		if len(sections) == 0 {
			return mcp.NewToolResultText("No sections."), nil
		}
		var sb strings.Builder
		for i, s := range sections {
			fmt.Fprintf(&sb, "## %s / %s", s.TitleEN, s.TitleAR)
			for _, c := range s.Categories {
				fmt.Fprintf(&sb, "\n- %s / %s (%s)", c.TitleEN, c.TitleAR, c.ID)
			}
			if i < len(sections)-1 {
				sb.WriteString("\n\n")
			}
		}
		return mcp.NewToolResultText(sb.String()), nil
	}
}

func formatProducts(products []domain.Product) string {
	if len(products) == 0 {
		return "No products."
	}
	var sb strings.Builder
	for i, p := range products {
		fmt.Fprintf(&sb, "%d. %s (%s)", i+1, p.Title, p.ID)
		if len(p.Variants) > 0 {
			if m, ok := p.Variants[0].Price(); ok {
				sb.WriteString(" from ")
				sb.WriteString(m.String())
			}
		}
		if i < len(products)-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func formatProduct(p domain.Product) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n", p.Title)
	if p.Subtitle != "" {
		sb.WriteString(p.Subtitle)
		sb.WriteString("\n")
	}
	if p.Description != "" {
		sb.WriteString("\n")
		sb.WriteString(p.Description)
		sb.WriteString("\n")
	}
	if opts := catalog.SelectableOptions(p); len(opts) > 0 {
		sb.WriteString("\n## Options\n")
		for _, o := range opts {
			fmt.Fprintf(&sb, "- %s: %s\n", o.Title, strings.Join(o.Values, ", "))
		}
	}
	sb.WriteString("\n## Variants\n")
	for _, v := range p.Variants {
		fmt.Fprintf(&sb, "- %s (%s)", v.Title, v.ID)
		if m, ok := v.Price(); ok {
			sb.WriteString(" ")
			sb.WriteString(m.String())
		}
		if !catalog.Available(v, 1) {
			sb.WriteString(" [out of stock]")
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func formatSelection(sel catalog.Selection, qty int) string {
	if sel.Variant == nil {
		return "Product has no variants."
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Variant: %s (%s)", sel.Variant.Title, sel.Variant.ID)
	if m, ok := sel.Variant.Price(); ok {
		sb.WriteString("\nPrice: ")
		sb.WriteString(m.String())
	}
	switch {
	case !sel.ReadyToAddToCart:
		sb.WriteString("\nReady to add: no (selection matches no variant)")
	case !catalog.Available(*sel.Variant, qty):
		fmt.Fprintf(&sb, "\nReady to add: no (fewer than %d in stock)", qty)
	default:
		sb.WriteString("\nReady to add: yes")
	}
	return sb.String()
}
