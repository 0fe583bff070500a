package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/storefront-mcp/internal/cart"
	"github.com/leonardcser/storefront-mcp/internal/domain"
)

// CartHandler returns the handler for the "cart" tool. It renders the
// view's snapshot after refreshing it.
func CartHandler(view *cart.View, svc *cart.Service) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		c, err := view.Refresh(refreshed(ctx, req))
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load cart", err), nil
		}
		state, err := svc.State()
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load cart", err), nil
		}
		if c == nil {
			return mcp.NewToolResultText(fmt.Sprintf("Cart is empty (%s).", state)), nil
		}
		return mcp.NewToolResultText(formatCart(c, state)), nil
	}
}

type lineInput struct {
	VariantID string         `json:"variant_id"`
	LineID    string         `json:"line_id"`
	Quantity  *int           `json:"quantity"`
	Metadata  map[string]any `json:"metadata"`
}

// CartAddHandler returns the handler for the "cart-add" tool.
func CartAddHandler(svc *cart.Service) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in lineInput
		if err := req.BindArguments(&in); err != nil {
			return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
		}
		if in.VariantID == "" {
			return mcp.NewToolResultError("variant_id is required"), nil
		}
		qty := 1
		if in.Quantity != nil {
			qty = *in.Quantity
		}
		c, err := svc.AddItemLine(ctx, in.VariantID, qty, in.Metadata)
		return cartResult("add to cart", svc, c, err)
	}
}

// CartUpdateHandler returns the handler for the "cart-update" tool.
func CartUpdateHandler(svc *cart.Service) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var in lineInput
		if err := req.BindArguments(&in); err != nil {
			return mcp.NewToolResultErrorFromErr("invalid arguments", err), nil
		}
		if in.LineID == "" || in.Quantity == nil {
			return mcp.NewToolResultError("line_id and quantity are required"), nil
		}
		c, err := svc.UpdateItemLine(ctx, in.LineID, *in.Quantity, in.Metadata)
		return cartResult("update cart", svc, c, err)
	}
}

// CartRemoveHandler returns the handler for the "cart-remove" tool.
func CartRemoveHandler(svc *cart.Service) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		lineID, err := req.RequireString("line_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		c, err := svc.DeleteItemLine(ctx, lineID)
		return cartResult("remove from cart", svc, c, err)
	}
}

// CartPromotionHandler returns the handler for the "cart-promotion" tool.
func CartPromotionHandler(svc *cart.Service) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := req.RequireString("code")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		var c *domain.Cart
		switch action := req.GetString("action", "apply"); action {
		case "apply":
			c, err = svc.ApplyPromotion(ctx, code)
		case "remove":
			c, err = svc.RemovePromotion(ctx, code)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown action %q", action)), nil
		}
		return cartResult("update promotions", svc, c, err)
	}
}

// PaymentProvidersHandler returns the handler for the "payment-providers"
// tool.
func PaymentProvidersHandler(svc *cart.Service) handler {
	return func(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		providers, err := svc.PaymentProviders(ctx)
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load payment providers", err), nil
		}
		var sb strings.Builder
		for _, p := range providers {
			if !p.IsEnabled {
				continue
			}
			sb.WriteString("- ")
			sb.WriteString(p.ID)
			sb.WriteString("\n")
		}
		if sb.Len() == 0 {
			return mcp.NewToolResultText("No payment providers."), nil
		}
		return mcp.NewToolResultText(strings.TrimRight(sb.String(), "\n")), nil
	}
}

// CheckoutHandler returns the handler for the "checkout" tool.
func CheckoutHandler(svc *cart.Service) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		provider := req.GetString("provider_id", "pp_system_default")
		order, err := svc.Checkout(ctx, provider)
		if err != nil {
			return mcp.NewToolResultError(cartError("checkout", err)), nil
		}
		total := order.Total.StringFixed(2)
		if cur, err := domain.ParseCurrency(order.CurrencyCode); err == nil {
			total = domain.Money{Amount: order.Total, Currency: cur}.String()
		}
		return mcp.NewToolResultText(fmt.Sprintf("Order %s placed (#%d), total %s.", order.ID, order.DisplayID, total)), nil
	}
}

func cartResult(op string, svc *cart.Service, c *domain.Cart, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(cartError(op, err)), nil
	}
	state, err := svc.State()
	if err != nil {
		return mcp.NewToolResultErrorFromErr(op, err), nil
	}
	if c == nil {
		return mcp.NewToolResultText(fmt.Sprintf("Cart is empty (%s).", state)), nil
	}
	return mcp.NewToolResultText(formatCart(c, state)), nil
}

// cartError phrases precondition failures for the shopper.
func cartError(op string, err error) string {
	var cerr *cart.CompletionError
	switch {
	case errors.Is(err, cart.ErrNoCart):
		return op + ": there is no cart yet, add an item first"
	case errors.Is(err, cart.ErrRegionUnavailable):
		return op + ": the store has no region to create a cart in"
	case errors.Is(err, cart.ErrInvalidQuantity):
		return op + ": quantity must be at least 1 (0 removes a line)"
	case errors.As(err, &cerr):
		return op + ": " + cerr.Error()
	default:
		return op + ": " + err.Error()
	}
}

func formatCart(c *domain.Cart, state cart.State) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Cart %s (%s), %d item(s)", c.ID, state, c.ItemCount())
	for _, li := range c.Items {
		title := li.ProductTitle
		if li.VariantTitle != "" {
			title += " / " + li.VariantTitle
		}
		fmt.Fprintf(&sb, "\n- [%s] %s x%d @ %s", li.ID, title, li.Quantity, li.UnitPrice.StringFixed(2))
	}
	if codes := c.PromotionCodes(); len(codes) > 0 {
		fmt.Fprintf(&sb, "\nPromotions: %s (-%s)", strings.Join(codes, ", "), c.DiscountTotal.StringFixed(2))
	}
	if total, err := c.TotalMoney(); err == nil {
		sb.WriteString("\nTotal: ")
		sb.WriteString(total.String())
	} else {
		sb.WriteString("\nTotal: ")
		sb.WriteString(c.Total.StringFixed(2))
	}
	return sb.String()
}
