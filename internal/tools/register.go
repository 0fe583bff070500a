// Package tools exposes storefront operations as MCP tools.
package tools

import (
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/leonardcser/storefront-mcp/internal/cart"
	"github.com/leonardcser/storefront-mcp/internal/gateway"
	"github.com/leonardcser/storefront-mcp/internal/logger"
	"github.com/leonardcser/storefront-mcp/internal/prefs"
)

type Deps struct {
	Gateway *gateway.Gateway
	Cart    *cart.Service
	View    *cart.View
	Prefs   *prefs.Store
}

// multiline joins lines with newlines for tool descriptions.
func multiline(lines ...string) string { return strings.Join(lines, "\n") }

func refreshArg() mcp.ToolOption {
	return mcp.WithBoolean("refresh", mcp.Description("Bypass fresh cache entries and reload from the backend"))
}

// Register adds every storefront tool to s.
func Register(s *server.MCPServer, d Deps) {
	add := func(t mcp.Tool, h handler) {
		s.AddTool(t, h)
		logger.Infof("Registered %s tool", t.Name)
	}

	add(mcp.NewTool("regions",
		mcp.WithDescription("Lists the store's pricing regions. Carts are created in the first region."),
		refreshArg(),
	), RegionsHandler(d.Gateway))

	add(mcp.NewTool("products",
		mcp.WithDescription(multiline(
			"Lists products with prices for the store's region",
			"\nUsage notes:",
			"- Results are served from a 5-minute cache unless refresh is set",
			"- Use product-details for options and variants",
		)),
		refreshArg(),
	), ProductsHandler(d.Gateway))

	add(mcp.NewTool("product-details",
		mcp.WithDescription("Shows a product's options, variants, prices and stock"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Product id")),
		refreshArg(),
	), ProductDetailsHandler(d.Gateway))

	add(mcp.NewTool("resolve-variant",
		mcp.WithDescription(multiline(
			"Resolves an option selection to a variant and reports whether it can be added to the cart",
			"\nUsage notes:",
			"- selected maps option titles to values, e.g. {\"Color\": \"Blue\", \"Size\": \"S\"}",
			"- Without a selection the first variant's values are used",
		)),
		mcp.WithString("product_id", mcp.Required(), mcp.Description("Product id")),
		mcp.WithObject("selected", mcp.Description("Selected value per option title")),
		mcp.WithNumber("quantity", mcp.Description("Quantity to check stock for"), mcp.DefaultNumber(1), mcp.Min(1)),
	), ResolveVariantHandler(d.Gateway))

	add(mcp.NewTool("sections",
		mcp.WithDescription("Lists home-screen sections and their categories"),
		refreshArg(),
	), SectionsHandler(d.Gateway))

	add(mcp.NewTool("cart",
		mcp.WithDescription("Shows the session cart"),
		refreshArg(),
	), CartHandler(d.View, d.Cart))

	add(mcp.NewTool("cart-add",
		mcp.WithDescription(multiline(
			"Adds a variant to the cart, creating the cart on first use",
			"\nUsage notes:",
			"- Adding a variant already in the cart increases its quantity",
		)),
		mcp.WithString("variant_id", mcp.Required(), mcp.Description("Variant id")),
		mcp.WithNumber("quantity", mcp.Description("Units to add"), mcp.DefaultNumber(1), mcp.Min(1)),
		mcp.WithObject("metadata", mcp.Description("Free-form line item metadata")),
	), CartAddHandler(d.Cart))

	add(mcp.NewTool("cart-update",
		mcp.WithDescription("Sets the quantity of a cart line. Quantity 0 removes the line."),
		mcp.WithString("line_id", mcp.Required(), mcp.Description("Line item id")),
		mcp.WithNumber("quantity", mcp.Required(), mcp.Description("New quantity"), mcp.Min(0)),
		mcp.WithObject("metadata", mcp.Description("Replacement line item metadata")),
	), CartUpdateHandler(d.Cart))

	add(mcp.NewTool("cart-remove",
		mcp.WithDescription("Removes a line from the cart"),
		mcp.WithString("line_id", mcp.Required(), mcp.Description("Line item id")),
	), CartRemoveHandler(d.Cart))

	add(mcp.NewTool("cart-promotion",
		mcp.WithDescription("Applies or removes a promotion code on the cart"),
		mcp.WithString("code", mcp.Required(), mcp.Description("Promotion code")),
		mcp.WithString("action", mcp.Enum("apply", "remove"), mcp.DefaultString("apply")),
	), CartPromotionHandler(d.Cart))

	add(mcp.NewTool("payment-providers",
		mcp.WithDescription("Lists payment providers enabled for the cart's region"),
	), PaymentProvidersHandler(d.Cart))

	add(mcp.NewTool("checkout",
		mcp.WithDescription(multiline(
			"Pays for the cart and places the order",
			"\nUsage notes:",
			"- The cart is cleared once the order is placed",
			"- The next cart-add starts a new cart",
		)),
		mcp.WithString("provider_id", mcp.Description("Payment provider id"), mcp.DefaultString("pp_system_default")),
	), CheckoutHandler(d.Cart))

	add(mcp.NewTool("cms-content",
		mcp.WithDescription("Loads editorial content from the CMS as JSON"),
		mcp.WithString("kind", mcp.Required(), mcp.Enum(ContentKinds...), mcp.Description("Content kind")),
		mcp.WithString("locale", mcp.Description("Content locale, defaults to the language preference")),
		refreshArg(),
	), CMSContentHandler(d.Gateway, d.Prefs))

	add(mcp.NewTool("preferences",
		mcp.WithDescription("Shows or updates the display currency and language"),
		mcp.WithString("currency", mcp.Description("ISO 4217 currency code")),
		mcp.WithString("language", mcp.Description("BCP 47 language tag")),
	), PreferencesHandler(d.Prefs))
}
