package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/leonardcser/storefront-mcp/internal/gateway"
	"github.com/leonardcser/storefront-mcp/internal/prefs"
)

// ContentKinds lists the values accepted by the "kind" argument of
// "cms-content".
var ContentKinds = []string{
	gateway.KindAbout, gateway.KindCSR, gateway.KindContact, gateway.KindFAQ,
	gateway.KindLegal, gateway.KindNews, gateway.KindHome,
}

// CMSContentHandler returns the handler for the "cms-content" tool. The
// locale defaults to the stored language preference. Structured text is
// returned as JSON.
func CMSContentHandler(gw *gateway.Gateway, store *prefs.Store) handler {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		kind, err := req.RequireString("kind")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		locale := req.GetString("locale", "")
		if locale == "" {
			p, err := store.Load()
			if err != nil {
				return mcp.NewToolResultErrorFromErr("load preferences", err), nil
			}
			locale = p.Locale()
		}

		ctx = refreshed(ctx, req)
		var v any
		switch kind {
		case gateway.KindAbout:
			v, err = gw.About(ctx, locale)
		case gateway.KindCSR:
			v, err = gw.CSR(ctx, locale)
		case gateway.KindContact:
			v, err = gw.Contact(ctx, locale)
		case gateway.KindFAQ:
			v, err = gw.FAQs(ctx, locale)
		case gateway.KindLegal:
			v, err = gw.Legals(ctx, locale)
		case gateway.KindNews:
			v, err = gw.News(ctx, locale)
		case gateway.KindHome:
			v, err = gw.HomeSliders(ctx, locale)
		default:
			return mcp.NewToolResultError(fmt.Sprintf("unknown content kind %q", kind)), nil
		}
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load "+kind, err), nil
		}
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return mcp.NewToolResultErrorFromErr("encode "+kind, err), nil
		}
		return mcp.NewToolResultText(string(b)), nil
	}
}

// PreferencesHandler returns the handler for the "preferences" tool. With
// no arguments it reports the stored values.
func PreferencesHandler(store *prefs.Store) handler {
	return func(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if code := req.GetString("currency", ""); code != "" {
			if _, err := store.SetCurrency(code); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		if tag := req.GetString("language", ""); tag != "" {
			if _, err := store.SetLanguage(tag); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}
		p, err := store.Load()
		if err != nil {
			return mcp.NewToolResultErrorFromErr("load preferences", err), nil
		}
		return mcp.NewToolResultText(fmt.Sprintf("Currency: %s\nLanguage: %s", p.Currency, p.Language)), nil
	}
}
