package commercetest

import (
	"context"
	"math"
)

type bodyKey struct{}

func withBody(ctx context.Context, body map[string]any) context.Context {
	return context.WithValue(ctx, bodyKey{}, body)
}

func bodyFrom(ctx context.Context) map[string]any {
	body, _ := ctx.Value(bodyKey{}).(map[string]any)
	return body
}

// intFrom converts a decoded JSON number.
func intFrom(v any) int {
	f, ok := v.(float64)
	if !ok {
		return 0
	}
	return int(math.Round(f))
}

func stringsFrom(v any) []string {
	items, _ := v.([]any)
	out := make([]string, 0, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
