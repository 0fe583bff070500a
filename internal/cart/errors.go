package cart

import (
	"errors"
	"fmt"
)

var (
	// ErrNoCart is returned by mutations that need an existing cart when
	// none is cached.
	ErrNoCart = errors.New("cart: no cart")

	// ErrRegionUnavailable is returned when a cart has to be created but
	// the backend has no region to price it in.
	ErrRegionUnavailable = errors.New("cart: no region available")

	ErrInvalidQuantity = errors.New("cart: invalid quantity")
)

// CompletionError is returned when the backend refuses to turn a cart into
// an order.
type CompletionError struct {
	CartID  string
	Message string
}

func (e *CompletionError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("cart %s: completion refused", e.CartID)
	}
	return fmt.Sprintf("cart %s: completion refused: %s", e.CartID, e.Message)
}
