package cart

// State is the lifecycle position of the session cart.
type State int

const (
	NoCart State = iota
	CartExists
	CartWithItems
	Completed
)

func (s State) String() string {
	switch s {
	case NoCart:
		return "no-cart"
	case CartExists:
		return "cart-exists"
	case CartWithItems:
		return "cart-with-items"
	case Completed:
		return "completed"
	default:
		return "unknown"
	}
}
