package domain

import "fmt"

// Region is a pricing, currency, and tax context. A cart cannot be created
// without one.
type Region struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	CurrencyCode string    `json:"currency_code"`
	Countries    []Country `json:"countries,omitempty"`
}

type Country struct {
	ISO2        string `json:"iso_2"`
	DisplayName string `json:"display_name"`
}

func (r Region) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: region without id", ErrMalformed)
	}
	if r.CurrencyCode != "" {
		if _, err := ParseCurrency(r.CurrencyCode); err != nil {
			return fmt.Errorf("%w: region %s: %v", ErrMalformed, r.ID, err)
		}
	}
	return nil
}
