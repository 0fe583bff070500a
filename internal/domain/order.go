package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID           string          `json:"id"`
	DisplayID    int             `json:"display_id,omitempty"`
	Email        string          `json:"email,omitempty"`
	CurrencyCode string          `json:"currency_code,omitempty"`
	Items        []LineItem      `json:"items,omitempty"`
	Total        decimal.Decimal `json:"total"`
	CreatedAt    time.Time       `json:"created_at"`
}

func (o Order) Validate() error {
	if o.ID == "" {
		return fmt.Errorf("%w: order without id", ErrMalformed)
	}
	return nil
}

type PaymentProvider struct {
	ID        string `json:"id"`
	IsEnabled bool   `json:"is_enabled"`
}

func (p PaymentProvider) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("%w: payment provider without id", ErrMalformed)
	}
	return nil
}

// Section groups home-screen categories.
type Section struct {
	SectionID  string     `json:"section_id"`
	TitleEN    string     `json:"title_en"`
	TitleAR    string     `json:"title_ar"`
	Status     bool       `json:"status"`
	CreatedAt  string     `json:"created_at,omitempty"`
	Categories []Category `json:"categories"`
}

type Category struct {
	ID        string `json:"id"`
	SectionID string `json:"section_id"`
	TitleEN   string `json:"category_title_en"`
	TitleAR   string `json:"category_title_ar"`
	Icon      string `json:"icon,omitempty"`
}

func (s Section) Validate() error {
	if s.SectionID == "" {
		return fmt.Errorf("%w: section without id", ErrMalformed)
	}
	return nil
}
