package domain

import "errors"

// ErrMalformed marks a server payload that failed validation. Such payloads
// are rejected at the gateway and never cached.
var ErrMalformed = errors.New("malformed payload")

// ValidateAll validates every element of a decoded collection.
func ValidateAll[T interface{ Validate() error }](items []T) error {
	for _, it := range items {
		if err := it.Validate(); err != nil {
			return err
		}
	}
	return nil
}
