// Package kv defines the key-value store port shared by the ledger persistence
// and the theme preference.
package kv

import (
	"context"
	"errors"
)

// Well-known keys.
const (
	KeyExpenses  = "expenses"
	KeyBudget    = "budget"
	KeyDarkTheme = "dark-theme"
)

// ErrUnavailable is returned by stores that cannot currently serve requests.
var ErrUnavailable = errors.New("store unavailable")

// Ports for storage adapters.
type (
	// Store is an opaque text key-value store. Both operations may fail (quota, unavailable).
	Store interface {
		// Get returns the stored value and whether the key was present.
		Get(ctx context.Context, key string) (value string, found bool, err error)
		// Set replaces the value stored under key.
		Set(ctx context.Context, key, value string) error
	}
)
