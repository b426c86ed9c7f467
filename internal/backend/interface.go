// Package backend builds the key-value store selected by configuration.
package backend

import (
	"context"

	"budgetboard/internal/kv"
)

// CleanupFunc represents a cleanup function for resources
type CleanupFunc func() error

// StoreResult contains the store and its optional cleanup and readiness probes.
type StoreResult struct {
	Store   kv.Store
	Cleanup CleanupFunc
	// Ready reports whether the store can serve requests; nil means always ready.
	Ready func(ctx context.Context) error
}

// Close runs Cleanup if set.
func (r *StoreResult) Close() error {
	if r == nil || r.Cleanup == nil {
		return nil
	}
	return r.Cleanup()
}

// Factory creates stores based on configuration
type Factory interface {
	CreateStore(ctx context.Context, config Config) (*StoreResult, error)
}

// Config holds configuration for store creation
type Config struct {
	Type StoreType

	// SQLite specific
	SQLiteDBPath string

	// Memory specific: initial contents
	Seed map[string]string
}

// StoreType represents the type of store
type StoreType string

const (
	SQLiteStore StoreType = "sqlite"
	MemoryStore StoreType = "memory"
)

// String implements fmt.Stringer
func (t StoreType) String() string {
	return string(t)
}

// IsValid returns true if the store type is known
func (t StoreType) IsValid() bool {
	switch t {
	case SQLiteStore, MemoryStore:
		return true
	default:
		return false
	}
}
