// Package toolsource stores the resolved-tools table used to annotate tool
// calls with their provenance. Supports a local file and Redis for
// multi-instance deployments.
//
// The pipeline only reads the table. It is populated through Store.Set by
// the process that resolves tool definitions, typically a separate worker
// sharing the same file or Redis key.
package toolsource

import (
	"context"
	"time"

	"llmpipe/internal/core"
)

// Snapshot is the persisted form of a resolved-tools table.
type Snapshot struct {
	Version   int                `json:"version"`
	UpdatedAt time.Time          `json:"updated_at"`
	Tools     core.ResolvedTools `json:"tools"`
}

// Store defines the interface for resolved-tools storage.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the stored table. Returns nil, nil if nothing is stored yet.
	Get(ctx context.Context) (*Snapshot, error)

	// Set replaces the stored table.
	Set(ctx context.Context, snapshot *Snapshot) error

	// Close releases any resources held by the store.
	Close() error
}

// Lookup returns the tools of s, or an empty table if nothing is stored.
func Lookup(ctx context.Context, s Store) (core.ResolvedTools, error) {
	snap, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	if snap == nil || snap.Tools == nil {
		return core.ResolvedTools{}, nil
	}
	return snap.Tools, nil
}
