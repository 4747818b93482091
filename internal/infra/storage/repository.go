// Package storage provides the persistence layer for the sorting server.
// It holds the event ledger and the discovered-identity catalog; the item
// tree itself is never persisted and is rebuilt from its definition file.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// StoredEvent mirrors the domain event structure for persistence.
// The domain package does NOT import this; adapters translate at the edge.
type StoredEvent struct {
	ID        string                 `json:"id" db:"id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	Source    string                 `json:"source" db:"source"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event StoredEvent) error

	// GetAll retrieves the full ledger in timestamp order.
	GetAll(ctx context.Context) ([]StoredEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, eventType string) ([]StoredEvent, error)

	// GetBySource retrieves all events triggered by a specific source.
	GetBySource(ctx context.Context, source string) ([]StoredEvent, error)
}

// IdentityRecord is one concrete identity the external registry has
// associated with an alias key.
type IdentityRecord struct {
	Key          string    `json:"key" db:"key"`
	TypeID       int       `json:"type_id" db:"type_id"`
	Variant      int       `json:"variant" db:"variant"`
	DiscoveredAt time.Time `json:"discovered_at" db:"discovered_at"`
}

// IdentityRepository defines the interface for the discovered-identity
// catalog. The catalog survives restarts so aliases resolve against
// everything ever discovered, not just what arrives while we are up.
type IdentityRepository interface {
	// Upsert records a discovered identity; re-discovering the same
	// (key, type, variant) triple refreshes its timestamp.
	Upsert(ctx context.Context, record IdentityRecord) error

	// GetByKey retrieves every identity discovered for a key.
	GetByKey(ctx context.Context, key string) ([]IdentityRecord, error)

	// GetAll retrieves the whole catalog in discovery order.
	GetAll(ctx context.Context) ([]IdentityRecord, error)
}
