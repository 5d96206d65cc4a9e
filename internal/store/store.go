// Package store holds the authoritative ticket collection. A store is the
// single source of truth: every insert or mutate persists the full
// collection before returning, and the read-modify-write cycle runs under
// an exclusive per-store critical section.
package store

import (
	"context"
	"errors"

	"github.com/spec-kit/request-desk/internal/domain"
)

// ErrNotFound is returned when a referenced ticket id does not exist.
var ErrNotFound = errors.New("ticket not found")

// TicketStore is the entity store contract.
type TicketStore interface {
	// Get returns the ticket with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*domain.Ticket, error)
	// List returns the full collection. Order is unspecified but stable
	// within a single read.
	List(ctx context.Context) ([]domain.Ticket, error)
	// Insert adds a new ticket and persists the collection.
	Insert(ctx context.Context, ticket *domain.Ticket) error
	// Mutate applies fn to the stored ticket under the store's critical
	// section, persists, and returns the updated record. A missing id
	// returns ErrNotFound and writes nothing.
	Mutate(ctx context.Context, id string, fn func(*domain.Ticket) error) (*domain.Ticket, error)
	// Ping reports whether the backing medium is reachable.
	Ping(ctx context.Context) error
}
