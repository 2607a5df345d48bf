// Package repository persists solved equilibrium runs so reports can be
// produced without recomputing.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/okian/bertrand/internal/domain/model"
)

// Run is one scenario's set of partition outcomes computed together.
type Run struct {
	ID        uuid.UUID
	Scenario  string
	CreatedAt time.Time
	Outcomes  []model.Outcome
}

// Store provides read/write access to persisted runs.
type Store interface {
	// Save writes a run and its outcomes atomically. A zero ID is replaced
	// by a fresh one and the stored ID is returned.
	Save(ctx context.Context, run Run) (uuid.UUID, error)

	// Latest returns the most recent run for a scenario.
	// Returns ErrNotFound if nothing was persisted for it.
	Latest(ctx context.Context, scenario string) (Run, error)

	// Close releases the underlying connection.
	Close() error
}
