package database

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/victorivanov/complaintbox/internal/models"
	"github.com/victorivanov/complaintbox/internal/snowflake"
)

var (
	// ErrStoreUnavailable means the backing store could not be reached or failed the write.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrValidationRejected means the store refused a record that breaks its constraints.
	ErrValidationRejected = errors.New("validation rejected")
)

// ComplaintRepository is the append-only record store for complaints.
type ComplaintRepository interface {
	// Create persists c, assigning its ID and CreatedAt when they are unset.
	Create(ctx context.Context, c *models.Complaint) error
	// ListAll returns every complaint, newest first, ties in insertion order.
	ListAll(ctx context.Context) ([]models.Complaint, error)
	// Ping reports whether the store is reachable.
	Ping(ctx context.Context) error
	// Close releases the store's connections or file handle.
	Close() error
}

// stamp fills in the store-assigned fields of a new record.
func stamp(c *models.Complaint, sf *snowflake.Generator) {
	if c.ID == 0 {
		c.ID = sf.Generate().Int64()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC().Truncate(time.Microsecond)
	}
}

// sortNewestFirst orders by CreatedAt descending. The sort is stable, so
// records with equal timestamps stay in insertion (ascending ID) order.
func sortNewestFirst(items []models.Complaint) {
	slices.SortStableFunc(items, func(a, b models.Complaint) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
}
