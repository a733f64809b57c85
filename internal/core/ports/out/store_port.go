package out

import (
	"context"

	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
)

// StorePort is the external object store holding booking records and the
// site config. The store's wire format is the adapter's business; the core
// only sees records keyed by the store's opaque identifier.
type StorePort interface {
	// ListBookings fetches every booking record, IDs included.
	ListBookings(ctx context.Context) ([]domain.BookingRecord, error)

	// CreateBooking persists a record and returns it with the assigned ID.
	CreateBooking(ctx context.Context, record domain.BookingRecord) (domain.BookingRecord, error)

	// DeleteBooking removes a record by its store identifier.
	DeleteBooking(ctx context.Context, id string) error

	// GetSiteConfig fetches the passthrough display configuration.
	GetSiteConfig(ctx context.Context) (*domain.SiteConfig, error)
}
