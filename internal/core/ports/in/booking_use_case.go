package in

import (
	"context"

	"github.com/google/uuid"

	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
)

// BookingUseCase drives the visitor-facing wizard: availability, draft
// lifecycle, and the final confirmation write.
type BookingUseCase interface {
	// Availability returns the current schedule snapshot.
	Availability(ctx context.Context) (domain.Schedule, error)

	// Bootstrap fetches the schedule and the site config together; both
	// must complete before the wizard can render.
	Bootstrap(ctx context.Context) (domain.Schedule, *domain.SiteConfig, error)

	// SiteConfig is the passthrough display configuration alone.
	SiteConfig(ctx context.Context) (*domain.SiteConfig, error)

	// Draft lifecycle, one call per wizard step.
	StartDraft(ctx context.Context) *domain.DraftBooking
	Draft(ctx context.Context, id uuid.UUID) (*domain.DraftBooking, error)
	ChooseDay(ctx context.Context, id uuid.UUID, day json_types.CalendarDate) (*domain.DraftBooking, error)
	ChooseSlot(ctx context.Context, id uuid.UUID, slot domain.SlotIndex, filter domain.Meridiem) (*domain.DraftBooking, error)
	EnterContact(ctx context.Context, id uuid.UUID, contact domain.ContactInfo) (*domain.DraftBooking, error)

	// Confirm re-checks the slot against a fresh snapshot, writes the
	// record, and fires the best-effort confirmation SMS.
	Confirm(ctx context.Context, id uuid.UUID) (*domain.BookingRecord, error)

	// InvalidateAvailability drops any cached snapshot (another writer
	// touched the store).
	InvalidateAvailability(ctx context.Context)
}

// BookingFilter narrows the admin listing.
type BookingFilter struct {
	// Date keeps only bookings on the exact day.
	Date *json_types.CalendarDate
	// UpcomingOnly keeps only bookings on or after today.
	UpcomingOnly bool
}

// AdminUseCase is the admin surface: list/filter and delete.
type AdminUseCase interface {
	ListBookings(ctx context.Context, filter BookingFilter) ([]domain.DisplayRecord, error)
	DeleteBooking(ctx context.Context, id string) error
}
