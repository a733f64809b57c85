package domain

import (
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
)

// BookingRecord is the persisted shape of a confirmed appointment. ID is the
// store's opaque identifier; it is empty until the store assigns one and is
// carried alongside the record from fetch time onward so deletion never has
// to re-derive it.
type BookingRecord struct {
	ID    string                  `json:"id,omitempty"`
	Date  json_types.CalendarDate `json:"date"`
	Slot  SlotIndex               `json:"slot"`
	Name  string                  `json:"name"`
	Email string                  `json:"email"`
	Phone string                  `json:"phone"`
}

// ContactInfo is the third wizard step's raw input.
type ContactInfo struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// SiteConfig is passthrough display data from the store's config object.
type SiteConfig struct {
	SiteTitle  string `json:"siteTitle"`
	AboutURL   string `json:"aboutUrl"`
	ContactURL string `json:"contactUrl"`
	HomeURL    string `json:"homeUrl"`
}
