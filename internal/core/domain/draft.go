package domain

import (
	"github.com/google/uuid"

	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
)

// WizardState is the booking wizard's position. States advance strictly
// forward; there is no edit-after-submit path.
type WizardState string

const (
	StateSelectingDay    WizardState = "selecting_day"
	StateSelectingSlot   WizardState = "selecting_slot"
	StateEnteringContact WizardState = "entering_contact"
	StateConfirming      WizardState = "confirming"
	StateSubmitted       WizardState = "submitted"
)

// DraftBooking accumulates the visitor's selections across the three wizard
// steps. It lives server-side for the session and is consumed into a
// BookingRecord on confirmation.
type DraftBooking struct {
	ID       uuid.UUID                `json:"id"`
	State    WizardState              `json:"state"`
	Date     *json_types.CalendarDate `json:"date,omitempty"`
	Slot     *SlotIndex               `json:"slot,omitempty"`
	Meridiem Meridiem                 `json:"meridiem"`
	Contact  ContactInfo              `json:"contact"`

	EmailValid bool `json:"emailValid"`
	PhoneValid bool `json:"phoneValid"`
}

func NewDraftBooking() *DraftBooking {
	return &DraftBooking{
		ID:       uuid.New(),
		State:    StateSelectingDay,
		Meridiem: MeridiemAM,
	}
}

// SelectDay records the chosen day and advances to slot selection. The
// caller checks selectability against the schedule first.
func (d *DraftBooking) SelectDay(day json_types.CalendarDate) error {
	if d.State != StateSelectingDay {
		return ErrWizardState
	}
	d.Date = &day
	d.State = StateSelectingSlot
	return nil
}

// SelectSlot records the chosen slot and the meridiem filter it was picked
// under, then advances to contact entry.
func (d *DraftBooking) SelectSlot(slot SlotIndex, filter Meridiem) error {
	if d.State != StateSelectingSlot {
		return ErrWizardState
	}
	d.Slot = &slot
	d.Meridiem = filter
	d.State = StateEnteringContact
	return nil
}

// SetContact stores the contact fields and advances to Confirming only when
// both names are present and email and phone validate. On rejection the
// draft keeps the fields and the per-field flags so the caller can surface
// inline messaging; the state does not move.
func (d *DraftBooking) SetContact(contact ContactInfo) error {
	if d.State != StateEnteringContact {
		return ErrWizardState
	}

	d.Contact = contact
	d.EmailValid = ValidEmail(contact.Email)
	d.PhoneValid = ValidPhone(contact.Phone)

	if contact.FirstName == "" || contact.LastName == "" || contact.Email == "" || contact.Phone == "" {
		return ErrIncompleteFields
	}
	if !d.EmailValid {
		return ErrInvalidEmail
	}
	if !d.PhoneValid {
		return ErrInvalidPhone
	}

	d.State = StateConfirming
	return nil
}

// Complete marks the draft submitted after a successful store write. A
// failed write leaves the draft in Confirming for an explicit retry.
func (d *DraftBooking) Complete() error {
	if d.State != StateConfirming {
		return ErrWizardState
	}
	d.State = StateSubmitted
	return nil
}
