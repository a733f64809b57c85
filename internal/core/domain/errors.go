package domain

import "errors"

var (
	// Validation errors. Recovered locally: they block progression but are
	// never fatal to the session.
	ErrIncompleteFields = errors.New("one or more required booking fields are missing")
	ErrInvalidEmail     = errors.New("email address is not valid")
	ErrInvalidPhone     = errors.New("phone number is not valid")

	// External-call errors.
	ErrFetchFailed  = errors.New("failed to fetch bookings from the store")
	ErrSubmitFailed = errors.New("failed to submit booking to the store")
	ErrDeleteFailed = errors.New("failed to delete booking from the store")

	// Selection errors.
	ErrDayUnavailable  = errors.New("day is not selectable")
	ErrSlotUnavailable = errors.New("slot is no longer available")

	// ErrWizardState rejects an operation fired out of wizard order.
	ErrWizardState = errors.New("operation not allowed in current wizard state")

	ErrDraftNotFound = errors.New("draft booking not found")
)
