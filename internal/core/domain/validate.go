package domain

import (
	"regexp"
	"strings"
)

var (
	emailRegex = regexp.MustCompile(`(?i)^[a-z0-9._%+-]+@[a-z0-9.-]+\.[a-z]{2,}$`)
	// North-American 10-digit number, optional leading 1, optional
	// parentheses/hyphens/dots/spaces between groups.
	phoneRegex    = regexp.MustCompile(`^1?[-. ]?\(?\d{3}\)?[-. ]?\d{3}[-. ]?\d{4}$`)
	nonDigitRegex = regexp.MustCompile(`\D`)
)

func ValidEmail(s string) bool {
	return emailRegex.MatchString(strings.TrimSpace(s))
}

func ValidPhone(s string) bool {
	return phoneRegex.MatchString(strings.TrimSpace(s))
}

// NormalizePhone strips every non-digit character. Used only at the point of
// external submission; display keeps the user's formatting.
func NormalizePhone(s string) string {
	return nonDigitRegex.ReplaceAllString(s, "")
}

// FormatPhone renders a normalized number as "(888) 888-8888" for display.
// Anything that is not a plain 10-digit number is returned untouched.
func FormatPhone(s string) string {
	digits := NormalizePhone(s)
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return s
	}
	return "(" + digits[:3] + ") " + digits[3:6] + "-" + digits[6:]
}

// AssembleBooking consumes a completed draft into a normalized record ready
// for the store. The stored values are re-validated here so a record can
// never be assembled around stale per-field flags.
func AssembleBooking(draft *DraftBooking) (BookingRecord, error) {
	if draft == nil || draft.Date == nil || draft.Slot == nil {
		return BookingRecord{}, ErrIncompleteFields
	}
	contact := draft.Contact
	if contact.FirstName == "" || contact.LastName == "" || contact.Email == "" || contact.Phone == "" {
		return BookingRecord{}, ErrIncompleteFields
	}
	if !ValidEmail(contact.Email) {
		return BookingRecord{}, ErrInvalidEmail
	}
	if !ValidPhone(contact.Phone) {
		return BookingRecord{}, ErrInvalidPhone
	}

	return BookingRecord{
		Date:  *draft.Date,
		Slot:  *draft.Slot,
		Name:  contact.FirstName + " " + contact.LastName,
		Email: contact.Email,
		Phone: NormalizePhone(contact.Phone),
	}, nil
}
