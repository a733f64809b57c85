package out

import "context"

// NotifierPort sends the confirmation SMS. Delivery is best-effort: a send
// failure must never block or roll back the booking write.
type NotifierPort interface {
	SendSMS(ctx context.Context, toPhoneDigits string, body string) error
}
