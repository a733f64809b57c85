package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
)

// draftTTL bounds how long an idle wizard session is kept before the next
// sweep drops it.
const draftTTL = 30 * time.Minute

// draftSession pairs a draft with its own lock. The service mutex guards
// only the registry map; a single draft's state check and transition must
// serialize on the session lock so two concurrent requests cannot both
// pass the check.
type draftSession struct {
	mu    sync.Mutex
	draft *domain.DraftBooking

	// touched is guarded by the service mutex, not the session lock.
	touched time.Time
}

// snapshot copies the draft for callers outside the lock. Mutators replace
// the Date and Slot pointers instead of writing through them, so a shallow
// copy never observes a partial update.
func (sess *draftSession) snapshot() *domain.DraftBooking {
	sess.mu.Lock()
	view := *sess.draft
	sess.mu.Unlock()
	return &view
}

func (s *BookingService) StartDraft(ctx context.Context) *domain.DraftBooking {
	draft := domain.NewDraftBooking()

	s.mu.Lock()
	s.pruneExpiredLocked()
	s.drafts[draft.ID] = &draftSession{draft: draft, touched: s.now()}
	s.mu.Unlock()

	s.logger.Debug("draft.started", out.LogFields{
		"draftId": draft.ID,
	})

	view := *draft
	return &view
}

// session looks up a draft's session and refreshes its idle timer.
func (s *BookingService) session(id uuid.UUID) (*draftSession, error) {
	s.mu.Lock()
	sess, exists := s.drafts[id]
	if exists {
		sess.touched = s.now()
	}
	s.mu.Unlock()

	if !exists {
		return nil, domain.ErrDraftNotFound
	}
	return sess, nil
}

// pruneExpiredLocked drops sessions idle past draftTTL. Draft creation is
// unauthenticated, so abandoned sessions must not accumulate. Caller holds
// the service mutex.
func (s *BookingService) pruneExpiredLocked() {
	cutoff := s.now().Add(-draftTTL)
	pruned := 0
	for id, sess := range s.drafts {
		if sess.touched.Before(cutoff) {
			delete(s.drafts, id)
			pruned++
		}
	}
	if pruned > 0 {
		s.logger.Debug("draft.expired_pruned", out.LogFields{
			"count": pruned,
		})
	}
}

func (s *BookingService) Draft(ctx context.Context, id uuid.UUID) (*domain.DraftBooking, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return sess.snapshot(), nil
}

func (s *BookingService) ChooseDay(ctx context.Context, id uuid.UUID, day json_types.CalendarDate) (*domain.DraftBooking, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	schedule, err := s.Availability(ctx)
	if err != nil {
		return sess.snapshot(), err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if !schedule.DaySelectable(day) {
		view := *sess.draft
		return &view, domain.ErrDayUnavailable
	}
	if err := sess.draft.SelectDay(day); err != nil {
		view := *sess.draft
		return &view, err
	}

	s.logger.Debug("draft.day_selected", out.LogFields{
		"draftId": id,
		"day":     day.String(),
	})

	view := *sess.draft
	return &view, nil
}

func (s *BookingService) ChooseSlot(ctx context.Context, id uuid.UUID, slot domain.SlotIndex, filter domain.Meridiem) (*domain.DraftBooking, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	schedule, err := s.Availability(ctx)
	if err != nil {
		return sess.snapshot(), err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.draft.Date == nil {
		view := *sess.draft
		return &view, domain.ErrWizardState
	}
	if !slot.Valid() || !schedule.SlotSelectable(*sess.draft.Date, slot, filter) {
		view := *sess.draft
		return &view, domain.ErrSlotUnavailable
	}
	if err := sess.draft.SelectSlot(slot, filter); err != nil {
		view := *sess.draft
		return &view, err
	}

	s.logger.Debug("draft.slot_selected", out.LogFields{
		"draftId": id,
		"slot":    int(slot),
	})

	view := *sess.draft
	return &view, nil
}

func (s *BookingService) EnterContact(ctx context.Context, id uuid.UUID, contact domain.ContactInfo) (*domain.DraftBooking, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	// Validation errors come back with the draft so per-field flags can be
	// surfaced inline; the draft keeps the rejected input.
	setErr := sess.draft.SetContact(contact)
	view := *sess.draft
	return &view, setErr
}

// Confirm performs the final commit: assemble the record, re-check the slot
// against a fresh snapshot, write to the store, then fire the SMS. The
// session lock is held across the whole sequence, so a duplicate confirm
// waits and then fails the state check instead of writing a second record.
// The re-check is best-effort rather than transactional; the store itself
// offers no conditional write.
func (s *BookingService) Confirm(ctx context.Context, id uuid.UUID) (*domain.BookingRecord, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()

	draft := sess.draft
	if draft.State != domain.StateConfirming {
		return nil, domain.ErrWizardState
	}

	record, err := domain.AssembleBooking(draft)
	if err != nil {
		return nil, err
	}

	fresh, err := s.freshSchedule(ctx, s.today())
	if err != nil {
		return nil, err
	}
	if !fresh.SlotFree(record.Date, record.Slot) {
		s.logger.Warn("draft.confirm.slot_taken", out.LogFields{
			"draftId": draft.ID,
			"date":    record.Date.String(),
			"slot":    int(record.Slot),
		})
		return nil, domain.ErrSlotUnavailable
	}

	created, err := s.storePort.CreateBooking(ctx, record)
	if err != nil {
		// The draft stays in Confirming so the visitor can retry.
		s.logger.Error("draft.confirm.submit_failed", out.LogFields{
			"draftId": draft.ID,
			"error":   err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", domain.ErrSubmitFailed, err)
	}

	if err := draft.Complete(); err != nil {
		return nil, err
	}

	// The draft is consumed; drop it from the registry.
	s.mu.Lock()
	delete(s.drafts, id)
	s.mu.Unlock()

	if s.cachePort != nil {
		s.cachePort.InvalidateSchedule(ctx)
	}

	s.notify(ctx, created)

	s.logger.Info("draft.confirmed", out.LogFields{
		"draftId":   draft.ID,
		"bookingId": created.ID,
		"date":      created.Date.String(),
		"slot":      int(created.Slot),
	})

	return &created, nil
}

// notify fires the confirmation SMS. The write already happened; a send
// failure is logged and swallowed.
func (s *BookingService) notify(ctx context.Context, record domain.BookingRecord) {
	if s.notifierPort == nil {
		return
	}
	if err := s.notifierPort.SendSMS(ctx, record.Phone, domain.SMSBody(record)); err != nil {
		s.logger.Warn("draft.confirm.sms_failed", out.LogFields{
			"bookingId": record.ID,
			"error":     err.Error(),
		})
	}
}
