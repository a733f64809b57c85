package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/in"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
)

type nopLogger struct{}

func (l nopLogger) Debug(event string, fields out.LogFields) {}
func (l nopLogger) Info(event string, fields out.LogFields)  {}
func (l nopLogger) Warn(event string, fields out.LogFields)  {}
func (l nopLogger) Error(event string, fields out.LogFields) {}

func (l nopLogger) WithFields(fields out.LogFields) out.LoggerPort { return l }
func (l nopLogger) WithModule(module string) out.LoggerPort        { return l }

type fakeStore struct {
	mu        sync.Mutex
	records   []domain.BookingRecord
	nextID    int
	listErr   error
	createErr error
	deleteErr error
	siteCfg   domain.SiteConfig
}

func (f *fakeStore) ListBookings(ctx context.Context) ([]domain.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	records := make([]domain.BookingRecord, len(f.records))
	copy(records, f.records)
	return records, nil
}

func (f *fakeStore) CreateBooking(ctx context.Context, record domain.BookingRecord) (domain.BookingRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return domain.BookingRecord{}, f.createErr
	}
	f.nextID++
	record.ID = fmt.Sprintf("obj-%d", f.nextID)
	f.records = append(f.records, record)
	return record, nil
}

func (f *fakeStore) DeleteBooking(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	for i, record := range f.records {
		if record.ID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("no record with id %s", id)
}

func (f *fakeStore) GetSiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	cfg := f.siteCfg
	return &cfg, nil
}

func (f *fakeStore) seed(date json_types.CalendarDate, slot domain.SlotIndex) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	id := fmt.Sprintf("obj-%d", f.nextID)
	f.records = append(f.records, domain.BookingRecord{
		ID: id, Date: date, Slot: slot,
		Name: "Booked Already", Email: "taken@slot.com", Phone: "5550000000",
	})
	return id
}

type sentSMS struct {
	to   string
	body string
}

type fakeNotifier struct {
	mu      sync.Mutex
	sent    []sentSMS
	sendErr error
}

func (f *fakeNotifier) SendSMS(ctx context.Context, to string, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sent = append(f.sent, sentSMS{to: to, body: body})
	return nil
}

// june15 is the service day for every test; 2024-15-06 on the wire.
var june15 = time.Date(2024, time.June, 15, 10, 0, 0, 0, time.UTC)

func newTestService(store *fakeStore, notifier *fakeNotifier) *BookingService {
	var notifierPort out.NotifierPort
	if notifier != nil {
		notifierPort = notifier
	}
	svc := NewBookingService(store, notifierPort, nil, nopLogger{}, time.UTC)
	svc.now = func() time.Time { return june15 }
	return svc
}

func TestAvailability(t *testing.T) {
	ctx := context.Background()

	t.Run("Empty Store", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, nil)

		schedule, err := svc.Availability(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "2024-15-06", schedule.Today.String())
		assert.False(t, schedule.DaySelectable(schedule.Today))
		assert.True(t, schedule.DaySelectable(schedule.Today.AddDays(1)))
	})

	t.Run("Fetch Failure Is Wrapped", func(t *testing.T) {
		svc := newTestService(&fakeStore{listErr: errors.New("store down")}, nil)

		_, err := svc.Availability(ctx)

		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})

	t.Run("Bootstrap Returns Both", func(t *testing.T) {
		store := &fakeStore{siteCfg: domain.SiteConfig{SiteTitle: "Appointment Scheduler"}}
		svc := newTestService(store, nil)

		schedule, siteCfg, err := svc.Bootstrap(ctx)

		assert.NoError(t, err)
		assert.Equal(t, "Appointment Scheduler", siteCfg.SiteTitle)
		assert.Equal(t, "2024-15-06", schedule.Today.String())
	})

	t.Run("Bootstrap Fails When Fetch Fails", func(t *testing.T) {
		svc := newTestService(&fakeStore{listErr: errors.New("store down")}, nil)

		_, _, err := svc.Bootstrap(ctx)

		assert.ErrorIs(t, err, domain.ErrFetchFailed)
	})
}

func TestBookingFlow(t *testing.T) {
	ctx := context.Background()
	june16 := json_types.NewCalendarDate(2024, time.June, 16)

	t.Run("End To End", func(t *testing.T) {
		store := &fakeStore{}
		notifier := &fakeNotifier{}
		svc := newTestService(store, notifier)

		draft := svc.StartDraft(ctx)
		assert.Equal(t, domain.StateSelectingDay, draft.State)

		_, err := svc.ChooseDay(ctx, draft.ID, june16)
		assert.NoError(t, err)

		_, err = svc.ChooseSlot(ctx, draft.ID, 2, domain.MeridiemAM)
		assert.NoError(t, err)

		_, err = svc.EnterContact(ctx, draft.ID, domain.ContactInfo{
			FirstName: "Jane",
			LastName:  "Doe",
			Email:     "jane@doe.com",
			Phone:     "(555) 123-4567",
		})
		assert.NoError(t, err)

		record, err := svc.Confirm(ctx, draft.ID)
		assert.NoError(t, err)
		assert.Equal(t, "2024-16-06", record.Date.String())
		assert.Equal(t, domain.SlotIndex(2), record.Slot)
		assert.Equal(t, "Jane Doe", record.Name)
		assert.Equal(t, "jane@doe.com", record.Email)
		assert.Equal(t, "5551234567", record.Phone)
		assert.NotEmpty(t, record.ID)

		// The consumed draft leaves the registry.
		_, err = svc.Draft(ctx, draft.ID)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)

		assert.Len(t, notifier.sent, 1)
		assert.Equal(t, "5551234567", notifier.sent[0].to)
		assert.Contains(t, notifier.sent[0].body, "11:00 am")
		assert.Contains(t, notifier.sent[0].body, "Sunday June 16th, 2024")

		// The booked slot is gone from the next snapshot.
		schedule, err := svc.Availability(ctx)
		assert.NoError(t, err)
		assert.False(t, schedule.SlotFree(june16, 2))
		assert.True(t, schedule.SlotFree(june16, 3))
	})

	t.Run("Today Is Not Selectable", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, nil)
		draft := svc.StartDraft(ctx)

		_, err := svc.ChooseDay(ctx, draft.ID, json_types.NewCalendarDate(2024, time.June, 15))
		assert.ErrorIs(t, err, domain.ErrDayUnavailable)

		current, err := svc.Draft(ctx, draft.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.StateSelectingDay, current.State)
	})

	t.Run("Taken Slot Is Not Selectable", func(t *testing.T) {
		store := &fakeStore{}
		store.seed(june16, 2)
		svc := newTestService(store, nil)

		draft := svc.StartDraft(ctx)
		_, err := svc.ChooseDay(ctx, draft.ID, june16)
		assert.NoError(t, err)

		_, err = svc.ChooseSlot(ctx, draft.ID, 2, domain.MeridiemAM)
		assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	})

	t.Run("Meridiem Mismatch Rejected", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, nil)

		draft := svc.StartDraft(ctx)
		_, err := svc.ChooseDay(ctx, draft.ID, june16)
		assert.NoError(t, err)

		// Slot 5 starts at 2:00 pm; the AM filter must hide it.
		_, err = svc.ChooseSlot(ctx, draft.ID, 5, domain.MeridiemAM)
		assert.ErrorIs(t, err, domain.ErrSlotUnavailable)
	})

	t.Run("Validation Error Comes Back With Draft", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, nil)

		draft := svc.StartDraft(ctx)
		_, err := svc.ChooseDay(ctx, draft.ID, june16)
		assert.NoError(t, err)
		_, err = svc.ChooseSlot(ctx, draft.ID, 2, domain.MeridiemAM)
		assert.NoError(t, err)

		returned, err := svc.EnterContact(ctx, draft.ID, domain.ContactInfo{
			FirstName: "Jane", LastName: "Doe", Email: "a@b", Phone: "(555) 123-4567",
		})
		assert.ErrorIs(t, err, domain.ErrInvalidEmail)
		assert.NotNil(t, returned)
		assert.False(t, returned.EmailValid)
		assert.Equal(t, domain.StateEnteringContact, returned.State)
	})

	t.Run("Unknown Draft", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, nil)

		_, err := svc.Confirm(ctx, domain.NewDraftBooking().ID)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
	})
}

func TestConfirm(t *testing.T) {
	ctx := context.Background()
	june16 := json_types.NewCalendarDate(2024, time.June, 16)

	// draftReady walks a draft to Confirming.
	draftReady := func(svc *BookingService) *domain.DraftBooking {
		draft := svc.StartDraft(ctx)
		_, err := svc.ChooseDay(ctx, draft.ID, june16)
		assert.NoError(t, err)
		_, err = svc.ChooseSlot(ctx, draft.ID, 2, domain.MeridiemAM)
		assert.NoError(t, err)
		_, err = svc.EnterContact(ctx, draft.ID, domain.ContactInfo{
			FirstName: "Jane", LastName: "Doe", Email: "jane@doe.com", Phone: "(555) 123-4567",
		})
		assert.NoError(t, err)
		return draft
	}

	t.Run("Recheck Catches Concurrent Booking", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, nil)
		draft := draftReady(svc)

		// Another client takes the slot between selection and confirmation.
		store.seed(june16, 2)

		_, err := svc.Confirm(ctx, draft.ID)
		assert.ErrorIs(t, err, domain.ErrSlotUnavailable)

		current, err := svc.Draft(ctx, draft.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.StateConfirming, current.State)
	})

	t.Run("Submit Failure Keeps Draft For Retry", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, nil)
		draft := draftReady(svc)

		store.createErr = errors.New("store down")
		_, err := svc.Confirm(ctx, draft.ID)
		assert.ErrorIs(t, err, domain.ErrSubmitFailed)

		current, err := svc.Draft(ctx, draft.ID)
		assert.NoError(t, err)
		assert.Equal(t, domain.StateConfirming, current.State)

		// Retrying the same action succeeds once the store recovers.
		store.createErr = nil
		record, err := svc.Confirm(ctx, draft.ID)
		assert.NoError(t, err)
		assert.NotEmpty(t, record.ID)
	})

	t.Run("SMS Failure Does Not Roll Back", func(t *testing.T) {
		store := &fakeStore{}
		notifier := &fakeNotifier{sendErr: errors.New("carrier rejected")}
		svc := newTestService(store, notifier)
		draft := draftReady(svc)

		record, err := svc.Confirm(ctx, draft.ID)
		assert.NoError(t, err)
		assert.NotEmpty(t, record.ID)
		assert.Len(t, store.records, 1, "the write stands even when the SMS fails")
	})

	t.Run("Double Confirm Rejected", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, nil)
		draft := draftReady(svc)

		_, err := svc.Confirm(ctx, draft.ID)
		assert.NoError(t, err)

		// The first confirm consumed the draft.
		_, err = svc.Confirm(ctx, draft.ID)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)
		assert.Len(t, store.records, 1)
	})

	t.Run("Concurrent Confirms Write Once", func(t *testing.T) {
		store := &fakeStore{}
		svc := newTestService(store, nil)
		draft := draftReady(svc)

		errs := make(chan error, 2)
		var wg sync.WaitGroup
		wg.Add(2)
		for i := 0; i < 2; i++ {
			go func() {
				defer wg.Done()
				_, err := svc.Confirm(ctx, draft.ID)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		failures := 0
		for err := range errs {
			if err != nil {
				failures++
			}
		}
		assert.Equal(t, 1, failures, "exactly one confirm may win")
		assert.Len(t, store.records, 1)
	})
}

func TestDraftExpiry(t *testing.T) {
	ctx := context.Background()

	t.Run("Abandoned Drafts Are Swept", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, nil)
		current := june15
		svc.now = func() time.Time { return current }

		stale := svc.StartDraft(ctx)

		current = june15.Add(draftTTL + time.Minute)
		fresh := svc.StartDraft(ctx)

		_, err := svc.Draft(ctx, stale.ID)
		assert.ErrorIs(t, err, domain.ErrDraftNotFound)

		_, err = svc.Draft(ctx, fresh.ID)
		assert.NoError(t, err)
	})

	t.Run("Activity Keeps A Draft Alive", func(t *testing.T) {
		svc := newTestService(&fakeStore{}, nil)
		current := june15
		svc.now = func() time.Time { return current }

		draft := svc.StartDraft(ctx)

		current = current.Add(draftTTL - time.Minute)
		_, err := svc.Draft(ctx, draft.ID)
		assert.NoError(t, err)

		// The touch above reset the idle timer; the sweep must keep it.
		current = current.Add(draftTTL - time.Minute)
		svc.StartDraft(ctx)

		_, err = svc.Draft(ctx, draft.ID)
		assert.NoError(t, err)
	})
}

func TestAdmin(t *testing.T) {
	ctx := context.Background()
	june16 := json_types.NewCalendarDate(2024, time.June, 16)

	t.Run("List Carries Store IDs", func(t *testing.T) {
		store := &fakeStore{}
		id := store.seed(june16, 2)
		svc := newTestService(store, nil)

		rows, err := svc.ListBookings(ctx, in.BookingFilter{})

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, id, rows[0].ID)
		assert.Equal(t, "Sunday, June 16th, 2024", rows[0].Date)
		assert.Equal(t, "11:00 am - 12:00 pm", rows[0].Time)
	})

	t.Run("List Sorted By Date Then Slot", func(t *testing.T) {
		store := &fakeStore{}
		store.seed(june16.AddDays(1), 0)
		store.seed(june16, 5)
		store.seed(june16, 1)
		svc := newTestService(store, nil)

		rows, err := svc.ListBookings(ctx, in.BookingFilter{})

		assert.NoError(t, err)
		assert.Len(t, rows, 3)
		assert.Equal(t, "10:00 am - 11:00 am", rows[0].Time)
		assert.Equal(t, "2:00 pm - 3:00 pm", rows[1].Time)
		assert.Equal(t, "Monday, June 17th, 2024", rows[2].Date)
	})

	t.Run("Date Filter", func(t *testing.T) {
		store := &fakeStore{}
		store.seed(june16, 2)
		store.seed(june16.AddDays(1), 2)
		svc := newTestService(store, nil)

		rows, err := svc.ListBookings(ctx, in.BookingFilter{Date: &june16})

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("Upcoming Filter Drops Past Bookings", func(t *testing.T) {
		store := &fakeStore{}
		store.seed(json_types.NewCalendarDate(2024, time.June, 10), 2)
		store.seed(june16, 2)
		svc := newTestService(store, nil)

		rows, err := svc.ListBookings(ctx, in.BookingFilter{UpcomingOnly: true})

		assert.NoError(t, err)
		assert.Len(t, rows, 1)
		assert.Equal(t, "Sunday, June 16th, 2024", rows[0].Date)
	})

	t.Run("Delete Frees The Slot", func(t *testing.T) {
		store := &fakeStore{}
		id := store.seed(june16, 2)
		svc := newTestService(store, nil)

		before, err := svc.Availability(ctx)
		assert.NoError(t, err)
		assert.False(t, before.SlotFree(june16, 2))

		assert.NoError(t, svc.DeleteBooking(ctx, id))

		after, err := svc.Availability(ctx)
		assert.NoError(t, err)
		assert.True(t, after.SlotFree(june16, 2))
		assert.True(t, after.DaySelectable(june16))
	})

	t.Run("Delete Failure Is Wrapped", func(t *testing.T) {
		store := &fakeStore{deleteErr: errors.New("store down")}
		svc := newTestService(store, nil)

		err := svc.DeleteBooking(ctx, "obj-1")
		assert.ErrorIs(t, err, domain.ErrDeleteFailed)
	})
}
