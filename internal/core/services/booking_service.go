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

type BookingService struct {
	storePort    out.StorePort
	notifierPort out.NotifierPort
	cachePort    out.CachePort
	logger       out.LoggerPort
	location     *time.Location
	now          func() time.Time

	mu     sync.Mutex
	drafts map[uuid.UUID]*draftSession
}

func NewBookingService(
	storePort out.StorePort,
	notifierPort out.NotifierPort,
	cachePort out.CachePort,
	logger out.LoggerPort,
	location *time.Location,
) *BookingService {
	if location == nil {
		location = time.UTC
	}
	return &BookingService{
		storePort:    storePort,
		notifierPort: notifierPort,
		cachePort:    cachePort,
		logger:       logger.WithModule("BookingService"),
		location:     location,
		now:          time.Now,
		drafts:       make(map[uuid.UUID]*draftSession),
	}
}

func (s *BookingService) today() json_types.CalendarDate {
	return json_types.CalendarDateOf(s.now().In(s.location))
}

// Availability returns the schedule snapshot for the current service day,
// from cache when possible.
func (s *BookingService) Availability(ctx context.Context) (domain.Schedule, error) {
	today := s.today()

	if s.cachePort != nil {
		if schedule, exists := s.cachePort.GetSchedule(ctx, today); exists {
			s.logger.Debug("availability.cache.hit", out.LogFields{
				"today": today.String(),
				"days":  len(schedule.Days),
			})
			return schedule, nil
		}
	}

	schedule, err := s.freshSchedule(ctx, today)
	if err != nil {
		return domain.Schedule{}, err
	}

	if s.cachePort != nil {
		s.cachePort.StoreSchedule(ctx, schedule)
	}

	return schedule, nil
}

// freshSchedule always hits the store. Used on cache miss and for the
// submission-time re-check, which must not trust a cached snapshot.
func (s *BookingService) freshSchedule(ctx context.Context, today json_types.CalendarDate) (domain.Schedule, error) {
	records, err := s.storePort.ListBookings(ctx)
	if err != nil {
		s.logger.Error("availability.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return domain.Schedule{}, fmt.Errorf("%w: %s", domain.ErrFetchFailed, err)
	}

	schedule := domain.BuildSchedule(records, today)

	s.logger.Debug("availability.built", out.LogFields{
		"today":    today.String(),
		"bookings": len(records),
		"days":     len(schedule.Days),
	})

	return schedule, nil
}

// Bootstrap fetches bookings and site config together. Both calls run
// concurrently and both must succeed before the wizard can render.
func (s *BookingService) Bootstrap(ctx context.Context) (domain.Schedule, *domain.SiteConfig, error) {
	var (
		wg       sync.WaitGroup
		schedule domain.Schedule
		siteCfg  *domain.SiteConfig
	)
	errCh := make(chan error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		var err error
		schedule, err = s.Availability(ctx)
		if err != nil {
			errCh <- err
		}
	}()
	go func() {
		defer wg.Done()
		var err error
		siteCfg, err = s.SiteConfig(ctx)
		if err != nil {
			errCh <- err
		}
	}()

	wg.Wait()
	close(errCh)

	for err := range errCh {
		if err != nil {
			return domain.Schedule{}, nil, err
		}
	}

	return schedule, siteCfg, nil
}

func (s *BookingService) SiteConfig(ctx context.Context) (*domain.SiteConfig, error) {
	siteCfg, err := s.storePort.GetSiteConfig(ctx)
	if err != nil {
		s.logger.Error("site_config.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", domain.ErrFetchFailed, err)
	}
	return siteCfg, nil
}

// InvalidateAvailability drops the cached snapshot. Called when an external
// event reports that another writer touched the store.
func (s *BookingService) InvalidateAvailability(ctx context.Context) {
	if s.cachePort == nil {
		return
	}
	s.cachePort.InvalidateSchedule(ctx)
	s.logger.Info("availability.cache.invalidated", out.LogFields{})
}
