package services

import (
	"context"
	"fmt"
	"sort"

	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/in"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
)

// ListBookings renders the admin table. Every row carries the store's
// record ID so a later delete never re-derives it from displayed text.
func (s *BookingService) ListBookings(ctx context.Context, filter in.BookingFilter) ([]domain.DisplayRecord, error) {
	records, err := s.storePort.ListBookings(ctx)
	if err != nil {
		s.logger.Error("admin.list.fetch_failed", out.LogFields{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %s", domain.ErrFetchFailed, err)
	}

	today := s.today()
	filtered := make([]domain.BookingRecord, 0, len(records))
	for _, record := range records {
		if filter.Date != nil && record.Date != *filter.Date {
			continue
		}
		if filter.UpcomingOnly && record.Date.Before(today) {
			continue
		}
		filtered = append(filtered, record)
	}

	sort.Slice(filtered, func(i, j int) bool {
		if filtered[i].Date != filtered[j].Date {
			return filtered[i].Date.Before(filtered[j].Date)
		}
		return filtered[i].Slot < filtered[j].Slot
	})

	rows := make([]domain.DisplayRecord, 0, len(filtered))
	for _, record := range filtered {
		rows = append(rows, domain.ConfirmationDetails(record))
	}

	s.logger.Debug("admin.list.built", out.LogFields{
		"total":    len(records),
		"returned": len(rows),
	})

	return rows, nil
}

func (s *BookingService) DeleteBooking(ctx context.Context, id string) error {
	if err := s.storePort.DeleteBooking(ctx, id); err != nil {
		s.logger.Error("admin.delete.failed", out.LogFields{
			"bookingId": id,
			"error":     err.Error(),
		})
		return fmt.Errorf("%w: %s", domain.ErrDeleteFailed, err)
	}

	if s.cachePort != nil {
		s.cachePort.InvalidateSchedule(ctx)
	}

	s.logger.Info("admin.delete.done", out.LogFields{
		"bookingId": id,
	})

	return nil
}
