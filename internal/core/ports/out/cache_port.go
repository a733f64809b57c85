package out

import (
	"context"

	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
)

// CachePort caches built availability snapshots. A snapshot is only valid
// for the service day it was built on.
type CachePort interface {
	GetSchedule(ctx context.Context, today json_types.CalendarDate) (domain.Schedule, bool)
	StoreSchedule(ctx context.Context, schedule domain.Schedule)
	InvalidateSchedule(ctx context.Context)
}
