package cache

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/cosmicjs/appointment-scheduler/internal/config"
	"github.com/cosmicjs/appointment-scheduler/internal/core/domain"
	"github.com/cosmicjs/appointment-scheduler/internal/core/json_types"
	"github.com/cosmicjs/appointment-scheduler/internal/core/ports/out"
)

// ScheduleCacheAdapter keeps built availability snapshots keyed by the
// service day they were built on. One entry per day is enough; the LRU just
// keeps old days from piling up.
type ScheduleCacheAdapter struct {
	cache  *lru.Cache[json_types.CalendarDate, domain.Schedule]
	mu     sync.RWMutex
	logger out.LoggerPort
}

func NewScheduleCacheAdapter(cfg *config.Config, logger out.LoggerPort) (*ScheduleCacheAdapter, error) {
	if !cfg.Cache.Enabled {
		logger.Info("cache.disabled", out.LogFields{
			"message": "Schedule cache is disabled",
		})
		return nil, nil
	}

	cache, err := lru.New[json_types.CalendarDate, domain.Schedule](cfg.Cache.Size)
	if err != nil {
		logger.Error("cache.init.failed", out.LogFields{
			"error": err.Error(),
			"size":  cfg.Cache.Size,
		})
		return nil, err
	}

	return &ScheduleCacheAdapter{
		cache:  cache,
		logger: logger,
	}, nil
}

func (c *ScheduleCacheAdapter) GetSchedule(ctx context.Context, today json_types.CalendarDate) (domain.Schedule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	schedule, exists := c.cache.Get(today)
	if !exists {
		c.logger.Debug("cache.get.miss", out.LogFields{
			"today": today.String(),
		})
		return domain.Schedule{}, false
	}

	c.logger.Debug("cache.get.hit", out.LogFields{
		"today": today.String(),
		"days":  len(schedule.Days),
	})
	return schedule, true
}

func (c *ScheduleCacheAdapter) StoreSchedule(ctx context.Context, schedule domain.Schedule) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.logger.Debug("cache.store", out.LogFields{
		"today": schedule.Today.String(),
		"days":  len(schedule.Days),
	})

	c.cache.Add(schedule.Today, schedule)
}

func (c *ScheduleCacheAdapter) InvalidateSchedule(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Purge()
	c.logger.Debug("cache.invalidated", out.LogFields{})
}
