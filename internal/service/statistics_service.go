package service

import (
	"context"
	"time"

	"github.com/noah-isme/course-registry-api/internal/models"
)

type statisticsRegistry interface {
	Statistics() models.Statistics
}

// StatisticsService serves registry-wide counters through the cache.
type StatisticsService struct {
	registry statisticsRegistry
	cache    *CacheService
	metrics  *MetricsService
	cacheTTL time.Duration
}

// NewStatisticsService constructs the statistics service.
func NewStatisticsService(registry statisticsRegistry, cache *CacheService, metrics *MetricsService, cacheTTL time.Duration) *StatisticsService {
	return &StatisticsService{registry: registry, cache: cache, metrics: metrics, cacheTTL: cacheTTL}
}

// Get returns the statistics and whether they came from cache.
func (s *StatisticsService) Get(ctx context.Context) (*models.Statistics, bool, error) {
	var cached models.Statistics
	if hit, err := s.cache.Get(ctx, statisticsCacheKey, &cached); err == nil && hit {
		return &cached, true, nil
	}
	gen := s.cache.Generation()
	stats := s.registry.Statistics()
	_, _ = s.cache.SetIfCurrent(ctx, statisticsCacheKey, stats, s.cacheTTL, gen)
	return &stats, false, nil
}

// System returns the process instrumentation snapshot.
func (s *StatisticsService) System() models.SystemMetrics {
	return s.metrics.Snapshot()
}
