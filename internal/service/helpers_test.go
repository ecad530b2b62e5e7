package service

import (
	"testing"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registry-api/internal/registry"
	"github.com/noah-isme/course-registry-api/internal/repository"
)

func newTestRegistry(t *testing.T) *registry.Registry {
	t.Helper()
	clock := time.Date(2024, 9, 1, 8, 0, 0, 0, time.UTC)
	return registry.New(registry.Options{
		Clock:  func() time.Time { return clock },
		Logger: zap.NewNop(),
	})
}

func newTestCache(metrics *MetricsService) *CacheService {
	repo := repository.NewMemoryCacheRepository(gocache.New(time.Minute, time.Minute))
	return NewCacheService(repo, metrics, time.Minute, zap.NewNop(), true)
}

// seedRegistry registers S1..Sn and the given courses, all taught by Dr. Smith.
func seedRegistry(t *testing.T, r *registry.Registry, students []string, courses map[string]int) {
	t.Helper()
	for _, id := range students {
		require.NoError(t, r.AddStudent(id, "Name "+id))
	}
	for code, capacity := range courses {
		require.NoError(t, r.AddCourse(code, "Title "+code, "Dr. Smith", capacity))
	}
}

func intPtr(v int) *int { return &v }
