package service

import (
	"context"

	"github.com/noah-isme/course-registry-api/internal/models"
	appErrors "github.com/noah-isme/course-registry-api/pkg/errors"
)

type activityRegistry interface {
	Activity() []models.ActivityLogEntry
	RecentActivity(n int) []models.ActivityLogEntry
}

type activityArchive interface {
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ArchivedActivity, error)
	Count(ctx context.Context, filter models.ActivityFilter) (int, error)
}

// ActivityService reads the in-memory audit trail and, when configured, the
// Postgres archive.
type ActivityService struct {
	registry activityRegistry
	archive  activityArchive
}

// NewActivityService constructs the activity service. archive may be nil.
func NewActivityService(registry activityRegistry, archive activityArchive) *ActivityService {
	return &ActivityService{registry: registry, archive: archive}
}

// List returns the whole log when last is nil, otherwise the last *last entries.
func (s *ActivityService) List(ctx context.Context, last *int) []models.ActivityLogEntry {
	if last == nil {
		return s.registry.Activity()
	}
	return s.registry.RecentActivity(*last)
}

// Archived pages through archived entries.
func (s *ActivityService) Archived(ctx context.Context, filter models.ActivityFilter, page, size int) ([]models.ArchivedActivity, *models.Pagination, error) {
	if s.archive == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "activity archive is disabled")
	}
	page, size = normalizePage(page, size)
	filter.Limit = size
	filter.Offset = (page - 1) * size

	items, err := s.archive.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list archived activity")
	}
	total, err := s.archive.Count(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count archived activity")
	}
	return items, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}
