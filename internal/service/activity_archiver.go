package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/course-registry-api/internal/models"
	"github.com/noah-isme/course-registry-api/pkg/jobs"
)

// Archive outcomes reported to metrics.
const (
	ArchiveStored  = "stored"
	ArchiveFailed  = "failed"
	ArchiveDropped = "dropped"
)

const archiveJobType = "activity.archive"

type activityWriter interface {
	Insert(ctx context.Context, entry *models.ArchivedActivity) error
}

// ArchiverConfig tunes the background archive queue.
type ArchiverConfig struct {
	InstanceID string
	Workers    int
	Retries    int
	BufferSize int
}

// ActivityArchiver copies every activity log entry into the Postgres archive
// on a background queue. Observe is safe to call while the registry lock is held.
type ActivityArchiver struct {
	repo       activityWriter
	queue      *jobs.Queue
	instanceID string
	metrics    *MetricsService
	logger     *zap.Logger
}

// NewActivityArchiver constructs the archiver. Start must be called before entries are observed.
func NewActivityArchiver(repo activityWriter, cfg ArchiverConfig, metrics *MetricsService, logger *zap.Logger) *ActivityArchiver {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	a := &ActivityArchiver{repo: repo, instanceID: cfg.InstanceID, metrics: metrics, logger: logger}
	a.queue = jobs.NewQueue("activity-archive", a.persist, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.Retries,
		Logger:     logger,
	})
	return a
}

// InstanceID identifies this process in archived rows.
func (a *ActivityArchiver) InstanceID() string {
	return a.instanceID
}

// Start launches the archive workers.
func (a *ActivityArchiver) Start(ctx context.Context) {
	a.queue.Start(ctx)
}

// Stop halts the workers.
func (a *ActivityArchiver) Stop() {
	a.queue.Stop()
}

// Observe enqueues entry without blocking. Entries that do not fit in the
// buffer are dropped and counted; the in-memory log still holds them.
func (a *ActivityArchiver) Observe(entry models.ActivityLogEntry) {
	err := a.queue.TryEnqueue(jobs.Job{
		ID:      fmt.Sprintf("%s-%d", a.instanceID, entry.Seq),
		Type:    archiveJobType,
		Payload: entry,
	})
	if err == nil {
		return
	}
	a.metrics.RecordArchive(ArchiveDropped)
	if errors.Is(err, jobs.ErrQueueFull) {
		a.logger.Warn("activity archive buffer full, entry not archived", zap.Uint64("seq", entry.Seq))
		return
	}
	a.logger.Warn("activity archive unavailable", zap.Uint64("seq", entry.Seq), zap.Error(err))
}

func (a *ActivityArchiver) persist(ctx context.Context, job jobs.Job) error {
	entry, ok := job.Payload.(models.ActivityLogEntry)
	if !ok {
		a.logger.Error("unexpected archive payload", zap.String("job_id", job.ID))
		return nil
	}
	record := &models.ArchivedActivity{ActivityLogEntry: entry, InstanceID: a.instanceID}
	if err := a.repo.Insert(ctx, record); err != nil {
		a.metrics.RecordArchive(ArchiveFailed)
		return err
	}
	a.metrics.RecordArchive(ArchiveStored)
	return nil
}
