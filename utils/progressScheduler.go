package utils

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
)

// ProgressSyncer recomputes the rollups of every active enrollment.
type ProgressSyncer interface {
	SyncActive(ctx context.Context) (int, []error)
}

const progressSyncTimeout = 30 * time.Minute

// RunProgressSync runs one repair pass and logs its outcome.
func RunProgressSync(ctx context.Context, syncer ProgressSyncer) int {
	log := Logger.With("scheduler", "PROGRESS-SYNC")
	log.Info("Running progress sync")

	ctx, cancel := context.WithTimeout(ctx, progressSyncTimeout)
	defer cancel()

	started := time.Now()
	synced, errs := syncer.SyncActive(ctx)
	for _, err := range errs {
		log.Warn("Enrollment sync failed", "error", err)
	}
	log.Info("Progress sync finished", "synced", synced, "failed", len(errs), "took", time.Since(started).String())
	return synced
}

// InitializeProgressSyncScheduler starts the consistency repair job on schedule
// (standard five-field cron). An empty schedule disables it and returns nil.
func InitializeProgressSyncScheduler(schedule string, syncer ProgressSyncer) (*cron.Cron, error) {
	if schedule == "" {
		Logger.Info("Progress sync scheduler disabled")
		return nil, nil
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		RunProgressSync(context.Background(), syncer)
	}); err != nil {
		return nil, err
	}

	c.Start()
	Logger.Info("Progress sync scheduler started", "cron", schedule)
	return c, nil
}
