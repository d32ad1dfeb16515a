package jobs

import (
	"context"
	"errors"
	"log/slog"

	"parceltrack/internal/core/application/store"
	"parceltrack/internal/pkg/errs"

	"github.com/robfig/cron/v3"
)

// BackendReconcileJob periodically re-reads the authoritative backend status
// for every active delivery and adopts it locally. It catches drift that the
// push path misses: transitions another node committed, or conflicts that
// happened while this process was down.
type BackendReconcileJob struct {
	store  *store.RecordStore
	cron   *cron.Cron
	logger *slog.Logger
}

// NewBackendReconcileJob creates a job that reconciles local records against
// the backend once a minute.
func NewBackendReconcileJob(recordStore *store.RecordStore, logger *slog.Logger) *BackendReconcileJob {
	return &BackendReconcileJob{
		store:  recordStore,
		cron:   cron.New(),
		logger: logger.With("component", "backend_reconcile_job"),
	}
}

// Start begins the reconcile job on a one-minute schedule.
func (j *BackendReconcileJob) Start() error {
	_, err := j.cron.AddFunc("* * * * *", j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Backend reconcile job started (running every minute)")
	return nil
}

// Stop stops the reconcile job.
func (j *BackendReconcileJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Backend reconcile job stopped")
}

func (j *BackendReconcileJob) run() {
	ctx := context.Background()

	active, err := j.store.GetAllActive(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list active deliveries", "error", err)
		return
	}

	for _, aggregate := range active {
		if err := j.store.Reconcile(ctx, aggregate.ID()); err != nil {
			// A delivery the backend no longer knows is expected during
			// retention cleanup; anything else indicates drift we failed to fix.
			if errors.Is(err, errs.ErrObjectNotFound) {
				continue
			}
			j.logger.ErrorContext(ctx, "Failed to reconcile delivery",
				"deliveryId", aggregate.ID().String(), "error", err)
		}
	}
}
