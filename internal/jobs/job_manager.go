package jobs

import (
	"fmt"
	"log/slog"
	"time"

	"parceltrack/internal/core/application/store"
	"parceltrack/internal/tracking"
)

// JobManager coordinates all scheduled jobs in the application.
// Provides a unified interface to start and stop all background jobs.
type JobManager struct {
	backendReconcileJob *BackendReconcileJob
	staleSessionJob     *StaleSessionJob
}

// NewJobManager creates a new job manager with all required jobs.
func NewJobManager(
	recordStore *store.RecordStore,
	supervisor *tracking.Supervisor,
	staleAfter time.Duration,
	logger *slog.Logger,
) *JobManager {
	return &JobManager{
		backendReconcileJob: NewBackendReconcileJob(recordStore, logger),
		staleSessionJob:     NewStaleSessionJob(supervisor, staleAfter, logger),
	}
}

// StartAll starts all scheduled jobs.
// Returns an error if any job fails to start.
func (jm *JobManager) StartAll() error {
	if err := jm.backendReconcileJob.Start(); err != nil {
		return fmt.Errorf("failed to start backend reconcile job: %w", err)
	}

	if err := jm.staleSessionJob.Start(); err != nil {
		// Stop already started jobs if this one fails
		jm.backendReconcileJob.Stop()
		return fmt.Errorf("failed to start stale session job: %w", err)
	}

	return nil
}

// StopAll stops all scheduled jobs gracefully.
func (jm *JobManager) StopAll() {
	jm.staleSessionJob.Stop()
	jm.backendReconcileJob.Stop()
}
