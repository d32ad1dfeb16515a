// Package jobs provides scheduled background tasks for the delivery tracker.
//
// This package implements cron-based jobs using github.com/robfig/cron/v3
// to handle periodic operations required for the service.
//
// # Available Jobs
//
// 1. BackendReconcileJob - Runs every minute to re-read the authoritative
// backend status of each active delivery and adopt it locally
// 2. StaleSessionJob - Runs every 30 seconds to flag open tracking sessions
// whose producer went silent
//
// # Usage
//
// Jobs are managed through JobManager which provides a unified interface:
//
//	// Create job manager with required dependencies
//	jobManager := jobs.NewJobManager(recordStore, supervisor, staleAfter, logger)
//
//	// Start all jobs
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//
//	// Stop all jobs when shutting down
//	defer jobManager.StopAll()
//
// # Error Handling
//
// - Reconcile job skips deliveries the backend no longer knows
// - Stale session job escalates at most once per silent period
// - Failed job starts will stop any already running jobs
package jobs
