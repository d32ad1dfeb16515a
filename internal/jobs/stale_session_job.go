package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"parceltrack/internal/tracking"

	"github.com/robfig/cron/v3"
)

// DefaultStaleAfter is how long a connected session may go without a sample
// before subscribers are told tracking looks stale.
const DefaultStaleAfter = 2 * time.Minute

// StaleSessionJob watches open tracking sessions for producer silence. A
// session whose transport is up but whose producer stopped sending looks
// healthy to the reconnect loop, so this job covers the other half: no sample
// for longer than the threshold escalates a TrackingUnavailable event.
type StaleSessionJob struct {
	supervisor *tracking.Supervisor
	staleAfter time.Duration
	cron       *cron.Cron
	logger     *slog.Logger

	mu       sync.Mutex
	notified map[string]time.Time
}

// NewStaleSessionJob creates a job that checks session liveness every 30
// seconds. A non-positive staleAfter falls back to DefaultStaleAfter.
func NewStaleSessionJob(
	supervisor *tracking.Supervisor,
	staleAfter time.Duration,
	logger *slog.Logger,
) *StaleSessionJob {
	if staleAfter <= 0 {
		staleAfter = DefaultStaleAfter
	}
	return &StaleSessionJob{
		supervisor: supervisor,
		staleAfter: staleAfter,
		cron:       cron.New(cron.WithSeconds()),
		logger:     logger.With("component", "stale_session_job"),
		notified:   map[string]time.Time{},
	}
}

// Start begins the liveness check on a 30-second schedule.
func (j *StaleSessionJob) Start() error {
	_, err := j.cron.AddFunc("*/30 * * * * *", j.run)
	if err != nil {
		return err
	}

	j.cron.Start()
	j.logger.InfoContext(context.Background(), "Stale session job started (running every 30 seconds)")
	return nil
}

// Stop stops the liveness check.
func (j *StaleSessionJob) Stop() {
	j.cron.Stop()
	j.logger.InfoContext(context.Background(), "Stale session job stopped")
}

func (j *StaleSessionJob) run() {
	now := time.Now()
	sessions := j.supervisor.Sessions()

	j.mu.Lock()
	defer j.mu.Unlock()

	live := make(map[string]struct{}, len(sessions))
	for _, session := range sessions {
		key := session.DeliveryID().String()
		live[key] = struct{}{}

		lastSeen := session.LastSampleAt()
		if lastSeen.IsZero() {
			lastSeen = session.OpenedAt()
		}
		if now.Sub(lastSeen) < j.staleAfter {
			delete(j.notified, key)
			continue
		}

		// One escalation per silence: re-notify only after fresh samples
		// arrived and silence set in again.
		if notifiedAt, ok := j.notified[key]; ok && !notifiedAt.Before(lastSeen) {
			continue
		}

		j.logger.Warn("Tracking session is stale",
			"deliveryId", key, "lastSeen", lastSeen)
		session.EmitUnavailable(lastSeen)
		j.notified[key] = now
	}

	for key := range j.notified {
		if _, ok := live[key]; !ok {
			delete(j.notified, key)
		}
	}
}
