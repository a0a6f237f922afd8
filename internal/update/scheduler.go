package update

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler triggers the update cycle on a fixed interval, replacing an
// external cron job. The merge engine itself owns no scheduling; this lives
// with the service layer and is disabled by default.
type Scheduler struct {
	interval time.Duration
	svc      *Service
}

// NewScheduler creates a periodic trigger for the update service.
func NewScheduler(interval time.Duration, svc *Service) *Scheduler {
	return &Scheduler{interval: interval, svc: svc}
}

// Start runs periodic updates until the context is cancelled.
// The first update fires immediately so a fresh deployment backfills without
// waiting a full interval.
func (s *Scheduler) Start(ctx context.Context) error {
	slog.Info("[Scheduler] Starting periodic updates", "interval", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.runOnce(ctx)
		case <-ctx.Done():
			slog.Info("[Scheduler] Stopping (context cancelled)")
			return nil
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if _, err := s.svc.Update(ctx); err != nil {
		slog.Error("[Scheduler] Scheduled update failed", "error", err)
	}
}
