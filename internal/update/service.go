package update

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
	"github.com/fitpulse-lab/fitpulse/internal/provider/garmin"
	"github.com/fitpulse-lab/fitpulse/internal/store"
)

// Options configures the update cycle.
type Options struct {
	// SnapshotKey is the store key the whole document lives under.
	SnapshotKey string

	// EpochStart is the first date of the backfill period (YYYY-MM-DD).
	EpochStart string

	// BackfillConcurrency bounds the parallel per-date provider fetches
	// during the first-ever update.
	BackfillConcurrency int
}

func (o Options) normalized() Options {
	if o.BackfillConcurrency <= 0 {
		o.BackfillConcurrency = 4
	}
	return o
}

// Result is what an update reports back to the caller.
type Result struct {
	Updated   string `json:"updated"`
	TotalDays int    `json:"total_days"`
}

// Service runs the provider-driven update cycle: load the full snapshot,
// merge fresh provider data into the history, recompute the summary, write
// the whole snapshot back.
type Service struct {
	stores   store.SnapshotStore
	provider garmin.Client
	opts     Options

	// mu serializes updates within this process. Cross-process races are
	// caught by the store's compare-and-swap.
	mu  sync.Mutex
	now func() time.Time
}

// NewService creates the update service.
func NewService(s store.SnapshotStore, p garmin.Client, opts Options) *Service {
	if s == nil {
		panic("update: store must not be nil")
	}
	if p == nil {
		panic("update: provider must not be nil")
	}
	return &Service{
		stores:   s,
		provider: p,
		opts:     opts.normalized(),
		now:      time.Now,
	}
}

// Update runs one full cycle. On the first-ever run it backfills the history
// from the epoch start date through today, one provider fetch per date; on
// every later run only today's record is re-fetched and merged.
func (s *Service) Update(ctx context.Context) (*Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := metrics.DayKey(now)

	snap, err := store.UpdateSnapshot(ctx, s.stores, s.opts.SnapshotKey, func(prev *metrics.Snapshot) (*metrics.Snapshot, error) {
		var (
			history     metrics.History
			periodStart string
		)

		if prev == nil {
			slog.Info("No snapshot found, backfilling history",
				"from", s.opts.EpochStart, "to", today)
			history = s.backfill(ctx, now)
			periodStart = s.opts.EpochStart
		} else {
			history = prev.DailyData
			periodStart = prev.Period.Start

			// Only today is refreshed; earlier records carry forward as-is.
			day := s.fetchDay(ctx, today)
			if day.err != nil {
				slog.Warn("Provider fetch failed for today, keeping existing record",
					"date", today, "error", day.err)
			} else {
				metrics.MergeProviderDay(history, today, day.activity, day.sleep)
			}
		}

		return metrics.Assemble(periodStart, history, now), nil
	})
	if err != nil {
		return nil, fmt.Errorf("update snapshot: %w", err)
	}

	slog.Info("Snapshot updated", "date", today, "total_days", len(snap.DailyData))
	return &Result{Updated: today, TotalDays: len(snap.DailyData)}, nil
}

// dayFetch is the per-date fetch outcome. A non-nil err means "no data for
// that date" — it degrades locally and never aborts the run.
type dayFetch struct {
	date     string
	activity *metrics.ActivityStats
	sleep    *metrics.SleepStats
	err      error
}

func (s *Service) fetchDay(ctx context.Context, date string) dayFetch {
	activity, err := s.provider.FetchActivity(ctx, date)
	if err != nil {
		return dayFetch{date: date, err: err}
	}
	sleep, err := s.provider.FetchSleep(ctx, date)
	if err != nil {
		return dayFetch{date: date, err: err}
	}
	return dayFetch{date: date, activity: activity, sleep: sleep}
}

// backfill fetches every date from the epoch start through today. Fetches
// run in parallel, bounded by the configured concurrency; the merge itself is
// sequential because History is a plain map.
func (s *Service) backfill(ctx context.Context, now time.Time) metrics.History {
	start, err := time.Parse(metrics.DayFormat, s.opts.EpochStart)
	if err != nil {
		// Config validation guarantees a parseable epoch; an empty history
		// is still a safe outcome.
		slog.Error("Invalid epoch start date", "value", s.opts.EpochStart, "error", err)
		return metrics.History{}
	}

	var dates []string
	for d := start; !d.After(now); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d.Format(metrics.DayFormat))
	}

	results := make([]dayFetch, len(dates))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BackfillConcurrency)
	for i, date := range dates {
		i, date := i, date
		g.Go(func() error {
			results[i] = s.fetchDay(gctx, date)
			return nil // per-date failures never abort the group
		})
	}
	g.Wait()

	history := metrics.History{}
	failed := 0
	for _, day := range results {
		if day.err != nil {
			failed++
			slog.Debug("Backfill fetch failed, treating date as no-data",
				"date", day.date, "error", day.err)
			continue
		}
		metrics.MergeProviderDay(history, day.date, day.activity, day.sleep)
	}

	slog.Info("Backfill complete",
		"dates", len(dates),
		"with_data", len(history),
		"failed_fetches", failed,
	)
	return history
}
