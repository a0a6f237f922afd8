// Package intake handles direct user submissions: body weight, food-energy
// entries and water intake. These never come from the provider and may
// target past dates.
package intake

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
	"github.com/fitpulse-lab/fitpulse/internal/store"
)

// ErrInvalidSubmission marks caller mistakes (bad values, bad dates) as
// distinct from store failures.
var ErrInvalidSubmission = errors.New("invalid submission")

// Service merges direct submissions into the persisted history.
type Service struct {
	stores      store.SnapshotStore
	snapshotKey string
	now         func() time.Time
}

// NewService creates the intake service.
func NewService(s store.SnapshotStore, snapshotKey string) *Service {
	if s == nil {
		panic("intake: store must not be nil")
	}
	return &Service{
		stores:      s,
		snapshotKey: snapshotKey,
		now:         time.Now,
	}
}

// SubmitWeight sets the weight for a date (today when date is empty).
// Last write wins; no revision history is kept.
func (s *Service) SubmitWeight(ctx context.Context, weight float64, date string) (string, error) {
	if weight <= 0 {
		return "", fmt.Errorf("%w: weight must be positive", ErrInvalidSubmission)
	}
	if date == "" {
		date = metrics.DayKey(s.now())
	}
	if !metrics.ValidDay(date) {
		return "", fmt.Errorf("%w: invalid date %q", ErrInvalidSubmission, date)
	}

	err := s.mutateHistory(ctx, func(history metrics.History) {
		metrics.SetWeight(history, date, weight)
	})
	return date, err
}

// SubmitFood appends a food-energy entry. The affected date is the calendar
// date of the entry's own timestamp, not the submission time.
func (s *Service) SubmitFood(ctx context.Context, calories int, at time.Time) (string, error) {
	if calories <= 0 {
		return "", fmt.Errorf("%w: calories must be positive", ErrInvalidSubmission)
	}
	if at.IsZero() {
		return "", fmt.Errorf("%w: datetime is required", ErrInvalidSubmission)
	}

	date := metrics.DayKey(at)
	err := s.mutateHistory(ctx, func(history metrics.History) {
		metrics.AppendFoodEntry(history, metrics.FoodEntryAt(calories, at))
	})
	return date, err
}

// SubmitWater adds millilitres to a date's water total (today when empty).
func (s *Service) SubmitWater(ctx context.Context, ml int, date string) (string, error) {
	if ml <= 0 {
		return "", fmt.Errorf("%w: water_ml must be positive", ErrInvalidSubmission)
	}
	if date == "" {
		date = metrics.DayKey(s.now())
	}
	if !metrics.ValidDay(date) {
		return "", fmt.Errorf("%w: invalid date %q", ErrInvalidSubmission, date)
	}

	err := s.mutateHistory(ctx, func(history metrics.History) {
		metrics.AddWater(history, date, ml)
	})
	return date, err
}

// mutateHistory runs one submission through the snapshot cycle. A submission
// before the first backfill fails with ErrUninitializedHistory and leaves
// the store untouched: it must not create a standalone single-day snapshot
// detached from the backfill period.
func (s *Service) mutateHistory(ctx context.Context, apply func(metrics.History)) error {
	now := s.now()
	_, err := store.UpdateSnapshot(ctx, s.stores, s.snapshotKey, func(prev *metrics.Snapshot) (*metrics.Snapshot, error) {
		if prev == nil {
			return nil, metrics.ErrUninitializedHistory
		}
		apply(prev.DailyData)
		return metrics.Assemble(prev.Period.Start, prev.DailyData, now), nil
	})
	return err
}
