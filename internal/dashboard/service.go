// Package dashboard serves the read side: the assembled snapshot, its
// summary block, the profile card, and data portability (export, import,
// clear).
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
	"github.com/fitpulse-lab/fitpulse/internal/profile"
	"github.com/fitpulse-lab/fitpulse/internal/store"
)

// ErrNoData is returned when no snapshot has been stored yet.
var ErrNoData = errors.New("no data available")

// ErrInvalidImport marks an import payload that fails structural validation.
var ErrInvalidImport = errors.New("invalid import payload")

// Service reads and ports whole snapshots.
type Service struct {
	stores         store.SnapshotStore
	snapshotKey    string
	profile        profile.Profile
	maxImportBytes int64
	now            func() time.Time
}

// NewService creates the dashboard service. maxBodySizeMB bounds the import
// payload; values <= 0 fall back to 1MB.
func NewService(s store.SnapshotStore, snapshotKey string, p profile.Profile, maxBodySizeMB int) *Service {
	if s == nil {
		panic("dashboard: store must not be nil")
	}
	if maxBodySizeMB <= 0 {
		maxBodySizeMB = 1
	}
	return &Service{
		stores:         s,
		snapshotKey:    snapshotKey,
		profile:        p,
		maxImportBytes: int64(maxBodySizeMB) * 1024 * 1024,
		now:            time.Now,
	}
}

// Data returns the full stored snapshot.
func (s *Service) Data(ctx context.Context) (*metrics.Snapshot, error) {
	snap, _, err := store.LoadSnapshot(ctx, s.stores, s.snapshotKey)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNoData
	}
	return snap, nil
}

// Summary returns just the averages block of the stored snapshot.
func (s *Service) Summary(ctx context.Context) (*metrics.Summary, error) {
	snap, err := s.Data(ctx)
	if err != nil {
		return nil, err
	}
	return &snap.Averages, nil
}

// Profile returns the static profile card shown next to the data.
func (s *Service) Profile() profile.Profile {
	return s.profile
}

// Import replaces the stored snapshot with an externally produced one.
// The summary and period end are recomputed rather than trusted, so an
// imported document cannot smuggle in stale aggregates.
func (s *Service) Import(ctx context.Context, snap *metrics.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: empty document", ErrInvalidImport)
	}
	if err := snap.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	if snap.DailyData == nil {
		snap.DailyData = metrics.History{}
	}

	now := s.now()
	_, err := store.UpdateSnapshot(ctx, s.stores, s.snapshotKey, func(_ *metrics.Snapshot) (*metrics.Snapshot, error) {
		return metrics.Assemble(snap.Period.Start, snap.DailyData, now), nil
	})
	return err
}

// Clear removes the stored snapshot entirely.
func (s *Service) Clear(ctx context.Context) error {
	return s.stores.Delete(ctx, s.snapshotKey)
}
