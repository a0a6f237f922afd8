package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/fitpulse-lab/fitpulse/internal/core/metrics"
)

// ErrNotFound is returned by Load when no snapshot has ever been saved under
// the key (first run).
var ErrNotFound = errors.New("snapshot not found")

// ErrRevisionMismatch is returned by Save when the stored revision no longer
// matches the caller's expectation — a concurrent writer got there first.
var ErrRevisionMismatch = errors.New("snapshot revision mismatch")

// SnapshotStore is the narrow contract the engine requires from the
// persistence backend: whole-document get/set of opaque bytes under a key,
// with an optimistic compare-and-swap on write. Revisions are opaque strings
// owned by the store; they are not part of the snapshot payload.
type SnapshotStore interface {
	// Load returns the last saved bytes and their revision.
	// Returns ErrNotFound when the key has never been written.
	Load(ctx context.Context, key string) (data []byte, revision string, err error)

	// Save writes data only if the stored revision still equals
	// expectedRevision. An empty expectedRevision means "key must not exist
	// yet". Returns the new revision, or ErrRevisionMismatch.
	Save(ctx context.Context, key string, data []byte, expectedRevision string) (string, error)

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error
}

// casRetries bounds how often an update cycle re-runs after losing a
// compare-and-swap race. In-process writers are additionally serialized by
// the update services, so retries only fire across processes.
const casRetries = 3

// LoadSnapshot reads and decodes the snapshot under key.
// A missing key yields (nil, "", nil): callers distinguish "no snapshot yet"
// from a store failure without unwrapping errors.
func LoadSnapshot(ctx context.Context, s SnapshotStore, key string) (*metrics.Snapshot, string, error) {
	data, rev, err := s.Load(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return nil, "", nil
	}
	if err != nil {
		return nil, "", fmt.Errorf("load snapshot %q: %w", key, err)
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, "", fmt.Errorf("decode snapshot %q: %w", key, err)
	}
	if snap.DailyData == nil {
		snap.DailyData = metrics.History{}
	}
	return &snap, rev, nil
}

// UpdateSnapshot runs one read-modify-write cycle: load the full prior
// snapshot, apply mutate to it, and CAS-write the result back. mutate
// receives nil when no snapshot exists yet; returning an error from mutate
// aborts the cycle and leaves the store untouched. Lost CAS races are
// retried with a fresh read up to casRetries times.
func UpdateSnapshot(
	ctx context.Context,
	s SnapshotStore,
	key string,
	mutate func(prev *metrics.Snapshot) (*metrics.Snapshot, error),
) (*metrics.Snapshot, error) {
	var lastErr error

	for attempt := 0; attempt < casRetries; attempt++ {
		prev, rev, err := LoadSnapshot(ctx, s, key)
		if err != nil {
			return nil, err
		}

		next, err := mutate(prev)
		if err != nil {
			return nil, err
		}

		data, err := json.Marshal(next)
		if err != nil {
			return nil, fmt.Errorf("encode snapshot %q: %w", key, err)
		}

		if _, err := s.Save(ctx, key, data, rev); err != nil {
			if errors.Is(err, ErrRevisionMismatch) {
				lastErr = err
				continue
			}
			return nil, fmt.Errorf("save snapshot %q: %w", key, err)
		}
		return next, nil
	}

	return nil, fmt.Errorf("save snapshot %q: %w", key, lastErr)
}
