package metrics

import (
	"fmt"
	"time"
)

// Snapshot is the complete persisted document. Every mutation reads the full
// prior snapshot, mutates the history in memory, recomputes the summary and
// writes the whole thing back. There is no schema versioning, so any format
// change must stay additive to keep old snapshots loadable.
type Snapshot struct {
	Period     Period    `json:"period"`
	DailyData  History   `json:"daily_data"`
	Averages   Summary   `json:"averages"`
	LastUpdate time.Time `json:"last_update"`
}

// Period is the tracked date range, inclusive on both ends.
type Period struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Assemble packages the history into a fresh snapshot: period end is the
// current date, the summary is recomputed, last_update is now. Called after
// every successful merge, never partially.
func Assemble(periodStart string, history History, now time.Time) *Snapshot {
	return &Snapshot{
		Period: Period{
			Start: periodStart,
			End:   DayKey(now),
		},
		DailyData:  history,
		Averages:   ComputeSummary(history, now),
		LastUpdate: now,
	}
}

// Validate checks the structural invariants of a snapshot loaded from an
// external source (import). Metric values inside records are trusted — only
// the keyed structure is enforced.
func (s *Snapshot) Validate() error {
	if !ValidDay(s.Period.Start) {
		return fmt.Errorf("invalid period start %q", s.Period.Start)
	}
	if !ValidDay(s.Period.End) {
		return fmt.Errorf("invalid period end %q", s.Period.End)
	}
	for date, rec := range s.DailyData {
		if !ValidDay(date) {
			return fmt.Errorf("invalid date key %q", date)
		}
		if rec == nil {
			return fmt.Errorf("nil record for date %q", date)
		}
	}
	return nil
}
