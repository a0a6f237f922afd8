package metrics

import (
	"time"
)

// DayFormat is the canonical date-key layout used everywhere in the system.
// Lexicographic order on keys equals chronological order, which the weight
// and month-window logic relies on.
const DayFormat = "2006-01-02"

// DayRecord aggregates every metric observed for one calendar date.
// Each field is independently nullable: nil means "no data observed yet",
// which is the steady state for a freshly tracked day. For weight and the
// food log, absence is semantically different from zero.
type DayRecord struct {
	Date       string      `json:"date"`
	Steps      *int        `json:"steps"`
	Calories   *int        `json:"calories"`
	DistanceKM *float64    `json:"distance_km"`
	Sleep      *Sleep      `json:"sleep"`
	Weight     *float64    `json:"weight,omitempty"`
	FoodLog    []FoodEntry `json:"food_log,omitempty"`
	WaterML    *int        `json:"water_ml,omitempty"`
}

// Sleep is the per-night sleep stage breakdown, minutes per stage.
// The sub-fields are only ever populated together: either a sleep payload
// produced all of them, or the whole block is absent.
type Sleep struct {
	TotalMinutes int `json:"total_minutes"`
	DeepMinutes  int `json:"deep_sleep_minutes"`
	LightMinutes int `json:"light_sleep_minutes"`
	REMMinutes   int `json:"rem_sleep_minutes"`
	AwakeMinutes int `json:"awake_minutes"`
}

// FoodEntry is one logged meal. Entries are append-only and kept in
// submission order, which is not necessarily timestamp order.
type FoodEntry struct {
	Calories  int       `json:"calories"`
	Timestamp time.Time `json:"timestamp"`
}

// History maps date keys (YYYY-MM-DD) to their records. It is owned by
// exactly one update operation at a time and persisted as a whole snapshot.
type History map[string]*DayRecord

// HasSignal reports whether the record carries at least one real metric.
// Records without signal are never materialized in the history; this is what
// keeps a backfill over a large date range from accumulating empty days.
func (r *DayRecord) HasSignal() bool {
	if r == nil {
		return false
	}
	return r.Steps != nil ||
		r.Sleep != nil ||
		r.Weight != nil ||
		len(r.FoodLog) > 0 ||
		r.WaterML != nil
}

// ValidDay reports whether s is a well-formed YYYY-MM-DD date key.
func ValidDay(s string) bool {
	_, err := time.Parse(DayFormat, s)
	return err == nil
}

// DayKey returns the date key for an instant, in that instant's location.
func DayKey(t time.Time) string {
	return t.Format(DayFormat)
}
