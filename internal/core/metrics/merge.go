package metrics

import (
	"errors"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUninitializedHistory is returned when a direct submission arrives before
// any snapshot exists. Submissions must never create a standalone single-day
// snapshot detached from the backfill period.
var ErrUninitializedHistory = errors.New("history not initialized: run an update first")

// MergeProviderDay folds one day's raw provider payloads into the history.
//
// The activity and sleep blocks are overwritten wholesale, never deep-merged:
// the provider is authoritative for its own fields on every re-fetch, so a
// day re-fetched with less data than before loses the previously stored
// values. Weight, food log and water intake come from direct submissions and
// are left untouched.
//
// A record that ends up with no signal at all is removed from the history.
func MergeProviderDay(history History, date string, activity *ActivityStats, sleep *SleepStats) {
	rec := history[date]
	if rec == nil {
		rec = &DayRecord{Date: date}
	}

	rec.Steps, rec.Calories, rec.DistanceKM = activityFields(activity)
	rec.Sleep = sleepFields(sleep)

	if !rec.HasSignal() {
		delete(history, date)
		return
	}
	history[date] = rec
}

// activityFields extracts the steps/calories/distance trio from a raw
// activity payload. Zero steps is the provider's "no real data" convention
// and nulls the whole trio.
func activityFields(activity *ActivityStats) (*int, *int, *float64) {
	if activity == nil || activity.TotalSteps == nil || *activity.TotalSteps <= 0 {
		return nil, nil, nil
	}

	steps := *activity.TotalSteps

	var calories *int
	if activity.TotalKilocalories != nil {
		kcal := int(math.Round(*activity.TotalKilocalories))
		calories = &kcal
	}

	var distance *float64
	if activity.TotalDistanceMeters != nil && *activity.TotalDistanceMeters > 0 {
		km, _ := decimal.NewFromFloat(*activity.TotalDistanceMeters).
			Div(decimal.NewFromInt(1000)).
			Round(2).
			Float64()
		distance = &km
	}

	return &steps, calories, distance
}

// sleepFields converts a raw sleep payload into the minutes breakdown.
// All five fields are computed together or not at all; missing stage
// durations count as zero seconds before rounding.
func sleepFields(sleep *SleepStats) *Sleep {
	if sleep == nil || sleep.DailySleep == nil {
		return nil
	}
	dto := sleep.DailySleep
	if dto.SleepTimeSeconds == nil || *dto.SleepTimeSeconds <= 0 {
		return nil
	}

	return &Sleep{
		TotalMinutes: secondsToMinutes(*dto.SleepTimeSeconds),
		DeepMinutes:  secondsToMinutes(dto.DeepSleepSeconds),
		LightMinutes: secondsToMinutes(dto.LightSleepSeconds),
		REMMinutes:   secondsToMinutes(dto.RemSleepSeconds),
		AwakeMinutes: secondsToMinutes(dto.AwakeSleepSeconds),
	}
}

func secondsToMinutes(seconds int) int {
	return int(decimal.NewFromInt(int64(seconds)).
		Div(decimal.NewFromInt(60)).
		Round(0).
		IntPart())
}

// SetWeight records a body weight for the given date, creating a minimal
// record when none exists. Last write wins; no revision history is kept.
func SetWeight(history History, date string, weight float64) {
	rec := ensureRecord(history, date)
	rec.Weight = &weight
}

// AppendFoodEntry appends a food-energy entry to the day derived from the
// entry's own timestamp. Entries are kept in submission order.
func AppendFoodEntry(history History, entry FoodEntry) string {
	date := DayKey(entry.Timestamp)
	rec := ensureRecord(history, date)
	rec.FoodLog = append(rec.FoodLog, entry)
	return date
}

// AddWater adds millilitres of water intake to the given date's running total.
func AddWater(history History, date string, ml int) {
	rec := ensureRecord(history, date)
	total := ml
	if rec.WaterML != nil {
		total += *rec.WaterML
	}
	rec.WaterML = &total
}

func ensureRecord(history History, date string) *DayRecord {
	if rec, ok := history[date]; ok {
		return rec
	}
	rec := &DayRecord{Date: date}
	history[date] = rec
	return rec
}

// FoodEntryAt builds a food entry from a submission timestamp.
func FoodEntryAt(calories int, at time.Time) FoodEntry {
	return FoodEntry{Calories: calories, Timestamp: at}
}
