package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func activityPayload(steps int, kcal, meters float64) *ActivityStats {
	return &ActivityStats{
		TotalSteps:          ptr(steps),
		TotalKilocalories:   ptr(kcal),
		TotalDistanceMeters: ptr(meters),
	}
}

func sleepPayload(totalSec, deepSec, lightSec, remSec, awakeSec int) *SleepStats {
	return &SleepStats{DailySleep: &DailySleepDTO{
		SleepTimeSeconds:  ptr(totalSec),
		DeepSleepSeconds:  deepSec,
		LightSleepSeconds: lightSec,
		RemSleepSeconds:   remSec,
		AwakeSleepSeconds: awakeSec,
	}}
}

func TestMergeProviderDay_ActivityAndSleep(t *testing.T) {
	history := History{}

	MergeProviderDay(history, "2025-06-01", activityPayload(8000, 2100.4, 6437.3), sleepPayload(25200, 5400, 14400, 3600, 1800))

	rec := history["2025-06-01"]
	require.NotNil(t, rec)
	require.Equal(t, 8000, *rec.Steps)
	require.Equal(t, 2100, *rec.Calories)
	require.Equal(t, 6.44, *rec.DistanceKM)
	require.Equal(t, &Sleep{
		TotalMinutes: 420,
		DeepMinutes:  90,
		LightMinutes: 240,
		REMMinutes:   60,
		AwakeMinutes: 30,
	}, rec.Sleep)
}

func TestMergeProviderDay_ZeroStepsOverwritesPreviousValue(t *testing.T) {
	history := History{
		"2025-06-01": {
			Date:       "2025-06-01",
			Steps:      ptr(5000),
			Calories:   ptr(1800),
			DistanceKM: ptr(3.5),
			Sleep:      &Sleep{TotalMinutes: 400},
		},
	}

	// Provider convention: zero steps means "no real data for this day".
	MergeProviderDay(history, "2025-06-01", activityPayload(0, 1700, 2000), sleepPayload(24000, 0, 0, 0, 0))

	rec := history["2025-06-01"]
	require.NotNil(t, rec)
	require.Nil(t, rec.Steps)
	require.Nil(t, rec.Calories)
	require.Nil(t, rec.DistanceKM)
	require.Equal(t, 400, rec.Sleep.TotalMinutes)
}

func TestMergeProviderDay_NoSignalDropsRecord(t *testing.T) {
	history := History{
		"2025-06-01": {Date: "2025-06-01", Steps: ptr(5000)},
	}

	MergeProviderDay(history, "2025-06-01", nil, nil)

	require.NotContains(t, history, "2025-06-01")
}

func TestMergeProviderDay_KeepsRecordWithDirectSubmissions(t *testing.T) {
	history := History{}
	SetWeight(history, "2025-06-01", 72.5)

	// Re-fetch with no provider signal must not erase the submitted weight.
	MergeProviderDay(history, "2025-06-01", &ActivityStats{TotalSteps: ptr(0)}, &SleepStats{})

	rec := history["2025-06-01"]
	require.NotNil(t, rec)
	require.Nil(t, rec.Steps)
	require.Nil(t, rec.Sleep)
	require.Equal(t, 72.5, *rec.Weight)
}

func TestMergeProviderDay_FullOverwriteLosesRicherSleepData(t *testing.T) {
	history := History{}
	MergeProviderDay(history, "2025-06-01", activityPayload(9000, 2000, 7000), sleepPayload(27000, 6000, 15000, 4000, 2000))

	// A later re-fetch with a weaker payload wins wholesale.
	MergeProviderDay(history, "2025-06-01", activityPayload(9000, 2000, 7000), &SleepStats{DailySleep: &DailySleepDTO{}})

	rec := history["2025-06-01"]
	require.NotNil(t, rec)
	require.Nil(t, rec.Sleep)
}

func TestMergeProviderDay_MissingSleepSubComponentsDefaultToZero(t *testing.T) {
	history := History{}
	MergeProviderDay(history, "2025-06-01", nil, &SleepStats{DailySleep: &DailySleepDTO{
		SleepTimeSeconds: ptr(21630), // 360.5 min, rounds half away from zero
	}})

	rec := history["2025-06-01"]
	require.NotNil(t, rec)
	require.Equal(t, 361, rec.Sleep.TotalMinutes)
	require.Zero(t, rec.Sleep.DeepMinutes)
	require.Zero(t, rec.Sleep.LightMinutes)
	require.Zero(t, rec.Sleep.REMMinutes)
	require.Zero(t, rec.Sleep.AwakeMinutes)
}

func TestMergeProviderDay_ZeroDistanceBecomesNil(t *testing.T) {
	history := History{}
	MergeProviderDay(history, "2025-06-01", &ActivityStats{
		TotalSteps:          ptr(4000),
		TotalDistanceMeters: ptr(0.0),
	}, nil)

	rec := history["2025-06-01"]
	require.Equal(t, 4000, *rec.Steps)
	require.Nil(t, rec.Calories)
	require.Nil(t, rec.DistanceKM)
}

func TestSetWeight_CreatesMinimalRecord(t *testing.T) {
	history := History{}

	SetWeight(history, "2025-06-10", 71.2)

	rec := history["2025-06-10"]
	require.NotNil(t, rec)
	require.Equal(t, 71.2, *rec.Weight)
	require.Nil(t, rec.Steps)
	require.Nil(t, rec.Calories)
	require.Nil(t, rec.DistanceKM)
	require.Nil(t, rec.Sleep)
	require.Empty(t, rec.FoodLog)

	// Last write wins, no revision history.
	SetWeight(history, "2025-06-10", 70.8)
	require.Equal(t, 70.8, *history["2025-06-10"].Weight)
}

func TestAppendFoodEntry_SubmissionOrderAndDerivedDate(t *testing.T) {
	history := History{}

	later := time.Date(2025, 6, 10, 20, 0, 0, 0, time.UTC)
	earlier := time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)

	// Submitted out of timestamp order; submission order is kept.
	date := AppendFoodEntry(history, FoodEntryAt(600, later))
	require.Equal(t, "2025-06-10", date)
	AppendFoodEntry(history, FoodEntryAt(350, earlier))

	log := history["2025-06-10"].FoodLog
	require.Len(t, log, 2)
	require.Equal(t, 600, log[0].Calories)
	require.Equal(t, 350, log[1].Calories)
}

func TestAddWater_Accumulates(t *testing.T) {
	history := History{}

	AddWater(history, "2025-06-10", 250)
	AddWater(history, "2025-06-10", 500)

	require.Equal(t, 750, *history["2025-06-10"].WaterML)
}
