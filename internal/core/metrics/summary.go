package metrics

import (
	"time"

	"github.com/shopspring/decimal"
)

// monthWindowDays is the size of the trailing "month" window, inclusive of
// the boundary day.
const monthWindowDays = 30

// Summary is derived from the history on every change, never incrementally.
type Summary struct {
	Year   PeriodSummary  `json:"year"`
	Month  PeriodSummary  `json:"month"`
	Weight *WeightSummary `json:"weight"`
}

// PeriodSummary holds the averaged activity and sleep figures for one
// window. The steps population (which also drives calories and distance) and
// the sleep population are aggregated independently and may differ in size.
// Empty populations yield zeroes, never an error.
type PeriodSummary struct {
	Steps        int     `json:"steps"`
	Calories     int     `json:"calories"`
	DistanceKM   float64 `json:"distance_km"`
	SleepMinutes int     `json:"sleep_minutes"`
	Total        Totals  `json:"total"`
}

// Totals carries the cumulative counters for a window.
type Totals struct {
	DaysWithData int `json:"days_with_data"`
	TotalSteps   int `json:"total_steps"`
}

// WeightSummary aggregates the weight-bearing records. Current is the weight
// of the chronologically latest date key, not the last-submitted value. The
// whole block is nil when no record carries a weight — absence is not zero.
type WeightSummary struct {
	Current float64 `json:"current"`
	Average float64 `json:"average"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// ComputeSummary recomputes all summary blocks from scratch.
// Pure function of (history, now); the month window is resolved against each
// record's date key, never against an ingestion timestamp.
func ComputeSummary(history History, now time.Time) Summary {
	monthCutoff := now.AddDate(0, 0, -monthWindowDays).Format(DayFormat)

	return Summary{
		Year:   summarizePeriod(history, ""),
		Month:  summarizePeriod(history, monthCutoff),
		Weight: summarizeWeight(history),
	}
}

// summarizePeriod aggregates records whose date key is >= cutoff.
// An empty cutoff means all-time. Date keys share a fixed YYYY-MM-DD layout,
// so string comparison is date comparison.
func summarizePeriod(history History, cutoff string) PeriodSummary {
	var (
		steps    []decimal.Decimal
		calories []decimal.Decimal
		distance []decimal.Decimal
		sleep    []decimal.Decimal

		totalSteps int
	)

	for date, rec := range history {
		if rec == nil {
			continue
		}
		if cutoff != "" && date < cutoff {
			continue
		}

		if rec.Steps != nil {
			steps = append(steps, decimal.NewFromInt(int64(*rec.Steps)))
			totalSteps += *rec.Steps
			if rec.Calories != nil {
				calories = append(calories, decimal.NewFromInt(int64(*rec.Calories)))
			}
			if rec.DistanceKM != nil {
				distance = append(distance, decimal.NewFromFloat(*rec.DistanceKM))
			}
		}

		if rec.Sleep != nil {
			sleep = append(sleep, decimal.NewFromInt(int64(rec.Sleep.TotalMinutes)))
		}
	}

	return PeriodSummary{
		Steps:        int(mean(steps).Round(0).IntPart()),
		Calories:     int(mean(calories).Round(0).IntPart()),
		DistanceKM:   roundedFloat(mean(distance), 2),
		SleepMinutes: int(mean(sleep).Round(0).IntPart()),
		Total: Totals{
			DaysWithData: len(steps),
			TotalSteps:   totalSteps,
		},
	}
}

func summarizeWeight(history History) *WeightSummary {
	var (
		latestDate string
		current    float64
		sum        decimal.Decimal
		min, max   float64
		count      int
	)

	for date, rec := range history {
		if rec == nil || rec.Weight == nil {
			continue
		}
		w := *rec.Weight

		if count == 0 || date > latestDate {
			latestDate = date
			current = w
		}
		if count == 0 || w < min {
			min = w
		}
		if count == 0 || w > max {
			max = w
		}
		sum = sum.Add(decimal.NewFromFloat(w))
		count++
	}

	if count == 0 {
		return nil
	}

	avg := roundedFloat(sum.Div(decimal.NewFromInt(int64(count))), 1)
	return &WeightSummary{
		Current: current,
		Average: avg,
		Min:     min,
		Max:     max,
	}
}

func mean(values []decimal.Decimal) decimal.Decimal {
	if len(values) == 0 {
		return decimal.Zero
	}
	return decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
}

func roundedFloat(d decimal.Decimal, places int32) float64 {
	f, _ := d.Round(places).Float64()
	return f
}
