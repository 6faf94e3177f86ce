package engine

import (
	"math"
	"sort"
	"time"
)

// dayKey is the canonical calendar-day bucket format.
const dayKey = "2006-01-02"

// TRIMP calculates the Training Impulse for one activity (Banister model):
//
//	TRIMP = duration(min) * hrReserve * 0.64 * e^(b * hrReserve)
//
// where hrReserve is the fraction of the resting-to-max span represented by
// the average heart rate, clamped to [0, 1], and b is the gender factor.
// Activities without heart rate or duration contribute zero load.
func TRIMP(a Activity, profile AthleteProfile) float64 {
	if a.AvgHeartRate == nil || a.DurationSeconds <= 0 {
		return 0
	}

	span := profile.MaxHR - profile.RestingHR
	if span <= 0 {
		return 0
	}

	hrReserve := (*a.AvgHeartRate - profile.RestingHR) / span
	if hrReserve < 0 {
		hrReserve = 0
	}
	if hrReserve > 1 {
		hrReserve = 1
	}

	minutes := float64(a.DurationSeconds) / 60.0
	weighting := 0.64 * math.Exp(profile.GenderFactor()*hrReserve)

	return minutes * hrReserve * weighting
}

// DailyLoads converts activities into a per-day TRIMP series, bucketed by
// calendar day in the given timezone. Activities on the same day are summed.
// The result is sorted ascending by date; days without activities are not
// materialized here (the tracker fills them with zero load).
func DailyLoads(activities []Activity, profile AthleteProfile, loc *time.Location) []DailyLoad {
	if loc == nil {
		loc = time.UTC
	}

	byDay := make(map[string]float64)
	for _, a := range activities {
		load := TRIMP(a, profile)
		key := a.StartTime.In(loc).Format(dayKey)
		byDay[key] += load
	}

	loads := make([]DailyLoad, 0, len(byDay))
	for key, trimp := range byDay {
		day, err := time.ParseInLocation(dayKey, key, loc)
		if err != nil {
			continue
		}
		loads = append(loads, DailyLoad{Date: day, TRIMP: trimp})
	}

	sort.Slice(loads, func(i, j int) bool {
		return loads[i].Date.Before(loads[j].Date)
	})

	return loads
}
