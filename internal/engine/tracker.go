package engine

import (
	"math"
	"sort"
	"time"
)

// EMA decay constants for the fitness/fatigue model. These are the exact
// first-order filter coefficients for 42- and 7-day time constants, not the
// 2/(N+1) smoothing approximation.
var (
	ctlDecay = 1 - math.Exp(-1.0/42.0)
	atlDecay = 1 - math.Exp(-1.0/7.0)
)

// FitnessAt computes the CTL/ATL/TSB state for a single date by walking the
// full load history one calendar day at a time.
func FitnessAt(loads []DailyLoad, date time.Time) FitnessSnapshot {
	series := FitnessSeries(loads, []time.Time{date})
	return series[0]
}

// FitnessSeries computes snapshots for every requested date in one forward
// pass over the load history. The recursion starts from zero the day before
// the earliest known load and advances through every calendar day, including
// zero-load days, so the result is identical to repeated FitnessAt queries.
//
// Dates are bucketed by their calendar day in their own location. Requested
// dates before the earliest load (or with no history at all) yield zero
// snapshots. The returned slice is ordered to match the input dates.
func FitnessSeries(loads []DailyLoad, dates []time.Time) []FitnessSnapshot {
	out := make([]FitnessSnapshot, len(dates))
	for i, d := range dates {
		out[i] = FitnessSnapshot{Date: startOfDay(d)}
	}
	if len(loads) == 0 || len(dates) == 0 {
		return out
	}

	sorted := make([]DailyLoad, len(loads))
	copy(sorted, loads)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	loadByDay := make(map[string]float64, len(sorted))
	for _, dl := range sorted {
		loadByDay[dl.Date.Format(dayKey)] += dl.TRIMP
	}

	// Index the requested dates so one walk serves them all.
	samples := make(map[string][]int, len(dates))
	var last time.Time
	for i, d := range dates {
		day := startOfDay(d)
		samples[day.Format(dayKey)] = append(samples[day.Format(dayKey)], i)
		if day.After(last) {
			last = day
		}
	}

	start := startOfDay(sorted[0].Date)
	if last.Before(start) {
		return out
	}

	var ctl, atl, peakCTL, peakATL float64
	for day := start; !day.After(last); day = day.AddDate(0, 0, 1) {
		key := day.Format(dayKey)
		load := loadByDay[key] // zero on rest days

		ctl += ctlDecay * (load - ctl)
		atl += atlDecay * (load - atl)

		if ctl > peakCTL {
			peakCTL = ctl
		}
		if atl > peakATL {
			peakATL = atl
		}

		for _, i := range samples[key] {
			out[i] = snapshot(startOfDay(dates[i]), ctl, atl, peakCTL, peakATL)
		}
	}

	return out
}

func snapshot(date time.Time, ctl, atl, peakCTL, peakATL float64) FitnessSnapshot {
	s := FitnessSnapshot{
		Date: date,
		CTL:  ctl,
		ATL:  atl,
		TSB:  ctl - atl,
	}
	if peakCTL > 0 {
		s.CTLPctOfPeak = ctl / peakCTL * 100
	}
	if peakATL > 0 {
		s.ATLPctOfPeak = atl / peakATL * 100
	}
	if ctl > 0 {
		ratio := atl / ctl
		s.WorkloadRatio = &ratio
	}
	return s
}

// startOfDay truncates t to midnight in its own location.
func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// FormDescription returns a human-readable description of a TSB value.
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
