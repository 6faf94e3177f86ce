package engine

import (
	"math"
	"time"
)

// Scoring windows and calibration constants. The marathon-time approximation
// and the 35-day recency half-life are empirically fitted; they must not be
// adjusted without revisiting recorded outputs.
const (
	weeklyWindowDays  = 182
	longRunWindowDays = 70

	longRunMinKm       = 15.0
	longRunRecencyDays = 35.0

	achievementCapPct = 150.0
)

// distanceTarget maps a predicted marathon time (upper bound, minutes) to a
// target distance in kilometers. Tables are evaluated first-match ascending.
type distanceTarget struct {
	maxMinutes float64
	targetKm   float64
}

var weeklyTargets = []distanceTarget{
	{180, 110},
	{195, 90},
	{210, 80},
	{225, 75},
	{240, 70},
	{255, 60},
	{270, 55},
}

const weeklyTargetDefault = 45.0

var longRunTargets = []distanceTarget{
	{180, 32},
	{210, 29},
	{240, 26},
	{270, 23},
}

const longRunTargetDefault = 20.0

func lookupTarget(table []distanceTarget, minutes, fallback float64) float64 {
	for _, row := range table {
		if minutes <= row.maxMinutes {
			return row.targetKm
		}
	}
	return fallback
}

// PredictedMarathonMinutes approximates a marathon finish time from VDOT,
// clamped to a plausible [120, 360] minute range.
func PredictedMarathonMinutes(vdot float64) float64 {
	minutes := 430 - 4.6*vdot
	if minutes < 120 {
		return 120
	}
	if minutes > 360 {
		return 360
	}
	return minutes
}

// ScoreMarathonReadiness grades recent training against the volume a
// VDOT-implied marathon goal demands. Weekly volume is averaged per ISO week
// over a trailing 182-day window; long-run quality is a recency- and
// distance-weighted aggregate over a trailing 70-day window. Returns nil when
// neither window contains a running activity; readiness is unavailable, not
// zero.
func ScoreMarathonReadiness(activities []Activity, vdot float64, asOf time.Time) *MarathonReadiness {
	weeklyRuns := runsInWindow(activities, asOf, weeklyWindowDays)
	longRuns := runsInWindow(activities, asOf, longRunWindowDays)
	if len(weeklyRuns) == 0 && len(longRuns) == 0 {
		return nil
	}

	predicted := PredictedMarathonMinutes(vdot)
	targetWeekly := lookupTarget(weeklyTargets, predicted, weeklyTargetDefault)
	targetLong := lookupTarget(longRunTargets, predicted, longRunTargetDefault)

	weeklyPct := capPct(avgWeeklyKm(weeklyRuns) / targetWeekly * 100)
	longPct := capPct(effectiveLongRunKm(longRuns, asOf) / targetLong * 100)

	return &MarathonReadiness{
		PredictedMinutes:     predicted,
		TargetWeeklyKm:       targetWeekly,
		TargetLongRunKm:      targetLong,
		WeeklyAchievementPct: weeklyPct,
		LongRunAchievement:   longPct,
		CompositeScore:       weeklyPct*(2.0/3.0) + longPct*(1.0/3.0),
	}
}

func capPct(pct float64) float64 {
	if pct > achievementCapPct {
		return achievementCapPct
	}
	return pct
}

func runsInWindow(activities []Activity, asOf time.Time, days int) []Activity {
	cutoff := asOf.AddDate(0, 0, -days)

	var runs []Activity
	for _, a := range activities {
		if a.IsRun() && !a.StartTime.Before(cutoff) && !a.StartTime.After(asOf) {
			runs = append(runs, a)
		}
	}
	return runs
}

// avgWeeklyKm averages distance per ISO week across the weeks that contain
// at least one run.
func avgWeeklyKm(runs []Activity) float64 {
	if len(runs) == 0 {
		return 0
	}

	type week struct{ year, week int }
	kmByWeek := make(map[week]float64)
	for _, a := range runs {
		y, w := a.StartTime.ISOWeek()
		kmByWeek[week{y, w}] += a.DistanceMeters / 1000
	}

	var total float64
	for _, km := range kmByWeek {
		total += km
	}
	return total / float64(len(kmByWeek))
}

// effectiveLongRunKm aggregates long-run candidates (>= 15 km) with weight
// km^2 * e^(-daysAgo/35), so recent, longer runs dominate. When no candidate
// carries weight, the single longest in-window run stands in.
func effectiveLongRunKm(runs []Activity, asOf time.Time) float64 {
	var weightedSum, weightSum, longest float64

	for _, a := range runs {
		km := a.DistanceMeters / 1000
		if km > longest {
			longest = km
		}
		if km < longRunMinKm {
			continue
		}
		daysAgo := asOf.Sub(a.StartTime).Hours() / 24
		weight := km * km * math.Exp(-daysAgo/longRunRecencyDays)
		weightedSum += km * weight
		weightSum += weight
	}

	if weightSum == 0 {
		return longest
	}
	return weightedSum / weightSum
}
