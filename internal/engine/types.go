// Package engine implements the training load and performance model:
// Banister TRIMP extraction, CTL/ATL/TSB tracking, VDOT estimation with
// derived training paces, and marathon readiness scoring.
//
// Everything in this package is a pure function over already-materialized
// inputs. There is no I/O, no shared mutable state, and no logging; callers
// may invoke any operation concurrently on independent inputs.
package engine

import "time"

// Activity is a single recorded training session. It is supplied by the
// caller (activity store, sync pipeline) and treated as read-only.
type Activity struct {
	Type            string    `json:"type"`
	StartTime       time.Time `json:"startTime"` // carries the recording timezone
	DurationSeconds int       `json:"durationSeconds"`
	DistanceMeters  float64   `json:"distanceMeters"`
	AvgHeartRate    *float64  `json:"avgHeartRate,omitempty"`
	MaxHeartRate    *float64  `json:"maxHeartRate,omitempty"`
	VO2Max          *float64  `json:"vo2max,omitempty"` // device-reported, if any
	Laps            []Lap     `json:"laps,omitempty"`
}

// Lap is a sub-segment of an activity.
type Lap struct {
	DistanceMeters  float64 `json:"distanceMeters"`
	DurationSeconds int     `json:"durationSeconds"`
}

// IsRun reports whether the activity counts as a running session.
func (a Activity) IsRun() bool {
	return a.Type == "Run"
}

// Gender selects the Banister weighting exponent.
type Gender string

const (
	Male   Gender = "male"
	Female Gender = "female"
)

// AthleteProfile holds the heart-rate parameters used to turn raw sessions
// into training load. Values are passed explicitly into every computation so
// the engine stays reentrant.
type AthleteProfile struct {
	MaxHR     float64 `json:"maxHR"`
	RestingHR float64 `json:"restingHR"`
	Gender    Gender  `json:"gender"`
}

// DefaultProfile returns sensible defaults if the athlete is not configured.
func DefaultProfile() AthleteProfile {
	return AthleteProfile{
		MaxHR:     185,
		RestingHR: 50,
		Gender:    Male,
	}
}

// GenderFactor returns the Banister exponent: 1.92 for men (default),
// 1.67 for women.
func (p AthleteProfile) GenderFactor() float64 {
	if p.Gender == Female {
		return 1.67
	}
	return 1.92
}

// DailyLoad is the summed TRIMP for one calendar day.
type DailyLoad struct {
	Date  time.Time `json:"date"` // midnight in the bucketing timezone
	TRIMP float64   `json:"trimp"`
}

// FitnessSnapshot is the CTL/ATL/TSB state for a single day.
// CTL and ATL are always >= 0; TSB is signed.
type FitnessSnapshot struct {
	Date          time.Time `json:"date"`
	CTL           float64   `json:"ctl"`
	ATL           float64   `json:"atl"`
	TSB           float64   `json:"tsb"`
	CTLPctOfPeak  float64   `json:"ctlPctOfPeak"`
	ATLPctOfPeak  float64   `json:"atlPctOfPeak"`
	WorkloadRatio *float64  `json:"workloadRatio,omitempty"` // atl/ctl, omitted when ctl = 0
}

// PaceZone is a named training pace band in integer seconds per kilometer.
// Min is the faster bound, Max the slower.
type PaceZone struct {
	Name        string `json:"name"`
	MinSecPerKm int    `json:"minSecPerKm"`
	MaxSecPerKm int    `json:"maxSecPerKm"`
}

// PerformanceIndex couples a VDOT estimate with its derived pace zones.
type PerformanceIndex struct {
	VDOT          float64    `json:"vdot"`
	TrainingPaces []PaceZone `json:"trainingPaces"`
}

// MarathonReadiness scores recent training volume and long-run quality
// against VDOT-implied targets. Achievement percentages are capped at 150.
type MarathonReadiness struct {
	PredictedMinutes     float64 `json:"predictedMinutes"`
	TargetWeeklyKm       float64 `json:"targetWeeklyKm"`
	TargetLongRunKm      float64 `json:"targetLongRunKm"`
	WeeklyAchievementPct float64 `json:"weeklyAchievementPct"`
	LongRunAchievement   float64 `json:"longRunAchievementPct"`
	CompositeScore       float64 `json:"compositeScore"`
}
