package engine

import (
	"math"
	"time"
)

// VDOT plausibility bounds. Estimates outside this range are discarded as
// noise rather than reported.
const (
	VDOTMin = 30.0
	VDOTMax = 85.0
)

// DefaultVO2Max is the fallback fitness index when no VDOT estimate is
// available, e.g. for readiness scoring of athletes with no recent efforts.
const DefaultVO2Max = 50.0

// segmentWindow is how far back lap-based VDOT estimation looks.
const segmentWindow = 42 * 24 * time.Hour // trailing 6 weeks

// ReferenceDistance is a standard effort distance used for lap-based VDOT
// estimation. Tolerance is the accepted relative deviation of a lap's
// recorded distance; MinSeconds is the fastest plausible time over exactly
// Meters, used to reject GPS noise at roughly world-record pace.
type ReferenceDistance struct {
	Meters     float64
	Tolerance  float64
	MinSeconds float64
}

// ReferenceDistances lists the effort distances scanned for VDOT estimation.
var ReferenceDistances = []ReferenceDistance{
	{Meters: 400, Tolerance: 0.05, MinSeconds: 45},
	{Meters: 800, Tolerance: 0.05, MinSeconds: 101},
	{Meters: 1000, Tolerance: 0.05, MinSeconds: 132},
	{Meters: 1609, Tolerance: 0.05, MinSeconds: 224},
	{Meters: 3000, Tolerance: 0.05, MinSeconds: 436},
	{Meters: 5000, Tolerance: 0.05, MinSeconds: 757},
	{Meters: 10000, Tolerance: 0.05, MinSeconds: 1575},
}

// VDOTFromRace derives VDOT from a known performance using the closed-form
// Daniels-Gilbert model:
//
//	v       = meters per minute
//	O2cost  = -4.6 + 0.182258*v + 0.000104*v^2
//	pctMax  = 0.8 + 0.1894393*e^(-0.012778*min) + 0.2989558*e^(-0.1932605*min)
//	VDOT    = O2cost / pctMax
//
// The second return value is false when the inputs are degenerate or the
// estimate falls outside the plausible [30, 85] range.
func VDOTFromRace(distanceMeters, durationSeconds float64) (float64, bool) {
	if distanceMeters <= 0 || durationSeconds <= 0 {
		return 0, false
	}

	minutes := durationSeconds / 60.0
	v := distanceMeters / minutes

	o2cost := -4.6 + 0.182258*v + 0.000104*v*v
	pctMax := 0.8 +
		0.1894393*math.Exp(-0.012778*minutes) +
		0.2989558*math.Exp(-0.1932605*minutes)

	vdot := o2cost / pctMax
	if vdot < VDOTMin || vdot > VDOTMax {
		return 0, false
	}
	return vdot, true
}

// VDOTFromLaps estimates VDOT from the best recent efforts in lap data.
// It scans laps of running activities in a trailing 6-week window ending at
// asOf. For each reference distance it takes the fastest in-tolerance lap,
// linearly normalizes its time to the exact reference distance, rejects
// implausibly fast results, and converts the rest via VDOTFromRace. The
// maximum across all reference distances wins; ok is false when no lap
// qualifies.
func VDOTFromLaps(activities []Activity, asOf time.Time) (float64, bool) {
	cutoff := asOf.Add(-segmentWindow)

	best := 0.0
	found := false

	for _, ref := range ReferenceDistances {
		normalized, ok := bestNormalizedTime(activities, ref, cutoff, asOf)
		if !ok || normalized < ref.MinSeconds {
			continue
		}
		vdot, ok := VDOTFromRace(ref.Meters, normalized)
		if !ok {
			continue
		}
		if vdot > best {
			best = vdot
			found = true
		}
	}

	return best, found
}

// bestNormalizedTime finds the fastest lap within tolerance of ref and
// returns its time scaled linearly to the exact reference distance.
func bestNormalizedTime(activities []Activity, ref ReferenceDistance, cutoff, asOf time.Time) (float64, bool) {
	band := ref.Meters * ref.Tolerance

	best := math.MaxFloat64
	found := false

	for _, a := range activities {
		if !a.IsRun() || a.StartTime.Before(cutoff) || a.StartTime.After(asOf) {
			continue
		}
		for _, lap := range a.Laps {
			if lap.DurationSeconds <= 0 || lap.DistanceMeters <= 0 {
				continue
			}
			if math.Abs(lap.DistanceMeters-ref.Meters) > band {
				continue
			}
			normalized := float64(lap.DurationSeconds) * ref.Meters / lap.DistanceMeters
			if normalized < best {
				best = normalized
				found = true
			}
		}
	}

	return best, found
}

// paceFloorSecPerKm substitutes for degenerate (non-positive) velocities.
const paceFloorSecPerKm = 600.0 // 10 min/km

// paceZoneSpecs defines the five training zones: the VDOT intensity fraction
// and the asymmetric spread multipliers applied to the computed pace. A
// larger multiplier is a slower (larger seconds-per-km) bound.
var paceZoneSpecs = []struct {
	name      string
	intensity float64
	low, high float64
}{
	{"easy", 0.72, 0.98, 1.12},
	{"marathon", 0.82, 0.99, 1.01},
	{"threshold", 0.88, 0.99, 1.01},
	{"interval", 0.97, 0.99, 1.01},
	{"repetition", 1.05, 0.99, 1.01},
}

// TrainingPaces derives the five named pace zones for a VDOT value. For each
// zone the running velocity at the zone's intensity fraction f is
//
//	velocity(m/min) = 29.54 + 5.000663*(VDOT*f) - 0.007546*(VDOT*f)^2
//
// converted to seconds per kilometer, with a 10 min/km floor when the
// polynomial goes non-positive.
func TrainingPaces(vdot float64) []PaceZone {
	zones := make([]PaceZone, 0, len(paceZoneSpecs))

	for _, spec := range paceZoneSpecs {
		pace := paceSecPerKm(vdot * spec.intensity)
		zones = append(zones, PaceZone{
			Name:        spec.name,
			MinSecPerKm: int(math.Round(pace * spec.low)),
			MaxSecPerKm: int(math.Round(pace * spec.high)),
		})
	}

	return zones
}

// paceSecPerKm converts an effective VDOT into seconds per kilometer.
func paceSecPerKm(effective float64) float64 {
	velocity := 29.54 + 5.000663*effective - 0.007546*effective*effective
	if velocity <= 0 {
		return paceFloorSecPerKm
	}
	return 60000.0 / velocity // m/min -> sec/km
}

// EstimatePerformance bundles a VDOT estimate with its derived pace zones.
func EstimatePerformance(vdot float64) PerformanceIndex {
	return PerformanceIndex{
		VDOT:          vdot,
		TrainingPaces: TrainingPaces(vdot),
	}
}
