package engine

import (
	"math"
	"testing"
	"time"
)

func TestPredictedMarathonMinutes(t *testing.T) {
	tests := []struct {
		vdot     float64
		expected float64
	}{
		{48, 209.2},  // 430 - 4.6*48
		{50, 200},    // 430 - 230
		{10, 360},    // clamped high
		{80, 120},    // 430 - 368 = 62, clamped low
	}

	for _, tt := range tests {
		if got := PredictedMarathonMinutes(tt.vdot); math.Abs(got-tt.expected) > 0.001 {
			t.Errorf("PredictedMarathonMinutes(%v) = %v, want %v", tt.vdot, got, tt.expected)
		}
	}
}

func TestTargetLookups(t *testing.T) {
	weekly := []struct {
		minutes  float64
		expected float64
	}{
		{170, 110}, {180, 110}, {181, 90}, {195, 90}, {209.2, 80},
		{210, 80}, {211, 75}, {240, 70}, {255, 60}, {270, 55}, {300, 45},
	}
	for _, tt := range weekly {
		if got := lookupTarget(weeklyTargets, tt.minutes, weeklyTargetDefault); got != tt.expected {
			t.Errorf("weekly target for %v min = %v, want %v", tt.minutes, got, tt.expected)
		}
	}

	long := []struct {
		minutes  float64
		expected float64
	}{
		{170, 32}, {180, 32}, {209.2, 29}, {210, 29}, {211, 26},
		{240, 26}, {260, 23}, {271, 20},
	}
	for _, tt := range long {
		if got := lookupTarget(longRunTargets, tt.minutes, longRunTargetDefault); got != tt.expected {
			t.Errorf("long-run target for %v min = %v, want %v", tt.minutes, got, tt.expected)
		}
	}
}

func runAt(asOf time.Time, daysAgo int, km float64) Activity {
	return Activity{
		Type:           "Run",
		StartTime:      asOf.AddDate(0, 0, -daysAgo),
		DistanceMeters: km * 1000,
	}
}

func TestScoreMarathonReadiness(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("unavailable with no qualifying runs", func(t *testing.T) {
		if r := ScoreMarathonReadiness(nil, DefaultVO2Max, asOf); r != nil {
			t.Errorf("expected nil readiness, got %+v", r)
		}

		// Rides don't qualify.
		rides := []Activity{{Type: "Ride", StartTime: asOf.AddDate(0, 0, -5), DistanceMeters: 40000}}
		if r := ScoreMarathonReadiness(rides, DefaultVO2Max, asOf); r != nil {
			t.Errorf("expected nil readiness for non-runs, got %+v", r)
		}

		// Runs older than both windows don't qualify either.
		stale := []Activity{runAt(asOf, 200, 20)}
		if r := ScoreMarathonReadiness(stale, DefaultVO2Max, asOf); r != nil {
			t.Errorf("expected nil readiness for stale runs, got %+v", r)
		}
	})

	t.Run("scenario at VDOT 48", func(t *testing.T) {
		// Five 66 km weeks outside the long-run window plus one 30 km run
		// 10 days ago: six ISO weeks averaging 60 km, and a single long-run
		// candidate whose weighted aggregate is exactly its own distance.
		activities := []Activity{
			runAt(asOf, 77, 66),
			runAt(asOf, 84, 66),
			runAt(asOf, 91, 66),
			runAt(asOf, 98, 66),
			runAt(asOf, 105, 66),
			runAt(asOf, 10, 30),
		}

		r := ScoreMarathonReadiness(activities, 48, asOf)
		if r == nil {
			t.Fatal("expected a readiness score")
		}

		if math.Abs(r.PredictedMinutes-209.2) > 0.001 {
			t.Errorf("PredictedMinutes = %v, want 209.2", r.PredictedMinutes)
		}
		if r.TargetWeeklyKm != 80 || r.TargetLongRunKm != 29 {
			t.Errorf("targets = %v/%v km, want 80/29", r.TargetWeeklyKm, r.TargetLongRunKm)
		}
		if math.Abs(r.WeeklyAchievementPct-75) > 0.01 {
			t.Errorf("WeeklyAchievementPct = %v, want 75", r.WeeklyAchievementPct)
		}
		wantLong := 30.0 / 29.0 * 100
		if math.Abs(r.LongRunAchievement-wantLong) > 0.01 {
			t.Errorf("LongRunAchievement = %v, want %v", r.LongRunAchievement, wantLong)
		}
		wantComposite := 75*(2.0/3.0) + wantLong*(1.0/3.0)
		if math.Abs(r.CompositeScore-wantComposite) > 0.01 {
			t.Errorf("CompositeScore = %v, want %v", r.CompositeScore, wantComposite)
		}
	})

	t.Run("achievements cap at 150", func(t *testing.T) {
		// VDOT 30 -> 292 predicted minutes -> 45 km weekly / 20 km long-run
		// targets; one huge recent week blows past both.
		activities := []Activity{
			runAt(asOf, 2, 95),
			runAt(asOf, 4, 40),
		}

		r := ScoreMarathonReadiness(activities, 30, asOf)
		if r == nil {
			t.Fatal("expected a readiness score")
		}
		if r.WeeklyAchievementPct != 150 {
			t.Errorf("WeeklyAchievementPct = %v, want capped 150", r.WeeklyAchievementPct)
		}
		if r.LongRunAchievement != 150 {
			t.Errorf("LongRunAchievement = %v, want capped 150", r.LongRunAchievement)
		}
		if math.Abs(r.CompositeScore-150) > 0.001 {
			t.Errorf("CompositeScore = %v, want 150", r.CompositeScore)
		}
	})

	t.Run("recency weighting favors recent long runs", func(t *testing.T) {
		recent := []Activity{
			runAt(asOf, 5, 32),
			runAt(asOf, 60, 18),
		}
		r := ScoreMarathonReadiness(recent, 48, asOf)
		if r == nil {
			t.Fatal("expected a readiness score")
		}

		// The 32 km run is both longer and far more recent; the weighted
		// aggregate should sit close to it.
		effective := r.LongRunAchievement / 100 * r.TargetLongRunKm
		if effective < 28 || effective > 32 {
			t.Errorf("effective long run = %v km, want close to 32", effective)
		}
	})

	t.Run("falls back to longest run when no candidate carries weight", func(t *testing.T) {
		activities := []Activity{
			runAt(asOf, 3, 12),
			runAt(asOf, 6, 8),
		}

		r := ScoreMarathonReadiness(activities, 48, asOf)
		if r == nil {
			t.Fatal("expected a readiness score")
		}
		want := 12.0 / 29.0 * 100
		if math.Abs(r.LongRunAchievement-want) > 0.01 {
			t.Errorf("LongRunAchievement = %v, want %v (longest-run fallback)", r.LongRunAchievement, want)
		}
	})
}

func TestAvgWeeklyKm(t *testing.T) {
	asOf := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Two runs in one ISO week, one in another: (10+20)/1 + 30/1 over 2 weeks.
	runs := []Activity{
		runAt(asOf, 10, 10),
		runAt(asOf, 11, 20),
		runAt(asOf, 20, 30),
	}

	got := avgWeeklyKm(runs)
	if math.Abs(got-30) > 0.001 {
		t.Errorf("avgWeeklyKm = %v, want 30", got)
	}
}
