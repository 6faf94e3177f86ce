package service

import (
	"fmt"
	"time"

	"runcoach/internal/engine"
	"runcoach/internal/store"
)

// RaceResult is a configured recent race used as the preferred VDOT source
type RaceResult struct {
	DistanceMeters  float64
	DurationSeconds float64
}

// QueryService assembles read-only views for the TUI. The fitness values
// it returns are always recomputed from stored activities; the snapshot
// cache only serves the historical chart.
type QueryService struct {
	store   *store.DB
	profile engine.AthleteProfile
	race    *RaceResult
}

// NewQueryService creates a query service. race may be nil if the athlete
// has no configured race result.
func NewQueryService(db *store.DB, profile engine.AthleteProfile, race *RaceResult) *QueryService {
	return &QueryService{store: db, profile: profile, race: race}
}

// VDOT source labels shown in the dashboard
const (
	VDOTSourceRace    = "race result"
	VDOTSourceLaps    = "lap analysis"
	VDOTSourceDevice  = "device"
	VDOTSourceDefault = "default"
)

// DashboardData contains everything the dashboard screen renders
type DashboardData struct {
	// Today's fitness state
	Fitness         engine.FitnessSnapshot
	FormDescription string
	HasFitness      bool

	// TSB history for the chart, oldest first
	TSBHistory []float64
	TSBDates   []time.Time

	// Performance estimate; nil when no VDOT source is available
	Performance       *engine.PerformanceIndex
	PerformanceSource string

	// Marathon readiness; nil when there is no recent run history
	Readiness  *engine.MarathonReadiness
	VDOTSource string

	// Current ISO week totals, runs only
	WeekRunCount    int
	WeekDistanceKm  float64
	WeekTimeSeconds int

	RecentActivities []store.Activity
	TotalActivities  int
	LastSync         string
}

// GetDashboardData loads activities and laps and runs the full model
func (q *QueryService) GetDashboardData() (*DashboardData, error) {
	data := &DashboardData{}
	now := time.Now()

	activities, err := q.loadEngineActivities()
	if err != nil {
		return nil, fmt.Errorf("loading activities: %w", err)
	}

	if len(activities) > 0 {
		loads := engine.DailyLoads(activities, q.profile, time.Local)
		data.Fitness = engine.FitnessAt(loads, now)
		data.FormDescription = engine.FormDescription(data.Fitness.TSB)
		data.HasFitness = true

		data.TSBHistory, data.TSBDates = q.buildTSBHistory(loads, now)
	}

	vdot, source := q.selectVDOT(activities, now)
	if source != "" {
		perf := engine.EstimatePerformance(vdot)
		data.Performance = &perf
		data.PerformanceSource = source
	}

	// Readiness falls back to the default VDOT so new athletes still
	// get volume targets
	readinessVDOT := vdot
	if source == "" {
		readinessVDOT = engine.DefaultVO2Max
		source = VDOTSourceDefault
	}
	data.Readiness = engine.ScoreMarathonReadiness(activities, readinessVDOT, now)
	data.VDOTSource = source

	data.WeekRunCount, data.WeekDistanceKm, data.WeekTimeSeconds = weekTotals(activities, now)

	recent, err := q.store.ListActivities(RecentActivitiesLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("listing recent activities: %w", err)
	}
	data.RecentActivities = recent

	data.TotalActivities, err = q.store.CountActivities()
	if err != nil {
		return nil, fmt.Errorf("counting activities: %w", err)
	}

	data.LastSync, _ = q.store.GetSyncState("last_activity_sync")

	return data, nil
}

// loadEngineActivities reads all stored activities and attaches their laps
func (q *QueryService) loadEngineActivities() ([]engine.Activity, error) {
	stored, err := q.store.GetAllActivities()
	if err != nil {
		return nil, err
	}
	if len(stored) == 0 {
		return nil, nil
	}

	lapsByActivity, err := q.store.GetAllLaps()
	if err != nil {
		return nil, err
	}

	activities := make([]engine.Activity, len(stored))
	for i, a := range stored {
		activities[i] = toEngineActivity(a, lapsByActivity[a.ID])
	}
	return activities, nil
}

// selectVDOT picks the best available VDOT source in priority order:
// configured race result, lap analysis, then a device-reported value
func (q *QueryService) selectVDOT(activities []engine.Activity, asOf time.Time) (float64, string) {
	if q.race != nil {
		if vdot, ok := engine.VDOTFromRace(q.race.DistanceMeters, q.race.DurationSeconds); ok {
			return vdot, VDOTSourceRace
		}
	}

	if vdot, ok := engine.VDOTFromLaps(activities, asOf); ok {
		return vdot, VDOTSourceLaps
	}

	// Newest device-reported value, if any activity carries one
	for i := len(activities) - 1; i >= 0; i-- {
		if v := activities[i].VO2Max; v != nil && *v >= engine.VDOTMin && *v <= engine.VDOTMax {
			return *v, VDOTSourceDevice
		}
	}

	return 0, ""
}

// buildTSBHistory returns TSB for the last TSBChartDays days ending today.
// The snapshot cache serves the chart when it fully covers the range;
// otherwise the series is recomputed from the loads.
func (q *QueryService) buildTSBHistory(loads []engine.DailyLoad, now time.Time) ([]float64, []time.Time) {
	from := now.AddDate(0, 0, -(TSBChartDays - 1))
	cached, err := q.store.GetFitnessSnapshotRange(from.Format("2006-01-02"), now.Format("2006-01-02"))
	if err == nil && len(cached) == TSBChartDays {
		tsb := make([]float64, len(cached))
		dates := make([]time.Time, len(cached))
		ok := true
		for i, row := range cached {
			day, perr := time.ParseInLocation("2006-01-02", row.Date, time.Local)
			if perr != nil {
				ok = false
				break
			}
			tsb[i] = row.TSB
			dates[i] = day
		}
		if ok {
			return tsb, dates
		}
	}

	dates := make([]time.Time, 0, TSBChartDays)
	for i := TSBChartDays - 1; i >= 0; i-- {
		dates = append(dates, now.AddDate(0, 0, -i))
	}

	series := engine.FitnessSeries(loads, dates)
	tsb := make([]float64, len(series))
	out := make([]time.Time, len(series))
	for i, snap := range series {
		tsb[i] = snap.TSB
		out[i] = snap.Date
	}
	return tsb, out
}

// weekTotals sums the runs that fall in the same ISO week as now
func weekTotals(activities []engine.Activity, now time.Time) (count int, km float64, seconds int) {
	year, week := now.ISOWeek()
	for _, a := range activities {
		if !a.IsRun() {
			continue
		}
		y, w := a.StartTime.In(now.Location()).ISOWeek()
		if y != year || w != week {
			continue
		}
		count++
		km += a.DistanceMeters / 1000
		seconds += a.DurationSeconds
	}
	return count, km, seconds
}

// formatPace renders integer seconds as m:ss
func formatPace(seconds int) string {
	return fmt.Sprintf("%d:%02d", seconds/SecondsPerMinute, seconds%SecondsPerMinute)
}

// formatMinutes renders a minute count as h:mm
func formatMinutes(minutes float64) string {
	whole := int(minutes)
	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
