// Package service orchestrates syncing from Strava and assembling the
// model outputs the TUI renders.
package service

import (
	"context"
	"fmt"
	"time"

	"runcoach/internal/engine"
	"runcoach/internal/store"
	"runcoach/internal/strava"
)

// SyncService pulls activities and laps from Strava into the local
// store and refreshes the fitness snapshot cache afterwards
type SyncService struct {
	client  *strava.Client
	store   *store.DB
	profile engine.AthleteProfile
}

// NewSyncService creates a sync service using the athlete's HR profile
// for the post-sync fitness recompute
func NewSyncService(client *strava.Client, db *store.DB, profile engine.AthleteProfile) *SyncService {
	return &SyncService{
		client:  client,
		store:   db,
		profile: profile,
	}
}

// SyncProgress reports progress during sync
type SyncProgress struct {
	Phase           string // "activities", "laps", "fitness"
	Total           int
	Completed       int
	CurrentActivity string
	Error           error
}

// SyncResult contains the results of a sync operation
type SyncResult struct {
	ActivitiesFetched int
	ActivitiesStored  int
	LapsFetched       int
	SnapshotDays      int
	Errors            []error
}

// SyncAll performs a full sync: activity summaries, then laps for runs
// that are missing them, then a fresh fitness snapshot series
func (s *SyncService) SyncAll(ctx context.Context, progress chan<- SyncProgress) (*SyncResult, error) {
	if progress != nil {
		defer close(progress)
	}

	result := &SyncResult{}

	if err := s.syncActivities(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing activities: %w", err)
	}

	if err := s.syncLaps(ctx, progress, result); err != nil {
		return result, fmt.Errorf("syncing laps: %w", err)
	}

	if err := s.refreshFitnessCache(ctx, progress, result); err != nil {
		return result, fmt.Errorf("refreshing fitness cache: %w", err)
	}

	return result, nil
}

// syncActivities fetches activity summaries newer than the last sync
func (s *SyncService) syncActivities(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	lastSyncStr, _ := s.store.GetSyncState("last_activity_sync")
	var after time.Time
	if lastSyncStr != "" {
		after, _ = time.Parse(time.RFC3339, lastSyncStr)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "activities"}
	}

	activities, err := s.client.GetAllActivities(ctx, after, func(fetched int) {
		if progress != nil {
			progress <- SyncProgress{Phase: "activities", Total: fetched, Completed: fetched}
		}
	})
	result.ActivitiesFetched = len(activities)
	if err != nil {
		return err
	}

	for _, a := range activities {
		if err := s.store.UpsertActivity(convertActivity(a)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("storing activity %d: %w", a.ID, err))
			continue
		}
		result.ActivitiesStored++
	}

	s.store.SetSyncState("last_activity_sync", time.Now().Format(time.RFC3339))

	return nil
}

// syncLaps fetches laps for runs that don't have them yet. Each activity
// costs one API request, so the batch size bounds the rate budget spent.
func (s *SyncService) syncLaps(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	activities, err := s.store.GetActivitiesNeedingLaps(LapSyncBatchSize)
	if err != nil {
		return fmt.Errorf("getting activities needing laps: %w", err)
	}

	if len(activities) == 0 {
		return nil
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "laps", Total: len(activities)}
	}

	for i, activity := range activities {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if progress != nil {
			progress <- SyncProgress{
				Phase:           "laps",
				Total:           len(activities),
				Completed:       i,
				CurrentActivity: activity.Name,
			}
		}

		laps, err := s.client.GetActivityLaps(ctx, activity.ID)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("activity %d (%s): %w", activity.ID, activity.Name, err))
			continue
		}

		if err := s.store.SaveLaps(activity.ID, convertLaps(activity.ID, laps)); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("saving laps for %d: %w", activity.ID, err))
			continue
		}

		if err := s.store.MarkLapsSynced(activity.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Errorf("marking laps synced for %d: %w", activity.ID, err))
			continue
		}

		result.LapsFetched += len(laps)
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "laps", Total: len(activities), Completed: len(activities)}
	}

	return nil
}

// refreshFitnessCache recomputes the full CTL/ATL/TSB series from stored
// activities and swaps it into the snapshot cache
func (s *SyncService) refreshFitnessCache(ctx context.Context, progress chan<- SyncProgress, result *SyncResult) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	if progress != nil {
		progress <- SyncProgress{Phase: "fitness"}
	}

	stored, err := s.store.GetAllActivities()
	if err != nil {
		return fmt.Errorf("loading activities: %w", err)
	}
	if len(stored) == 0 {
		return nil
	}

	activities := make([]engine.Activity, len(stored))
	for i, a := range stored {
		activities[i] = toEngineActivity(a, nil)
	}

	loads := engine.DailyLoads(activities, s.profile, time.Local)
	if len(loads) == 0 {
		return nil
	}

	// One snapshot per day from the first load through today
	var dates []time.Time
	end := time.Now()
	for d := loads[0].Date; !d.After(end); d = d.AddDate(0, 0, 1) {
		dates = append(dates, d)
	}

	series := engine.FitnessSeries(loads, dates)

	rows := make([]store.FitnessSnapshot, len(series))
	for i, snap := range series {
		rows[i] = store.FitnessSnapshot{
			Date:          snap.Date.Format("2006-01-02"),
			CTL:           snap.CTL,
			ATL:           snap.ATL,
			TSB:           snap.TSB,
			CTLPctOfPeak:  snap.CTLPctOfPeak,
			ATLPctOfPeak:  snap.ATLPctOfPeak,
			WorkloadRatio: snap.WorkloadRatio,
		}
	}

	if err := s.store.ReplaceFitnessSnapshots(rows); err != nil {
		return fmt.Errorf("replacing snapshots: %w", err)
	}
	result.SnapshotDays = len(rows)

	if progress != nil {
		progress <- SyncProgress{Phase: "fitness", Total: len(rows), Completed: len(rows)}
	}

	return nil
}

// RateLimitStatus returns the current rate limit status from the client
func (s *SyncService) RateLimitStatus() (shortRemaining, dailyRemaining int) {
	return s.client.RateLimitStatus()
}

// convertActivity converts a Strava API activity to a store activity
func convertActivity(a strava.Activity) *store.Activity {
	return &store.Activity{
		ID:               a.ID,
		AthleteID:        a.Athlete.ID,
		Name:             a.Name,
		Type:             a.Type,
		StartDate:        a.StartDate,
		StartDateLocal:   a.StartDateLocal,
		Timezone:         a.Timezone,
		Distance:         a.Distance,
		MovingTime:       a.MovingTime,
		ElapsedTime:      a.ElapsedTime,
		AverageHeartrate: a.AverageHeartrate,
		MaxHeartrate:     a.MaxHeartrate,
		HasHeartrate:     a.HasHeartrate,
	}
}

// convertLaps converts Strava API laps to store laps
func convertLaps(activityID int64, laps []strava.Lap) []store.Lap {
	out := make([]store.Lap, len(laps))
	for i, lap := range laps {
		out[i] = store.Lap{
			ActivityID:       activityID,
			LapIndex:         lap.LapIndex,
			Distance:         lap.Distance,
			MovingTime:       lap.MovingTime,
			ElapsedTime:      lap.ElapsedTime,
			AverageHeartrate: lap.AverageHeartrate,
		}
	}
	return out
}

// toEngineActivity converts a stored activity plus its laps into the
// model input shape
func toEngineActivity(a store.Activity, laps []store.Lap) engine.Activity {
	out := engine.Activity{
		Type:            a.Type,
		StartTime:       a.StartDate,
		DurationSeconds: a.MovingTime,
		DistanceMeters:  a.Distance,
		AvgHeartRate:    a.AverageHeartrate,
		MaxHeartRate:    a.MaxHeartrate,
	}
	for _, lap := range laps {
		out.Laps = append(out.Laps, engine.Lap{
			DistanceMeters:  lap.Distance,
			DurationSeconds: lap.MovingTime,
		})
	}
	return out
}
