package store

import "time"

// Auth represents OAuth tokens for Strava API access
type Auth struct {
	AthleteID    int64
	AccessToken  string
	RefreshToken string
	ExpiresAt    time.Time
}

// Activity represents a synced activity summary
type Activity struct {
	ID               int64
	AthleteID        int64
	Name             string
	Type             string
	StartDate        time.Time
	StartDateLocal   time.Time
	Timezone         string
	Distance         float64 // meters
	MovingTime       int     // seconds
	ElapsedTime      int     // seconds
	AverageHeartrate *float64
	MaxHeartrate     *float64
	HasHeartrate     bool
	LapsSynced       bool
}

// Lap represents one segment of an activity
type Lap struct {
	ActivityID       int64
	LapIndex         int
	Distance         float64 // meters
	MovingTime       int     // seconds
	ElapsedTime      int     // seconds
	AverageHeartrate *float64
}

// FitnessSnapshot is a cached per-day CTL/ATL/TSB row
type FitnessSnapshot struct {
	Date          string // YYYY-MM-DD
	CTL           float64
	ATL           float64
	TSB           float64
	CTLPctOfPeak  float64
	ATLPctOfPeak  float64
	WorkloadRatio *float64
}
