// Package strava is a minimal client for the two Strava API endpoints
// the sync needs: the activity list and per-activity laps.
package strava

import "time"

// Activity is an activity summary from /athlete/activities.
// Heart rate fields are pointers because Strava omits them entirely
// for activities recorded without a monitor.
type Activity struct {
	ID               int64     `json:"id"`
	Athlete          Athlete   `json:"athlete"`
	Name             string    `json:"name"`
	Type             string    `json:"type"`
	SportType        string    `json:"sport_type"`
	StartDate        time.Time `json:"start_date"`
	StartDateLocal   time.Time `json:"start_date_local"`
	Timezone         string    `json:"timezone"`
	Distance         float64   `json:"distance"`    // meters
	MovingTime       int       `json:"moving_time"` // seconds
	ElapsedTime      int       `json:"elapsed_time"`
	AverageHeartrate *float64  `json:"average_heartrate"` // bpm
	MaxHeartrate     *float64  `json:"max_heartrate"`
	HasHeartrate     bool      `json:"has_heartrate"`
}

// Athlete is the minimal athlete object embedded in activity responses
type Athlete struct {
	ID int64 `json:"id"`
}

// Lap is one lap from /activities/{id}/laps
type Lap struct {
	ID               int64    `json:"id"`
	LapIndex         int      `json:"lap_index"`
	Distance         float64  `json:"distance"`    // meters
	MovingTime       int      `json:"moving_time"` // seconds
	ElapsedTime      int      `json:"elapsed_time"`
	AverageHeartrate *float64 `json:"average_heartrate"`
}
