package store

import (
	"database/sql"
	"errors"
	"testing"
	"time"
)

// setupTestDB creates an in-memory database for testing
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	db := &DB{sqlDB}
	t.Cleanup(func() { db.Close() })
	return db
}

func floatPtr(f float64) *float64 {
	return &f
}

func testActivity(id int64, start time.Time) *Activity {
	return &Activity{
		ID:               id,
		AthleteID:        123,
		Name:             "Morning Run",
		Type:             "Run",
		StartDate:        start,
		StartDateLocal:   start,
		Timezone:         "(GMT+00:00) Europe/London",
		Distance:         10000,
		MovingTime:       3000,
		ElapsedTime:      3100,
		AverageHeartrate: floatPtr(152.3),
		MaxHeartrate:     floatPtr(171),
		HasHeartrate:     true,
	}
}

func TestActivities(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)

	t.Run("upsert and get round trip", func(t *testing.T) {
		a := testActivity(1, start)
		if err := db.UpsertActivity(a); err != nil {
			t.Fatalf("UpsertActivity() error = %v", err)
		}

		got, err := db.GetActivity(1)
		if err != nil {
			t.Fatalf("GetActivity() error = %v", err)
		}
		if got.Name != "Morning Run" {
			t.Errorf("Name = %v, want Morning Run", got.Name)
		}
		if !got.StartDate.Equal(start) {
			t.Errorf("StartDate = %v, want %v", got.StartDate, start)
		}
		if got.AverageHeartrate == nil || *got.AverageHeartrate != 152.3 {
			t.Errorf("AverageHeartrate = %v, want 152.3", got.AverageHeartrate)
		}
		if got.LapsSynced {
			t.Error("LapsSynced = true, want false")
		}
	})

	t.Run("upsert updates existing activity", func(t *testing.T) {
		a := testActivity(1, start)
		a.Name = "Renamed Run"
		a.Distance = 12000
		if err := db.UpsertActivity(a); err != nil {
			t.Fatalf("UpsertActivity() error = %v", err)
		}

		got, err := db.GetActivity(1)
		if err != nil {
			t.Fatalf("GetActivity() error = %v", err)
		}
		if got.Name != "Renamed Run" {
			t.Errorf("Name = %v, want Renamed Run", got.Name)
		}
		if got.Distance != 12000 {
			t.Errorf("Distance = %v, want 12000", got.Distance)
		}
	})

	t.Run("upsert preserves laps_synced flag", func(t *testing.T) {
		if err := db.MarkLapsSynced(1); err != nil {
			t.Fatalf("MarkLapsSynced() error = %v", err)
		}

		// Re-syncing the summary must not reset the flag
		if err := db.UpsertActivity(testActivity(1, start)); err != nil {
			t.Fatalf("UpsertActivity() error = %v", err)
		}

		got, err := db.GetActivity(1)
		if err != nil {
			t.Fatalf("GetActivity() error = %v", err)
		}
		if !got.LapsSynced {
			t.Error("LapsSynced = false after re-upsert, want true")
		}
	})

	t.Run("nil heart rate round trips", func(t *testing.T) {
		a := testActivity(2, start.Add(24*time.Hour))
		a.AverageHeartrate = nil
		a.MaxHeartrate = nil
		a.HasHeartrate = false
		if err := db.UpsertActivity(a); err != nil {
			t.Fatalf("UpsertActivity() error = %v", err)
		}

		got, err := db.GetActivity(2)
		if err != nil {
			t.Fatalf("GetActivity() error = %v", err)
		}
		if got.AverageHeartrate != nil {
			t.Errorf("AverageHeartrate = %v, want nil", *got.AverageHeartrate)
		}
		if got.HasHeartrate {
			t.Error("HasHeartrate = true, want false")
		}
	})

	t.Run("get missing activity", func(t *testing.T) {
		_, err := db.GetActivity(999)
		if !errors.Is(err, ErrActivityNotFound) {
			t.Errorf("GetActivity(999) error = %v, want ErrActivityNotFound", err)
		}
	})

	t.Run("GetAllActivities orders ascending", func(t *testing.T) {
		all, err := db.GetAllActivities()
		if err != nil {
			t.Fatalf("GetAllActivities() error = %v", err)
		}
		if len(all) != 2 {
			t.Fatalf("len = %d, want 2", len(all))
		}
		if all[0].ID != 1 || all[1].ID != 2 {
			t.Errorf("order = [%d, %d], want [1, 2]", all[0].ID, all[1].ID)
		}
	})

	t.Run("GetActivitiesNeedingLaps skips synced and non-runs", func(t *testing.T) {
		ride := testActivity(3, start.Add(48*time.Hour))
		ride.Type = "Ride"
		if err := db.UpsertActivity(ride); err != nil {
			t.Fatalf("UpsertActivity() error = %v", err)
		}

		needing, err := db.GetActivitiesNeedingLaps(10)
		if err != nil {
			t.Fatalf("GetActivitiesNeedingLaps() error = %v", err)
		}
		// Activity 1 is synced, activity 3 is a ride; only 2 remains
		if len(needing) != 1 || needing[0].ID != 2 {
			t.Errorf("needing = %v, want just activity 2", needing)
		}
	})

	t.Run("MarkLapsSynced on missing activity", func(t *testing.T) {
		err := db.MarkLapsSynced(999)
		if !errors.Is(err, ErrActivityNotFound) {
			t.Errorf("MarkLapsSynced(999) error = %v, want ErrActivityNotFound", err)
		}
	})

	t.Run("CountActivities", func(t *testing.T) {
		count, err := db.CountActivities()
		if err != nil {
			t.Fatalf("CountActivities() error = %v", err)
		}
		if count != 3 {
			t.Errorf("count = %d, want 3", count)
		}
	})
}

func TestLaps(t *testing.T) {
	db := setupTestDB(t)

	start := time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC)
	if err := db.UpsertActivity(testActivity(1, start)); err != nil {
		t.Fatalf("UpsertActivity() error = %v", err)
	}

	laps := []Lap{
		{ActivityID: 1, LapIndex: 0, Distance: 1000, MovingTime: 250, ElapsedTime: 255, AverageHeartrate: floatPtr(160)},
		{ActivityID: 1, LapIndex: 1, Distance: 1000, MovingTime: 245, ElapsedTime: 250, AverageHeartrate: nil},
	}

	t.Run("save and get", func(t *testing.T) {
		if err := db.SaveLaps(1, laps); err != nil {
			t.Fatalf("SaveLaps() error = %v", err)
		}

		got, err := db.GetLaps(1)
		if err != nil {
			t.Fatalf("GetLaps() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].MovingTime != 250 || got[1].MovingTime != 245 {
			t.Errorf("moving times = %d, %d, want 250, 245", got[0].MovingTime, got[1].MovingTime)
		}
		if got[1].AverageHeartrate != nil {
			t.Errorf("lap 1 AverageHeartrate = %v, want nil", *got[1].AverageHeartrate)
		}
	})

	t.Run("save replaces existing laps", func(t *testing.T) {
		if err := db.SaveLaps(1, laps[:1]); err != nil {
			t.Fatalf("SaveLaps() error = %v", err)
		}

		got, err := db.GetLaps(1)
		if err != nil {
			t.Fatalf("GetLaps() error = %v", err)
		}
		if len(got) != 1 {
			t.Errorf("len = %d after replace, want 1", len(got))
		}
	})

	t.Run("GetAllLaps groups by activity", func(t *testing.T) {
		if err := db.UpsertActivity(testActivity(2, start.Add(24*time.Hour))); err != nil {
			t.Fatalf("UpsertActivity() error = %v", err)
		}
		if err := db.SaveLaps(2, []Lap{{ActivityID: 2, LapIndex: 0, Distance: 400, MovingTime: 80, ElapsedTime: 82}}); err != nil {
			t.Fatalf("SaveLaps() error = %v", err)
		}

		all, err := db.GetAllLaps()
		if err != nil {
			t.Fatalf("GetAllLaps() error = %v", err)
		}
		if len(all[1]) != 1 || len(all[2]) != 1 {
			t.Errorf("grouped counts = %d, %d, want 1, 1", len(all[1]), len(all[2]))
		}
	})
}

func TestFitnessSnapshots(t *testing.T) {
	db := setupTestDB(t)

	snapshots := []FitnessSnapshot{
		{Date: "2024-03-01", CTL: 40.1, ATL: 55.2, TSB: -15.1, CTLPctOfPeak: 80, ATLPctOfPeak: 90, WorkloadRatio: floatPtr(1.37)},
		{Date: "2024-03-02", CTL: 41.0, ATL: 52.0, TSB: -11.0, CTLPctOfPeak: 82, ATLPctOfPeak: 85, WorkloadRatio: floatPtr(1.26)},
		{Date: "2024-03-03", CTL: 40.0, ATL: 45.0, TSB: -5.0, CTLPctOfPeak: 80, ATLPctOfPeak: 73, WorkloadRatio: nil},
	}

	t.Run("replace and get", func(t *testing.T) {
		if err := db.ReplaceFitnessSnapshots(snapshots); err != nil {
			t.Fatalf("ReplaceFitnessSnapshots() error = %v", err)
		}

		got, err := db.GetFitnessSnapshot("2024-03-02")
		if err != nil {
			t.Fatalf("GetFitnessSnapshot() error = %v", err)
		}
		if got.CTL != 41.0 || got.TSB != -11.0 {
			t.Errorf("CTL = %v, TSB = %v, want 41.0, -11.0", got.CTL, got.TSB)
		}
	})

	t.Run("nil workload ratio round trips", func(t *testing.T) {
		got, err := db.GetFitnessSnapshot("2024-03-03")
		if err != nil {
			t.Fatalf("GetFitnessSnapshot() error = %v", err)
		}
		if got.WorkloadRatio != nil {
			t.Errorf("WorkloadRatio = %v, want nil", *got.WorkloadRatio)
		}
	})

	t.Run("replace discards old rows", func(t *testing.T) {
		if err := db.ReplaceFitnessSnapshots(snapshots[1:]); err != nil {
			t.Fatalf("ReplaceFitnessSnapshots() error = %v", err)
		}

		_, err := db.GetFitnessSnapshot("2024-03-01")
		if !errors.Is(err, ErrNoSnapshot) {
			t.Errorf("error = %v, want ErrNoSnapshot", err)
		}
	})

	t.Run("range query", func(t *testing.T) {
		if err := db.ReplaceFitnessSnapshots(snapshots); err != nil {
			t.Fatalf("ReplaceFitnessSnapshots() error = %v", err)
		}

		got, err := db.GetFitnessSnapshotRange("2024-03-01", "2024-03-02")
		if err != nil {
			t.Fatalf("GetFitnessSnapshotRange() error = %v", err)
		}
		if len(got) != 2 {
			t.Fatalf("len = %d, want 2", len(got))
		}
		if got[0].Date != "2024-03-01" || got[1].Date != "2024-03-02" {
			t.Errorf("dates = %v, %v, want ascending range", got[0].Date, got[1].Date)
		}
	})
}

func TestSyncState(t *testing.T) {
	db := setupTestDB(t)

	t.Run("missing key returns empty", func(t *testing.T) {
		value, err := db.GetSyncState("last_sync")
		if err != nil {
			t.Fatalf("GetSyncState() error = %v", err)
		}
		if value != "" {
			t.Errorf("value = %q, want empty", value)
		}
	})

	t.Run("set and get", func(t *testing.T) {
		if err := db.SetSyncState("last_sync", "2024-03-10T09:00:00Z"); err != nil {
			t.Fatalf("SetSyncState() error = %v", err)
		}

		value, err := db.GetSyncState("last_sync")
		if err != nil {
			t.Fatalf("GetSyncState() error = %v", err)
		}
		if value != "2024-03-10T09:00:00Z" {
			t.Errorf("value = %q, want 2024-03-10T09:00:00Z", value)
		}
	})

	t.Run("set overwrites", func(t *testing.T) {
		if err := db.SetSyncState("last_sync", "2024-03-11T09:00:00Z"); err != nil {
			t.Fatalf("SetSyncState() error = %v", err)
		}

		value, err := db.GetSyncState("last_sync")
		if err != nil {
			t.Fatalf("GetSyncState() error = %v", err)
		}
		if value != "2024-03-11T09:00:00Z" {
			t.Errorf("value = %q, want 2024-03-11T09:00:00Z", value)
		}
	})
}

func TestAuth(t *testing.T) {
	db := setupTestDB(t)

	t.Run("no auth stored", func(t *testing.T) {
		_, err := db.GetAuth()
		if !errors.Is(err, ErrNoAuth) {
			t.Errorf("GetAuth() error = %v, want ErrNoAuth", err)
		}
	})

	t.Run("refresh before login fails", func(t *testing.T) {
		err := db.UpdateTokens("access", "refresh", time.Now().Add(time.Hour))
		if !errors.Is(err, ErrNoAuth) {
			t.Errorf("UpdateTokens() error = %v, want ErrNoAuth", err)
		}
	})

	t.Run("save and get", func(t *testing.T) {
		expires := time.Now().Add(6 * time.Hour).Truncate(time.Second)
		auth := &Auth{
			AthleteID:    123,
			AccessToken:  "access",
			RefreshToken: "refresh",
			ExpiresAt:    expires,
		}
		if err := db.SaveAuth(auth); err != nil {
			t.Fatalf("SaveAuth() error = %v", err)
		}

		got, err := db.GetAuth()
		if err != nil {
			t.Fatalf("GetAuth() error = %v", err)
		}
		if got.AthleteID != 123 || got.AccessToken != "access" {
			t.Errorf("got = %+v", got)
		}
		if !got.ExpiresAt.Equal(expires) {
			t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
		}
	})

	t.Run("update tokens", func(t *testing.T) {
		expires := time.Now().Add(12 * time.Hour).Truncate(time.Second)
		if err := db.UpdateTokens("access2", "refresh2", expires); err != nil {
			t.Fatalf("UpdateTokens() error = %v", err)
		}

		got, err := db.GetAuth()
		if err != nil {
			t.Fatalf("GetAuth() error = %v", err)
		}
		if got.AccessToken != "access2" || got.RefreshToken != "refresh2" {
			t.Errorf("tokens = %q, %q, want access2, refresh2", got.AccessToken, got.RefreshToken)
		}
		if got.AthleteID != 123 {
			t.Errorf("AthleteID = %d, want 123 (refresh must not change the athlete)", got.AthleteID)
		}
		if !got.ExpiresAt.Equal(expires) {
			t.Errorf("ExpiresAt = %v, want %v", got.ExpiresAt, expires)
		}
	})
}
