package store

// SaveLaps replaces all laps for an activity in a single transaction
func (db *DB) SaveLaps(activityID int64, laps []Lap) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM laps WHERE activity_id = ?", activityID); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO laps (activity_id, lap_index, distance, moving_time, elapsed_time, average_heartrate)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, lap := range laps {
		_, err := stmt.Exec(activityID, lap.LapIndex, lap.Distance, lap.MovingTime, lap.ElapsedTime, lap.AverageHeartrate)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetLaps returns the laps of one activity ordered by lap index
func (db *DB) GetLaps(activityID int64) ([]Lap, error) {
	rows, err := db.Query(`
		SELECT activity_id, lap_index, distance, moving_time, elapsed_time, average_heartrate
		FROM laps
		WHERE activity_id = ?
		ORDER BY lap_index ASC
	`, activityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var laps []Lap
	for rows.Next() {
		var lap Lap
		err := rows.Scan(&lap.ActivityID, &lap.LapIndex, &lap.Distance, &lap.MovingTime, &lap.ElapsedTime, &lap.AverageHeartrate)
		if err != nil {
			return nil, err
		}
		laps = append(laps, lap)
	}

	return laps, rows.Err()
}

// GetAllLaps returns every stored lap keyed by activity ID. The performance
// estimator loads the full lap history at once rather than per activity.
func (db *DB) GetAllLaps() (map[int64][]Lap, error) {
	rows, err := db.Query(`
		SELECT activity_id, lap_index, distance, moving_time, elapsed_time, average_heartrate
		FROM laps
		ORDER BY activity_id, lap_index ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	laps := make(map[int64][]Lap)
	for rows.Next() {
		var lap Lap
		err := rows.Scan(&lap.ActivityID, &lap.LapIndex, &lap.Distance, &lap.MovingTime, &lap.ElapsedTime, &lap.AverageHeartrate)
		if err != nil {
			return nil, err
		}
		laps[lap.ActivityID] = append(laps[lap.ActivityID], lap)
	}

	return laps, rows.Err()
}
