package store

import (
	"database/sql"
	"errors"
)

// ErrNoSnapshot is returned when no fitness snapshot exists for a date
var ErrNoSnapshot = errors.New("no fitness snapshot for date")

// ReplaceFitnessSnapshots swaps the entire snapshot cache for a freshly
// computed series. The cache is a pure memoization, so partial updates
// are never attempted.
func (db *DB) ReplaceFitnessSnapshots(snapshots []FitnessSnapshot) error {
	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM fitness_snapshots"); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO fitness_snapshots (date, ctl, atl, tsb, ctl_pct_peak, atl_pct_peak, workload_ratio)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, s := range snapshots {
		_, err := stmt.Exec(s.Date, s.CTL, s.ATL, s.TSB, s.CTLPctOfPeak, s.ATLPctOfPeak, s.WorkloadRatio)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetFitnessSnapshot returns the cached snapshot for one date (YYYY-MM-DD)
func (db *DB) GetFitnessSnapshot(date string) (*FitnessSnapshot, error) {
	row := db.QueryRow(`
		SELECT date, ctl, atl, tsb, ctl_pct_peak, atl_pct_peak, workload_ratio
		FROM fitness_snapshots
		WHERE date = ?
	`, date)

	var s FitnessSnapshot
	err := row.Scan(&s.Date, &s.CTL, &s.ATL, &s.TSB, &s.CTLPctOfPeak, &s.ATLPctOfPeak, &s.WorkloadRatio)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// GetFitnessSnapshotRange returns cached snapshots between two dates
// inclusive, ordered by date ascending
func (db *DB) GetFitnessSnapshotRange(from, to string) ([]FitnessSnapshot, error) {
	rows, err := db.Query(`
		SELECT date, ctl, atl, tsb, ctl_pct_peak, atl_pct_peak, workload_ratio
		FROM fitness_snapshots
		WHERE date >= ? AND date <= ?
		ORDER BY date ASC
	`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []FitnessSnapshot
	for rows.Next() {
		var s FitnessSnapshot
		err := rows.Scan(&s.Date, &s.CTL, &s.ATL, &s.TSB, &s.CTLPctOfPeak, &s.ATLPctOfPeak, &s.WorkloadRatio)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}
