package store

import (
	"database/sql"
	"errors"
	"time"
)

// ErrNoAuth is returned when the singleton auth row has not been written
// yet, i.e. the athlete has never completed the OAuth flow.
var ErrNoAuth = errors.New("no authentication stored")

// GetAuth returns the stored OAuth tokens. Expiry is kept as a unix
// timestamp in the database and converted back here.
func (db *DB) GetAuth() (*Auth, error) {
	var a Auth
	var expiry int64
	err := db.QueryRow(
		"SELECT athlete_id, access_token, refresh_token, expires_at FROM auth WHERE id = 1",
	).Scan(&a.AthleteID, &a.AccessToken, &a.RefreshToken, &expiry)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoAuth
	}
	if err != nil {
		return nil, err
	}
	a.ExpiresAt = time.Unix(expiry, 0)
	return &a, nil
}

// SaveAuth writes the full token set after a completed OAuth flow,
// replacing whatever the singleton row held before.
func (db *DB) SaveAuth(a *Auth) error {
	_, err := db.Exec(`
		INSERT INTO auth (id, athlete_id, access_token, refresh_token, expires_at, updated_at)
		VALUES (1, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			athlete_id = excluded.athlete_id,
			access_token = excluded.access_token,
			refresh_token = excluded.refresh_token,
			expires_at = excluded.expires_at,
			updated_at = CURRENT_TIMESTAMP
	`, a.AthleteID, a.AccessToken, a.RefreshToken, a.ExpiresAt.Unix())
	return err
}

// UpdateTokens rotates the token pair after a refresh. The athlete id is
// untouched since refreshing never changes who is logged in. Returns
// ErrNoAuth when the row was never created.
func (db *DB) UpdateTokens(accessToken, refreshToken string, expiresAt time.Time) error {
	res, err := db.Exec(
		"UPDATE auth SET access_token = ?, refresh_token = ?, expires_at = ?, updated_at = CURRENT_TIMESTAMP WHERE id = 1",
		accessToken, refreshToken, expiresAt.Unix(),
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNoAuth
	}
	return nil
}
