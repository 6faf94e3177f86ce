package auth

import (
	"context"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// refreshBuffer refreshes tokens slightly before they actually expire
// so an in-flight request never carries a stale token.
const refreshBuffer = 60 * time.Second

// PersistingTokenSource refreshes the Strava token when needed and hands
// every fresh token to a persistence callback before returning it.
type PersistingTokenSource struct {
	config  *oauth2.Config
	token   *oauth2.Token
	persist func(*oauth2.Token) error
	mu      sync.Mutex
}

// NewPersistingTokenSource wraps a stored token. persist is called with
// each refreshed token; if it fails the refresh is treated as failed.
func NewPersistingTokenSource(cfg *oauth2.Config, token *oauth2.Token, persist func(*oauth2.Token) error) *PersistingTokenSource {
	return &PersistingTokenSource{
		config:  cfg,
		token:   token,
		persist: persist,
	}
}

// Token returns a valid token, refreshing through the OAuth endpoint
// when the stored one is within the refresh buffer of expiry
func (ts *PersistingTokenSource) Token() (*oauth2.Token, error) {
	ts.mu.Lock()
	defer ts.mu.Unlock()

	if time.Until(ts.token.Expiry) > refreshBuffer {
		return ts.token, nil
	}

	src := ts.config.TokenSource(context.Background(), ts.token)
	fresh, err := src.Token()
	if err != nil {
		return nil, err
	}

	if ts.persist != nil {
		if err := ts.persist(fresh); err != nil {
			return nil, err
		}
	}

	ts.token = fresh
	return fresh, nil
}
