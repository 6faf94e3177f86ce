// Package auth handles the Strava OAuth flow and token lifecycle.
package auth

import (
	"golang.org/x/oauth2"
)

// Strava OAuth endpoints
const (
	authURL  = "https://www.strava.com/oauth/authorize"
	tokenURL = "https://www.strava.com/oauth/token"
)

// Strava expects comma-separated scopes inside a single scope value.
// activity:read_all covers private activities and their laps.
var scopes = []string{"read,activity:read_all"}

// Credentials holds the API application credentials from config
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// OAuthConfig builds the oauth2.Config for Strava
func OAuthConfig(creds Credentials) *oauth2.Config {
	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		Endpoint: oauth2.Endpoint{
			AuthURL:  authURL,
			TokenURL: tokenURL,
		},
		RedirectURL: creds.RedirectURL,
		Scopes:      scopes,
	}
}

// Result carries the exchanged token and the authenticated athlete
type Result struct {
	Token     *oauth2.Token
	AthleteID int64
}

// AthleteIDFromToken pulls the athlete ID out of the token response.
// Strava embeds the athlete object alongside the token fields.
func AthleteIDFromToken(token *oauth2.Token) int64 {
	athlete, ok := token.Extra("athlete").(map[string]interface{})
	if !ok {
		return 0
	}
	id, ok := athlete["id"].(float64)
	if !ok {
		return 0
	}
	return int64(id)
}
