package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"golang.org/x/oauth2"

	tea "github.com/charmbracelet/bubbletea"

	"runcoach/internal/auth"
	"runcoach/internal/config"
	"runcoach/internal/engine"
	"runcoach/internal/service"
	"runcoach/internal/store"
	"runcoach/internal/strava"
	"runcoach/internal/tui"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	ctx := context.Background()

	cfg, err := config.Load()
	if errors.Is(err, config.ErrNoConfig) {
		fmt.Println("No config file found. Creating example config...")
		if err := config.CreateExample(); err != nil {
			return fmt.Errorf("creating example config: %w", err)
		}
		fmt.Println()
		fmt.Println("Please edit ~/.runcoach/config.json and add your Strava API credentials.")
		fmt.Println("Get them from: https://www.strava.com/settings/api")
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		fmt.Printf("Config validation failed: %v\n\n", err)
		fmt.Println("Please edit ~/.runcoach/config.json")
		return nil
	}

	db, err := store.Open()
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	storedAuth, err := db.GetAuth()
	if errors.Is(err, store.ErrNoAuth) {
		fmt.Println("No authentication found. Starting OAuth flow...")
		if err := authenticate(ctx, db, cfg); err != nil {
			return fmt.Errorf("authentication: %w", err)
		}
		storedAuth, err = db.GetAuth()
		if err != nil {
			return fmt.Errorf("fetching auth after login: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("checking auth: %w", err)
	}

	oauthCfg := auth.OAuthConfig(stravaCredentials(cfg))

	token := &oauth2.Token{
		AccessToken:  storedAuth.AccessToken,
		RefreshToken: storedAuth.RefreshToken,
		Expiry:       storedAuth.ExpiresAt,
	}

	tokenSource := auth.NewPersistingTokenSource(oauthCfg, token, func(fresh *oauth2.Token) error {
		return db.UpdateTokens(fresh.AccessToken, fresh.RefreshToken, fresh.Expiry)
	})

	// Surface a dead refresh token before the TUI starts
	if _, err := tokenSource.Token(); err != nil {
		fmt.Println("Stored token is invalid or expired. Re-authenticating...")
		if err := authenticate(ctx, db, cfg); err != nil {
			return fmt.Errorf("re-authentication: %w", err)
		}
	}

	profile := athleteProfile(cfg)
	stravaClient := strava.NewClient(tokenSource)
	syncSvc := service.NewSyncService(stravaClient, db, profile)
	querySvc := service.NewQueryService(db, profile, raceResult(cfg))

	app := tui.NewApp(db, syncSvc, querySvc)
	p := tea.NewProgram(app, tea.WithAltScreen())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func authenticate(ctx context.Context, db *store.DB, cfg *config.Config) error {
	oauthCfg := auth.OAuthConfig(stravaCredentials(cfg))

	result, err := auth.Login(ctx, oauthCfg)
	if err != nil {
		return err
	}

	storedAuth := &store.Auth{
		AthleteID:    result.AthleteID,
		AccessToken:  result.Token.AccessToken,
		RefreshToken: result.Token.RefreshToken,
		ExpiresAt:    result.Token.Expiry,
	}

	if err := db.SaveAuth(storedAuth); err != nil {
		return fmt.Errorf("saving auth: %w", err)
	}

	fmt.Println()
	fmt.Printf("Successfully authenticated as athlete %d!\n", result.AthleteID)
	return nil
}

func stravaCredentials(cfg *config.Config) auth.Credentials {
	return auth.Credentials{
		ClientID:     cfg.Strava.ClientID,
		ClientSecret: cfg.Strava.ClientSecret,
		RedirectURL:  fmt.Sprintf("http://localhost:%d/callback", auth.CallbackPort),
	}
}

func athleteProfile(cfg *config.Config) engine.AthleteProfile {
	profile := engine.DefaultProfile()
	if cfg.Athlete.MaxHR > 0 {
		profile.MaxHR = cfg.Athlete.MaxHR
	}
	if cfg.Athlete.RestingHR > 0 {
		profile.RestingHR = cfg.Athlete.RestingHR
	}
	if cfg.Athlete.Gender == "female" {
		profile.Gender = engine.Female
	}
	return profile
}

func raceResult(cfg *config.Config) *service.RaceResult {
	if cfg.Athlete.RaceDistanceM == nil || cfg.Athlete.RaceTimeS == nil {
		return nil
	}
	return &service.RaceResult{
		DistanceMeters:  *cfg.Athlete.RaceDistanceM,
		DurationSeconds: *cfg.Athlete.RaceTimeS,
	}
}
