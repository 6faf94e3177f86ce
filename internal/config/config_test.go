package config

import (
	"strings"
	"testing"
)

func floatPtr(f float64) *float64 {
	return &f
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Athlete.RestingHR != 50 {
		t.Errorf("Athlete.RestingHR = %v, want 50", cfg.Athlete.RestingHR)
	}
	if cfg.Athlete.MaxHR != 185 {
		t.Errorf("Athlete.MaxHR = %v, want 185", cfg.Athlete.MaxHR)
	}
	if cfg.Athlete.Gender != "male" {
		t.Errorf("Athlete.Gender = %q, want %q", cfg.Athlete.Gender, "male")
	}
	if cfg.Athlete.RaceDistanceM != nil {
		t.Errorf("Athlete.RaceDistanceM should be nil, got %v", *cfg.Athlete.RaceDistanceM)
	}

	if cfg.Display.DistanceUnit != "km" {
		t.Errorf("Display.DistanceUnit = %q, want %q", cfg.Display.DistanceUnit, "km")
	}
	if cfg.Display.PaceUnit != "min/km" {
		t.Errorf("Display.PaceUnit = %q, want %q", cfg.Display.PaceUnit, "min/km")
	}

	if cfg.Strava.ClientID != "" {
		t.Errorf("Strava.ClientID should be empty, got %q", cfg.Strava.ClientID)
	}
}

func TestConfigValidate(t *testing.T) {
	validStrava := StravaConfig{
		ClientID:     "12345",
		ClientSecret: "abc123secret",
	}

	tests := []struct {
		name        string
		config      Config
		expectError bool
		errContains string
	}{
		{
			name:        "valid config",
			config:      Config{Strava: validStrava},
			expectError: false,
		},
		{
			name: "empty client ID",
			config: Config{
				Strava: StravaConfig{ClientSecret: "abc123secret"},
			},
			expectError: true,
			errContains: "client_id",
		},
		{
			name: "placeholder client ID",
			config: Config{
				Strava: StravaConfig{ClientID: "YOUR_CLIENT_ID", ClientSecret: "abc123secret"},
			},
			expectError: true,
			errContains: "client_id",
		},
		{
			name: "empty client secret",
			config: Config{
				Strava: StravaConfig{ClientID: "12345"},
			},
			expectError: true,
			errContains: "client_secret",
		},
		{
			name: "invalid gender",
			config: Config{
				Strava:  validStrava,
				Athlete: AthleteConfig{Gender: "other"},
			},
			expectError: true,
			errContains: "gender",
		},
		{
			name: "resting HR above max HR",
			config: Config{
				Strava:  validStrava,
				Athlete: AthleteConfig{RestingHR: 190, MaxHR: 185},
			},
			expectError: true,
			errContains: "resting_hr",
		},
		{
			name: "race distance without time",
			config: Config{
				Strava:  validStrava,
				Athlete: AthleteConfig{RaceDistanceM: floatPtr(5000)},
			},
			expectError: true,
			errContains: "race_distance_m",
		},
		{
			name: "race time without distance",
			config: Config{
				Strava:  validStrava,
				Athlete: AthleteConfig{RaceTimeS: floatPtr(1200)},
			},
			expectError: true,
			errContains: "race_distance_m",
		},
		{
			name: "complete race result",
			config: Config{
				Strava:  validStrava,
				Athlete: AthleteConfig{RaceDistanceM: floatPtr(5000), RaceTimeS: floatPtr(1200)},
			},
			expectError: false,
		},
		{
			name: "non-positive race result",
			config: Config{
				Strava:  validStrava,
				Athlete: AthleteConfig{RaceDistanceM: floatPtr(0), RaceTimeS: floatPtr(1200)},
			},
			expectError: true,
			errContains: "positive",
		},
		{
			name: "invalid distance unit",
			config: Config{
				Strava:  validStrava,
				Display: DisplayConfig{DistanceUnit: "furlongs"},
			},
			expectError: true,
			errContains: "distance_unit",
		},
		{
			name: "invalid pace unit",
			config: Config{
				Strava:  validStrava,
				Display: DisplayConfig{PaceUnit: "min/furlong"},
			},
			expectError: true,
			errContains: "pace_unit",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.expectError {
				if err == nil {
					t.Fatal("Validate() expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("Validate() error = %q, want it to contain %q", err, tt.errContains)
				}
			} else if err != nil {
				t.Errorf("Validate() unexpected error: %v", err)
			}
		})
	}
}
