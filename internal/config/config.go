// Package config loads application configuration from environment
// variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds everything the two passes need: credentials and base URLs
// for both remote systems, the data file paths, and call pacing. It is
// passed explicitly into each client constructor; nothing reads the
// environment after startup.
type Config struct {
	RosterBaseURL      string `validate:"required,url"`
	RosterClientID     string `validate:"required"`
	RosterClientSecret string `validate:"required"`

	ExamBaseURL         string `validate:"required,url"`
	ExamClientID        string `validate:"required"`
	ExamAPIKey          string `validate:"required"`
	ExamLTIDeploymentID string

	StorePath string `validate:"required"`
	ViewPath  string `validate:"required"`

	// APIDelay is the minimum spacing between calls to either remote
	// system.
	APIDelay    time.Duration
	HTTPTimeout time.Duration
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory if one exists. Required variables:
// ROSTERSYNC_ROSTER_BASE_URL, ROSTERSYNC_ROSTER_CLIENT_ID,
// ROSTERSYNC_ROSTER_CLIENT_SECRET, ROSTERSYNC_EXAM_BASE_URL,
// ROSTERSYNC_EXAM_CLIENT_ID, ROSTERSYNC_EXAM_API_KEY.
// Optional with defaults: ROSTERSYNC_EXAM_LTI_DEPLOYMENT_ID (empty),
// ROSTERSYNC_STORE_PATH (data/roster_records.json), ROSTERSYNC_VIEW_PATH
// (data/roster_records.csv), ROSTERSYNC_API_DELAY (500ms),
// ROSTERSYNC_HTTP_TIMEOUT (15s).
func Load() (*Config, error) {
	// Missing .env is fine; the variables may come from the environment
	// proper.
	_ = godotenv.Load()

	cfg := &Config{
		RosterBaseURL:      os.Getenv("ROSTERSYNC_ROSTER_BASE_URL"),
		RosterClientID:     os.Getenv("ROSTERSYNC_ROSTER_CLIENT_ID"),
		RosterClientSecret: os.Getenv("ROSTERSYNC_ROSTER_CLIENT_SECRET"),

		ExamBaseURL:         os.Getenv("ROSTERSYNC_EXAM_BASE_URL"),
		ExamClientID:        os.Getenv("ROSTERSYNC_EXAM_CLIENT_ID"),
		ExamAPIKey:          os.Getenv("ROSTERSYNC_EXAM_API_KEY"),
		ExamLTIDeploymentID: os.Getenv("ROSTERSYNC_EXAM_LTI_DEPLOYMENT_ID"),

		StorePath:   "data/roster_records.json",
		ViewPath:    "data/roster_records.csv",
		APIDelay:    500 * time.Millisecond,
		HTTPTimeout: 15 * time.Second,
	}

	if v, ok := os.LookupEnv("ROSTERSYNC_STORE_PATH"); ok {
		cfg.StorePath = v
	}
	if v, ok := os.LookupEnv("ROSTERSYNC_VIEW_PATH"); ok {
		cfg.ViewPath = v
	}
	if v, ok := os.LookupEnv("ROSTERSYNC_API_DELAY"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ROSTERSYNC_API_DELAY has invalid duration %q: %w", v, err)
		}
		cfg.APIDelay = parsed
	}
	if v, ok := os.LookupEnv("ROSTERSYNC_HTTP_TIMEOUT"); ok {
		parsed, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("ROSTERSYNC_HTTP_TIMEOUT has invalid duration %q: %w", v, err)
		}
		cfg.HTTPTimeout = parsed
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
