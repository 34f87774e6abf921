package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D-EdTech/lti-iib-credentials/internal/config"
)

func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("ROSTERSYNC_ROSTER_BASE_URL", "https://roster.example.edu")
	t.Setenv("ROSTERSYNC_ROSTER_CLIENT_ID", "roster-client")
	t.Setenv("ROSTERSYNC_ROSTER_CLIENT_SECRET", "roster-secret")
	t.Setenv("ROSTERSYNC_EXAM_BASE_URL", "https://exam.example.edu")
	t.Setenv("ROSTERSYNC_EXAM_CLIENT_ID", "exam-client")
	t.Setenv("ROSTERSYNC_EXAM_API_KEY", "exam-key")
}

func TestLoad_Defaults(t *testing.T) {
	setRequiredEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "data/roster_records.json", cfg.StorePath)
	assert.Equal(t, "data/roster_records.csv", cfg.ViewPath)
	assert.Equal(t, 500*time.Millisecond, cfg.APIDelay)
	assert.Equal(t, 15*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "", cfg.ExamLTIDeploymentID)
}

func TestLoad_Overrides(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROSTERSYNC_STORE_PATH", "/tmp/store.json")
	t.Setenv("ROSTERSYNC_VIEW_PATH", "/tmp/view.csv")
	t.Setenv("ROSTERSYNC_API_DELAY", "2s")
	t.Setenv("ROSTERSYNC_HTTP_TIMEOUT", "30s")
	t.Setenv("ROSTERSYNC_EXAM_LTI_DEPLOYMENT_ID", "DEP-")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "/tmp/store.json", cfg.StorePath)
	assert.Equal(t, "/tmp/view.csv", cfg.ViewPath)
	assert.Equal(t, 2*time.Second, cfg.APIDelay)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "DEP-", cfg.ExamLTIDeploymentID)
}

func TestLoad_MissingRequired(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROSTERSYNC_EXAM_API_KEY", "")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidBaseURL(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROSTERSYNC_ROSTER_BASE_URL", "not a url")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_InvalidDuration(t *testing.T) {
	setRequiredEnv(t)
	t.Setenv("ROSTERSYNC_API_DELAY", "half a second")

	_, err := config.Load()
	assert.Error(t, err)
}
