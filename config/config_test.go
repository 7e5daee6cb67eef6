package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownGracePeriod)
	assert.Equal(t, 120*time.Second, cfg.Server.RequestTimeout)
	assert.Equal(t, int64(102400), cfg.Server.MaxBodySize)

	assert.Equal(t, 10*time.Second, cfg.Discovery.ProbeTimeout)
	assert.Equal(t, 6, cfg.Discovery.ProbeThreads)
	assert.Equal(t, 5, cfg.Discovery.MaxPerType)

	assert.Equal(t, 8000, cfg.Analysis.ChunkThreshold)
	assert.Equal(t, 4000, cfg.Analysis.ChunkSize)
	assert.Equal(t, 200, cfg.Analysis.ChunkOverlap)

	assert.InDelta(t, 0.3, cfg.Scoring.Weights.DataSecurity, 1e-9)
	assert.InDelta(t, 0.25, cfg.Scoring.Weights.Privacy, 1e-9)
	assert.InDelta(t, 0.2, cfg.Scoring.Weights.Compliance, 1e-9)
	assert.InDelta(t, 0.25, cfg.Scoring.Weights.Operational, 1e-9)
	assert.InDelta(t, 85.0, cfg.Scoring.ReviewThreshold, 1e-9)

	assert.Equal(t, 3, cfg.Workflow.MaxAttempts)

	assert.Equal(t, "gpt-4o-mini", cfg.Completion.Model)
	assert.Equal(t, 2048, cfg.Completion.MaxTokens)
	assert.Empty(t, cfg.Completion.APIKey)

	assert.False(t, cfg.Archive.Enabled)
	assert.Equal(t, "probity-documents", cfg.Archive.ObjectStore.Bucket)
	assert.True(t, cfg.Archive.ObjectStore.UseSSL)

	assert.Equal(t, 10*time.Second, cfg.Slack.RequestTimeout)

	assert.Equal(t, 4, cfg.Assessment.RetrieveThreads)
	assert.Equal(t, 30*time.Second, cfg.Assessment.RetrieveTimeout)
}

func TestLoad_YAMLFile(t *testing.T) {
	content := []byte(`server:
  listen: ":9090"
  maxbodysize: 204800
discovery:
  probethreads: 2
scoring:
  reviewthreshold: 70
completion:
  model: gpt-4o
`)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	cfg, err := Load(&path)
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Server.Listen)
	assert.Equal(t, int64(204800), cfg.Server.MaxBodySize)
	assert.Equal(t, 2, cfg.Discovery.ProbeThreads)
	assert.InDelta(t, 70.0, cfg.Scoring.ReviewThreshold, 1e-9)
	assert.Equal(t, "gpt-4o", cfg.Completion.Model)

	// untouched sections keep defaults
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 5, cfg.Discovery.MaxPerType)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PROBITY_SERVER_LISTEN", ":7070")
	t.Setenv("PROBITY_COMPLETION_MODEL", "o4-mini")
	t.Setenv("PROBITY_WORKFLOW_MAXATTEMPTS", "5")

	cfg, err := Load(nil)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Listen)
	assert.Equal(t, "o4-mini", cfg.Completion.Model)
	assert.Equal(t, 5, cfg.Workflow.MaxAttempts)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	content := []byte("server:\n  listen: \":9090\"\n")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, content, 0o600))

	t.Setenv("PROBITY_SERVER_LISTEN", ":7070")

	cfg, err := Load(&path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.Server.Listen)
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	path := "/nonexistent/config.yaml"

	cfg, err := Load(&path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Listen)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: valid"), 0o600))

	_, err := Load(&path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrConfigRead)
}
