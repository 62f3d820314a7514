package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/models"
)

func TestDefaults(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, 0.72, cfg.Matching.Threshold)
	assert.Equal(t, 0.12, cfg.Matching.Margin)
	assert.Equal(t, 5, cfg.Matching.MinimumSamples)
	assert.Equal(t, []models.Relationship{models.RelationshipSpouse}, cfg.Visits.ConjugalEligible)
	assert.Equal(t, -1, cfg.Visits.CategoryLimits[models.CategoryImmediateFamily])
	assert.Equal(t, 2, cfg.Visits.CategoryLimits[models.CategoryLegalGuardian])
	assert.Equal(t, "Asia/Manila", cfg.Visits.Timezone)
	assert.Equal(t, 512, cfg.Capture.EmbeddingDim)
}

func TestLoadWithEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := `
server:
  port: 9090
matching:
  threshold: 0.8
visits:
  timezone: UTC
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	t.Setenv("VMS_MATCH_THRESHOLD", "0.9")
	t.Setenv("VMS_DB_HOST", "db.internal")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 0.9, cfg.Matching.Threshold)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, "UTC", cfg.Visits.Timezone)
	// Untouched fields still get defaults.
	assert.Equal(t, 0.12, cfg.Matching.Margin)
}

func newProvider(t *testing.T) *config.Provider {
	t.Helper()
	cfg := config.Default()
	cfg.Visits.Timezone = "UTC"
	p, err := config.NewProvider(cfg)
	require.NoError(t, err)
	return p
}

func TestProviderCategoryLimitFallback(t *testing.T) {
	p := newProvider(t)
	assert.Equal(t, -1, p.CategoryLimit(models.CategoryImmediateFamily))
	assert.Equal(t, 2, p.CategoryLimit(models.CategoryLegalGuardian))
	assert.Equal(t, -1, p.CategoryLimit(models.LinkCategory("unknown")))
}

func TestProviderConjugalEligible(t *testing.T) {
	p := newProvider(t)
	assert.True(t, p.ConjugalEligible(models.RelationshipSpouse))
	assert.False(t, p.ConjugalEligible(models.RelationshipCousin))
}

func TestProviderRejectsBadTimezone(t *testing.T) {
	p := newProvider(t)

	bad := p.Visits()
	bad.Timezone = "Mars/Olympus"
	assert.Error(t, p.UpdateVisits(bad))

	// The old policy stays in force.
	assert.Equal(t, "UTC", p.Visits().Timezone)
}

func TestProviderUpdateVisits(t *testing.T) {
	p := newProvider(t)

	v := p.Visits()
	v.ConjugalEligible = []models.Relationship{models.RelationshipSpouse, models.RelationshipGuardian}
	v.CategoryLimits[models.CategoryCloseFriend] = 1
	require.NoError(t, p.UpdateVisits(v))

	assert.True(t, p.ConjugalEligible(models.RelationshipGuardian))
	assert.Equal(t, 1, p.CategoryLimit(models.CategoryCloseFriend))
}

func TestProviderVisitsReturnsCopy(t *testing.T) {
	p := newProvider(t)

	v := p.Visits()
	v.CategoryLimits[models.CategoryLegalGuardian] = 99

	assert.Equal(t, 2, p.CategoryLimit(models.CategoryLegalGuardian))
}

func TestProviderRejectsUnknownTimezoneAtConstruction(t *testing.T) {
	cfg := config.Default()
	cfg.Visits.Timezone = "Not/AZone"
	_, err := config.NewProvider(cfg)
	assert.Error(t, err)
}
