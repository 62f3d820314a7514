package biometric_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vms/internal/biometric"
	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/models"
)

func testProvider(t *testing.T, threshold, margin float64, minSamples int) *config.Provider {
	t.Helper()
	cfg := config.Default()
	cfg.Visits.Timezone = "UTC"
	cfg.Matching = config.MatchingConfig{
		Threshold:      threshold,
		Margin:         margin,
		MinimumSamples: minSamples,
	}
	p, err := config.NewProvider(cfg)
	require.NoError(t, err)
	return p
}

// refs builds a single-dimension profile. With probe {0}, a reference
// value d scores 1-d, which makes scenarios easy to read.
func enroll(t *testing.T, store *biometric.MemoryProfileStore, id uuid.UUID, refs ...float32) {
	t.Helper()
	profile := &models.BiometricProfile{
		VisitorID:  id,
		EnrolledAt: time.Now(),
	}
	for _, d := range refs {
		profile.Embeddings = append(profile.Embeddings, []float32{d})
		profile.Quality = append(profile.Quality, 1.0)
	}
	require.NoError(t, store.Replace(context.Background(), profile))
}

var probe = []float32{0}

func TestMatchClearWinner(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	alice := uuid.New()
	bob := uuid.New()
	enroll(t, store, alice, 0.08) // score 0.92
	enroll(t, store, bob, 0.30)   // score 0.70

	m := biometric.NewMatcher(store, testProvider(t, 0.72, 0.12, 1))
	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionMatched, result.Decision)
	require.NotNil(t, result.VisitorID)
	assert.Equal(t, alice, *result.VisitorID)
	assert.InDelta(t, 0.92, result.Score, 1e-6)
	assert.InDelta(t, 0.70, result.SecondBest, 1e-6)
}

func TestMatchAmbiguousWhenMarginTooSmall(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroll(t, store, uuid.New(), 0.08) // 0.92
	enroll(t, store, uuid.New(), 0.12) // 0.88, gap 0.04

	m := biometric.NewMatcher(store, testProvider(t, 0.72, 0.12, 1))
	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionAmbiguous, result.Decision)
	assert.Nil(t, result.VisitorID)
	assert.InDelta(t, 0.04, result.Margin, 1e-6)
}

func TestMatchRejectedBelowThreshold(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroll(t, store, uuid.New(), 0.50) // 0.50 < 0.72

	m := biometric.NewMatcher(store, testProvider(t, 0.72, 0.12, 1))
	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionRejected, result.Decision)
	assert.Nil(t, result.VisitorID)
}

func TestMatchNoProfiles(t *testing.T) {
	m := biometric.NewMatcher(biometric.NewMemoryProfileStore(), testProvider(t, 0.72, 0.12, 1))
	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNoProfiles, result.Decision)
}

func TestMatchSkipsProfilesBelowMinimumSamples(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	sparse := uuid.New()
	usable := uuid.New()
	enroll(t, store, sparse, 0.05)       // best raw score but only 1 sample
	enroll(t, store, usable, 0.20, 0.25) // 2 samples, score 0.80

	m := biometric.NewMatcher(store, testProvider(t, 0.72, 0.05, 2))
	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)

	assert.Equal(t, models.DecisionMatched, result.Decision)
	require.NotNil(t, result.VisitorID)
	assert.Equal(t, usable, *result.VisitorID)
}

func TestMatchOnlyUnderfilledProfilesIsNoProfiles(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroll(t, store, uuid.New(), 0.05)

	m := biometric.NewMatcher(store, testProvider(t, 0.72, 0.12, 5))
	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionNoProfiles, result.Decision)
}

func TestMatchIgnoresMismatchedDimensions(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	odd := uuid.New()
	require.NoError(t, store.Replace(context.Background(), &models.BiometricProfile{
		VisitorID:  odd,
		Embeddings: [][]float32{{0.01, 0.01}}, // 2-dim refs, 1-dim probe
		Quality:    []float32{1.0},
		EnrolledAt: time.Now(),
	}))

	m := biometric.NewMatcher(store, testProvider(t, 0.72, 0.12, 1))
	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionRejected, result.Decision)
}

func TestMatchSettingsChangeTakesEffectImmediately(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroll(t, store, uuid.New(), 0.08)

	settings := testProvider(t, 0.72, 0.12, 1)
	m := biometric.NewMatcher(store, settings)

	result, err := m.Match(context.Background(), probe)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionMatched, result.Decision)

	settings.UpdateMatching(config.MatchingConfig{Threshold: 0.95, Margin: 0.12, MinimumSamples: 1})

	result, err = m.Match(context.Background(), probe)
	require.NoError(t, err)
	assert.Equal(t, models.DecisionRejected, result.Decision)
}
