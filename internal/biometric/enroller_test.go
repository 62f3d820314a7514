package biometric_test

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/your-org/vms/internal/biometric"
	"github.com/your-org/vms/internal/models"
)

type recordingEmitter struct {
	mu     sync.Mutex
	events []models.AuditEvent
}

func (r *recordingEmitter) Emit(_ context.Context, ev models.AuditEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingEmitter) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Action
	}
	return out
}

func samples(n int, val float32) ([][]float32, []float32) {
	embeddings := make([][]float32, n)
	quality := make([]float32, n)
	for i := range embeddings {
		embeddings[i] = []float32{val}
		quality[i] = 1.0
	}
	return embeddings, quality
}

func TestEnrollRejectsInsufficientSamples(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroller := biometric.NewEnroller(store, testProvider(t, 0.72, 0.12, 5), nil)

	embeddings, quality := samples(4, 0.1)
	_, err := enroller.Enroll(context.Background(), uuid.Nil, uuid.New(), embeddings, quality)
	assert.ErrorIs(t, err, models.ErrInsufficientSamples)
}

func TestEnrollRejectsQualityLengthMismatch(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroller := biometric.NewEnroller(store, testProvider(t, 0.72, 0.12, 2), nil)

	embeddings, _ := samples(3, 0.1)
	_, err := enroller.Enroll(context.Background(), uuid.Nil, uuid.New(), embeddings, []float32{1.0})
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestEnrollRejectsRaggedDimensions(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroller := biometric.NewEnroller(store, testProvider(t, 0.72, 0.12, 2), nil)

	embeddings := [][]float32{{0.1}, {0.1, 0.2}}
	_, err := enroller.Enroll(context.Background(), uuid.Nil, uuid.New(), embeddings, []float32{1.0, 1.0})
	assert.ErrorIs(t, err, models.ErrDimensionMismatch)
}

func TestEnrollThenMatch(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	settings := testProvider(t, 0.72, 0.12, 5)
	emitter := &recordingEmitter{}
	enroller := biometric.NewEnroller(store, settings, emitter)

	visitor := uuid.New()
	embeddings, quality := samples(5, 0.05)
	profile, err := enroller.Enroll(context.Background(), uuid.New(), visitor, embeddings, quality)
	require.NoError(t, err)
	assert.Len(t, profile.Embeddings, 5)
	assert.Contains(t, emitter.actions(), models.ActionEnrolled)

	m := biometric.NewMatcher(store, settings)
	result, err := m.Match(context.Background(), []float32{0})
	require.NoError(t, err)
	assert.Equal(t, models.DecisionMatched, result.Decision)
	require.NotNil(t, result.VisitorID)
	assert.Equal(t, visitor, *result.VisitorID)
}

func TestEnrollReplacesWholeProfile(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	enroller := biometric.NewEnroller(store, testProvider(t, 0.72, 0.12, 2), nil)

	visitor := uuid.New()
	first, q1 := samples(3, 0.1)
	_, err := enroller.Enroll(context.Background(), uuid.Nil, visitor, first, q1)
	require.NoError(t, err)

	second, q2 := samples(2, 0.4)
	_, err = enroller.Enroll(context.Background(), uuid.Nil, visitor, second, q2)
	require.NoError(t, err)

	got, err := store.Get(context.Background(), visitor)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Len(t, got.Embeddings, 2)
	assert.Equal(t, float32(0.4), got.Embeddings[0][0])
}

func TestMemoryProfileStoreSnapshotIsolation(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	visitor := uuid.New()
	enroll(t, store, visitor, 0.1, 0.2)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap, 1)

	// Mutating the snapshot must not leak into the store.
	snap[0].Embeddings[0][0] = 9.9

	got, err := store.Get(context.Background(), visitor)
	require.NoError(t, err)
	assert.Equal(t, float32(0.1), got.Embeddings[0][0])
}

func TestMemoryProfileStoreDelete(t *testing.T) {
	store := biometric.NewMemoryProfileStore()
	visitor := uuid.New()
	enroll(t, store, visitor, 0.1)

	require.NoError(t, store.Delete(context.Background(), visitor))

	got, err := store.Get(context.Background(), visitor)
	require.NoError(t, err)
	assert.Nil(t, got)
}
