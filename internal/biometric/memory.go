package biometric

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
)

// MemoryProfileStore is the single-process ProfileStore. Writes hold the
// lock for the full replace, so snapshots never observe a torn profile.
type MemoryProfileStore struct {
	mu       sync.RWMutex
	profiles map[uuid.UUID]*models.BiometricProfile
}

func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{profiles: make(map[uuid.UUID]*models.BiometricProfile)}
}

func (s *MemoryProfileStore) Replace(_ context.Context, profile *models.BiometricProfile) error {
	clone := profile.Clone()
	s.mu.Lock()
	s.profiles[profile.VisitorID] = clone
	s.mu.Unlock()
	return nil
}

func (s *MemoryProfileStore) Get(_ context.Context, visitorID uuid.UUID) (*models.BiometricProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.profiles[visitorID]
	if !ok {
		return nil, nil
	}
	return p.Clone(), nil
}

func (s *MemoryProfileStore) Snapshot(_ context.Context) ([]*models.BiometricProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.BiometricProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		out = append(out, p.Clone())
	}
	return out, nil
}

func (s *MemoryProfileStore) Delete(_ context.Context, visitorID uuid.UUID) error {
	s.mu.Lock()
	delete(s.profiles, visitorID)
	s.mu.Unlock()
	return nil
}
