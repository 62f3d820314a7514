package storage

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
)

// MemoryIdentityStore keeps visitors and detainees in process. It backs
// tests and single-kiosk deployments; the Postgres store replaces it when
// several writers share one facility.
type MemoryIdentityStore struct {
	mu            sync.RWMutex
	visitors      map[uuid.UUID]*models.Visitor
	visitorCodes  map[string]uuid.UUID
	detainees     map[uuid.UUID]*models.Detainee
	detaineeCodes map[string]uuid.UUID
}

func NewMemoryIdentityStore() *MemoryIdentityStore {
	return &MemoryIdentityStore{
		visitors:      make(map[uuid.UUID]*models.Visitor),
		visitorCodes:  make(map[string]uuid.UUID),
		detainees:     make(map[uuid.UUID]*models.Detainee),
		detaineeCodes: make(map[string]uuid.UUID),
	}
}

func normalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (s *MemoryIdentityStore) PutVisitor(_ context.Context, v *models.Visitor) error {
	c := *v
	s.mu.Lock()
	s.visitors[v.ID] = &c
	s.visitorCodes[normalizeCode(v.Code)] = v.ID
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdentityStore) VisitorByID(_ context.Context, id uuid.UUID) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.visitors[id]
	if !ok {
		return nil, nil
	}
	c := *v
	return &c, nil
}

func (s *MemoryIdentityStore) VisitorByCode(_ context.Context, code string) (*models.Visitor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.visitorCodes[normalizeCode(code)]
	if !ok {
		return nil, nil
	}
	c := *s.visitors[id]
	return &c, nil
}

func (s *MemoryIdentityStore) PutDetainee(_ context.Context, d *models.Detainee) error {
	c := *d
	s.mu.Lock()
	s.detainees[d.ID] = &c
	s.detaineeCodes[normalizeCode(d.Code)] = d.ID
	s.mu.Unlock()
	return nil
}

func (s *MemoryIdentityStore) DetaineeByID(_ context.Context, id uuid.UUID) (*models.Detainee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.detainees[id]
	if !ok {
		return nil, nil
	}
	c := *d
	return &c, nil
}

func (s *MemoryIdentityStore) DetaineeByCode(_ context.Context, code string) (*models.Detainee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.detaineeCodes[normalizeCode(code)]
	if !ok {
		return nil, nil
	}
	c := *s.detainees[id]
	return &c, nil
}
