package visits

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
)

// MemorySessionStore is the single-process SessionStore. Begin performs
// its open-session check and the insert under one lock, which is what
// keeps the exclusivity invariant under concurrent kiosk calls.
type MemorySessionStore struct {
	mu            sync.RWMutex
	sessions      map[uuid.UUID]*models.VisitSession
	openByVisitor map[uuid.UUID]uuid.UUID
}

func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions:      make(map[uuid.UUID]*models.VisitSession),
		openByVisitor: make(map[uuid.UUID]uuid.UUID),
	}
}

func (s *MemorySessionStore) Begin(_ context.Context, session *models.VisitSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, open := s.openByVisitor[session.VisitorID]; open {
		return models.ErrSessionAlreadyOpen
	}
	s.sessions[session.ID] = session.Clone()
	s.openByVisitor[session.VisitorID] = session.ID
	return nil
}

func (s *MemorySessionStore) End(_ context.Context, sessionID uuid.UUID, out time.Time, method models.CheckMethod) (*models.VisitSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[sessionID]
	if !ok || !session.Open() {
		return nil, models.ErrNoOpenSession
	}
	t := out
	session.TimeOut = &t
	session.TimeOutMethod = method
	delete(s.openByVisitor, session.VisitorID)
	return session.Clone(), nil
}

func (s *MemorySessionStore) Get(_ context.Context, sessionID uuid.UUID) (*models.VisitSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[sessionID]
	if !ok {
		return nil, nil
	}
	return session.Clone(), nil
}

func (s *MemorySessionStore) OpenForVisitor(_ context.Context, visitorID uuid.UUID) (*models.VisitSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.openByVisitor[visitorID]
	if !ok {
		return nil, nil
	}
	return s.sessions[id].Clone(), nil
}

func (s *MemorySessionStore) Open(_ context.Context) ([]*models.VisitSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.VisitSession, 0, len(s.openByVisitor))
	for _, id := range s.openByVisitor {
		out = append(out, s.sessions[id].Clone())
	}
	return out, nil
}

func (s *MemorySessionStore) CompletedBetween(_ context.Context, from, to time.Time) ([]*models.VisitSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.VisitSession
	for _, session := range s.sessions {
		if session.Open() {
			continue
		}
		if session.TimeOut.Before(from) || !session.TimeOut.Before(to) {
			continue
		}
		out = append(out, session.Clone())
	}
	return out, nil
}

func (s *MemorySessionStore) CountForLink(_ context.Context, linkID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, session := range s.sessions {
		if session.LinkID == linkID {
			count++
		}
	}
	return count, nil
}
