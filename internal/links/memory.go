package links

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
)

type pairKey struct {
	visitor  uuid.UUID
	detainee uuid.UUID
}

// MemoryLinkStore is the single-process LinkStore. The whole decide path
// runs under one lock, which is what makes the capacity check-and-set
// atomic.
type MemoryLinkStore struct {
	mu    sync.RWMutex
	links map[uuid.UUID]*models.RelationshipLink
	pairs map[pairKey]uuid.UUID
}

func NewMemoryLinkStore() *MemoryLinkStore {
	return &MemoryLinkStore{
		links: make(map[uuid.UUID]*models.RelationshipLink),
		pairs: make(map[pairKey]uuid.UUID),
	}
}

func (s *MemoryLinkStore) Create(_ context.Context, link *models.RelationshipLink) error {
	key := pairKey{visitor: link.VisitorID, detainee: link.DetaineeID}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pairs[key]; exists {
		return models.ErrDuplicateLink
	}
	s.links[link.ID] = link.Clone()
	s.pairs[key] = link.ID
	return nil
}

func (s *MemoryLinkStore) Get(_ context.Context, id uuid.UUID) (*models.RelationshipLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	link, ok := s.links[id]
	if !ok {
		return nil, nil
	}
	return link.Clone(), nil
}

func (s *MemoryLinkStore) Decide(_ context.Context, id uuid.UUID, d Decision) (*models.RelationshipLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	link, ok := s.links[id]
	if !ok {
		return nil, models.ErrLinkNotFound
	}

	if link.Status != models.ApprovalPending {
		if !d.Approve && link.Status == models.ApprovalRejected && d.AllowReasonUpdate {
			link.RejectReason = d.Reason
			return link.Clone(), nil
		}
		return nil, models.ErrAlreadyDecided
	}

	if d.Approve && d.CategoryLimit >= 0 {
		count := 0
		for _, other := range s.links {
			if other.DetaineeID == link.DetaineeID &&
				other.Category == link.Category &&
				other.Status == models.ApprovalApproved {
				count++
			}
		}
		if count >= d.CategoryLimit {
			return nil, fmt.Errorf("%w: %s has %d/%d in %s",
				models.ErrCapacityExceeded, link.DetaineeID, count, d.CategoryLimit, link.Category)
		}
	}

	approver := d.ApproverID
	now := d.Now
	link.ApproverID = &approver
	link.DecidedAt = &now
	if d.Approve {
		link.Status = models.ApprovalApproved
	} else {
		link.Status = models.ApprovalRejected
		link.RejectReason = d.Reason
	}
	return link.Clone(), nil
}

func (s *MemoryLinkStore) ApprovedForVisitor(_ context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.RelationshipLink
	for _, link := range s.links {
		if link.VisitorID == visitorID && link.Status == models.ApprovalApproved {
			out = append(out, link.Clone())
		}
	}
	return out, nil
}

func (s *MemoryLinkStore) ApprovedForDetainee(_ context.Context, detaineeID uuid.UUID) ([]*models.RelationshipLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.RelationshipLink
	for _, link := range s.links {
		if link.DetaineeID == detaineeID && link.Status == models.ApprovalApproved {
			out = append(out, link.Clone())
		}
	}
	return out, nil
}

func (s *MemoryLinkStore) ForVisitor(_ context.Context, visitorID uuid.UUID) ([]*models.RelationshipLink, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.RelationshipLink
	for _, link := range s.links {
		if link.VisitorID == visitorID {
			out = append(out, link.Clone())
		}
	}
	return out, nil
}
