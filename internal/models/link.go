package models

import (
	"time"

	"github.com/google/uuid"
)

type Relationship string

const (
	RelationshipSpouse      Relationship = "spouse"
	RelationshipParent      Relationship = "parent"
	RelationshipChild       Relationship = "child"
	RelationshipSibling     Relationship = "sibling"
	RelationshipGrandparent Relationship = "grandparent"
	RelationshipCousin      Relationship = "cousin"
	RelationshipFriend      Relationship = "friend"
	RelationshipGuardian    Relationship = "guardian"
	RelationshipLawyer      Relationship = "lawyer"
)

func (r Relationship) Valid() bool {
	switch r {
	case RelationshipSpouse, RelationshipParent, RelationshipChild,
		RelationshipSibling, RelationshipGrandparent, RelationshipCousin,
		RelationshipFriend, RelationshipGuardian, RelationshipLawyer:
		return true
	}
	return false
}

type LinkCategory string

const (
	CategoryImmediateFamily LinkCategory = "immediate_family"
	CategoryLegalGuardian   LinkCategory = "legal_guardian"
	CategoryCloseFriend     LinkCategory = "close_friend"
)

func (c LinkCategory) Valid() bool {
	switch c {
	case CategoryImmediateFamily, CategoryLegalGuardian, CategoryCloseFriend:
		return true
	}
	return false
}

type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// RelationshipLink binds one visitor to one detainee. At most one link may
// exist per (visitor, detainee) pair regardless of status. Links are
// created pending and decided exactly once; capacity limits apply per
// detainee per category at approval time, not at creation.
type RelationshipLink struct {
	ID           uuid.UUID      `json:"id" db:"id"`
	VisitorID    uuid.UUID      `json:"visitor_id" db:"visitor_id"`
	DetaineeID   uuid.UUID      `json:"detainee_id" db:"detainee_id"`
	Relationship Relationship   `json:"relationship" db:"relationship"`
	Category     LinkCategory   `json:"category" db:"category"`
	Status       ApprovalStatus `json:"status" db:"status"`
	ApproverID   *uuid.UUID     `json:"approver_id,omitempty" db:"approver_id"`
	DecidedAt    *time.Time     `json:"decided_at,omitempty" db:"decided_at"`
	RejectReason string         `json:"reject_reason,omitempty" db:"reject_reason"`
	CreatedAt    time.Time      `json:"created_at" db:"created_at"`
}

func (l *RelationshipLink) Clone() *RelationshipLink {
	c := *l
	if l.ApproverID != nil {
		id := *l.ApproverID
		c.ApproverID = &id
	}
	if l.DecidedAt != nil {
		t := *l.DecidedAt
		c.DecidedAt = &t
	}
	return &c
}
