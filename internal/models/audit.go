package models

import (
	"time"

	"github.com/google/uuid"
)

// Audit actions emitted by the engine.
const (
	ActionEnrolled        = "biometric_enrolled"
	ActionFaceMatch       = "face_match"
	ActionLinkCreated     = "link_created"
	ActionLinkApproved    = "link_approved"
	ActionLinkRejected    = "link_rejected"
	ActionVisitTimeIn     = "visit_time_in"
	ActionVisitTimeOut    = "visit_time_out"
	ActionSettingsUpdated = "settings_updated"
)

// Audit target types.
const (
	TargetVisitor  = "visitor"
	TargetDetainee = "detainee"
	TargetProfile  = "profile"
	TargetLink     = "link"
	TargetSession  = "session"
	TargetSettings = "settings"
)

// AuditEvent is the record handed to the audit collaborator. The engine
// only emits these; durable storage belongs to the consumer side.
type AuditEvent struct {
	ID         uuid.UUID      `json:"id" db:"id"`
	ActorID    uuid.UUID      `json:"actor_id" db:"actor_id"`
	Action     string         `json:"action" db:"action"`
	TargetType string         `json:"target_type" db:"target_type"`
	TargetID   uuid.UUID      `json:"target_id" db:"target_id"`
	Timestamp  time.Time      `json:"timestamp" db:"timestamp"`
	Details    map[string]any `json:"details,omitempty" db:"details"`
}
