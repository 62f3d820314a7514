package dto

import "github.com/google/uuid"

type AuditEventResponse struct {
	ID         uuid.UUID      `json:"id"`
	ActorID    uuid.UUID      `json:"actor_id"`
	Action     string         `json:"action"`
	TargetType string         `json:"target_type"`
	TargetID   uuid.UUID      `json:"target_id"`
	Timestamp  string         `json:"timestamp"`
	Details    map[string]any `json:"details,omitempty"`
}
