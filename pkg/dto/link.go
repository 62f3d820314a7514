package dto

import "github.com/google/uuid"

type CreateLinkRequest struct {
	VisitorID    uuid.UUID `json:"visitor_id" binding:"required"`
	DetaineeID   uuid.UUID `json:"detainee_id" binding:"required"`
	Relationship string    `json:"relationship" binding:"required"`
	Category     string    `json:"category" binding:"required"`
}

type DecideLinkRequest struct {
	ApproverID uuid.UUID `json:"approver_id" binding:"required"`
	Reason     string    `json:"reason,omitempty"`
}

type LinkResponse struct {
	ID           uuid.UUID  `json:"id"`
	VisitorID    uuid.UUID  `json:"visitor_id"`
	DetaineeID   uuid.UUID  `json:"detainee_id"`
	Relationship string     `json:"relationship"`
	Category     string     `json:"category"`
	Status       string     `json:"status"`
	ApproverID   *uuid.UUID `json:"approver_id,omitempty"`
	DecidedAt    *string    `json:"decided_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	CreatedAt    string     `json:"created_at"`
}
