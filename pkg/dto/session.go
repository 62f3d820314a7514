package dto

import "github.com/google/uuid"

type TimeInRequest struct {
	VisitorID uuid.UUID `json:"visitor_id" binding:"required"`
	LinkID    uuid.UUID `json:"link_id" binding:"required"`
	VisitType string    `json:"visit_type" binding:"required"`
	Method    string    `json:"method" binding:"required"`
}

// TimeOutRequest closes the open session of visitor_id, or a specific
// session_id for admin tooling. Exactly one of the two must be set.
type TimeOutRequest struct {
	VisitorID *uuid.UUID `json:"visitor_id,omitempty"`
	SessionID *uuid.UUID `json:"session_id,omitempty"`
	Method    string     `json:"method" binding:"required"`
}

type SessionResponse struct {
	ID              uuid.UUID `json:"id"`
	VisitorID       uuid.UUID `json:"visitor_id"`
	DetaineeID      uuid.UUID `json:"detainee_id"`
	LinkID          uuid.UUID `json:"link_id"`
	VisitType       string    `json:"visit_type"`
	TimeIn          string    `json:"time_in"`
	TimeInMethod    string    `json:"time_in_method"`
	TimeOut         *string   `json:"time_out,omitempty"`
	TimeOutMethod   string    `json:"time_out_method,omitempty"`
	DurationSeconds *int      `json:"duration_seconds,omitempty"`
}
