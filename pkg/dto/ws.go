package dto

import "github.com/google/uuid"

// WSEvent is the live feed message pushed to monitoring dashboards on
// every time-in and time-out.
type WSEvent struct {
	Type       string    `json:"type"` // visit_time_in | visit_time_out
	SessionID  uuid.UUID `json:"session_id"`
	VisitorID  uuid.UUID `json:"visitor_id"`
	DetaineeID uuid.UUID `json:"detainee_id"`
	VisitType  string    `json:"visit_type"`
	Method     string    `json:"method"`
	Timestamp  string    `json:"timestamp"`
}
