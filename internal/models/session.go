package models

import (
	"time"

	"github.com/google/uuid"
)

type VisitType string

const (
	VisitTypeRegular  VisitType = "regular"
	VisitTypeConjugal VisitType = "conjugal"
)

func (t VisitType) Valid() bool {
	return t == VisitTypeRegular || t == VisitTypeConjugal
}

// CheckMethod records how a visitor was identified at a session boundary.
type CheckMethod string

const (
	MethodFace   CheckMethod = "face"
	MethodQR     CheckMethod = "qr"
	MethodCode   CheckMethod = "code"
	MethodManual CheckMethod = "manual"
)

func (m CheckMethod) Valid() bool {
	switch m {
	case MethodFace, MethodQR, MethodCode, MethodManual:
		return true
	}
	return false
}

// VisitSession is one visit record. A session is open while TimeOut is
// unset; a visitor can hold at most one open session at a time. Sessions
// are never deleted.
type VisitSession struct {
	ID            uuid.UUID   `json:"id" db:"id"`
	VisitorID     uuid.UUID   `json:"visitor_id" db:"visitor_id"`
	DetaineeID    uuid.UUID   `json:"detainee_id" db:"detainee_id"`
	LinkID        uuid.UUID   `json:"link_id" db:"link_id"`
	VisitType     VisitType   `json:"visit_type" db:"visit_type"`
	TimeIn        time.Time   `json:"time_in" db:"time_in"`
	TimeInMethod  CheckMethod `json:"time_in_method" db:"time_in_method"`
	TimeOut       *time.Time  `json:"time_out,omitempty" db:"time_out"`
	TimeOutMethod CheckMethod `json:"time_out_method,omitempty" db:"time_out_method"`
}

// Open reports whether the session has no recorded time-out yet.
func (s *VisitSession) Open() bool {
	return s.TimeOut == nil
}

// Duration is zero while the session is open, otherwise time_out - time_in.
func (s *VisitSession) Duration() time.Duration {
	if s.TimeOut == nil {
		return 0
	}
	return s.TimeOut.Sub(s.TimeIn)
}

func (s *VisitSession) Clone() *VisitSession {
	c := *s
	if s.TimeOut != nil {
		t := *s.TimeOut
		c.TimeOut = &t
	}
	return &c
}
