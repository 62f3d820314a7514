package models

import (
	"time"

	"github.com/google/uuid"
)

type VisitorStatus string

const (
	VisitorStatusActive      VisitorStatus = "active"
	VisitorStatusInactive    VisitorStatus = "inactive"
	VisitorStatusBlacklisted VisitorStatus = "blacklisted"
)

type DetaineeStatus string

const (
	DetaineeStatusDetained    DetaineeStatus = "detained"
	DetaineeStatusReleased    DetaineeStatus = "released"
	DetaineeStatusTransferred DetaineeStatus = "transferred"
)

// Visitor is an enrolled person who visits the facility. The Code is the
// stable identifier printed on the visitor's pass and embedded in QR
// payloads; it never changes after enrollment.
type Visitor struct {
	ID        uuid.UUID     `json:"id" db:"id"`
	Code      string        `json:"code" db:"code"`
	Name      string        `json:"name" db:"name"`
	Status    VisitorStatus `json:"status" db:"status"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt time.Time     `json:"updated_at" db:"updated_at"`
}

type Detainee struct {
	ID        uuid.UUID      `json:"id" db:"id"`
	Code      string         `json:"code" db:"code"`
	Name      string         `json:"name" db:"name"`
	Status    DetaineeStatus `json:"status" db:"status"`
	CreatedAt time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt time.Time      `json:"updated_at" db:"updated_at"`
}

func (s VisitorStatus) Valid() bool {
	switch s {
	case VisitorStatusActive, VisitorStatusInactive, VisitorStatusBlacklisted:
		return true
	}
	return false
}

func (s DetaineeStatus) Valid() bool {
	switch s {
	case DetaineeStatusDetained, DetaineeStatusReleased, DetaineeStatusTransferred:
		return true
	}
	return false
}
