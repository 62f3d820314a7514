package models

import (
	"time"

	"github.com/google/uuid"
)

// BiometricProfile holds the reference embeddings for one visitor.
// Embeddings and Quality are parallel slices; a profile is only usable for
// matching once it carries the configured minimum number of samples.
// Re-enrollment replaces the full set, never appends.
type BiometricProfile struct {
	VisitorID  uuid.UUID   `json:"visitor_id" db:"visitor_id"`
	Embeddings [][]float32 `json:"embeddings" db:"-"`
	Quality    []float32   `json:"quality" db:"-"`
	EnrolledAt time.Time   `json:"enrolled_at" db:"enrolled_at"`
}

// Dim returns the embedding dimensionality, 0 for an empty profile.
func (p *BiometricProfile) Dim() int {
	if len(p.Embeddings) == 0 {
		return 0
	}
	return len(p.Embeddings[0])
}

// Clone returns a deep copy so store snapshots never alias caller memory.
func (p *BiometricProfile) Clone() *BiometricProfile {
	c := &BiometricProfile{
		VisitorID:  p.VisitorID,
		Embeddings: make([][]float32, len(p.Embeddings)),
		Quality:    append([]float32(nil), p.Quality...),
		EnrolledAt: p.EnrolledAt,
	}
	for i, e := range p.Embeddings {
		c.Embeddings[i] = append([]float32(nil), e...)
	}
	return c
}
