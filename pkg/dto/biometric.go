package dto

import "github.com/google/uuid"

// EnrollRequest carries pre-extracted embeddings. Kiosks that upload raw
// photos use the multipart form endpoint instead.
type EnrollRequest struct {
	Embeddings [][]float32 `json:"embeddings" binding:"required"`
	Quality    []float32   `json:"quality,omitempty"`
}

type EnrollResponse struct {
	VisitorID  uuid.UUID `json:"visitor_id"`
	Samples    int       `json:"samples"`
	EnrolledAt string    `json:"enrolled_at"`
}

type IdentifyCodeRequest struct {
	Code string `json:"code" binding:"required"`
}

type IdentifyRequest struct {
	Embedding []float32 `json:"embedding" binding:"required"`
}

// IdentifyResponse reports the match decision; visitor and next_action
// are present only on a matched decision against an active visitor.
type IdentifyResponse struct {
	Decision    string           `json:"decision"`
	VisitorID   *uuid.UUID       `json:"visitor_id,omitempty"`
	Score       float64          `json:"score"`
	SecondBest  float64          `json:"second_best"`
	Margin      float64          `json:"margin"`
	Visitor     *VisitorResponse `json:"visitor,omitempty"`
	NextAction  string           `json:"next_action,omitempty"`
	OpenSession *SessionResponse `json:"open_session,omitempty"`
}
