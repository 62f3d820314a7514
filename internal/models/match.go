package models

import "github.com/google/uuid"

type MatchDecision string

const (
	// DecisionMatched: best score cleared the threshold and the margin over
	// every other enrolled identity.
	DecisionMatched MatchDecision = "matched"
	// DecisionAmbiguous: threshold cleared but the runner-up identity was
	// too close. The kiosk should ask for another capture.
	DecisionAmbiguous MatchDecision = "ambiguous"
	// DecisionRejected: best score below the threshold. Manual fallback.
	DecisionRejected MatchDecision = "rejected"
	// DecisionNoProfiles: nothing enrolled yet.
	DecisionNoProfiles MatchDecision = "no_profiles"
)

// MatchResult is the outcome of matching one probe embedding against all
// enrolled profiles. It is ephemeral and never persisted; the audit trail
// records the decision separately.
type MatchResult struct {
	Decision   MatchDecision `json:"decision"`
	VisitorID  *uuid.UUID    `json:"visitor_id,omitempty"`
	Score      float64       `json:"score"`
	SecondBest float64       `json:"second_best"`
	Margin     float64       `json:"margin"`
}
