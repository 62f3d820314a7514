package models

import "errors"

// Domain error taxonomy. All are expected business conditions the calling
// shell maps to user-facing messages, except ErrDataIntegrity which marks
// store corruption and aborts the operation.
var (
	ErrInsufficientSamples = errors.New("insufficient enrollment samples")
	ErrDimensionMismatch   = errors.New("embedding dimension mismatch")
	ErrDuplicateLink       = errors.New("link already exists for visitor/detainee pair")
	ErrAlreadyDecided      = errors.New("link already decided")
	ErrCapacityExceeded    = errors.New("approved link capacity exceeded for category")
	ErrLinkNotFound        = errors.New("link not found")
	ErrVisitorNotFound     = errors.New("visitor not found")
	ErrVisitorInactive     = errors.New("visitor is not active")
	ErrDetaineeUnavailable = errors.New("detainee is not available for visits")
	ErrSessionAlreadyOpen  = errors.New("visitor already has an open session")
	ErrLinkNotApproved     = errors.New("link is not an approved link of this visitor")
	ErrConjugalNotEligible = errors.New("relationship not eligible for conjugal visits")
	ErrNoOpenSession       = errors.New("no open session for visitor")
	ErrNoProfiles          = errors.New("no biometric profiles enrolled")

	ErrDataIntegrity = errors.New("data integrity violation")
)
