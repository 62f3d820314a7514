package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/pkg/dto"
)

const timeFormat = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeFormat)
}

// statusFor maps engine sentinels to HTTP status codes. Not-found stays
// 404, state conflicts 409, policy violations 422, anything unknown 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrVisitorNotFound),
		errors.Is(err, models.ErrLinkNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrDuplicateLink),
		errors.Is(err, models.ErrAlreadyDecided),
		errors.Is(err, models.ErrCapacityExceeded),
		errors.Is(err, models.ErrSessionAlreadyOpen),
		errors.Is(err, models.ErrNoOpenSession):
		return http.StatusConflict
	case errors.Is(err, models.ErrInsufficientSamples),
		errors.Is(err, models.ErrDimensionMismatch),
		errors.Is(err, models.ErrVisitorInactive),
		errors.Is(err, models.ErrDetaineeUnavailable),
		errors.Is(err, models.ErrLinkNotApproved),
		errors.Is(err, models.ErrConjugalNotEligible),
		errors.Is(err, models.ErrNoProfiles):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}

// actorID reads the operator identity from the X-Actor-ID header; kiosk
// endpoints that run unattended leave it empty.
func actorID(c *gin.Context) uuid.UUID {
	if v := c.GetHeader("X-Actor-ID"); v != "" {
		if id, err := uuid.Parse(v); err == nil {
			return id
		}
	}
	return uuid.Nil
}

func visitorResponse(v *models.Visitor) dto.VisitorResponse {
	return dto.VisitorResponse{
		ID:        v.ID,
		Code:      v.Code,
		Name:      v.Name,
		Status:    string(v.Status),
		CreatedAt: formatTime(v.CreatedAt),
	}
}

func detaineeResponse(d *models.Detainee) dto.DetaineeResponse {
	return dto.DetaineeResponse{
		ID:        d.ID,
		Code:      d.Code,
		Name:      d.Name,
		Status:    string(d.Status),
		CreatedAt: formatTime(d.CreatedAt),
	}
}

func linkResponse(l *models.RelationshipLink) dto.LinkResponse {
	resp := dto.LinkResponse{
		ID:           l.ID,
		VisitorID:    l.VisitorID,
		DetaineeID:   l.DetaineeID,
		Relationship: string(l.Relationship),
		Category:     string(l.Category),
		Status:       string(l.Status),
		ApproverID:   l.ApproverID,
		RejectReason: l.RejectReason,
		CreatedAt:    formatTime(l.CreatedAt),
	}
	if l.DecidedAt != nil {
		s := formatTime(*l.DecidedAt)
		resp.DecidedAt = &s
	}
	return resp
}

func sessionResponse(s *models.VisitSession) dto.SessionResponse {
	resp := dto.SessionResponse{
		ID:            s.ID,
		VisitorID:     s.VisitorID,
		DetaineeID:    s.DetaineeID,
		LinkID:        s.LinkID,
		VisitType:     string(s.VisitType),
		TimeIn:        formatTime(s.TimeIn),
		TimeInMethod:  string(s.TimeInMethod),
		TimeOutMethod: string(s.TimeOutMethod),
	}
	if s.TimeOut != nil {
		out := formatTime(*s.TimeOut)
		resp.TimeOut = &out
		secs := int(s.Duration().Seconds())
		resp.DurationSeconds = &secs
	}
	return resp
}
