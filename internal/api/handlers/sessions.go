package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/visits"
	"github.com/your-org/vms/pkg/dto"
)

// SessionHandler exposes the session state machine. The live feed is not
// pushed from here; the API binary consumes the audit stream and
// broadcasts from there, so every instance sees every boundary.
type SessionHandler struct {
	manager *visits.Manager
}

func NewSessionHandler(manager *visits.Manager) *SessionHandler {
	return &SessionHandler{manager: manager}
}

// TimeIn opens a visit session after the full eligibility gate.
func (h *SessionHandler) TimeIn(c *gin.Context) {
	var req dto.TimeInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	method := models.CheckMethod(req.Method)
	if !method.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check method"})
		return
	}

	session, err := h.manager.Begin(c.Request.Context(), visits.BeginParams{
		VisitorID: req.VisitorID,
		LinkID:    req.LinkID,
		VisitType: models.VisitType(req.VisitType),
		Method:    method,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionResponse(session))
}

// TimeOut closes the visitor's open session, or a specific session when
// session_id is given.
func (h *SessionHandler) TimeOut(c *gin.Context) {
	var req dto.TimeOutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	method := models.CheckMethod(req.Method)
	if !method.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid check method"})
		return
	}
	if (req.VisitorID == nil) == (req.SessionID == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of visitor_id or session_id required"})
		return
	}

	var session *models.VisitSession
	var err error
	if req.VisitorID != nil {
		session, err = h.manager.End(c.Request.Context(), *req.VisitorID, method)
	} else {
		session, err = h.manager.EndByID(c.Request.Context(), *req.SessionID, method)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, sessionResponse(session))
}

// Open lists every session currently inside the facility.
func (h *SessionHandler) Open(c *gin.Context) {
	sessions, err := h.manager.OpenSessions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": resp, "total": len(resp)})
}

// CompletedToday lists sessions closed within the facility-local day.
func (h *SessionHandler) CompletedToday(c *gin.Context) {
	sessions, err := h.manager.CompletedToday(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		resp = append(resp, sessionResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": resp, "total": len(resp)})
}
