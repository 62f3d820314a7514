package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/vms/internal/storage"
	"github.com/your-org/vms/pkg/dto"
)

type AuditHandler struct {
	db *storage.PostgresStore
}

func NewAuditHandler(db *storage.PostgresStore) *AuditHandler {
	return &AuditHandler{db: db}
}

// List queries persisted audit events. Filters: action, target_id,
// from/to (RFC 3339), limit.
func (h *AuditHandler) List(c *gin.Context) {
	action := c.Query("action")

	var targetID *uuid.UUID
	if v := c.Query("target_id"); v != "" {
		id, err := uuid.Parse(v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid target_id"})
			return
		}
		targetID = &id
	}

	var from, to *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from timestamp"})
			return
		}
		from = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to timestamp"})
			return
		}
		to = &t
	}

	limit := 50
	if v := c.Query("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}

	events, err := h.db.QueryAuditEvents(c.Request.Context(), action, targetID, from, to, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.AuditEventResponse, 0, len(events))
	for _, ev := range events {
		resp = append(resp, dto.AuditEventResponse{
			ID:         ev.ID,
			ActorID:    ev.ActorID,
			Action:     ev.Action,
			TargetType: ev.TargetType,
			TargetID:   ev.TargetID,
			Timestamp:  formatTime(ev.Timestamp),
			Details:    ev.Details,
		})
	}

	c.JSON(http.StatusOK, gin.H{"events": resp, "total": len(resp)})
}
