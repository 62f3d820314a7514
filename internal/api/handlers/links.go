package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/vms/internal/links"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/storage"
	"github.com/your-org/vms/pkg/dto"
)

type LinkHandler struct {
	registry *links.Registry
	db       *storage.PostgresStore
}

func NewLinkHandler(registry *links.Registry, db *storage.PostgresStore) *LinkHandler {
	return &LinkHandler{registry: registry, db: db}
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req dto.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitor, err := h.db.VisitorByID(c.Request.Context(), req.VisitorID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if visitor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
		return
	}
	detainee, err := h.db.DetaineeByID(c.Request.Context(), req.DetaineeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if detainee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "detainee not found"})
		return
	}

	link, err := h.registry.Create(c.Request.Context(), actorID(c), req.VisitorID, req.DetaineeID,
		models.Relationship(req.Relationship), models.LinkCategory(req.Category))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, linkResponse(link))
}

func (h *LinkHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	link, err := h.registry.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, linkResponse(link))
}

func (h *LinkHandler) Approve(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	var req dto.DecideLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.registry.Approve(c.Request.Context(), id, req.ApproverID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, linkResponse(link))
}

func (h *LinkHandler) Reject(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid link id"})
		return
	}

	var req dto.DecideLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	link, err := h.registry.Reject(c.Request.Context(), id, req.ApproverID, req.Reason)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, linkResponse(link))
}

// ListForVisitor returns a visitor's links; ?approved=true narrows to
// approved ones, which is what the kiosk needs for the time-in screen.
func (h *LinkHandler) ListForVisitor(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitor id"})
		return
	}

	var list []*models.RelationshipLink
	if c.Query("approved") == "true" {
		list, err = h.registry.ApprovedForVisitor(c.Request.Context(), id)
	} else {
		list, err = h.registry.ForVisitor(c.Request.Context(), id)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.LinkResponse, 0, len(list))
	for _, l := range list {
		resp = append(resp, linkResponse(l))
	}
	c.JSON(http.StatusOK, gin.H{"links": resp, "total": len(resp)})
}

func (h *LinkHandler) ListForDetainee(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid detainee id"})
		return
	}

	list, err := h.registry.ApprovedForDetainee(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.LinkResponse, 0, len(list))
	for _, l := range list {
		resp = append(resp, linkResponse(l))
	}
	c.JSON(http.StatusOK, gin.H{"links": resp, "total": len(resp)})
}
