package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/storage"
	"github.com/your-org/vms/pkg/dto"
)

type DetaineeHandler struct {
	db *storage.PostgresStore
}

func NewDetaineeHandler(db *storage.PostgresStore) *DetaineeHandler {
	return &DetaineeHandler{db: db}
}

func (h *DetaineeHandler) Create(c *gin.Context) {
	var req dto.CreateDetaineeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	detainee, err := h.db.CreateDetainee(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, detaineeResponse(detainee))
}

func (h *DetaineeHandler) List(c *gin.Context) {
	detainees, err := h.db.ListDetainees(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.DetaineeResponse, 0, len(detainees))
	for i := range detainees {
		resp = append(resp, detaineeResponse(&detainees[i]))
	}

	c.JSON(http.StatusOK, gin.H{"detainees": resp, "total": len(resp)})
}

func (h *DetaineeHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid detainee id"})
		return
	}

	detainee, err := h.db.DetaineeByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if detainee == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "detainee not found"})
		return
	}

	c.JSON(http.StatusOK, detaineeResponse(detainee))
}

func (h *DetaineeHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid detainee id"})
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := models.DetaineeStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid detainee status"})
		return
	}

	if err := h.db.UpdateDetaineeStatus(c.Request.Context(), id, status); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
