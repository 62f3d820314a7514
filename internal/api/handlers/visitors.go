package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/vms/internal/biometric"
	"github.com/your-org/vms/internal/capture"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/storage"
	"github.com/your-org/vms/pkg/dto"
)

type VisitorHandler struct {
	db       *storage.PostgresStore
	photos   *storage.PhotoStore
	enroller *biometric.Enroller
	// Extractor is nil when the service runs without the ONNX model; the
	// photo enrollment endpoint then returns 503.
	Extractor capture.Extractor
}

func NewVisitorHandler(db *storage.PostgresStore, photos *storage.PhotoStore, enroller *biometric.Enroller) *VisitorHandler {
	return &VisitorHandler{db: db, photos: photos, enroller: enroller}
}

func (h *VisitorHandler) Create(c *gin.Context) {
	var req dto.CreateVisitorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitor, err := h.db.CreateVisitor(c.Request.Context(), req.Code, req.Name)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, visitorResponse(visitor))
}

func (h *VisitorHandler) List(c *gin.Context) {
	visitors, err := h.db.ListVisitors(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := make([]dto.VisitorResponse, 0, len(visitors))
	for i := range visitors {
		resp = append(resp, visitorResponse(&visitors[i]))
	}

	c.JSON(http.StatusOK, gin.H{"visitors": resp, "total": len(resp)})
}

func (h *VisitorHandler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitor id"})
		return
	}

	visitor, err := h.db.VisitorByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if visitor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
		return
	}

	c.JSON(http.StatusOK, visitorResponse(visitor))
}

func (h *VisitorHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitor id"})
		return
	}

	var req dto.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	status := models.VisitorStatus(req.Status)
	if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitor status"})
		return
	}

	if err := h.db.UpdateVisitorStatus(c.Request.Context(), id, status); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// Enroll replaces the visitor's biometric profile from pre-extracted
// embeddings sent as JSON.
func (h *VisitorHandler) Enroll(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitor id"})
		return
	}

	visitor, err := h.db.VisitorByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if visitor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
		return
	}

	var req dto.EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quality := req.Quality
	if len(quality) == 0 {
		quality = make([]float32, len(req.Embeddings))
		for i := range quality {
			quality[i] = 1.0
		}
	}

	profile, err := h.enroller.Enroll(c.Request.Context(), actorID(c), id, req.Embeddings, quality)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.EnrollResponse{
		VisitorID:  profile.VisitorID,
		Samples:    len(profile.Embeddings),
		EnrolledAt: formatTime(profile.EnrolledAt),
	})
}

// EnrollPhotos replaces the visitor's biometric profile from raw face
// photos uploaded as multipart form files. Each photo is embedded via the
// ONNX extractor and archived in MinIO.
func (h *VisitorHandler) EnrollPhotos(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid visitor id"})
		return
	}

	visitor, err := h.db.VisitorByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if visitor == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "visitor not found"})
		return
	}

	if h.Extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "embedding extractor not initialized"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart form required"})
		return
	}
	files := form.File["photos"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "photo files required"})
		return
	}

	embeddings := make([][]float32, 0, len(files))
	photos := make([][]byte, 0, len(files))
	for _, fh := range files {
		file, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "open photo failed"})
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "read photo failed"})
			return
		}

		emb, err := h.Extractor.ExtractFromImage(data)
		if err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "failed to extract face from photo " + fh.Filename,
			})
			return
		}
		embeddings = append(embeddings, emb)
		photos = append(photos, data)
	}

	quality := make([]float32, len(embeddings))
	for i := range quality {
		quality[i] = 1.0
	}

	profile, err := h.enroller.Enroll(c.Request.Context(), actorID(c), id, embeddings, quality)
	if err != nil {
		writeError(c, err)
		return
	}

	// Archive the source photos after the profile replace succeeds.
	if err := h.photos.DeleteEnrollmentPhotos(c.Request.Context(), id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "clear old photos failed"})
		return
	}
	for i, data := range photos {
		if _, err := h.photos.PutEnrollmentPhoto(c.Request.Context(), id, i, data); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "store photo failed"})
			return
		}
	}

	c.JSON(http.StatusCreated, dto.EnrollResponse{
		VisitorID:  profile.VisitorID,
		Samples:    len(profile.Embeddings),
		EnrolledAt: formatTime(profile.EnrolledAt),
	})
}
