package handlers

import (
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/vms/internal/audit"
	"github.com/your-org/vms/internal/biometric"
	"github.com/your-org/vms/internal/capture"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/internal/observability"
	"github.com/your-org/vms/internal/visits"
	"github.com/your-org/vms/pkg/dto"
)

// IdentifyHandler runs the kiosk identification flow: probe in, match
// decision plus next action out.
type IdentifyHandler struct {
	matcher *biometric.Matcher
	manager *visits.Manager
	emitter audit.Emitter
	// Extractor is nil when the service runs without the ONNX model; the
	// photo endpoint then returns 503.
	Extractor capture.Extractor
}

func NewIdentifyHandler(matcher *biometric.Matcher, manager *visits.Manager, emitter audit.Emitter) *IdentifyHandler {
	return &IdentifyHandler{matcher: matcher, manager: manager, emitter: emitter}
}

// Identify matches a pre-extracted probe embedding.
func (h *IdentifyHandler) Identify(c *gin.Context) {
	var req dto.IdentifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, req.Embedding)
}

// IdentifyPhoto matches a raw face photo uploaded as multipart form data.
func (h *IdentifyHandler) IdentifyPhoto(c *gin.Context) {
	if h.Extractor == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "embedding extractor not initialized"})
		return
	}

	file, _, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file required"})
		return
	}
	defer file.Close()

	imageData, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "read image failed"})
		return
	}

	probe, err := h.Extractor.ExtractFromImage(imageData)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "failed to extract face: " + err.Error()})
		return
	}

	h.respond(c, probe)
}

// IdentifyCode resolves a visitor from a manual code or QR payload.
func (h *IdentifyHandler) IdentifyCode(c *gin.Context) {
	var req dto.IdentifyCodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	visitor, err := h.manager.IdentifyByCode(c.Request.Context(), req.Code)
	if err != nil {
		writeError(c, err)
		return
	}

	mode, open, err := h.manager.NextAction(c.Request.Context(), visitor.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	resp := gin.H{
		"visitor":     visitorResponse(visitor),
		"next_action": string(mode),
	}
	if open != nil {
		resp["open_session"] = sessionResponse(open)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *IdentifyHandler) respond(c *gin.Context, probe []float32) {
	ctx := c.Request.Context()

	start := time.Now()
	result, err := h.matcher.Match(ctx, probe)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	observability.MatchDuration.Observe(time.Since(start).Seconds())
	observability.MatchDecisions.WithLabelValues(string(result.Decision)).Inc()

	target := uuid.Nil
	if result.VisitorID != nil {
		target = *result.VisitorID
	}
	audit.Try(ctx, h.emitter, audit.New(actorID(c), models.ActionFaceMatch, models.TargetVisitor, target,
		map[string]any{
			"decision":    result.Decision,
			"score":       result.Score,
			"second_best": result.SecondBest,
			"margin":      result.Margin,
		}))

	resp := dto.IdentifyResponse{
		Decision:   string(result.Decision),
		VisitorID:  result.VisitorID,
		Score:      result.Score,
		SecondBest: result.SecondBest,
		Margin:     result.Margin,
	}

	if result.Decision == models.DecisionMatched {
		visitor, err := h.manager.IdentifyMatch(ctx, result)
		if err != nil {
			// Matched against an inactive or blacklisted visitor.
			writeError(c, err)
			return
		}
		vr := visitorResponse(visitor)
		resp.Visitor = &vr

		mode, open, err := h.manager.NextAction(ctx, visitor.ID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		resp.NextAction = string(mode)
		if open != nil {
			sr := sessionResponse(open)
			resp.OpenSession = &sr
		}
	}

	c.JSON(http.StatusOK, resp)
}
