package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/your-org/vms/internal/audit"
	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/models"
	"github.com/your-org/vms/pkg/dto"
)

type SettingsHandler struct {
	settings *config.Provider
	emitter  audit.Emitter
}

func NewSettingsHandler(settings *config.Provider, emitter audit.Emitter) *SettingsHandler {
	return &SettingsHandler{settings: settings, emitter: emitter}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	c.JSON(http.StatusOK, h.current())
}

// Update patches the sections present in the request. Changes take effect
// on the next engine call; no restart involved.
func (h *SettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	changed := map[string]any{}

	if req.Matching != nil {
		m := *req.Matching
		if m.Threshold < 0 || m.Threshold > 1 || m.Margin < 0 || m.Margin > 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "threshold and margin must be in [0, 1]"})
			return
		}
		if m.MinimumSamples < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "minimum_samples must be at least 1"})
			return
		}
		h.settings.UpdateMatching(config.MatchingConfig{
			Threshold:      m.Threshold,
			Margin:         m.Margin,
			MinimumSamples: m.MinimumSamples,
		})
		changed["matching"] = m
	}

	if req.Visits != nil {
		v := *req.Visits
		policy := config.VisitPolicy{
			ConjugalEligible: make([]models.Relationship, 0, len(v.ConjugalEligible)),
			CategoryLimits:   make(map[models.LinkCategory]int, len(v.CategoryLimits)),
			Timezone:         v.Timezone,
		}
		for _, r := range v.ConjugalEligible {
			rel := models.Relationship(r)
			if !rel.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid relationship " + r})
				return
			}
			policy.ConjugalEligible = append(policy.ConjugalEligible, rel)
		}
		for k, lim := range v.CategoryLimits {
			cat := models.LinkCategory(k)
			if !cat.Valid() {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category " + k})
				return
			}
			policy.CategoryLimits[cat] = lim
		}
		if err := h.settings.UpdateVisits(policy); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		changed["visits"] = v
	}

	if len(changed) > 0 {
		audit.Try(c.Request.Context(), h.emitter,
			audit.New(actorID(c), models.ActionSettingsUpdated, models.TargetSettings, uuid.Nil, changed))
	}

	c.JSON(http.StatusOK, h.current())
}

func (h *SettingsHandler) current() dto.SettingsResponse {
	m := h.settings.Matching()
	v := h.settings.Visits()

	eligible := make([]string, 0, len(v.ConjugalEligible))
	for _, r := range v.ConjugalEligible {
		eligible = append(eligible, string(r))
	}
	limits := make(map[string]int, len(v.CategoryLimits))
	for k, lim := range v.CategoryLimits {
		limits[string(k)] = lim
	}

	return dto.SettingsResponse{
		Matching: dto.MatchingSettings{
			Threshold:      m.Threshold,
			Margin:         m.Margin,
			MinimumSamples: m.MinimumSamples,
		},
		Visits: dto.VisitSettings{
			ConjugalEligible: eligible,
			CategoryLimits:   limits,
			Timezone:         v.Timezone,
		},
	}
}
