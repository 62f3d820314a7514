package dto

type MatchingSettings struct {
	Threshold      float64 `json:"threshold"`
	Margin         float64 `json:"margin"`
	MinimumSamples int     `json:"minimum_samples"`
}

type VisitSettings struct {
	ConjugalEligible []string       `json:"conjugal_eligible"`
	CategoryLimits   map[string]int `json:"category_limits"`
	Timezone         string         `json:"timezone"`
}

type SettingsResponse struct {
	Matching MatchingSettings `json:"matching"`
	Visits   VisitSettings    `json:"visits"`
}

// UpdateSettingsRequest patches only the sections present.
type UpdateSettingsRequest struct {
	Matching *MatchingSettings `json:"matching,omitempty"`
	Visits   *VisitSettings    `json:"visits,omitempty"`
}
