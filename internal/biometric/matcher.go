package biometric

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/your-org/vms/internal/config"
	"github.com/your-org/vms/internal/models"
)

// Matcher decides whether a probe embedding belongs to an enrolled
// visitor. Match is a pure computation over a store snapshot; callers own
// any capture retry loop and the audit emission for the attempt.
type Matcher struct {
	profiles ProfileStore
	settings *config.Provider
}

func NewMatcher(profiles ProfileStore, settings *config.Provider) *Matcher {
	return &Matcher{profiles: profiles, settings: settings}
}

// Match scores the probe against every usable profile. The decision rule:
// matched iff the best identity clears the threshold AND leads the best
// score of any other identity by at least the margin. Threshold passing
// with a failing margin is ambiguous; anything below threshold is
// rejected. Threshold and margin are read per call so a settings change
// applies immediately.
func (m *Matcher) Match(ctx context.Context, probe []float32) (models.MatchResult, error) {
	cfg := m.settings.Matching()

	profiles, err := m.profiles.Snapshot(ctx)
	if err != nil {
		return models.MatchResult{}, fmt.Errorf("snapshot profiles: %w", err)
	}

	type candidate struct {
		id    uuid.UUID
		score float64
	}
	var candidates []candidate

	for _, p := range profiles {
		if len(p.Embeddings) < cfg.MinimumSamples {
			continue
		}
		best := 0.0
		for _, ref := range p.Embeddings {
			if len(ref) != len(probe) {
				continue
			}
			if s := similarity(probe, ref); s > best {
				best = s
			}
		}
		candidates = append(candidates, candidate{id: p.VisitorID, score: best})
	}

	if len(candidates) == 0 {
		return models.MatchResult{Decision: models.DecisionNoProfiles}, nil
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.score > best.score {
			best = c
		}
	}
	secondBest := 0.0
	for _, c := range candidates {
		if c.id != best.id && c.score > secondBest {
			secondBest = c.score
		}
	}

	result := models.MatchResult{
		Score:      best.score,
		SecondBest: secondBest,
		Margin:     best.score - secondBest,
	}

	switch {
	case best.score < cfg.Threshold:
		result.Decision = models.DecisionRejected
	case result.Margin < cfg.Margin:
		result.Decision = models.DecisionAmbiguous
	default:
		result.Decision = models.DecisionMatched
		id := best.id
		result.VisitorID = &id
	}

	return result, nil
}

// similarity converts Euclidean distance to a score in [0, 1]. Distances
// beyond 1 would go negative, so clamp at zero.
func similarity(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	score := 1 - math.Sqrt(sum)
	if score < 0 {
		return 0
	}
	return score
}
