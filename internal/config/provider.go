package config

import (
	"fmt"
	"sync"
	"time"

	"github.com/your-org/vms/internal/models"
)

// Provider hands the current tunable values to the engine. Components read
// it on every call rather than caching, so an update from the settings
// endpoint takes effect on the very next match or visit.
type Provider struct {
	mu       sync.RWMutex
	matching MatchingConfig
	visits   VisitPolicy
	loc      *time.Location
}

func NewProvider(cfg *Config) (*Provider, error) {
	loc, err := time.LoadLocation(cfg.Visits.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load facility timezone %q: %w", cfg.Visits.Timezone, err)
	}
	return &Provider{
		matching: cfg.Matching,
		visits:   clonePolicy(cfg.Visits),
		loc:      loc,
	}, nil
}

func (p *Provider) Matching() MatchingConfig {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.matching
}

func (p *Provider) Visits() VisitPolicy {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return clonePolicy(p.visits)
}

// Location returns the facility timezone used for the day boundary.
func (p *Provider) Location() *time.Location {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.loc
}

// CategoryLimit returns the approved-link cap for a category, -1 when
// unlimited or unknown.
func (p *Provider) CategoryLimit(cat models.LinkCategory) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if limit, ok := p.visits.CategoryLimits[cat]; ok {
		return limit
	}
	return -1
}

// ConjugalEligible reports whether the relationship permits conjugal visits.
func (p *Provider) ConjugalEligible(rel models.Relationship) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, r := range p.visits.ConjugalEligible {
		if r == rel {
			return true
		}
	}
	return false
}

func (p *Provider) UpdateMatching(m MatchingConfig) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.matching = m
}

func (p *Provider) UpdateVisits(v VisitPolicy) error {
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return fmt.Errorf("load facility timezone %q: %w", v.Timezone, err)
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.visits = clonePolicy(v)
	p.loc = loc
	return nil
}

func clonePolicy(v VisitPolicy) VisitPolicy {
	c := VisitPolicy{
		ConjugalEligible: append([]models.Relationship(nil), v.ConjugalEligible...),
		CategoryLimits:   make(map[models.LinkCategory]int, len(v.CategoryLimits)),
		Timezone:         v.Timezone,
	}
	for k, lim := range v.CategoryLimits {
		c.CategoryLimits[k] = lim
	}
	return c
}
