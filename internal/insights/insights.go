// Package insights derives strengths, gaps, and prioritized
// recommendations from pillar scores.
package insights

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bmadison30/XplainIQ-Lite/internal/scoring"
)

// Insights summarizes a score result for the report. Strengths are the top
// 2 pillars and gaps the bottom 3; with a five-pillar catalog the two
// lists may overlap, which is intentional.
type Insights struct {
	Strengths       []string `json:"strengths"`
	Gaps            []string `json:"gaps"`
	Recommendations []string `json:"recommendations"`
}

const (
	strengthCount = 2
	gapCount      = 3
)

// playbook holds the fixed next-90-days action per pillar. Pillars without
// an entry fall back to a generic recommendation.
var playbook = map[string]string{
	"A. Channel Strategy & Alignment":    "Clarify the partner role by segment and set a 12-month channel thesis with 3 measurable outcomes.",
	"B. Partner Program Design":          "Publish a simple one-pager: tiers, incentives, rules of engagement, and co-marketing paths.",
	"C. Partner Enablement & Engagement": "Stand up a 30-60-90 enablement cadence: onboarding kit, monthly enablement call, quarterly MDF campaign.",
	"D. Sales & Operations Integration":  "Separate channel pipeline tracking; define lead routing/quoting SLAs; add ‘channel’ to forecast reviews.",
	"E. Growth Readiness":                "Baseline partner P&L and capacity; set tooling minimums (PRM/CRM views) and resource triggers for 2–3× growth.",
}

// Derive computes strengths, gaps, and recommendations from pillar scores.
// Ties keep catalog order (stable sort). Recommendations follow gap order,
// weakest pillar first.
func Derive(pillars []scoring.PillarScore) Insights {
	descending := make([]scoring.PillarScore, len(pillars))
	copy(descending, pillars)
	sort.SliceStable(descending, func(i, j int) bool {
		return descending[i].Score > descending[j].Score
	})

	ascending := make([]scoring.PillarScore, len(pillars))
	copy(ascending, pillars)
	sort.SliceStable(ascending, func(i, j int) bool {
		return ascending[i].Score < ascending[j].Score
	})

	strengths := make([]string, 0, strengthCount)
	for _, p := range descending[:min(strengthCount, len(descending))] {
		strengths = append(strengths, p.Pillar)
	}

	gaps := make([]string, 0, gapCount)
	recommendations := make([]string, 0, gapCount)
	for _, p := range ascending[:min(gapCount, len(ascending))] {
		gaps = append(gaps, p.Pillar)
		recommendations = append(recommendations, RecommendationFor(p.Pillar))
	}

	return Insights{
		Strengths:       strengths,
		Gaps:            gaps,
		Recommendations: recommendations,
	}
}

// RecommendationFor is total over pillar names: playbook entry when one
// exists, generic fallback otherwise.
func RecommendationFor(pillar string) string {
	if rec, ok := playbook[pillar]; ok {
		return rec
	}
	return fmt.Sprintf("Prioritize foundational improvements in %s to enable scale.", strings.ToLower(pillar))
}
