package insights

import (
	"testing"

	"github.com/bmadison30/XplainIQ-Lite/internal/scoring"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pillarScores(scores ...float64) []scoring.PillarScore {
	names := []string{
		"A. Channel Strategy & Alignment",
		"B. Partner Program Design",
		"C. Partner Enablement & Engagement",
		"D. Sales & Operations Integration",
		"E. Growth Readiness",
	}
	out := make([]scoring.PillarScore, len(scores))
	for i, s := range scores {
		out[i] = scoring.PillarScore{Pillar: names[i], Score: s}
	}
	return out
}

func TestDerive_CountsAndNoDuplicates(t *testing.T) {
	got := Derive(pillarScores(10, 20, 30, 40, 50))

	require.Len(t, got.Strengths, 2)
	require.Len(t, got.Gaps, 3)
	require.Len(t, got.Recommendations, 3)

	seen := map[string]bool{}
	for _, s := range got.Strengths {
		assert.False(t, seen[s], "duplicate strength %s", s)
		seen[s] = true
	}
	seen = map[string]bool{}
	for _, g := range got.Gaps {
		assert.False(t, seen[g], "duplicate gap %s", g)
		seen[g] = true
	}
}

func TestDerive_MixedScenario(t *testing.T) {
	// A=100, B=20, C=60, D=60, E=20
	got := Derive(pillarScores(100, 20, 60, 60, 20))

	assert.Equal(t, []string{
		"A. Channel Strategy & Alignment",
		"C. Partner Enablement & Engagement",
	}, got.Strengths, "C before D on ties, catalog order")

	assert.Equal(t, []string{
		"B. Partner Program Design",
		"E. Growth Readiness",
		"C. Partner Enablement & Engagement",
	}, got.Gaps, "ascending score, ties keep catalog order")

	require.Len(t, got.Recommendations, 3)
	assert.Equal(t, playbook["B. Partner Program Design"], got.Recommendations[0], "weakest pillar first")
	assert.Equal(t, playbook["E. Growth Readiness"], got.Recommendations[1])
	assert.Equal(t, playbook["C. Partner Enablement & Engagement"], got.Recommendations[2])
}

func TestDerive_AllTiedKeepsCatalogOrder(t *testing.T) {
	got := Derive(pillarScores(60, 60, 60, 60, 60))

	assert.Equal(t, []string{
		"A. Channel Strategy & Alignment",
		"B. Partner Program Design",
	}, got.Strengths)
	assert.Equal(t, []string{
		"A. Channel Strategy & Alignment",
		"B. Partner Program Design",
		"C. Partner Enablement & Engagement",
	}, got.Gaps)

	// Top-2/bottom-3 over five tied pillars overlap; that is the contract.
	assert.Contains(t, got.Gaps, got.Strengths[0])
}

func TestDerive_SmallCatalog(t *testing.T) {
	got := Derive([]scoring.PillarScore{
		{Pillar: "Only Pillar", Score: 42},
	})

	assert.Equal(t, []string{"Only Pillar"}, got.Strengths)
	assert.Equal(t, []string{"Only Pillar"}, got.Gaps)
	require.Len(t, got.Recommendations, 1)
}

func TestRecommendationFor_FallbackIsGeneric(t *testing.T) {
	got := RecommendationFor("F. Brand New Pillar")
	assert.Equal(t, "Prioritize foundational improvements in f. brand new pillar to enable scale.", got)
}

func TestRecommendationFor_PlaybookCoversCatalog(t *testing.T) {
	for name, rec := range playbook {
		assert.Equalf(t, rec, RecommendationFor(name), "pillar %s", name)
	}
}
