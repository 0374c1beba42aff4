// Package scoring turns raw questionnaire answers into pillar scores, an
// overall readiness score, and a maturity tier.
package scoring

import (
	"fmt"
	"math"

	"github.com/bmadison30/XplainIQ-Lite/internal/catalog"
	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"
)

// AnswerSet maps a question to its 1-5 rating. Absent or 0 means
// unanswered; anything outside [1,5] is normalized to unanswered.
type AnswerSet map[catalog.QuestionID]int

// PillarScore is one pillar's normalized score plus the raw answers that
// produced it.
type PillarScore struct {
	Pillar  string                     `json:"pillar"`
	Score   float64                    `json:"score"`
	Answers map[catalog.QuestionID]int `json:"answers"`
}

// Rounded returns the score rounded half away from zero, the same rounding
// used for tier lookup.
func (p PillarScore) Rounded() int {
	return int(math.Round(p.Score))
}

// ScoreResult is the full output of one scoring pass. Pillars follow
// catalog order; Overall is the unweighted mean of the pillar scores.
type ScoreResult struct {
	Pillars []PillarScore `json:"pillarScores"`
	Overall float64       `json:"overallScore"`
	Tier    string        `json:"tier"`
}

// RoundedOverall returns the overall score rounded half away from zero.
func (r *ScoreResult) RoundedOverall() int {
	return int(math.Round(r.Overall))
}

// Engine computes scores against a fixed catalog and tier table. It holds
// no mutable state; one Engine may serve concurrent callers.
type Engine struct {
	pillars []catalog.Pillar
	bands   []catalog.TierBand
}

// NewEngine builds an engine over the given pillars and tier bands.
func NewEngine(pillars []catalog.Pillar, bands []catalog.TierBand) *Engine {
	return &Engine{pillars: pillars, bands: bands}
}

// Default returns an engine over the production catalog.
func Default() *Engine {
	return NewEngine(catalog.Pillars, catalog.TierBands)
}

// ComputeScores scores an answer set. Missing and out-of-range answers are
// normalized to 0 (unanswered) rather than rejected. A pillar whose
// answers are all 0, or that defines no questions, scores exactly 0.0 and
// still participates in the overall mean.
//
// The only error path is a tier lookup miss, which indicates a
// misconfigured tier table, not bad input.
func (e *Engine) ComputeScores(answers AnswerSet) (*ScoreResult, error) {
	pillarScores := make([]PillarScore, 0, len(e.pillars))
	for _, p := range e.pillars {
		vals := make(map[catalog.QuestionID]int, len(p.Questions))
		sum, answered := 0, false
		for _, q := range p.Questions {
			v := normalizeAnswer(answers[q])
			vals[q] = v
			sum += v
			if v > 0 {
				answered = true
			}
		}

		score := 0.0
		if answered && len(p.Questions) > 0 {
			avg := float64(sum) / float64(len(p.Questions))
			score = avg / 5.0 * 100.0
		}
		pillarScores = append(pillarScores, PillarScore{
			Pillar:  p.Name,
			Score:   score,
			Answers: vals,
		})
	}

	overall := 0.0
	if len(pillarScores) > 0 {
		sum := 0.0
		for _, ps := range pillarScores {
			sum += ps.Score
		}
		overall = sum / float64(len(pillarScores))
	}

	tier, err := e.TierFor(overall)
	if err != nil {
		return nil, err
	}

	return &ScoreResult{
		Pillars: pillarScores,
		Overall: overall,
		Tier:    tier,
	}, nil
}

// TierFor resolves the band containing round(score). With a valid band
// table this cannot miss; a miss surfaces as an invariant violation.
func (e *Engine) TierFor(score float64) (string, error) {
	s := int(math.Round(score))
	for _, b := range e.bands {
		if s >= b.Lower && s <= b.Upper {
			return b.Label, nil
		}
	}
	return "", apperrors.NewInvariantViolationError(
		fmt.Sprintf("no tier band matches rounded score %d", s))
}

// normalizeAnswer maps anything outside [1,5] to 0 (unanswered).
func normalizeAnswer(raw int) int {
	if raw < 1 || raw > 5 {
		return 0
	}
	return raw
}

// Commentary maps a pillar score to one of four fixed encouragement
// levels. The thresholds are independent of the tier band table.
func Commentary(pillarName string, score float64) string {
	switch {
	case score >= 80:
		return fmt.Sprintf("%s is strong and scalable — keep reinforcing what works.", pillarName)
	case score >= 60:
		return fmt.Sprintf("%s shows a solid foundation with room to standardize and scale.", pillarName)
	case score >= 40:
		return fmt.Sprintf("%s is emerging — formalize structure, cadence, and measurement.", pillarName)
	default:
		return fmt.Sprintf("%s is underdeveloped — prioritize core mechanics and minimum viable structure.", pillarName)
	}
}
