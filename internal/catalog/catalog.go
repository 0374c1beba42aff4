// Package catalog holds the static questionnaire definition: pillars,
// question text, and the maturity tier bands.
package catalog

import "fmt"

// QuestionID identifies a single questionnaire item, e.g. "A1".
type QuestionID string

// Pillar is a named business-capability category with an ordered list of
// questions. The current catalog carries two questions per pillar, but
// nothing downstream assumes that.
type Pillar struct {
	Name      string
	Questions []QuestionID
}

// TierBand maps an inclusive range of rounded overall scores to a maturity
// label. Bands are evaluated against round(overall).
type TierBand struct {
	Label string
	Lower int
	Upper int
}

// Pillars is the catalog in report order.
var Pillars = []Pillar{
	{Name: "A. Channel Strategy & Alignment", Questions: []QuestionID{"A1", "A2"}},
	{Name: "B. Partner Program Design", Questions: []QuestionID{"B1", "B2"}},
	{Name: "C. Partner Enablement & Engagement", Questions: []QuestionID{"C1", "C2"}},
	{Name: "D. Sales & Operations Integration", Questions: []QuestionID{"D1", "D2"}},
	{Name: "E. Growth Readiness", Questions: []QuestionID{"E1", "E2"}},
}

// Questions holds the prompt text shown for each question.
var Questions = map[QuestionID]string{
	"A1": "Do you have a clearly defined purpose for selling through partners (beyond revenue expansion)?",
	"A2": "Are your target partner types (TSD, VAR, MSP, SI, etc.) well-defined and prioritized?",
	"B1": "Do you have a partner program with tiering, incentives, rules of engagement, or performance criteria?",
	"B2": "Can you clearly articulate what makes your offer unique and profitable for partners?",
	"C1": "Do you provide training, sales playbooks, or co-branded marketing assets?",
	"C2": "How consistently do you communicate and collaborate with active partners?",
	"D1": "Are internal sales/ops aligned to support channel transactions (quoting, order flow, support)?",
	"D2": "Do you track partner pipeline separately with forecast accuracy goals?",
	"E1": "Does senior leadership actively sponsor the channel model?",
	"E2": "Are tools, systems, and staffing sufficient to support 2–3× partner growth?",
}

// TierBands must partition [0,100]; ValidateTierBands enforces that at
// startup and in tests.
var TierBands = []TierBand{
	{Label: "Emerging", Lower: 0, Upper: 39},
	{Label: "Developing", Lower: 40, Upper: 59},
	{Label: "Established", Lower: 60, Upper: 79},
	{Label: "Optimized", Lower: 80, Upper: 100},
}

// ValidateTierBands checks that the bands cover [0,100] contiguously with
// no gaps or overlaps. A failure here is a configuration defect.
func ValidateTierBands(bands []TierBand) error {
	if len(bands) == 0 {
		return fmt.Errorf("tier bands: empty table")
	}
	if bands[0].Lower != 0 {
		return fmt.Errorf("tier bands: first band starts at %d, want 0", bands[0].Lower)
	}
	for i, b := range bands {
		if b.Lower > b.Upper {
			return fmt.Errorf("tier bands: band %q has lower %d > upper %d", b.Label, b.Lower, b.Upper)
		}
		if i > 0 && b.Lower != bands[i-1].Upper+1 {
			return fmt.Errorf("tier bands: gap or overlap between %q and %q", bands[i-1].Label, b.Label)
		}
	}
	if last := bands[len(bands)-1]; last.Upper != 100 {
		return fmt.Errorf("tier bands: last band ends at %d, want 100", last.Upper)
	}
	return nil
}

// QuestionIDs returns every question in catalog order.
func QuestionIDs() []QuestionID {
	var ids []QuestionID
	for _, p := range Pillars {
		ids = append(ids, p.Questions...)
	}
	return ids
}
