// Package models holds the data contracts shared between the core engine
// and the surrounding delivery plumbing.
package models

// BrandingContext carries the report branding supplied per generation.
// Logos are raw raster bytes (PNG/JPEG); either may be nil.
type BrandingContext struct {
	BrandName   string
	PartnerName string
	PrimaryLogo []byte
	PartnerLogo []byte
}

// CoBranded reports whether a partner name is set.
func (b BrandingContext) CoBranded() bool {
	return b.PartnerName != ""
}

// Contact identifies the person submitting the questionnaire.
type Contact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Role    string `json:"role,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Consent bool   `json:"consent"`
}

// ReportDocument is the serialized report artifact handed back to the
// caller. The core never writes it anywhere itself.
type ReportDocument struct {
	Bytes    []byte
	Filename string
}

// Review status values for a captured lead.
const (
	StatusPendingReview    = "Pending Review"
	StatusSubmittedByAdmin = "Submitted by Admin"
)

// LeadRecord is the flat submission record appended to the lead store and
// forwarded to the webhook. This record, not the report document, is the
// durable artifact of a submission.
type LeadRecord struct {
	ID               string         `json:"id"`
	Timestamp        string         `json:"ts"`
	BrandName        string         `json:"brand_name"`
	PartnerName      string         `json:"tsd_cobrand,omitempty"`
	Company          string         `json:"company"`
	Name             string         `json:"name"`
	Email            string         `json:"email"`
	Role             string         `json:"role,omitempty"`
	Phone            string         `json:"phone,omitempty"`
	ScoreOverall     int            `json:"score_overall"`
	Tier             string         `json:"tier"`
	PillarScores     map[string]int `json:"pillar_scores"`
	Answers          map[string]int `json:"answers"`
	Status           string         `json:"status"`
	ApprovalRequired bool           `json:"approval_required"`

	// Optional report attachment for webhook delivery.
	ReportFilename string `json:"docx_filename,omitempty"`
	ReportBase64   string `json:"docx_b64,omitempty"`
}
