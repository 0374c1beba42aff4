package server

import (
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/metrics"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/validation"
	"github.com/bmadison30/XplainIQ-Lite/internal/catalog"
	"github.com/bmadison30/XplainIQ-Lite/internal/insights"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"
	"github.com/bmadison30/XplainIQ-Lite/internal/report"
	"github.com/bmadison30/XplainIQ-Lite/internal/scoring"
)

const defaultMaxBodyBytes = 4 << 20

type submissionRequest struct {
	Company  string           `json:"company"`
	Contact  models.Contact   `json:"contact"`
	Branding *brandingPayload `json:"branding,omitempty"`
	Answers  map[string]int   `json:"answers"`
}

type brandingPayload struct {
	BrandName      string `json:"brand_name,omitempty"`
	PartnerName    string `json:"tsd_cobrand,omitempty"`
	PrimaryLogoB64 string `json:"primary_logo_b64,omitempty"`
	PartnerLogoB64 string `json:"partner_logo_b64,omitempty"`
}

// clientResponse is what a regular submitter sees: an acknowledgement, no
// scores. The report is released after review.
type clientResponse struct {
	LeadID  string `json:"lead_id"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// adminResponse returns the full result plus the report document inline.
type adminResponse struct {
	LeadID          string         `json:"lead_id"`
	ScoreOverall    int            `json:"score_overall"`
	Tier            string         `json:"tier"`
	PillarScores    map[string]int `json:"pillar_scores"`
	Strengths       []string       `json:"strengths"`
	Gaps            []string       `json:"gaps"`
	Recommendations []string       `json:"recommendations"`
	ReportFilename  string         `json:"docx_filename,omitempty"`
	ReportBase64    string         `json:"docx_b64,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func (s *Server) handleSubmission(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method not allowed"})
		return
	}

	start := s.now()
	ctx := r.Context()

	maxBytes := s.cfg.Server.MaxUploadBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBodyBytes
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBytes))
	if err != nil {
		writeError(w, apperrors.NewSubmissionValidationError("unreadable request body"))
		return
	}

	if err := validation.ValidateSubmission(body); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writeError(w, err)
		return
	}

	var req submissionRequest
	if err := json.Unmarshal(body, &req); err != nil {
		metrics.SubmissionsTotal.WithLabelValues("rejected").Inc()
		writeError(w, apperrors.NewSubmissionValidationError(err.Error()))
		return
	}

	prefillAnswers(&req, r)

	admin := r.URL.Query().Get("admin") == "true"

	if !admin && s.limiter != nil {
		if err := s.limiter.Allow(ctx, req.Contact.Email); err != nil {
			metrics.SubmissionsTotal.WithLabelValues("rate_limited").Inc()
			writeError(w, err)
			return
		}
	}

	answers := make(scoring.AnswerSet, len(req.Answers))
	for id, v := range req.Answers {
		answers[catalog.QuestionID(id)] = v
	}

	result, err := s.engine.ComputeScores(answers)
	if err != nil {
		metrics.SubmissionsTotal.WithLabelValues("error").Inc()
		writeError(w, err)
		return
	}
	ins := insights.Derive(result.Pillars)

	branding := s.buildBranding(req.Branding)
	generatedAt := s.now().UTC()

	doc, composeErr := s.composer.Compose(branding, req.Company, result, ins, generatedAt)
	if composeErr != nil {
		// The lead is still captured; only the attachment is lost.
		metrics.ReportFailures.WithLabelValues(string(apperrors.CodeOf(composeErr))).Inc()
		s.logger.WithError(composeErr).Error("report generation failed", map[string]interface{}{
			"company": req.Company,
		})
	} else {
		metrics.ReportsGenerated.Inc()
	}

	rec := s.buildLeadRecord(req, branding, result, admin, generatedAt, doc)

	if s.store != nil {
		if err := s.store.Save(ctx, rec); err != nil {
			s.logger.WithError(err).Error("lead persist failed", map[string]interface{}{
				"lead_id": rec.ID,
			})
		}
	}

	if s.forwarder != nil && s.forwarder.Enabled() {
		if err := s.forwarder.Forward(ctx, rec, doc); err != nil {
			s.logger.WithError(err).Warn("webhook forward failed", map[string]interface{}{
				"lead_id": rec.ID,
			})
		}
	}

	if admin && s.emailer != nil && s.cfg.Email.Enabled && doc != nil {
		if err := s.emailer.SendReport(ctx, req.Contact.Email, req.Company, doc); err != nil {
			s.logger.WithError(err).Warn("report email failed", map[string]interface{}{
				"lead_id": rec.ID,
			})
		}
	}

	metrics.SubmissionsTotal.WithLabelValues("accepted").Inc()
	metrics.OverallScore.Observe(result.Overall)
	metrics.SubmissionDuration.Observe(s.now().Sub(start).Seconds())

	if admin {
		resp := adminResponse{
			LeadID:          rec.ID,
			ScoreOverall:    result.RoundedOverall(),
			Tier:            result.Tier,
			PillarScores:    rec.PillarScores,
			Strengths:       ins.Strengths,
			Gaps:            ins.Gaps,
			Recommendations: ins.Recommendations,
		}
		if doc != nil {
			resp.ReportFilename = doc.Filename
			resp.ReportBase64 = base64.StdEncoding.EncodeToString(doc.Bytes)
		}
		writeJSON(w, http.StatusOK, resp)
		return
	}

	writeJSON(w, http.StatusAccepted, clientResponse{
		LeadID:  rec.ID,
		Status:  rec.Status,
		Message: "Thanks! Your Channel Readiness Report is being prepared and will be sent after review.",
	})
}

var questionKeyPattern = regexp.MustCompile(`^[A-Z][0-9]+$`)

// prefillAnswers merges ?a1=4&b2=5 style query parameters into the answer
// set. Body answers win over query parameters.
func prefillAnswers(req *submissionRequest, r *http.Request) {
	for key, vals := range r.URL.Query() {
		id := strings.ToUpper(key)
		if !questionKeyPattern.MatchString(id) || len(vals) == 0 {
			continue
		}
		if _, ok := req.Answers[id]; ok {
			continue
		}
		v, err := strconv.Atoi(vals[0])
		if err != nil {
			continue
		}
		if req.Answers == nil {
			req.Answers = make(map[string]int)
		}
		req.Answers[id] = v
	}
}

func (s *Server) buildBranding(p *brandingPayload) models.BrandingContext {
	branding := models.BrandingContext{BrandName: s.cfg.Report.BrandName}
	if branding.BrandName == "" {
		branding.BrandName = report.DefaultBrandName
	}
	if p == nil {
		return branding
	}
	if p.BrandName != "" {
		branding.BrandName = p.BrandName
	}
	branding.PartnerName = p.PartnerName
	branding.PrimaryLogo = s.decodeLogo("primary", p.PrimaryLogoB64)
	branding.PartnerLogo = s.decodeLogo("partner", p.PartnerLogoB64)
	return branding
}

// decodeLogo treats a malformed logo as absent rather than failing the
// submission.
func (s *Server) decodeLogo(slot, b64 string) []byte {
	if b64 == "" {
		return nil
	}
	data, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		s.logger.WithError(err).Warn("logo decode failed, skipping", map[string]interface{}{
			"slot": slot,
		})
		return nil
	}
	return data
}

func (s *Server) buildLeadRecord(
	req submissionRequest,
	branding models.BrandingContext,
	result *scoring.ScoreResult,
	admin bool,
	generatedAt time.Time,
	doc *models.ReportDocument,
) *models.LeadRecord {
	pillarScores := make(map[string]int, len(result.Pillars))
	answerValues := make(map[string]int, len(req.Answers))
	for _, p := range result.Pillars {
		pillarScores[p.Pillar] = p.Rounded()
		for id, v := range p.Answers {
			answerValues[string(id)] = v
		}
	}

	status := models.StatusPendingReview
	if admin {
		status = models.StatusSubmittedByAdmin
	}

	rec := &models.LeadRecord{
		ID:               uuid.NewString(),
		Timestamp:        generatedAt.Format(time.RFC3339),
		BrandName:        branding.BrandName,
		PartnerName:      branding.PartnerName,
		Company:          req.Company,
		Name:             req.Contact.Name,
		Email:            req.Contact.Email,
		Role:             req.Contact.Role,
		Phone:            req.Contact.Phone,
		ScoreOverall:     result.RoundedOverall(),
		Tier:             result.Tier,
		PillarScores:     pillarScores,
		Answers:          answerValues,
		Status:           status,
		ApprovalRequired: s.cfg.Leads.ApprovalRequired && !admin,
	}
	if doc != nil {
		rec.ReportFilename = doc.Filename
	}
	return rec
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := apperrors.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case apperrors.ErrCodeSubmissionValidationFailed:
		status = http.StatusBadRequest
	case apperrors.ErrCodeRateLimited:
		status = http.StatusTooManyRequests
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Code: string(code)})
}
