package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bmadison30/XplainIQ-Lite/internal/common/config"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/leads"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"
)

type memoryStore struct {
	records []*models.LeadRecord
}

func (s *memoryStore) Save(_ context.Context, rec *models.LeadRecord) error {
	s.records = append(s.records, rec)
	return nil
}

type recordingEmailer struct {
	to       string
	company  string
	filename string
}

func (e *recordingEmailer) SendReport(_ context.Context, to, company string, doc *models.ReportDocument) error {
	e.to = to
	e.company = company
	e.filename = doc.Filename
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "assessment-server", Version: "test"},
		Leads: config.LeadsConfig{
			ApprovalRequired: true,
		},
		Email: config.EmailConfig{Enabled: true, FromEmail: "reports@xplainiq.com"},
	}
}

func submissionBody(t *testing.T, overrides map[string]interface{}) []byte {
	t.Helper()
	payload := map[string]interface{}{
		"company": "Acme Widget Co",
		"contact": map[string]interface{}{
			"name":    "Jane Doe",
			"email":   "jane@acme.com",
			"consent": true,
		},
		"answers": map[string]int{
			"A1": 5, "A2": 5,
			"B1": 1, "B2": 1,
			"C1": 3, "C2": 3,
			"D1": 3, "D2": 3,
			"E1": 1, "E2": 1,
		},
	}
	for k, v := range overrides {
		payload[k] = v
	}
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	return body
}

func newTestServer(t *testing.T, opts ...Option) (*Server, *memoryStore) {
	t.Helper()
	store := &memoryStore{}
	opts = append([]Option{
		WithStore(store),
		WithClock(func() time.Time {
			return time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)
		}),
	}, opts...)
	return New(testConfig(), logger.NewNop(), opts...), store
}

func TestSubmissionClientFlow(t *testing.T) {
	srv, store := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments",
		bytes.NewReader(submissionBody(t, nil)))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)

	var resp clientResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.LeadID)
	assert.Equal(t, models.StatusPendingReview, resp.Status)

	// Scores never leak to the client; they only land in the lead record.
	assert.NotContains(t, rr.Body.String(), "score_overall")

	require.Len(t, store.records, 1)
	rec := store.records[0]
	assert.Equal(t, 52, rec.ScoreOverall)
	assert.Equal(t, "Developing", rec.Tier)
	assert.True(t, rec.ApprovalRequired)
	assert.Equal(t, "2025-03-14T09:30:00Z", rec.Timestamp)
	assert.Equal(t, 100, rec.PillarScores["A. Channel Strategy & Alignment"])
	assert.NotEmpty(t, rec.ReportFilename)
}

func TestSubmissionAdminFlow(t *testing.T) {
	emailer := &recordingEmailer{}
	srv, store := newTestServer(t, WithEmailer(emailer))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments?admin=true",
		bytes.NewReader(submissionBody(t, nil)))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var resp adminResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, 52, resp.ScoreOverall)
	assert.Equal(t, "Developing", resp.Tier)
	assert.NotEmpty(t, resp.ReportBase64)
	assert.Contains(t, resp.ReportFilename, "AcmeWidgetCo_ChannelReadiness_")
	assert.Len(t, resp.Strengths, 2)
	assert.Len(t, resp.Recommendations, 3)

	require.Len(t, store.records, 1)
	assert.Equal(t, models.StatusSubmittedByAdmin, store.records[0].Status)
	assert.False(t, store.records[0].ApprovalRequired)

	assert.Equal(t, "jane@acme.com", emailer.to)
	assert.Equal(t, "Acme Widget Co", emailer.company)
}

func TestSubmissionValidation(t *testing.T) {
	srv, store := newTestServer(t)

	body := submissionBody(t, map[string]interface{}{
		"contact": map[string]interface{}{
			"name":  "Jane Doe",
			"email": "jane@acme.com",
			// consent missing
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "SUBMISSION_VALIDATION_FAILED", resp.Code)
	assert.Empty(t, store.records)
}

func TestSubmissionWithoutConsentRejected(t *testing.T) {
	srv, store := newTestServer(t)

	body := submissionBody(t, map[string]interface{}{
		"contact": map[string]interface{}{
			"name":    "Jane Doe",
			"email":   "jane@acme.com",
			"consent": false,
		},
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/assessments", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusBadRequest, rr.Code)

	var resp errorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	assert.Equal(t, "SUBMISSION_VALIDATION_FAILED", resp.Code)
	assert.Empty(t, store.records, "a lead must never be captured without consent")
}

func TestSubmissionRateLimited(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	limiter := leads.NewRateLimiter(rdb, time.Minute)

	srv, store := newTestServer(t, WithRateLimiter(limiter))

	first := httptest.NewRequest(http.MethodPost, "/api/v1/assessments",
		bytes.NewReader(submissionBody(t, nil)))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, first)
	require.Equal(t, http.StatusAccepted, rr.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/assessments",
		bytes.NewReader(submissionBody(t, nil)))
	rr = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, second)
	require.Equal(t, http.StatusTooManyRequests, rr.Code)

	// Admin submissions bypass the cooldown.
	admin := httptest.NewRequest(http.MethodPost, "/api/v1/assessments?admin=true",
		bytes.NewReader(submissionBody(t, nil)))
	rr = httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, admin)
	require.Equal(t, http.StatusOK, rr.Code)

	assert.Len(t, store.records, 2)
}

func TestSubmissionQueryPrefill(t *testing.T) {
	srv, store := newTestServer(t)

	body := submissionBody(t, map[string]interface{}{
		"answers": map[string]int{"A1": 5, "A2": 5},
	})
	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/assessments?b1=1&b2=1&c1=3&c2=3&d1=3&d2=3&e1=1&e2=1&a1=2",
		bytes.NewReader(body))
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusAccepted, rr.Code)
	require.Len(t, store.records, 1)
	rec := store.records[0]

	// Body answers win over query prefill: A1 stays 5.
	assert.Equal(t, 5, rec.Answers["A1"])
	assert.Equal(t, 1, rec.Answers["B1"])
	assert.Equal(t, 52, rec.ScoreOverall)
	assert.Equal(t, "Developing", rec.Tier)
}

func TestSubmissionMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/assessments", nil)
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rr.Code)
}

func TestRadarChartSizeFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Report.RadarSize = 320
	assert.Equal(t, 320, newRadarChart(cfg).Size)

	cfg.Report.RadarSize = 0
	assert.Equal(t, 640, newRadarChart(cfg).Size)
}

func TestHealthEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Routes().ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"healthy"`)
	assert.Contains(t, rr.Body.String(), "assessment-server")
}
