// Package leads captures and forwards submission records. Everything here
// is caller-side plumbing around the scoring core.
package leads

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"sync"

	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/metrics"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"
)

// Store persists one lead record per submission.
type Store interface {
	Save(ctx context.Context, rec *models.LeadRecord) error
}

// PostgresStore appends lead records to the leads table.
type PostgresStore struct {
	db     *sql.DB
	logger logger.Logger
}

// NewPostgresStore wraps an open database handle.
func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	return &PostgresStore{
		db:     db,
		logger: log.WithFields(map[string]interface{}{"sink": "postgres"}),
	}
}

const insertLeadQuery = `
	INSERT INTO leads (
		id, submitted_at, brand_name, partner_name, company,
		contact_name, contact_email, contact_role, contact_phone,
		score_overall, tier, pillar_scores, answers, status, approval_required
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`

// Save inserts the record. Score breakdowns are stored as JSONB.
func (s *PostgresStore) Save(ctx context.Context, rec *models.LeadRecord) error {
	pillarJSON, err := json.Marshal(rec.PillarScores)
	if err != nil {
		return apperrors.NewLeadPersistError("postgres", err)
	}
	answersJSON, err := json.Marshal(rec.Answers)
	if err != nil {
		return apperrors.NewLeadPersistError("postgres", err)
	}

	_, err = s.db.ExecContext(ctx, insertLeadQuery,
		rec.ID, rec.Timestamp, rec.BrandName, rec.PartnerName, rec.Company,
		rec.Name, rec.Email, rec.Role, rec.Phone,
		rec.ScoreOverall, rec.Tier, pillarJSON, answersJSON,
		rec.Status, rec.ApprovalRequired,
	)
	if err != nil {
		metrics.LeadDeliveries.WithLabelValues("postgres", "error").Inc()
		return apperrors.NewLeadPersistError("postgres", err)
	}

	metrics.LeadDeliveries.WithLabelValues("postgres", "ok").Inc()
	s.logger.Info("lead persisted", map[string]interface{}{
		"leadId":  rec.ID,
		"company": rec.Company,
		"score":   rec.ScoreOverall,
	})
	return nil
}

// CSVStore appends lead records to a local CSV file, writing the header
// row on first use. It is the fallback sink when postgres is down or not
// configured.
type CSVStore struct {
	path string
	mu   sync.Mutex
}

// NewCSVStore creates a store writing to path.
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

func csvHeader() []string {
	return []string{
		"id", "ts", "brand_name", "tsd_cobrand", "company",
		"name", "email", "role", "phone",
		"score_overall", "tier", "pillar_scores", "answers",
		"status", "approval_required",
	}
}

// Save appends one row. A single mutex serializes writers within the
// process; the file is opened in append mode each call.
func (s *CSVStore) Save(_ context.Context, rec *models.LeadRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, statErr := os.Stat(s.path)
	fresh := os.IsNotExist(statErr)

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		metrics.LeadDeliveries.WithLabelValues("csv", "error").Inc()
		return apperrors.NewLeadPersistError("csv", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if fresh {
		if err := w.Write(csvHeader()); err != nil {
			metrics.LeadDeliveries.WithLabelValues("csv", "error").Inc()
			return apperrors.NewLeadPersistError("csv", err)
		}
	}

	if err := w.Write([]string{
		rec.ID, rec.Timestamp, rec.BrandName, rec.PartnerName, rec.Company,
		rec.Name, rec.Email, rec.Role, rec.Phone,
		strconv.Itoa(rec.ScoreOverall), rec.Tier,
		flattenScores(rec.PillarScores), flattenAnswers(rec.Answers),
		rec.Status, strconv.FormatBool(rec.ApprovalRequired),
	}); err != nil {
		metrics.LeadDeliveries.WithLabelValues("csv", "error").Inc()
		return apperrors.NewLeadPersistError("csv", err)
	}

	w.Flush()
	if err := w.Error(); err != nil {
		metrics.LeadDeliveries.WithLabelValues("csv", "error").Inc()
		return apperrors.NewLeadPersistError("csv", err)
	}

	metrics.LeadDeliveries.WithLabelValues("csv", "ok").Inc()
	return nil
}

// flattenScores renders a score map as "name=score;..." with sorted keys
// so rows stay diffable.
func flattenScores(scores map[string]int) string {
	keys := make([]string, 0, len(scores))
	for k := range scores {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := ""
	for i, k := range keys {
		if i > 0 {
			out += ";"
		}
		out += fmt.Sprintf("%s=%d", k, scores[k])
	}
	return out
}

func flattenAnswers(answers map[string]int) string {
	return flattenScores(answers)
}

// FallbackStore tries the primary sink and falls back on error, mirroring
// the original capture chain (sheet, then local CSV).
type FallbackStore struct {
	primary  Store
	fallback Store
	logger   logger.Logger
}

// NewFallbackStore chains two sinks. Either may be nil.
func NewFallbackStore(primary, fallback Store, log logger.Logger) *FallbackStore {
	return &FallbackStore{primary: primary, fallback: fallback, logger: log}
}

// Save returns nil if any sink accepted the record.
func (s *FallbackStore) Save(ctx context.Context, rec *models.LeadRecord) error {
	if s.primary != nil {
		err := s.primary.Save(ctx, rec)
		if err == nil {
			return nil
		}
		s.logger.Warn("primary lead sink failed, using fallback", map[string]interface{}{
			"leadId": rec.ID,
			"error":  err.Error(),
		})
	}
	if s.fallback == nil {
		return apperrors.NewLeadPersistError("fallback", fmt.Errorf("no fallback sink configured"))
	}
	return s.fallback.Save(ctx, rec)
}
