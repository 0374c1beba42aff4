package leads

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() *models.LeadRecord {
	return &models.LeadRecord{
		ID:           "lead-123",
		Timestamp:    "2025-03-14T09:30:00Z",
		BrandName:    "XplainIQ: Channel Readiness Index",
		PartnerName:  "Globex TSD",
		Company:      "Acme Corp",
		Name:         "Pat Doe",
		Email:        "pat@acme.test",
		Role:         "VP Channel",
		Phone:        "555-0100",
		ScoreOverall: 52,
		Tier:         "Developing",
		PillarScores: map[string]int{
			"A. Channel Strategy & Alignment": 100,
			"B. Partner Program Design":       20,
		},
		Answers:          map[string]int{"A1": 5, "A2": 5, "B1": 1, "B2": 1},
		Status:           models.StatusPendingReview,
		ApprovalRequired: true,
	}
}

func TestPostgresStore_Save(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec := sampleRecord()
	mock.ExpectExec("INSERT INTO leads").
		WithArgs(
			rec.ID, rec.Timestamp, rec.BrandName, rec.PartnerName, rec.Company,
			rec.Name, rec.Email, rec.Role, rec.Phone,
			rec.ScoreOverall, rec.Tier, sqlmock.AnyArg(), sqlmock.AnyArg(),
			rec.Status, rec.ApprovalRequired,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	store := NewPostgresStore(db, logger.NewNop())
	require.NoError(t, store.Save(context.Background(), rec))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgresStore_SaveError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("INSERT INTO leads").
		WillReturnError(fmt.Errorf("connection reset"))

	store := NewPostgresStore(db, logger.NewNop())
	err = store.Save(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLeadPersistFailed))
}

func TestCSVStore_AppendsWithHeaderOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "leads.csv")
	store := NewCSVStore(path)

	require.NoError(t, store.Save(context.Background(), sampleRecord()))
	second := sampleRecord()
	second.ID = "lead-456"
	require.NoError(t, store.Save(context.Background(), second))

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus two records")

	assert.Equal(t, csvHeader(), rows[0])
	assert.Equal(t, "lead-123", rows[1][0])
	assert.Equal(t, "lead-456", rows[2][0])
	assert.Equal(t, "52", rows[1][9])
	assert.Equal(t, "Developing", rows[1][10])
	assert.Equal(t, "A1=5;A2=5;B1=1;B2=1", rows[1][12])
}

func TestFallbackStore_UsesFallbackOnPrimaryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()
	mock.ExpectExec("INSERT INTO leads").WillReturnError(fmt.Errorf("down"))

	csvPath := filepath.Join(t.TempDir(), "leads.csv")
	store := NewFallbackStore(
		NewPostgresStore(db, logger.NewNop()),
		NewCSVStore(csvPath),
		logger.NewNop(),
	)

	require.NoError(t, store.Save(context.Background(), sampleRecord()))

	_, statErr := os.Stat(csvPath)
	assert.NoError(t, statErr, "record must land in the CSV fallback")
}

func TestFallbackStore_NoSinksConfigured(t *testing.T) {
	store := NewFallbackStore(nil, nil, logger.NewNop())
	err := store.Save(context.Background(), sampleRecord())
	require.Error(t, err)
	assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeLeadPersistFailed))
}
