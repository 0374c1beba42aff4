package leads

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/metrics"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"
)

// Forwarder posts lead records to a delivery webhook (Zapier-style). The
// report document can optionally ride along base64-encoded.
type Forwarder struct {
	url          string
	attachReport bool
	client       *http.Client
	logger       logger.Logger
}

// NewForwarder builds a forwarder for the given webhook URL.
func NewForwarder(url string, attachReport bool, timeout time.Duration, log logger.Logger) *Forwarder {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Forwarder{
		url:          url,
		attachReport: attachReport,
		client:       &http.Client{Timeout: timeout},
		logger:       log.WithFields(map[string]interface{}{"sink": "webhook"}),
	}
}

// Enabled reports whether a webhook URL is configured.
func (f *Forwarder) Enabled() bool { return f.url != "" }

// Forward delivers the record. The caller passes the report document when
// attachment is wanted; the record itself is not mutated.
func (f *Forwarder) Forward(ctx context.Context, rec *models.LeadRecord, doc *models.ReportDocument) error {
	if !f.Enabled() {
		return nil
	}

	payload := *rec
	if f.attachReport && doc != nil {
		payload.ReportFilename = doc.Filename
		payload.ReportBase64 = base64.StdEncoding.EncodeToString(doc.Bytes)
	}

	body, err := json.Marshal(&payload)
	if err != nil {
		return apperrors.NewWebhookDeliveryError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.url, bytes.NewReader(body))
	if err != nil {
		return apperrors.NewWebhookDeliveryError(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.LeadDeliveries.WithLabelValues("webhook", "error").Inc()
		return apperrors.NewWebhookDeliveryError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		metrics.LeadDeliveries.WithLabelValues("webhook", "error").Inc()
		return apperrors.NewWebhookDeliveryError(fmt.Errorf("webhook returned %d", resp.StatusCode))
	}

	metrics.LeadDeliveries.WithLabelValues("webhook", "ok").Inc()
	f.logger.Info("lead forwarded", map[string]interface{}{
		"leadId":   rec.ID,
		"attached": f.attachReport && doc != nil,
	})
	return nil
}
