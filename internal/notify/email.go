// Package notify delivers approved reports to the contact by email.
package notify

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"mime/multipart"
	"net/textproto"

	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/common/metrics"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	sestypes "github.com/aws/aws-sdk-go-v2/service/ses/types"
)

const docxMIMEType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

type sesAPI interface {
	SendRawEmail(ctx context.Context, params *ses.SendRawEmailInput, optFns ...func(*ses.Options)) (*ses.SendRawEmailOutput, error)
}

// Sender emails a report document as a DOCX attachment through SES. Raw
// MIME is required because the plain SendEmail API cannot attach files.
type Sender struct {
	api    sesAPI
	from   string
	logger logger.Logger
}

// NewSender builds a sender using the default AWS credential chain.
func NewSender(ctx context.Context, region, from string, log logger.Logger) (*Sender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, err
	}
	return newSenderWithAPI(ses.NewFromConfig(cfg), from, log), nil
}

func newSenderWithAPI(api sesAPI, from string, log logger.Logger) *Sender {
	return &Sender{
		api:    api,
		from:   from,
		logger: log.WithFields(map[string]interface{}{"sink": "ses"}),
	}
}

// SendReport emails the report to the contact.
func (s *Sender) SendReport(ctx context.Context, to, company string, doc *models.ReportDocument) error {
	subject := fmt.Sprintf("Your Channel Readiness Report — %s", company)
	body := fmt.Sprintf(
		"Hi,\r\n\r\nThank you for completing the Channel Readiness Index. "+
			"Your reviewed report for %s is attached.\r\n\r\n— The XplainIQ Team\r\n",
		company)

	raw, err := buildMIME(s.from, to, subject, body, doc)
	if err != nil {
		return apperrors.NewEmailSendError(err)
	}

	_, err = s.api.SendRawEmail(ctx, &ses.SendRawEmailInput{
		Source:       aws.String(s.from),
		Destinations: []string{to},
		RawMessage:   &sestypes.RawMessage{Data: raw},
	})
	if err != nil {
		metrics.LeadDeliveries.WithLabelValues("ses", "error").Inc()
		return apperrors.NewEmailSendError(err)
	}

	metrics.LeadDeliveries.WithLabelValues("ses", "ok").Inc()
	s.logger.Info("report emailed", map[string]interface{}{
		"to":       to,
		"filename": doc.Filename,
	})
	return nil
}

// buildMIME assembles a multipart/mixed message: plain-text body plus the
// base64-encoded DOCX attachment.
func buildMIME(from, to, subject, body string, doc *models.ReportDocument) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	textPart, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type": {"text/plain; charset=utf-8"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := textPart.Write([]byte(body)); err != nil {
		return nil, err
	}

	attachment, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {docxMIMEType},
		"Content-Transfer-Encoding": {"base64"},
		"Content-Disposition":       {fmt.Sprintf("attachment; filename=%q", doc.Filename)},
	})
	if err != nil {
		return nil, err
	}
	if _, err := attachment.Write([]byte(base64.StdEncoding.EncodeToString(doc.Bytes))); err != nil {
		return nil, err
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
