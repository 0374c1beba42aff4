// Package report renders the branded readiness summary: an optional radar
// chart and the fixed-layout DOCX document.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/bmadison30/XplainIQ-Lite/internal/common/logger"
	"github.com/bmadison30/XplainIQ-Lite/internal/insights"
	"github.com/bmadison30/XplainIQ-Lite/internal/models"
	"github.com/bmadison30/XplainIQ-Lite/internal/scoring"

	apperrors "github.com/bmadison30/XplainIQ-Lite/internal/common/errors"

	docx "github.com/fumiama/go-docx"
)

// DefaultBrandName is used when the caller supplies no brand name.
const DefaultBrandName = "XplainIQ: Channel Readiness Index"

const (
	ctaLine    = "Ready to reach a 90+ Channel Readiness score? Book a full XplainIQ GTM Assessment."
	ctaLink    = "https://calendly.com/"
	footerNote = "© Innovative Networx — XplainIQ™ | Confidential Diagnostic Summary"
)

// Font sizes in half-points, the unit OOXML runs use.
const (
	sizeTitle      = "32" // 16pt
	sizeHeadline   = "26" // 13pt
	sizePillar     = "22" // 11pt
	sizeBody       = "20" // 10pt
	sizeFooter     = "16" // 8pt
	logoTableWidth = 9026
)

// Composer assembles score results, insights, and branding into a DOCX
// report. Stateless; safe for concurrent use.
type Composer struct {
	radar  RadarRenderer
	logger logger.Logger
}

// NewComposer wires a composer with an optional radar renderer. A nil
// renderer disables the chart without affecting the rest of the report.
func NewComposer(radar RadarRenderer, log logger.Logger) *Composer {
	return &Composer{
		radar:  radar,
		logger: log.WithFields(map[string]interface{}{"component": "report-composer"}),
	}
}

// Compose builds the full report document. Logo and chart failures degrade
// (logged, element skipped); only document serialization fails the call.
func (c *Composer) Compose(
	branding models.BrandingContext,
	company string,
	result *scoring.ScoreResult,
	ins insights.Insights,
	generatedAt time.Time,
) (*models.ReportDocument, error) {
	if generatedAt.IsZero() {
		generatedAt = time.Now()
	}
	brandName := branding.BrandName
	if brandName == "" {
		brandName = DefaultBrandName
	}

	w := docx.New().WithDefaultTheme()

	c.addLogoRow(w, branding)

	// Title.
	w.AddParagraph().
		AddText(fmt.Sprintf("%s — Summary Report", brandName)).
		Size(sizeTitle).Bold()

	// Metadata line with optional co-brand suffix.
	suffix := ""
	if branding.CoBranded() {
		suffix = fmt.Sprintf(" (Co-branded with %s)", branding.PartnerName)
	}
	w.AddParagraph().
		AddText(fmt.Sprintf("%s%s • %s", company, suffix, generatedAt.Format("Jan 02, 2006"))).
		Size(sizeBody)

	w.AddParagraph()

	// Headline.
	w.AddParagraph().
		AddText(fmt.Sprintf("Channel Readiness Score: %d / 100 — %s", result.RoundedOverall(), result.Tier)).
		Size(sizeHeadline).Bold()

	// Pillar summary with per-pillar commentary.
	w.AddParagraph()
	w.AddParagraph().AddText("Pillar Summary").Size(sizePillar).Bold()
	for _, ps := range result.Pillars {
		w.AddParagraph().
			AddText(fmt.Sprintf("• %s: %d", ps.Pillar, ps.Rounded())).
			Size(sizePillar)
		w.AddParagraph().
			AddText(scoring.Commentary(ps.Pillar, ps.Score)).
			Size(sizeBody)
	}

	c.addRadar(w, result.Pillars)

	// Strengths and gaps.
	w.AddParagraph()
	w.AddParagraph().AddText("Top Strengths").Size(sizePillar).Bold()
	for _, s := range ins.Strengths {
		w.AddParagraph().AddText("• " + s).Size(sizeBody)
	}
	w.AddParagraph().AddText("Opportunities for Improvement").Size(sizePillar).Bold()
	for _, g := range ins.Gaps {
		w.AddParagraph().AddText("• " + g).Size(sizeBody)
	}

	// Recommendations.
	w.AddParagraph().AddText("Top 3 Recommendations (Next 90 Days)").Size(sizePillar).Bold()
	for _, rec := range ins.Recommendations {
		w.AddParagraph().AddText("• " + rec).Size(sizeBody)
	}

	// Call to action and footer.
	w.AddParagraph()
	cta := w.AddParagraph()
	cta.AddText(ctaLine + " ").Size(sizeBody)
	cta.AddLink(ctaLink, ctaLink)
	w.AddParagraph().AddText(footerNote).Size(sizeFooter)

	var buf bytes.Buffer
	if _, err := w.WriteTo(&buf); err != nil {
		return nil, apperrors.NewReportSerializationError(err)
	}

	return &models.ReportDocument{
		Bytes:    buf.Bytes(),
		Filename: Filename(company, generatedAt),
	}, nil
}

// addLogoRow places the primary and partner logos in a borderless
// two-column row. A corrupt image skips that slot only.
func (c *Composer) addLogoRow(w *docx.Docx, branding models.BrandingContext) {
	if len(branding.PrimaryLogo) == 0 && len(branding.PartnerLogo) == 0 {
		return
	}

	tbl := w.AddTable(1, 2, logoTableWidth, nil)
	c.embedLogo(tbl, 0, "primary", branding.PrimaryLogo)
	c.embedLogo(tbl, 1, "partner", branding.PartnerLogo)
	w.AddParagraph()
}

func (c *Composer) embedLogo(tbl *docx.Table, col int, slot string, data []byte) {
	if len(data) == 0 {
		return
	}
	para := tbl.TableRows[0].TableCells[col].AddParagraph()
	if _, err := para.AddInlineDrawing(data); err != nil {
		c.logger.Warn("skipping logo", map[string]interface{}{
			"slot":  slot,
			"error": apperrors.NewLogoEmbedError(slot, err).Error(),
		})
	}
}

// addRadar embeds the radar chart when a renderer is available. Rendering
// failures only cost the chart.
func (c *Composer) addRadar(w *docx.Docx, pillars []scoring.PillarScore) {
	if c.radar == nil || !c.radar.Available() {
		c.logger.Debug("radar omitted", map[string]interface{}{
			"reason": apperrors.NewChartUnavailableError(nil).Error(),
		})
		return
	}
	png, err := c.radar.Render(pillars)
	if err != nil {
		c.logger.Warn("radar render failed, omitting chart", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}
	w.AddParagraph()
	if _, err := w.AddParagraph().AddInlineDrawing(png); err != nil {
		c.logger.Warn("radar embed failed, omitting chart", map[string]interface{}{
			"error": err.Error(),
		})
	}
}

// Filename builds the download name: company without spaces, fixed infix,
// and a minute-precision timestamp.
func Filename(company string, ts time.Time) string {
	return fmt.Sprintf("%s_ChannelReadiness_%s.docx",
		strings.ReplaceAll(company, " ", ""),
		ts.Format("20060102_1504"))
}
