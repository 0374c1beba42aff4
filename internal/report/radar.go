package report

import (
	"bytes"
	"fmt"
	"math"
	"strings"

	"github.com/bmadison30/XplainIQ-Lite/internal/scoring"

	"github.com/fogleman/gg"
)

// RadarRenderer produces the readiness radar image. Rendering is a
// best-effort capability: the composer queries Available and omits the
// chart when no renderer is wired in.
type RadarRenderer interface {
	Available() bool
	Render(pillars []scoring.PillarScore) ([]byte, error)
}

// RadarChart draws a closed polygon on a circular 0-100 axis, one spoke
// per pillar. Spoke 1 points up and spokes proceed clockwise.
type RadarChart struct {
	Size int // output is Size x Size pixels
}

// NewRadarChart returns a renderer with the default canvas size.
func NewRadarChart() *RadarChart {
	return &RadarChart{Size: 640}
}

// Available implements RadarRenderer.
func (r *RadarChart) Available() bool { return true }

// Render draws the radar and returns PNG bytes.
func (r *RadarChart) Render(pillars []scoring.PillarScore) ([]byte, error) {
	if len(pillars) == 0 {
		return nil, fmt.Errorf("radar: no pillars to plot")
	}

	size := r.Size
	if size <= 0 {
		size = 640
	}
	cx := float64(size) / 2
	cy := float64(size) / 2
	maxR := float64(size) * 0.38

	dc := gg.NewContext(size, size)
	dc.SetRGB(1, 1, 1)
	dc.Clear()

	n := len(pillars)
	// Spoke i sits at -90 degrees plus i steps clockwise. Screen y grows
	// downward, so increasing the angle walks clockwise.
	angle := func(i int) float64 {
		return -math.Pi/2 + 2*math.Pi*float64(i)/float64(n)
	}
	point := func(i int, radius float64) (float64, float64) {
		a := angle(i)
		return cx + radius*math.Cos(a), cy + radius*math.Sin(a)
	}

	// Gridlines at 20/40/60/80/100.
	dc.SetLineWidth(1)
	dc.SetRGB(0.8, 0.8, 0.8)
	for _, level := range []float64{20, 40, 60, 80, 100} {
		dc.DrawCircle(cx, cy, level/100*maxR)
		dc.Stroke()
	}

	// Spokes and axis labels.
	for i, p := range pillars {
		x, y := point(i, maxR)
		dc.SetRGB(0.8, 0.8, 0.8)
		dc.DrawLine(cx, cy, x, y)
		dc.Stroke()

		lx, ly := point(i, maxR*1.1)
		dc.SetRGB(0.2, 0.2, 0.2)
		dc.DrawStringAnchored(shortLabel(p.Pillar), lx, ly, 0.5, 0.5)
	}

	// Scale labels along the top spoke.
	dc.SetRGB(0.55, 0.55, 0.55)
	for _, level := range []float64{20, 40, 60, 80, 100} {
		dc.DrawStringAnchored(fmt.Sprintf("%.0f", level), cx+6, cy-level/100*maxR, 0, 0.5)
	}

	// Value polygon, closed back to the first vertex.
	dc.NewSubPath()
	for i, p := range pillars {
		v := clampScore(p.Score)
		x, y := point(i, v/100*maxR)
		if i == 0 {
			dc.MoveTo(x, y)
		} else {
			dc.LineTo(x, y)
		}
	}
	dc.ClosePath()
	dc.SetRGBA(0.15, 0.35, 0.75, 0.1)
	dc.FillPreserve()
	dc.SetRGBA(0.15, 0.35, 0.75, 1)
	dc.SetLineWidth(2)
	dc.Stroke()

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, fmt.Errorf("radar: encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// shortLabel drops the "A. " style prefix for chart labels.
func shortLabel(pillar string) string {
	if _, rest, ok := strings.Cut(pillar, ". "); ok {
		return rest
	}
	return pillar
}

func clampScore(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}
