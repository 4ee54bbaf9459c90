package dashboard

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/investbadge/internal/models"
)

func hexColor(s string) drawing.Color {
	return drawing.ColorFromHex(strings.TrimPrefix(s, "#"))
}

// RenderAllocationChart renders a PNG pie chart of the allocation.
// Empty buckets are omitted.
func RenderAllocationChart(alloc models.PortfolioAllocation) ([]byte, error) {
	var values []chart.Value
	for _, s := range alloc.Slices() {
		if s.Value <= 0 {
			continue
		}
		values = append(values, chart.Value{
			Value: s.Value,
			Label: fmt.Sprintf("%s %.0f%%", s.Name, s.Value),
			Style: chart.Style{
				FillColor:   hexColor(s.Color),
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no non-zero buckets to chart", models.ErrInvalidAllocation)
	}

	pie := chart.PieChart{
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}
	return buf.Bytes(), nil
}

// RenderBadgeImage renders a PNG of the score as a share of 100, in the
// colours of the profile's investor type.
func RenderBadgeImage(p *models.InvestorProfile) ([]byte, error) {
	style := BadgeStyleFor(p)

	values := []chart.Value{{
		Value: float64(p.Score),
		Label: fmt.Sprintf("%d", p.Score),
		Style: chart.Style{FillColor: hexColor(style.Gradient[0]), StrokeColor: hexColor(style.Accent), StrokeWidth: 2},
	}}
	if rest := 100 - p.Score; rest > 0 {
		values = append(values, chart.Value{
			Value: float64(rest),
			Style: chart.Style{FillColor: hexColor(style.Gradient[1]), StrokeColor: hexColor(style.Accent), StrokeWidth: 2},
		})
	}
	if p.Score <= 0 {
		values = values[1:]
	}

	pie := chart.PieChart{
		Title:  fmt.Sprintf("%s %s", p.NFTID, style.TypeLabel),
		Width:  400,
		Height: 400,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("badge render failed: %w", err)
	}
	return buf.Bytes(), nil
}
