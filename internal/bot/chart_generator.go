package bot

import (
	"fmt"

	"github.com/go-analyze/charts"

	"gitlab.com/yelinaung/finflow/internal/finance"
)

// GenerateCategoryChart renders a category breakdown as a PNG pie chart.
func GenerateCategoryChart(rows []finance.CategoryAmount, title string) ([]byte, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("no expenses to chart")
	}

	values := make([]float64, 0, len(rows))
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		values = append(values, row.Amount.InexactFloat64())
		names = append(names, fmt.Sprintf("%s (%d%%)", row.Category, row.Percentage))
	}

	p, err := charts.PieRender(
		values,
		charts.TitleOptionFunc(charts.TitleOption{Text: title}),
		charts.LegendLabelsOptionFunc(names),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create chart: %w", err)
	}

	buf, err := p.Bytes()
	if err != nil {
		return nil, fmt.Errorf("failed to render chart: %w", err)
	}
	return buf, nil
}

// chartFilename names the chart of a YYYY-MM month, e.g. "chart_2026-10.png".
func chartFilename(month string) string {
	return fmt.Sprintf("chart_%s.png", month)
}
