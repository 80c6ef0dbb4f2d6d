package export

import (
	"bytes"
	"sort"

	chart "github.com/wcharczuk/go-chart/v2"
)

// chartValues converts a label/amount map into chart values ordered by
// descending amount so renders are deterministic.
func chartValues(data map[string]float64) []chart.Value {
	labels := make([]string, 0, len(data))
	for label := range data {
		labels = append(labels, label)
	}
	sort.Slice(labels, func(i, j int) bool {
		if data[labels[i]] != data[labels[j]] {
			return data[labels[i]] > data[labels[j]]
		}
		return labels[i] < labels[j]
	})

	values := make([]chart.Value, 0, len(labels))
	for _, label := range labels {
		if data[label] <= 0 {
			continue
		}
		values = append(values, chart.Value{Label: label, Value: data[label]})
	}
	return values
}

// pieChartPNG renders a category distribution as a pie chart.
func pieChartPNG(data map[string]float64) ([]byte, error) {
	values := chartValues(data)
	if len(values) == 0 {
		return nil, nil
	}

	pie := chart.PieChart{
		Width:  512,
		Height: 512,
		Values: values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// barChartPNG renders per-period totals as a bar chart.
func barChartPNG(data map[string]float64) ([]byte, error) {
	values := chartValues(data)
	if len(values) == 0 {
		return nil, nil
	}

	bar := chart.BarChart{
		Width:    720,
		Height:   400,
		BarWidth: 40,
		Bars:     values,
	}

	var buf bytes.Buffer
	if err := bar.Render(chart.PNG, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
