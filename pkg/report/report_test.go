package report

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/model"
)

func sampleReport(t *testing.T) gap.Report {
	t.Helper()
	routes, err := gap.Analyzer{CapacityPerVehicle: 14, Noun: "matatus"}.Analyze([]model.RouteRecord{
		{RouteName: "CBD-Rongai", PassengerDemand: 500, VehiclesAssigned: 20},
		{RouteName: "CBD-Thika", PassengerDemand: 300, VehiclesAssigned: 30},
		{RouteName: "CBD-Kikuyu", PassengerDemand: 280, VehiclesAssigned: 20},
	})
	require.NoError(t, err)
	r := gap.NewReport(routes, 14)
	r.RunID = "run-42"
	r.GeneratedAt = time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	r.Source = "synthetic(seed=42)"
	return r
}

func TestDemandCapacityChart(t *testing.T) {
	report := sampleReport(t)
	bar := DemandCapacityChart("Demand vs Capacity", report.Routes)
	require.Len(t, bar.MultiSeries, 2)
	assert.Equal(t, DemandSeries, bar.MultiSeries[0].Name)
	assert.Equal(t, CapacitySeries, bar.MultiSeries[1].Name)
	require.NotEmpty(t, bar.XAxisList)
	require.NotNil(t, bar.XAxisList[0].AxisLabel)
	assert.EqualValues(t, 30, bar.XAxisList[0].AxisLabel.Rotate)

	var buf bytes.Buffer
	require.NoError(t, WriteChart(&buf, "Demand vs Capacity", report.Routes))
	html := buf.String()
	assert.Contains(t, html, "CBD-Rongai")
	assert.Contains(t, html, DemandSeries)
}

func TestWritePage(t *testing.T) {
	report := sampleReport(t)
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, Page{
		Title:       "Matatu Demand vs Supply Analysis",
		Description: "Nairobi routes",
		Report:      &report,
		ChartURL:    "chart.html",
		CSVURL:      "matatu_analysis.csv",
		CSVName:     "matatu_analysis.csv",
	}))
	html := buf.String()
	assert.Contains(t, html, "<title>Matatu Demand vs Supply Analysis</title>")
	assert.Contains(t, html, "run-42")
	assert.Contains(t, html, "Add 16 matatus to CBD-Rongai (shortage of 220 seats)")
	assert.Contains(t, html, "Reallocate 8 matatus from CBD-Thika (excess capacity)")
	assert.Contains(t, html, "CBD-Kikuyu is balanced")
	assert.Contains(t, html, "Move 8 from CBD-Thika to CBD-Rongai")
	assert.Contains(t, html, `src="chart.html"`)
	assert.Contains(t, html, `href="matatu_analysis.csv"`)
	assert.NotContains(t, html, "Analysis failed")
}

func TestWritePageError(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WritePage(&buf, Page{
		Title:    "Report",
		Err:      fmt.Errorf("route <b>: %w", gap.ErrInvalidRecord),
		ErrKind:  "invalid_record",
		ChartURL: "chart.html",
	}))
	html := buf.String()
	assert.Contains(t, html, "Analysis failed")
	assert.Contains(t, html, "invalid_record")
	assert.Contains(t, html, "route &lt;b&gt;")
	assert.NotContains(t, html, "<table>")
	assert.NotContains(t, html, "<iframe")
}
