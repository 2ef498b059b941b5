// Package report renders analysis results as an HTML page and chart.
package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/routegap/core/model"
)

// Series names of the demand/capacity chart.
const (
	DemandSeries   = "Passenger Demand"
	CapacitySeries = "Total Capacity"
)

// DemandCapacityChart builds a grouped bar chart of passenger demand against
// total capacity, one category per route in input order.
func DemandCapacityChart(title string, routes []model.AnalyzedRoute) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: title, Width: "960px", Height: "520px"}),
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithTooltipOpts(opts.Tooltip{Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Route", AxisLabel: &opts.AxisLabel{Rotate: 30}}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Passengers / Seats"}),
	)

	names := make([]string, 0, len(routes))
	demand := make([]opts.BarData, 0, len(routes))
	capacity := make([]opts.BarData, 0, len(routes))
	for _, r := range routes {
		names = append(names, r.RouteName)
		demand = append(demand, opts.BarData{Value: r.PassengerDemand})
		capacity = append(capacity, opts.BarData{Value: r.TotalCapacity})
	}
	bar.SetXAxis(names).
		AddSeries(DemandSeries, demand).
		AddSeries(CapacitySeries, capacity)
	return bar
}

// WriteChart renders the chart as a standalone HTML document.
func WriteChart(w io.Writer, title string, routes []model.AnalyzedRoute) error {
	if err := DemandCapacityChart(title, routes).Render(w); err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	return nil
}
