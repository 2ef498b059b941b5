// Package export writes analysis results in portable formats.
package export

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"strconv"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/model"
)

// CSVHeader lists the columns written by WriteCSV.
var CSVHeader = []string{"route", "passenger_demand", "vehicles_assigned", "total_capacity", "gap", "suggestion"}

// WriteJSON writes the full report to w as indented JSON.
func WriteJSON(w io.Writer, report gap.Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

// WriteCSV writes one row per analyzed route, in input order.
func WriteCSV(w io.Writer, routes []model.AnalyzedRoute) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return err
	}
	for _, r := range routes {
		rec := []string{
			r.RouteName,
			strconv.Itoa(r.PassengerDemand),
			strconv.Itoa(r.VehiclesAssigned),
			strconv.Itoa(r.TotalCapacity),
			strconv.Itoa(r.Gap),
			r.Suggestion.Text,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
