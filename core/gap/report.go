package gap

import (
	"time"

	"github.com/kilianp07/routegap/core/model"
)

// Report is the complete result of one analysis run.
type Report struct {
	RunID              string                `json:"run_id"`
	GeneratedAt        time.Time             `json:"generated_at"`
	Source             string                `json:"source,omitempty"`
	CapacityPerVehicle int                   `json:"capacity_per_vehicle"`
	Routes             []model.AnalyzedRoute `json:"routes"`
	Summary            Summary               `json:"summary"`
	Plan               Plan                  `json:"plan"`
}

// NewReport assembles the summary and reallocation plan of analyzed routes.
// Run metadata is left for the caller to fill in.
func NewReport(routes []model.AnalyzedRoute, capacityPerVehicle int) Report {
	return Report{
		CapacityPerVehicle: capacityPerVehicle,
		Routes:             routes,
		Summary:            Summarize(routes),
		Plan:               PlanReallocation(routes),
	}
}
