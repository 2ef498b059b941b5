package gap

import (
	"gonum.org/v1/gonum/stat"

	"github.com/kilianp07/routegap/core/model"
)

// Summary aggregates analyzed routes into fleet-wide figures.
type Summary struct {
	Routes         int `json:"routes"`
	TotalDemand    int `json:"total_demand"`
	TotalVehicles  int `json:"total_vehicles"`
	TotalCapacity  int `json:"total_capacity"`
	NetGap         int `json:"net_gap"`
	ShortageRoutes int `json:"shortage_routes"`
	SurplusRoutes  int `json:"surplus_routes"`
	BalancedRoutes int `json:"balanced_routes"`
	VehiclesNeeded int `json:"vehicles_needed"`
	VehiclesExcess int `json:"vehicles_excess"`
	// MeanGap and GapStdDev are 0 when there are too few routes to define them.
	MeanGap   float64 `json:"mean_gap"`
	GapStdDev float64 `json:"gap_std_dev"`
	// Utilization is total demand over total capacity, 0 without capacity.
	Utilization float64 `json:"utilization"`
}

// Summarize computes the Summary of routes.
func Summarize(routes []model.AnalyzedRoute) Summary {
	s := Summary{Routes: len(routes)}
	gaps := make([]float64, len(routes))
	for i, r := range routes {
		s.TotalDemand += r.PassengerDemand
		s.TotalVehicles += r.VehiclesAssigned
		s.TotalCapacity += r.TotalCapacity
		gaps[i] = float64(r.Gap)
		switch r.Suggestion.Action {
		case model.ActionAdd:
			s.ShortageRoutes++
			s.VehiclesNeeded += r.Suggestion.Vehicles
		case model.ActionReallocate:
			s.SurplusRoutes++
			s.VehiclesExcess += r.Suggestion.Vehicles
		default:
			s.BalancedRoutes++
		}
	}
	s.NetGap = s.TotalDemand - s.TotalCapacity
	if len(gaps) > 0 {
		s.MeanGap = stat.Mean(gaps, nil)
	}
	if len(gaps) > 1 {
		s.GapStdDev = stat.StdDev(gaps, nil)
	}
	if s.TotalCapacity > 0 {
		s.Utilization = float64(s.TotalDemand) / float64(s.TotalCapacity)
	}
	return s
}
