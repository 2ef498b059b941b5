package gap

import (
	"errors"
	"fmt"
	"math"

	"github.com/kilianp07/routegap/core/model"
)

// DefaultNoun is used in suggestion texts when no vehicle noun is set.
const DefaultNoun = "vehicles"

// Analyzer turns route records into analyzed routes.
type Analyzer struct {
	CapacityPerVehicle int
	// Noun names the vehicles in suggestion texts, e.g. "buses".
	Noun string
}

// Analyze runs the default Analyzer with the given seating capacity.
func Analyze(records []model.RouteRecord, capacityPerVehicle int) ([]model.AnalyzedRoute, error) {
	return Analyzer{CapacityPerVehicle: capacityPerVehicle}.Analyze(records)
}

// Analyze validates the whole batch and then computes the total capacity,
// gap and suggestion of every record. Output order matches input order.
// Any invalid record rejects the batch; all offending records are reported.
func (a Analyzer) Analyze(records []model.RouteRecord) ([]model.AnalyzedRoute, error) {
	if a.CapacityPerVehicle <= 0 {
		return nil, fmt.Errorf("%w: capacity per vehicle must be positive, got %d",
			ErrInvalidConfiguration, a.CapacityPerVehicle)
	}
	if err := validate(records, a.CapacityPerVehicle); err != nil {
		return nil, err
	}
	out := make([]model.AnalyzedRoute, len(records))
	for i, r := range records {
		out[i] = a.route(r)
	}
	return out, nil
}

// Validate checks every record and joins one *RecordError per problem.
func Validate(records []model.RouteRecord) error {
	return validate(records, 1)
}

// validate also rejects vehicle counts whose total capacity at the given
// seating capacity would not fit in an int.
func validate(records []model.RouteRecord, capacity int) error {
	var errs []error
	limit := math.MaxInt / capacity
	for i, r := range records {
		if r.RouteName == "" {
			errs = append(errs, &RecordError{Index: i, Field: "route_name"})
		}
		if r.PassengerDemand < 0 {
			errs = append(errs, &RecordError{Index: i, Route: r.RouteName, Field: "passenger_demand", Value: r.PassengerDemand})
		}
		if r.VehiclesAssigned < 0 {
			errs = append(errs, &RecordError{Index: i, Route: r.RouteName, Field: "vehicles_assigned", Value: r.VehiclesAssigned})
		} else if r.VehiclesAssigned > limit {
			errs = append(errs, &RecordError{
				Index: i, Route: r.RouteName, Field: "vehicles_assigned", Value: r.VehiclesAssigned, Overflow: true,
			})
		}
	}
	return errors.Join(errs...)
}

func (a Analyzer) route(r model.RouteRecord) model.AnalyzedRoute {
	total := r.VehiclesAssigned * a.CapacityPerVehicle
	gap := r.PassengerDemand - total
	return model.AnalyzedRoute{
		RouteRecord:   r,
		TotalCapacity: total,
		Gap:           gap,
		Suggestion:    a.Suggest(r.RouteName, gap),
	}
}

// Suggest derives the suggestion for a route with the given gap. Shortages
// round up to whole vehicles; surpluses round down so that a surplus smaller
// than one vehicle suggests moving none. CapacityPerVehicle must be positive.
func (a Analyzer) Suggest(route string, gap int) model.Suggestion {
	noun := a.Noun
	if noun == "" {
		noun = DefaultNoun
	}
	c := a.CapacityPerVehicle
	switch {
	case gap > 0:
		n := gap / c
		if gap%c != 0 {
			n++
		}
		return model.Suggestion{
			Action:   model.ActionAdd,
			Vehicles: n,
			Text:     fmt.Sprintf("Add %d %s to %s (shortage of %d seats)", n, noun, route, gap),
		}
	case gap < 0:
		n := -gap / c
		return model.Suggestion{
			Action:   model.ActionReallocate,
			Vehicles: n,
			Text:     fmt.Sprintf("Reallocate %d %s from %s (excess capacity)", n, noun, route),
		}
	default:
		return model.Suggestion{
			Action: model.ActionBalanced,
			Text:   fmt.Sprintf("%s is balanced", route),
		}
	}
}
