package model

// RouteRecord is the per-route input of an analysis run.
type RouteRecord struct {
	RouteName        string `json:"route_name" yaml:"route_name"`
	PassengerDemand  int    `json:"passenger_demand" yaml:"passenger_demand"` // passengers per unit time
	VehiclesAssigned int    `json:"vehicles_assigned" yaml:"vehicles_assigned"`
}

// Dataset is an ordered set of route records sharing one seating capacity.
type Dataset struct {
	Name string `json:"name,omitempty" yaml:"name"`
	// CapacityPerVehicle is the seating capacity of every vehicle. Zero means
	// the caller should fall back to the configured capacity.
	CapacityPerVehicle int           `json:"capacity_per_vehicle" yaml:"capacity_per_vehicle"`
	Records            []RouteRecord `json:"routes" yaml:"routes"`
}

// Names returns the route names in dataset order.
func (d Dataset) Names() []string {
	names := make([]string, len(d.Records))
	for i, r := range d.Records {
		names[i] = r.RouteName
	}
	return names
}

// AnalyzedRoute is a RouteRecord enriched with its derived fields.
type AnalyzedRoute struct {
	RouteRecord
	TotalCapacity int        `json:"total_capacity"`
	Gap           int        `json:"gap"` // positive = shortage, negative = surplus
	Suggestion    Suggestion `json:"suggestion"`
}

// Suggestion is the reallocation advice derived from a route's gap.
type Suggestion struct {
	Action   Action `json:"action"`
	Vehicles int    `json:"vehicles"`
	Text     string `json:"text"`
}
