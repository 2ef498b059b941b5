package config

// DefaultCapacityPerVehicle is the seating capacity of the reference minibus.
const DefaultCapacityPerVehicle = 14

// AnalysisConfig holds the shared analysis settings.
type AnalysisConfig struct {
	// CapacityPerVehicle applies when the dataset does not carry its own.
	CapacityPerVehicle int    `json:"capacity_per_vehicle"`
	// VehicleNoun names vehicles in suggestion texts.
	VehicleNoun        string `json:"vehicle_noun"`
	// RefreshSeconds re-analyzes the configured source on this period while
	// serving. 0 keeps the report from startup until an explicit refresh.
	RefreshSeconds     int    `json:"refresh_seconds" validate:"gte=0"`
}

// SetDefaults applies sane defaults.
func (c *AnalysisConfig) SetDefaults() {
	if c.VehicleNoun == "" {
		c.VehicleNoun = "vehicles"
	}
}
