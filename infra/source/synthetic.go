package source

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/kilianp07/routegap/core/model"
)

// DefaultSeed reproduces the reference scenario.
const DefaultSeed = 42

// DefaultRoutes are the five corridors of the reference scenario.
var DefaultRoutes = []string{"CBD-Rongai", "CBD-Thika", "CBD-Kikuyu", "CBD-Eastlands", "CBD-Kasarani"}

// SyntheticConfig parametrises the synthetic generator. Ranges are half-open:
// [min, max).
type SyntheticConfig struct {
	// Seed of the generator. Unset selects DefaultSeed; 0 is a valid seed.
	Seed               *int64   `json:"seed"`
	Routes             []string `json:"routes"`
	DemandMin          int      `json:"demand_min"`
	DemandMax          int      `json:"demand_max"`
	VehiclesMin        int      `json:"vehicles_min"`
	VehiclesMax        int      `json:"vehicles_max"`
	CapacityPerVehicle int      `json:"capacity_per_vehicle"`
}

// SetDefaults fills unset fields with the reference scenario values.
func (c *SyntheticConfig) SetDefaults() {
	if c.Seed == nil {
		seed := int64(DefaultSeed)
		c.Seed = &seed
	}
	if len(c.Routes) == 0 {
		c.Routes = append([]string(nil), DefaultRoutes...)
	}
	if c.DemandMin == 0 && c.DemandMax == 0 {
		c.DemandMin, c.DemandMax = 200, 800
	}
	if c.VehiclesMin == 0 && c.VehiclesMax == 0 {
		c.VehiclesMin, c.VehiclesMax = 10, 40
	}
}

// Validate checks the ranges and route names.
func (c SyntheticConfig) Validate() error {
	if c.DemandMin < 0 || c.DemandMax <= c.DemandMin {
		return fmt.Errorf("synthetic: invalid demand range [%d, %d)", c.DemandMin, c.DemandMax)
	}
	if c.VehiclesMin < 0 || c.VehiclesMax <= c.VehiclesMin {
		return fmt.Errorf("synthetic: invalid vehicles range [%d, %d)", c.VehiclesMin, c.VehiclesMax)
	}
	if c.CapacityPerVehicle < 0 {
		return fmt.Errorf("synthetic: capacity_per_vehicle must not be negative")
	}
	return checkNames(c.Routes)
}

// Synthetic generates a reproducible dataset. Every Load starts from the
// configured seed, so repeated loads return identical records.
type Synthetic struct {
	cfg SyntheticConfig
}

// NewSynthetic applies defaults and validates cfg.
func NewSynthetic(cfg SyntheticConfig) (*Synthetic, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Synthetic{cfg: cfg}, nil
}

// Load draws every route's demand first, then every route's vehicle count.
func (s *Synthetic) Load(ctx context.Context) (model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return model.Dataset{}, err
	}
	rng := rand.New(rand.NewSource(*s.cfg.Seed))
	n := len(s.cfg.Routes)
	records := make([]model.RouteRecord, n)
	for i, name := range s.cfg.Routes {
		records[i] = model.RouteRecord{
			RouteName:       name,
			PassengerDemand: s.cfg.DemandMin + rng.Intn(s.cfg.DemandMax-s.cfg.DemandMin),
		}
	}
	for i := range records {
		records[i].VehiclesAssigned = s.cfg.VehiclesMin + rng.Intn(s.cfg.VehiclesMax-s.cfg.VehiclesMin)
	}
	return model.Dataset{
		Name:               fmt.Sprintf("synthetic(seed=%d)", *s.cfg.Seed),
		CapacityPerVehicle: s.cfg.CapacityPerVehicle,
		Records:            records,
	}, nil
}
