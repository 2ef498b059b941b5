// Package scenarios replays recorded analysis scenarios through the service
// and checks the reports, metrics and failures they produce.
package scenarios

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/model"
)

// ExpectedRoute is the outcome expected for one route, matched by name.
type ExpectedRoute struct {
	Route         string `yaml:"route"`
	TotalCapacity int    `yaml:"total_capacity"`
	Gap           int    `yaml:"gap"`
	Action        string `yaml:"action"`
	Vehicles      int    `yaml:"vehicles"`
	Text          string `yaml:"text,omitempty"`
}

// Expected describes the outcome of a scenario. A non-empty ErrorKind means
// the run must fail with that gap.Kind and produce no report.
type Expected struct {
	ErrorKind string          `yaml:"error_kind,omitempty"`
	Routes    []ExpectedRoute `yaml:"routes"`
	Transfers []gap.Transfer  `yaml:"transfers"`
	Unmet     int             `yaml:"unmet"`
	Idle      int             `yaml:"idle"`
}

// Scenario is one recorded dataset together with its expected analysis.
type Scenario struct {
	Name               string              `yaml:"name"`
	Description        string              `yaml:"description,omitempty"`
	CapacityPerVehicle int                 `yaml:"capacity_per_vehicle"`
	Noun               string              `yaml:"noun,omitempty"`
	Routes             []model.RouteRecord `yaml:"routes"`
	Expected           Expected            `yaml:"expected"`
}

// Load reads a scenario file.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if sc.Name == "" {
		sc.Name = filepath.Base(path)
	}
	return &sc, nil
}

// LoadDir reads every *.yaml scenario in dir, sorted by file name.
func LoadDir(dir string) ([]*Scenario, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.yaml"))
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)
	out := make([]*Scenario, 0, len(paths))
	for _, p := range paths {
		sc, err := Load(p)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, nil
}
