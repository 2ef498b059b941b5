package scenarios

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/routegap/app"
	"github.com/kilianp07/routegap/config"
	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/model"
	"github.com/kilianp07/routegap/core/source"
	"github.com/kilianp07/routegap/infra/logger"
	"github.com/kilianp07/routegap/infra/metrics"
)

// RunScenario analyzes the scenario's dataset through an app.Service backed
// by a private Prometheus registry and checks the expected outcome.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()
	reg := prometheus.NewRegistry()
	sink, err := metrics.NewPromSinkWithRegistry(reg)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.Analysis.CapacityPerVehicle = sc.CapacityPerVehicle
	if sc.Noun != "" {
		cfg.Analysis.VehicleNoun = sc.Noun
	}
	svc := app.NewWithDeps(cfg, app.Deps{
		Source: source.Static(model.Dataset{Name: sc.Name, Records: sc.Routes}),
		Sink:   sink,
		Logger: logger.NopLogger{},
	})
	rep, err := svc.Analyze(context.Background())
	require.NoError(t, svc.Close())

	if sc.Expected.ErrorKind != "" {
		require.Error(t, err)
		assert.Equal(t, sc.Expected.ErrorKind, gap.Kind(err))
		assert.Equal(t, 1.0, counterValue(t, reg, "analysis_runs_total", "status", sc.Expected.ErrorKind))
		assert.Zero(t, counterValue(t, reg, "analysis_runs_total", "status", "success"))
		return
	}
	require.NoError(t, err)
	require.Len(t, rep.Routes, len(sc.Expected.Routes))
	for i, want := range sc.Expected.Routes {
		got := rep.Routes[i]
		assert.Equal(t, want.Route, got.RouteName, "route %d", i)
		assert.Equal(t, want.TotalCapacity, got.TotalCapacity, want.Route)
		assert.Equal(t, want.Gap, got.Gap, want.Route)
		assert.Equal(t, want.Action, got.Suggestion.Action.String(), want.Route)
		assert.Equal(t, want.Vehicles, got.Suggestion.Vehicles, want.Route)
		if want.Text != "" {
			assert.Equal(t, want.Text, got.Suggestion.Text, want.Route)
		}
		assert.Equal(t, float64(want.Gap), gaugeValue(t, reg, "route_capacity_gap_seats", want.Route), want.Route)
	}
	transfers := sc.Expected.Transfers
	if transfers == nil {
		transfers = []gap.Transfer{}
	}
	assert.Equal(t, transfers, rep.Plan.Transfers)
	assert.Equal(t, sc.Expected.Unmet, rep.Plan.Unmet)
	assert.Equal(t, sc.Expected.Idle, rep.Plan.Idle)
	assert.Equal(t, 1.0, counterValue(t, reg, "analysis_runs_total", "status", "success"))
}

func find(t *testing.T, reg *prometheus.Registry, name, label, value string) *dto.Metric {
	t.Helper()
	families, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if lp.GetName() == label && lp.GetValue() == value {
					return m
				}
			}
		}
	}
	return nil
}

func gaugeValue(t *testing.T, reg *prometheus.Registry, name, route string) float64 {
	t.Helper()
	m := find(t, reg, name, "route", route)
	require.NotNil(t, m, "%s{route=%q} not found", name, route)
	return m.GetGauge().GetValue()
}

func counterValue(t *testing.T, reg *prometheus.Registry, name, label, value string) float64 {
	t.Helper()
	if m := find(t, reg, name, label, value); m != nil {
		return m.GetCounter().GetValue()
	}
	return 0
}
