package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/routegap/core/metrics"
)

// PromSink exposes the latest analysis as Prometheus gauges.
type PromSink struct {
	demand    *prometheus.GaugeVec
	capacity  *prometheus.GaugeVec
	gap       *prometheus.GaugeVec
	suggested *prometheus.GaugeVec
	netGap    prometheus.Gauge
	runs      *prometheus.CounterVec
	duration  prometheus.Histogram
}

// NewPromSink registers analysis metrics on the default Prometheus registerer.
// The HTTP endpoint is started separately with StartPromServer.
func NewPromSink() (*PromSink, error) {
	return NewPromSinkWithRegistry(prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		demand: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "route_passenger_demand",
			Help: "Passenger demand per route in the latest analysis",
		}, []string{"route"}),
		capacity: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "route_total_capacity_seats",
			Help: "Seats assigned per route in the latest analysis",
		}, []string{"route"}),
		gap: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "route_capacity_gap_seats",
			Help: "Demand minus capacity per route; positive is a shortage",
		}, []string{"route"}),
		suggested: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "route_suggested_vehicles",
			Help: "Vehicles suggested to add or reallocate per route",
		}, []string{"route", "action"}),
		netGap: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "fleet_net_gap_seats",
			Help: "Sum of all route gaps in the latest analysis",
		}),
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "analysis_runs_total",
			Help: "Analysis runs by outcome",
		}, []string{"status"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "analysis_duration_seconds",
			Help:    "Time spent loading and analyzing a dataset",
			Buckets: prometheus.DefBuckets,
		}),
	}
	var err error
	if s.demand, err = register(reg, s.demand); err != nil {
		return nil, err
	}
	if s.capacity, err = register(reg, s.capacity); err != nil {
		return nil, err
	}
	if s.gap, err = register(reg, s.gap); err != nil {
		return nil, err
	}
	if s.suggested, err = register(reg, s.suggested); err != nil {
		return nil, err
	}
	if s.netGap, err = register(reg, s.netGap); err != nil {
		return nil, err
	}
	if s.runs, err = register(reg, s.runs); err != nil {
		return nil, err
	}
	if s.duration, err = register(reg, s.duration); err != nil {
		return nil, err
	}
	return s, nil
}

// register returns the already registered collector when c was registered
// before, so several sinks can share one registry.
func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// RecordAnalysis replaces the per-route gauges with the event's routes.
func (s *PromSink) RecordAnalysis(ev coremetrics.AnalysisEvent) error {
	s.demand.Reset()
	s.capacity.Reset()
	s.gap.Reset()
	s.suggested.Reset()
	for _, r := range ev.Report.Routes {
		s.demand.WithLabelValues(r.RouteName).Set(float64(r.PassengerDemand))
		s.capacity.WithLabelValues(r.RouteName).Set(float64(r.TotalCapacity))
		s.gap.WithLabelValues(r.RouteName).Set(float64(r.Gap))
		s.suggested.WithLabelValues(r.RouteName, r.Suggestion.Action.String()).Set(float64(r.Suggestion.Vehicles))
	}
	s.netGap.Set(float64(ev.Report.Summary.NetGap))
	s.runs.WithLabelValues("success").Inc()
	s.duration.Observe(ev.Duration.Seconds())
	return nil
}

// RecordFailure counts the failed run under its error kind.
func (s *PromSink) RecordFailure(ev coremetrics.FailureEvent) error {
	status := ev.Kind
	if status == "" {
		status = "error"
	}
	s.runs.WithLabelValues(status).Inc()
	return nil
}
