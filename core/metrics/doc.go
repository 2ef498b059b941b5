// Package metrics defines the sinks that record analysis runs. Concrete sinks
// (Prometheus, InfluxDB) live in infra/metrics and register themselves with
// RegisterMetricsSink; NewMetricsSink builds a MultiSink automatically when
// several sinks are configured.
package metrics
