package metrics

import "github.com/kilianp07/routegap/core/factory"

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks" validate:"dive"`
	// PrometheusAddress is where /metrics is served, e.g. ":9090". Empty
	// disables the endpoint.
	PrometheusAddress string `json:"prometheus_address"`
}
