// Package infra holds the technical adapters behind the core interfaces:
// route sources, metrics sinks, the MQTT publisher, logging and error
// monitoring. Nothing in core depends on these packages.
package infra
