package mqtt

import coremetrics "github.com/kilianp07/routegap/core/metrics"

// Publisher pushes analysis results to a message broker.
type Publisher interface {
	// PublishAnalysis sends one message per route and a summary message.
	PublishAnalysis(ev coremetrics.AnalysisEvent) error
	Close()
}

// NopPublisher drops every message.
type NopPublisher struct{}

func (NopPublisher) PublishAnalysis(coremetrics.AnalysisEvent) error { return nil }
func (NopPublisher) Close()                                          {}
