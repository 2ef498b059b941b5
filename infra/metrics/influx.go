package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/routegap/core/metrics"
	"github.com/kilianp07/routegap/infra/logger"
)

// InfluxSink writes analysis runs to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordAnalysis writes one route_analysis point per route and one
// analysis_summary point, in a single request.
func (s *InfluxSink) RecordAnalysis(ev coremetrics.AnalysisEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, analysisPoints(ev)...)
}

func analysisPoints(ev coremetrics.AnalysisEvent) []*write.Point {
	rep := ev.Report
	points := make([]*write.Point, 0, len(rep.Routes)+1)
	for _, r := range rep.Routes {
		points = append(points, write.NewPointWithMeasurement("route_analysis").
			AddTag("route", r.RouteName).
			AddTag("action", r.Suggestion.Action.String()).
			AddTag("run_id", rep.RunID).
			AddField("passenger_demand", r.PassengerDemand).
			AddField("vehicles_assigned", r.VehiclesAssigned).
			AddField("total_capacity", r.TotalCapacity).
			AddField("gap", r.Gap).
			AddField("vehicles_suggested", r.Suggestion.Vehicles).
			SetTime(rep.GeneratedAt))
	}
	sum := rep.Summary
	points = append(points, write.NewPointWithMeasurement("analysis_summary").
		AddTag("run_id", rep.RunID).
		AddTag("source", rep.Source).
		AddField("routes", sum.Routes).
		AddField("net_gap", sum.NetGap).
		AddField("vehicles_needed", sum.VehiclesNeeded).
		AddField("vehicles_excess", sum.VehiclesExcess).
		AddField("utilization", round3(sum.Utilization)).
		AddField("duration_ms", round3(ev.Duration.Seconds()*1000)).
		SetTime(rep.GeneratedAt))
	return points
}

// RecordFailure writes an analysis_failure point.
func (s *InfluxSink) RecordFailure(ev coremetrics.FailureEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("analysis_failure").
		AddTag("kind", ev.Kind).
		AddTag("source", ev.Source).
		AddField("run_id", ev.RunID).
		AddField("error", ev.Error).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() { s.client.Close() }

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
