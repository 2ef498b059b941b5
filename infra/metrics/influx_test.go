package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/routegap/core/factory"
	coremetrics "github.com/kilianp07/routegap/core/metrics"
)

type captured struct {
	mu     sync.Mutex
	bodies []string
}

func (c *captured) server(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		c.mu.Lock()
		c.bodies = append(c.bodies, strings.TrimSpace(string(data)))
		c.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestInfluxSink_RecordAnalysis(t *testing.T) {
	var c captured
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()

	ev := sampleEvent(t)
	require.NoError(t, sink.RecordAnalysis(ev))
	require.Len(t, c.bodies, 1)

	lines := strings.Split(c.bodies[0], "\n")
	require.Len(t, lines, 3)
	p := write.NewPointWithMeasurement("route_analysis").
		AddTag("route", "A").
		AddTag("action", "add").
		AddTag("run_id", "run-1").
		AddField("passenger_demand", 500).
		AddField("vehicles_assigned", 20).
		AddField("total_capacity", 280).
		AddField("gap", 220).
		AddField("vehicles_suggested", 16).
		SetTime(ev.Report.GeneratedAt)
	assert.Equal(t, strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)), lines[0])
	assert.True(t, strings.HasPrefix(lines[2], "analysis_summary,"), lines[2])
	assert.Contains(t, lines[2], "net_gap=100i")
}

func TestInfluxSink_RecordFailure(t *testing.T) {
	var c captured
	srv := c.server(t)
	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()

	now := time.Now()
	ev := coremetrics.FailureEvent{RunID: "r", Source: "file", Kind: "invalid_record", Error: "bad", Time: now}
	require.NoError(t, sink.RecordFailure(ev))
	p := write.NewPointWithMeasurement("analysis_failure").
		AddTag("kind", "invalid_record").
		AddTag("source", "file").
		AddField("run_id", "r").
		AddField("error", "bad").
		SetTime(now)
	require.Len(t, c.bodies, 1)
	assert.Equal(t, strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond)), c.bodies[0])
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	_, ok := sink.(*InfluxSink)
	assert.False(t, ok, "expected NopSink on failing health check")
	assert.True(t, called, "health endpoint not called")
}

func TestFactoryBuiltins(t *testing.T) {
	s, err := coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, coremetrics.NopSink{}, s)

	s, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "prometheus"}, {Type: "nop"}})
	require.NoError(t, err)
	assert.IsType(t, &coremetrics.MultiSink{}, s)

	_, err = coremetrics.NewMetricsSink([]factory.ModuleConfig{{Type: "influx", Conf: map[string]any{"token": "x"}}})
	assert.Error(t, err)
}
