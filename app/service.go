package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kilianp07/routegap/api/analysis"
	"github.com/kilianp07/routegap/config"
	"github.com/kilianp07/routegap/core/gap"
	"github.com/kilianp07/routegap/core/logger"
	coremetrics "github.com/kilianp07/routegap/core/metrics"
	coremon "github.com/kilianp07/routegap/core/monitoring"
	coremqtt "github.com/kilianp07/routegap/core/mqtt"
	"github.com/kilianp07/routegap/core/model"
	"github.com/kilianp07/routegap/core/source"
	infralog "github.com/kilianp07/routegap/infra/logger"
	"github.com/kilianp07/routegap/infra/metrics"
	"github.com/kilianp07/routegap/infra/monitoring"
	"github.com/kilianp07/routegap/infra/mqtt"
	_ "github.com/kilianp07/routegap/infra/source" // registers built-in sources
	"github.com/kilianp07/routegap/internal/eventbus"
)

// eventBuffer bounds the analyses queued per subscriber.
const eventBuffer = 32

// AdHocSource names datasets posted directly to the service.
const AdHocSource = "request"

// Service loads route data, runs the gap analysis and fans successful runs
// out to the metrics sinks and the MQTT publisher.
type Service struct {
	cfg       *config.Config
	src       source.Source
	analyzer  gap.Analyzer
	sink      coremetrics.MetricsSink
	failures  coremetrics.FailureRecorder
	publisher coremqtt.Publisher
	mon       coremon.Monitor
	bus       *eventbus.Bus[coremetrics.AnalysisEvent]
	log       logger.Logger
	now       func() time.Time
	closeOnce sync.Once

	// runMu serializes analyses of the configured source.
	runMu  sync.Mutex
	lastMu sync.RWMutex
	last   *outcome
}

// outcome is the result of the latest analysis of the configured source.
type outcome struct {
	rep gap.Report
	err error
}

// Deps replaces the collaborators New would build from configuration.
// Nil fields fall back to no-op implementations.
type Deps struct {
	Source    source.Source
	Sink      coremetrics.MetricsSink
	Publisher coremqtt.Publisher
	Monitor   coremon.Monitor
	Logger    logger.Logger
	Now       func() time.Time
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	src, err := source.New(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("source %q: %w", cfg.Source.Type, err)
	}
	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics sink: %w", err)
	}
	var pub coremqtt.Publisher = coremqtt.NopPublisher{}
	if cfg.MQTT.Enabled() {
		p, err := mqtt.NewPahoPublisher(cfg.MQTT, mon)
		if err != nil {
			coremetrics.CloseSink(sink)
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
		pub = p
	}
	return NewWithDeps(cfg, Deps{
		Source:    src,
		Sink:      sink,
		Publisher: pub,
		Monitor:   mon,
		Logger:    infralog.New("service"),
	}), nil
}

// NewWithDeps creates a Service around the given collaborators.
func NewWithDeps(cfg *config.Config, d Deps) *Service {
	s := &Service{
		cfg: cfg,
		src: d.Source,
		analyzer: gap.Analyzer{
			CapacityPerVehicle: cfg.Analysis.CapacityPerVehicle,
			Noun:               cfg.Analysis.VehicleNoun,
		},
		sink:      d.Sink,
		publisher: d.Publisher,
		mon:       coremon.OrNop(d.Monitor),
		log:       d.Logger,
		now:       d.Now,
		bus:       eventbus.New[coremetrics.AnalysisEvent](eventBuffer),
	}
	if s.src == nil {
		s.src = source.Static{}
	}
	if s.sink == nil {
		s.sink = coremetrics.NopSink{}
	}
	if s.publisher == nil {
		s.publisher = coremqtt.NopPublisher{}
	}
	if s.log == nil {
		s.log = infralog.NopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.failures = coremetrics.AsFailureRecorder(s.sink)

	s.bus.Handle(func(ev coremetrics.AnalysisEvent) {
		if err := s.sink.RecordAnalysis(ev); err != nil {
			s.log.Warnf("record analysis %s: %v", ev.Report.RunID, err)
		}
	})
	s.bus.Handle(func(ev coremetrics.AnalysisEvent) {
		if err := s.publisher.PublishAnalysis(ev); err != nil {
			s.log.Warnf("publish analysis %s: %v", ev.Report.RunID, err)
		}
	})
	return s
}

// Analyze loads the configured source and analyzes it. Successful runs are
// published to the subscribers; failed runs are recorded and reported to the
// monitor. Analyzer errors are returned unchanged. The outcome becomes the
// one returned by Latest.
func (s *Service) Analyze(ctx context.Context) (gap.Report, error) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	return s.run(ctx)
}

// Latest returns the outcome of the most recent analysis of the configured
// source, running one first if none has completed yet.
func (s *Service) Latest(ctx context.Context) (gap.Report, error) {
	if o := s.outcome(); o != nil {
		return o.rep, o.err
	}
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if o := s.outcome(); o != nil {
		return o.rep, o.err
	}
	return s.run(ctx)
}

func (s *Service) outcome() *outcome {
	s.lastMu.RLock()
	defer s.lastMu.RUnlock()
	return s.last
}

// run analyzes the configured source. Cancelled runs leave the previous
// outcome in place. Callers hold runMu.
func (s *Service) run(ctx context.Context) (gap.Report, error) {
	rep, err := s.analyzeSource(ctx)
	if err != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
		return rep, err
	}
	s.lastMu.Lock()
	s.last = &outcome{rep: rep, err: err}
	s.lastMu.Unlock()
	return rep, err
}

func (s *Service) analyzeSource(ctx context.Context) (gap.Report, error) {
	runID := uuid.NewString()
	start := s.now()
	ds, err := s.src.Load(ctx)
	if err != nil {
		err = fmt.Errorf("load routes: %w", err)
		s.fail(runID, "", "source", err)
		return gap.Report{}, err
	}
	rep, err := s.analyze(ds, runID, start)
	if err != nil {
		s.fail(runID, ds.Name, gap.Kind(err), err)
		return gap.Report{}, err
	}
	elapsed := s.now().Sub(start)
	s.bus.Publish(coremetrics.AnalysisEvent{Report: rep, Duration: elapsed})
	s.log.Infow("analysis complete", map[string]any{
		"run_id":   rep.RunID,
		"source":   rep.Source,
		"routes":   rep.Summary.Routes,
		"net_gap":  rep.Summary.NetGap,
		"duration": elapsed.String(),
	})
	return rep, nil
}

// AnalyzeDataset analyzes a dataset supplied by the caller. Ad-hoc runs are
// not published, so metrics keep describing the configured network.
func (s *Service) AnalyzeDataset(ctx context.Context, ds model.Dataset) (gap.Report, error) {
	if err := ctx.Err(); err != nil {
		return gap.Report{}, err
	}
	if ds.Name == "" {
		ds.Name = AdHocSource
	}
	rep, err := s.analyze(ds, uuid.NewString(), s.now())
	if err != nil {
		s.log.Debugf("ad-hoc analysis rejected: %v", err)
		return gap.Report{}, err
	}
	return rep, nil
}

// analyze uses the dataset capacity when it carries one and the configured
// capacity otherwise.
func (s *Service) analyze(ds model.Dataset, runID string, at time.Time) (gap.Report, error) {
	a := s.analyzer
	if ds.CapacityPerVehicle != 0 {
		a.CapacityPerVehicle = ds.CapacityPerVehicle
	}
	routes, err := a.Analyze(ds.Records)
	if err != nil {
		return gap.Report{}, err
	}
	rep := gap.NewReport(routes, a.CapacityPerVehicle)
	rep.RunID = runID
	rep.GeneratedAt = at.UTC()
	rep.Source = ds.Name
	return rep, nil
}

func (s *Service) fail(runID, src, kind string, err error) {
	s.log.Errorf("analysis %s failed: %v", runID, err)
	ev := coremetrics.FailureEvent{
		RunID:  runID,
		Source: src,
		Kind:   kind,
		Error:  err.Error(),
		Time:   s.now().UTC(),
	}
	if rerr := s.failures.RecordFailure(ev); rerr != nil {
		s.log.Warnf("record failure %s: %v", runID, rerr)
	}
	s.mon.CaptureException(err, map[string]string{"kind": kind, "run_id": runID})
}

// Handler returns the HTTP surface backed by this service.
func (s *Service) Handler() http.Handler {
	return analysis.NewRouter(s, analysis.Options{
		Title:          s.cfg.Report.Title,
		Description:    s.cfg.Report.Description,
		CSVFilename:    s.cfg.Report.CSVFilename,
		AllowedOrigins: s.cfg.Server.AllowedOrigins,
	}, infralog.New("http"))
}

// Run serves the HTTP surface, and the Prometheus endpoint when configured,
// until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	defer s.mon.Recover()
	if _, err := s.Analyze(ctx); err != nil {
		s.log.Warnf("initial analysis failed: %v", err)
	}
	if sec := s.cfg.Analysis.RefreshSeconds; sec > 0 {
		go s.refreshEvery(ctx, time.Duration(sec)*time.Second)
	}
	if addr := s.cfg.Metrics.PrometheusAddress; addr != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, addr); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}

	srv := &http.Server{Addr: s.cfg.Server.Address, Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Infof("serving report on %s", s.cfg.Server.Address)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown: %w", err)
		}
		return nil
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server: %w", err)
	}
}

// refreshEvery re-analyzes the configured source until ctx is done.
func (s *Service) refreshEvery(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := s.Analyze(ctx); err != nil {
				s.log.Warnf("scheduled analysis failed: %v", err)
			}
		}
	}
}

// Close waits for queued analyses to reach the subscribers, then releases
// the publisher and sinks.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.bus.Close()
		s.publisher.Close()
		coremetrics.CloseSink(s.sink)
		s.mon.Flush(2 * time.Second)
	})
	return nil
}
