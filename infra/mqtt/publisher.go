package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/kilianp07/routegap/core/gap"
	coremetrics "github.com/kilianp07/routegap/core/metrics"
	"github.com/kilianp07/routegap/core/model"
	coremon "github.com/kilianp07/routegap/core/monitoring"
	coremqtt "github.com/kilianp07/routegap/core/mqtt"
	"github.com/kilianp07/routegap/infra/logger"
)

// RouteMessage is published on <prefix>/routes/<route>.
type RouteMessage struct {
	MessageID   string              `json:"message_id"`
	RunID       string              `json:"run_id"`
	GeneratedAt time.Time           `json:"generated_at"`
	Route       model.AnalyzedRoute `json:"route"`
}

// SummaryMessage is published on <prefix>/summary.
type SummaryMessage struct {
	MessageID          string      `json:"message_id"`
	RunID              string      `json:"run_id"`
	GeneratedAt        time.Time   `json:"generated_at"`
	Source             string      `json:"source,omitempty"`
	CapacityPerVehicle int         `json:"capacity_per_vehicle"`
	Summary            gap.Summary `json:"summary"`
	Plan               gap.Plan    `json:"plan"`
}

// PahoPublisher implements the core Publisher using Eclipse Paho.
type PahoPublisher struct {
	cli        pahoClient
	prefix     string
	qos        byte
	retain     bool
	maxRetries int
	backoff    time.Duration
	log        logger.Logger
	mon        coremon.Monitor
}

var _ coremqtt.Publisher = (*PahoPublisher)(nil)

// NewPahoPublisher connects to the broker described by cfg.
func NewPahoPublisher(cfg Config, mon coremon.Monitor) (*PahoPublisher, error) {
	cfg.SetDefaults()
	opts, err := NewClientOptions(cfg)
	if err != nil {
		return nil, err
	}
	log := logger.New("mqtt_publisher")
	opts.OnConnect = func(paho.Client) { log.Infof("MQTT connected to %s", cfg.Broker) }
	opts.OnConnectionLost = func(_ paho.Client, err error) { log.Errorf("connection lost: %v", err) }
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &PahoPublisher{
		cli:        c,
		prefix:     strings.TrimSuffix(cfg.TopicPrefix, "/"),
		qos:        cfg.QoS,
		retain:     cfg.Retain,
		maxRetries: cfg.MaxRetries,
		backoff:    time.Duration(cfg.BackoffMS) * time.Millisecond,
		log:        log,
		mon:        coremon.OrNop(mon),
	}, nil
}

// PublishAnalysis sends every route of the report, then the summary.
func (p *PahoPublisher) PublishAnalysis(ev coremetrics.AnalysisEvent) error {
	rep := ev.Report
	for _, r := range rep.Routes {
		msg := RouteMessage{MessageID: uuid.NewString(), RunID: rep.RunID, GeneratedAt: rep.GeneratedAt, Route: r}
		if err := p.publish(p.prefix+"/routes/"+TopicSegment(r.RouteName), msg); err != nil {
			p.mon.CaptureException(err, map[string]string{"module": "mqtt", "route": r.RouteName, "run_id": rep.RunID})
			return err
		}
	}
	msg := SummaryMessage{
		MessageID:          uuid.NewString(),
		RunID:              rep.RunID,
		GeneratedAt:        rep.GeneratedAt,
		Source:             rep.Source,
		CapacityPerVehicle: rep.CapacityPerVehicle,
		Summary:            rep.Summary,
		Plan:               rep.Plan,
	}
	if err := p.publish(p.prefix+"/summary", msg); err != nil {
		p.mon.CaptureException(err, map[string]string{"module": "mqtt", "run_id": rep.RunID})
		return err
	}
	return nil
}

func (p *PahoPublisher) publish(topic string, msg any) error {
	if !p.cli.IsConnected() {
		return coremqtt.ErrNotConnected
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		token := p.cli.Publish(topic, p.qos, p.retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Debugf("published %s", topic)
			return nil
		}
		p.log.Errorf("publish attempt %d to %s failed: %v", attempt+1, topic, publishErr)
		if attempt < p.maxRetries {
			time.Sleep(p.backoff * time.Duration(1<<attempt))
		}
	}
	return fmt.Errorf("publish %s: %w", topic, publishErr)
}

// Close gracefully closes the MQTT connection.
func (p *PahoPublisher) Close() {
	if p.cli != nil && p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}

// TopicSegment makes a route name safe to use as a single topic level.
func TopicSegment(name string) string {
	r := strings.NewReplacer("/", "_", "+", "_", "#", "_", " ", "_")
	return r.Replace(strings.TrimSpace(name))
}
