package e2e

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tc "github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/kilianp07/routegap/app"
	"github.com/kilianp07/routegap/config"
	"github.com/kilianp07/routegap/core/factory"
	"github.com/kilianp07/routegap/infra/mqtt"
)

const (
	influxOrg    = "e2e_org"
	influxBucket = "e2e_bucket"
	influxToken  = "e2e-token"
)

func requireDocker(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("docker"); err != nil {
		t.Skipf("docker not installed: %v", err)
	}
}

// startInflux starts an InfluxDB 2.7 container initialised with the e2e
// organisation, bucket and token.
func startInflux(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "influxdb:2.7",
		ExposedPorts: []string{"8086/tcp"},
		Env: map[string]string{
			"DOCKER_INFLUXDB_INIT_MODE":        "setup",
			"DOCKER_INFLUXDB_INIT_USERNAME":    "e2e",
			"DOCKER_INFLUXDB_INIT_PASSWORD":    "e2e-password",
			"DOCKER_INFLUXDB_INIT_ORG":         influxOrg,
			"DOCKER_INFLUXDB_INIT_BUCKET":      influxBucket,
			"DOCKER_INFLUXDB_INIT_ADMIN_TOKEN": influxToken,
		},
		WaitingFor: wait.ForHTTP("/health").WithPort("8086/tcp").WithStartupTimeout(60 * time.Second),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start influx container: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "8086")
	require.NoError(t, err)
	return fmt.Sprintf("http://%s:%s", host, port.Port())
}

// startMosquitto spins up an anonymous Mosquitto broker.
func startMosquitto(ctx context.Context, t *testing.T) string {
	t.Helper()
	req := tc.ContainerRequest{
		Image:        "eclipse-mosquitto:2.0",
		ExposedPorts: []string{"1883/tcp"},
		Cmd:          []string{"mosquitto", "-c", "/mosquitto-no-auth.conf"},
		WaitingFor:   wait.ForListeningPort("1883/tcp"),
	}
	cont, err := tc.GenericContainer(ctx, tc.GenericContainerRequest{ContainerRequest: req, Started: true})
	if err != nil {
		t.Skipf("unable to start mosquitto: %v", err)
	}
	t.Cleanup(func() { _ = cont.Terminate(context.Background()) })
	host, err := cont.Host(ctx)
	require.NoError(t, err)
	port, err := cont.MappedPort(ctx, "1883")
	require.NoError(t, err)
	return fmt.Sprintf("tcp://%s:%s", host, port.Port())
}

func subscribe(t *testing.T, broker, topic string) (<-chan paho.Message, func()) {
	t.Helper()
	msgs := make(chan paho.Message, 32)
	cli := paho.NewClient(paho.NewClientOptions().AddBroker(broker).SetClientID("e2e-sub"))
	var err error
	for i := 0; i < 5; i++ {
		tok := cli.Connect()
		tok.Wait()
		if err = tok.Error(); err == nil {
			break
		}
		time.Sleep(time.Duration(i+1) * 100 * time.Millisecond)
	}
	if err != nil {
		t.Skipf("mosquitto not ready: %v", err)
	}
	tok := cli.Subscribe(topic, 1, func(_ paho.Client, m paho.Message) { msgs <- m })
	tok.Wait()
	require.NoError(t, tok.Error())
	return msgs, func() { cli.Disconnect(100) }
}

func TestAnalysisPublishedToMQTT(t *testing.T) {
	requireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	broker := startMosquitto(ctx, t)

	msgs, stop := subscribe(t, broker, "routegap/e2e/#")
	defer stop()

	cfg := config.Default()
	cfg.Analysis.VehicleNoun = "matatus"
	cfg.MQTT = mqtt.Config{Broker: broker, ClientID: "routegap-e2e", TopicPrefix: "routegap/e2e", QoS: 1}
	cfg.MQTT.SetDefaults()
	svc, err := app.New(cfg)
	require.NoError(t, err)

	rep, err := svc.Analyze(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	got := map[string]map[string]any{}
	deadline := time.After(10 * time.Second)
	for len(got) < len(rep.Routes)+1 {
		select {
		case m := <-msgs:
			var body map[string]any
			require.NoError(t, json.Unmarshal(m.Payload(), &body))
			got[m.Topic()] = body
		case <-deadline:
			t.Fatalf("received %d of %d messages", len(got), len(rep.Routes)+1)
		}
	}

	summary, ok := got["routegap/e2e/summary"]
	require.True(t, ok)
	assert.Equal(t, rep.RunID, summary["run_id"])
	for _, r := range rep.Routes {
		body, ok := got["routegap/e2e/routes/"+mqtt.TopicSegment(r.RouteName)]
		require.True(t, ok, r.RouteName)
		assert.Equal(t, rep.RunID, body["run_id"])
		assert.NotEmpty(t, body["message_id"])
	}
}

func TestAnalysisWrittenToInflux(t *testing.T) {
	requireDocker(t)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	url := startInflux(ctx, t)

	cfg := config.Default()
	cfg.Metrics.Sinks = []factory.ModuleConfig{{
		Type: "influx",
		Conf: map[string]any{"url": url, "token": influxToken, "org": influxOrg, "bucket": influxBucket},
	}}
	svc, err := app.New(cfg)
	require.NoError(t, err)
	rep, err := svc.Analyze(ctx)
	require.NoError(t, err)
	require.NoError(t, svc.Close())

	reader := newInfluxReader(url, influxOrg, influxToken)
	defer reader.Close()
	flux := strings.Join([]string{
		fmt.Sprintf(`from(bucket:%q)`, influxBucket),
		`range(start: -1h)`,
		`filter(fn: (r) => r._measurement == "route_analysis" and r._field == "gap")`,
		fmt.Sprintf(`filter(fn: (r) => r.run_id == %q)`, rep.RunID),
	}, " |> ")
	n, err := reader.count(ctx, flux)
	require.NoError(t, err)
	assert.Equal(t, len(rep.Routes), n)
}
