package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/routegap/core/factory"
	coresource "github.com/kilianp07/routegap/core/source"
)

func serve(t *testing.T, contentType, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if contentType != "" {
			w.Header().Set("Content-Type", contentType)
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPJSON(t *testing.T) {
	srv := serve(t, "application/json; charset=utf-8",
		`{"name":"planning","capacity_per_vehicle":14,"routes":[{"route_name":"A","passenger_demand":500,"vehicles_assigned":20},{"route_name":"B","passenger_demand":300,"vehicles_assigned":30}]}`)
	src, err := NewHTTP(HTTPConfig{URL: srv.URL + "/routes"})
	require.NoError(t, err)

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "planning", ds.Name)
	assert.Equal(t, 14, ds.CapacityPerVehicle)
	assert.Equal(t, want, ds.Records)
}

func TestHTTPCSVFromPath(t *testing.T) {
	srv := serve(t, "application/octet-stream", "route,demand,vehicles\nA,500,20\nB,300,30\n")
	src, err := NewHTTP(HTTPConfig{URL: srv.URL + "/export/routes.csv?day=mon"})
	require.NoError(t, err)

	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, ds.Records)
	assert.Equal(t, srv.URL+"/export/routes.csv?day=mon", ds.Name)
}

func TestHTTPExplicitFormat(t *testing.T) {
	srv := serve(t, "text/plain", "routes:\n  - route_name: A\n    passenger_demand: 500\n    vehicles_assigned: 20\n")
	src, err := NewHTTP(HTTPConfig{URL: srv.URL, Format: "yaml"})
	require.NoError(t, err)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want[:1], ds.Records)
}

func TestHTTPErrors(t *testing.T) {
	notFound := httptest.NewServer(http.NotFoundHandler())
	defer notFound.Close()
	src, err := NewHTTP(HTTPConfig{URL: notFound.URL + "/routes.json"})
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.ErrorContains(t, err, "404")

	bad := serve(t, "application/json", `{"routes":[{"route_name":"A","passenger_demand":"many"}]}`)
	src, err = NewHTTP(HTTPConfig{URL: bad.URL})
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, coresource.ErrMalformed)

	unknown := serve(t, "text/plain", "whatever")
	src, err = NewHTTP(HTTPConfig{URL: unknown.URL})
	require.NoError(t, err)
	_, err = src.Load(context.Background())
	assert.ErrorIs(t, err, coresource.ErrMalformed)
}

func TestHTTPConfigValidation(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{})
	assert.Error(t, err)
	_, err = NewHTTP(HTTPConfig{URL: "http://x/routes", Format: "xml"})
	assert.Error(t, err)
}

func TestHTTPWithOAuth2(t *testing.T) {
	token := serve(t, "application/json", `{"access_token":"secret-token","token_type":"bearer","expires_in":3600}`)
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer secret-token" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "text/csv")
		_, _ = w.Write([]byte("route_name,passenger_demand,vehicles_assigned\nA,500,20\n"))
	}))
	defer api.Close()

	src, err := coresource.New(factory.ModuleConfig{Type: "http", Conf: map[string]any{
		"url":  api.URL,
		"auth": map[string]any{"client_id": "id", "client_secret": "s", "token_url": token.URL},
	}})
	require.NoError(t, err)
	ds, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want[:1], ds.Records)
}
