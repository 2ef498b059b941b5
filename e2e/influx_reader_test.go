package e2e

import (
	"context"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// influxReader queries the points written by the influx metrics sink.
type influxReader struct {
	client influxdb2.Client
	query  api.QueryAPI
}

func newInfluxReader(url, org, token string) *influxReader {
	c := influxdb2.NewClient(url, token)
	return &influxReader{client: c, query: c.QueryAPI(org)}
}

// count returns the number of records matched by a Flux query.
func (r *influxReader) count(ctx context.Context, flux string) (int, error) {
	res, err := r.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

func (r *influxReader) Close() { r.client.Close() }
