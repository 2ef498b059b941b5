// Package auth provides OAuth2 client-credentials authentication for
// outbound HTTP requests.
package auth

import (
	"context"
	"net/http"

	"golang.org/x/oauth2"
)

// HTTPClient returns a client that attaches a bearer token to every request.
// Tokens are fetched through base and cached until they expire. base is
// returned unchanged when authentication is disabled.
func HTTPClient(ctx context.Context, conf Conf, base *http.Client) *http.Client {
	if base == nil {
		base = http.DefaultClient
	}
	if !conf.Enabled() {
		return base
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	cfg := conf.toOauth2Config()
	client := oauth2.NewClient(ctx, cfg.TokenSource(ctx))
	client.Timeout = base.Timeout
	return client
}
