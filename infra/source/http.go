package source

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/routegap/auth"
	"github.com/kilianp07/routegap/core/model"
	coresource "github.com/kilianp07/routegap/core/source"
)

// maxDatasetBytes bounds a downloaded dataset.
const maxDatasetBytes = 8 << 20

// HTTPConfig configures a dataset downloaded on every Load.
type HTTPConfig struct {
	URL string `json:"url" validate:"required,url"`
	// Format is json, yaml or csv. Empty infers it from the Content-Type,
	// then from the URL path.
	Format         string    `json:"format" validate:"omitempty,oneof=json yaml csv"`
	TimeoutSeconds int       `json:"timeout_seconds" validate:"gte=0"`
	Auth           auth.Conf `json:"auth"`
}

var validate = validator.New()

// HTTP fetches a route dataset published by another system, for instance an
// operator's planning export.
type HTTP struct {
	cfg    HTTPConfig
	client *http.Client
}

// NewHTTP validates cfg and prepares the (optionally authenticated) client.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	if cfg.TimeoutSeconds == 0 {
		cfg.TimeoutSeconds = 10
	}
	if err := validate.Struct(cfg); err != nil {
		return nil, fmt.Errorf("http source: %w", err)
	}
	base := &http.Client{Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second}
	return &HTTP{cfg: cfg, client: auth.HTTPClient(context.Background(), cfg.Auth, base)}, nil
}

// Load downloads and decodes the dataset.
func (h *HTTP) Load(ctx context.Context) (model.Dataset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.cfg.URL, nil)
	if err != nil {
		return model.Dataset{}, err
	}
	req.Header.Set("Accept", "application/json, application/yaml, text/csv")
	resp, err := h.client.Do(req)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("fetch %s: %w", h.cfg.URL, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return model.Dataset{}, fmt.Errorf("fetch %s: unexpected status %s", h.cfg.URL, resp.Status)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDatasetBytes+1))
	if err != nil {
		return model.Dataset{}, fmt.Errorf("read %s: %w", h.cfg.URL, err)
	}
	if len(data) > maxDatasetBytes {
		return model.Dataset{}, fmt.Errorf("%w: %s: dataset larger than %d bytes", coresource.ErrMalformed, h.cfg.URL, maxDatasetBytes)
	}
	ds, err := decode(h.format(resp.Header.Get("Content-Type")), data)
	if err != nil {
		return model.Dataset{}, fmt.Errorf("%s: %w", h.cfg.URL, err)
	}
	if ds.Name == "" {
		ds.Name = h.cfg.URL
	}
	return ds, nil
}

// format returns the decoder key (a file extension) for the response.
func (h *HTTP) format(contentType string) string {
	if h.cfg.Format != "" {
		return "." + h.cfg.Format
	}
	if mt, _, err := mime.ParseMediaType(contentType); err == nil {
		switch {
		case mt == "application/json" || strings.HasSuffix(mt, "+json"):
			return ".json"
		case strings.Contains(mt, "yaml"):
			return ".yaml"
		case mt == "text/csv":
			return ".csv"
		}
	}
	p := h.cfg.URL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(path.Ext(p))
}
