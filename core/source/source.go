// Package source defines where route records come from. Implementations are
// registered by type name and built from configuration.
package source

import (
	"context"
	"errors"

	"github.com/kilianp07/routegap/core/factory"
	"github.com/kilianp07/routegap/core/model"
)

// ErrMalformed reports input that could not be turned into route records.
var ErrMalformed = errors.New("malformed route data")

// Source loads the dataset of one analysis run.
type Source interface {
	Load(ctx context.Context) (model.Dataset, error)
}

// Func adapts a function to the Source interface.
type Func func(ctx context.Context) (model.Dataset, error)

// Load calls f.
func (f Func) Load(ctx context.Context) (model.Dataset, error) { return f(ctx) }

// Static always returns the same dataset.
type Static model.Dataset

// Load returns a copy of the dataset so callers cannot alter it.
func (s Static) Load(ctx context.Context) (model.Dataset, error) {
	if err := ctx.Err(); err != nil {
		return model.Dataset{}, err
	}
	d := model.Dataset(s)
	d.Records = append([]model.RouteRecord(nil), d.Records...)
	return d, nil
}

var registry = factory.NewRegistry[Source]()

// Register adds a source factory identified by name.
func Register(name string, f factory.Factory[Source]) error {
	return registry.Register(name, f)
}

// New builds the Source described by cfg.
func New(cfg factory.ModuleConfig) (Source, error) {
	return registry.Create(cfg)
}

// Types lists the registered source types.
func Types() []string { return registry.Types() }
