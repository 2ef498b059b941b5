package source

import (
	"fmt"

	"github.com/kilianp07/routegap/core/factory"
	coresource "github.com/kilianp07/routegap/core/source"
)

// init registers the built-in sources.
func init() {
	_ = coresource.Register("synthetic", func(conf map[string]any) (coresource.Source, error) {
		var c SyntheticConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewSynthetic(c)
	})

	_ = coresource.Register("file", func(conf map[string]any) (coresource.Source, error) {
		var c struct {
			Path string `json:"path"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		if c.Path == "" {
			return nil, fmt.Errorf("file source: path is required")
		}
		return NewFile(c.Path)
	})

	_ = coresource.Register("http", func(conf map[string]any) (coresource.Source, error) {
		var c HTTPConfig
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewHTTP(c)
	})
}
