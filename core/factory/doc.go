// Package factory provides a small generic registry used to build modules
// from configuration. A module is described by a type string and a map of raw
// settings; the registered factory decodes the settings and returns the
// implementation.
//
// Example:
//
//	reg := factory.NewRegistry[source.Source]()
//	_ = reg.Register("file", func(conf map[string]any) (source.Source, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return NewFileSource(c.Path), nil
//	})
//	src, err := reg.Create(factory.ModuleConfig{Type: "file", Conf: map[string]any{"path": "routes.yaml"}})
package factory
