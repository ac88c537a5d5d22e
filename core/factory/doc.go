// Package factory builds pluggable modules such as table sinks and metrics
// recorders from configuration entries of the form {type, conf}. Each
// implementation registers a constructor under its type name and decodes
// its own conf map with Decode.
//
//	_ = trace.RegisterSink("csv", func(conf map[string]any) (trace.Sink, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return sink.NewCSVSink(c.Path)
//	})
package factory
