package processor

import "github.com/eykd/postcss-go/ast"

const migrationGuide = "https://evilmartians.com/chronicles/postcss-8-plugin-migration"

// Initializer builds a transform from plugin options.
type Initializer func(opts ...any) TransformFunc

// Creator is a plugin defined with the deprecated Define wrapper.
type Creator struct {
	name string
	init Initializer
}

// Define wraps init as a named plugin in the old initializer style. It logs
// a deprecation notice once per definition. init is not called here; it
// runs once for every pipeline execution that uses the plugin.
//
// Deprecated: build a Plugin value with hooks instead.
func Define(name string, init Initializer) *Creator {
	logWarn(name + ": postcss.plugin was deprecated. Migration guide:\n" + migrationGuide)
	return &Creator{name: name, init: init}
}

// Name returns the plugin name.
func (c *Creator) Name() string { return c.name }

// With binds plugin options. The initializer still runs per execution, with
// these options.
func (c *Creator) With(opts ...any) *Plugin {
	return &Plugin{
		Name:    c.name,
		Version: Version,
		Once: func(root ast.Container, res *Result) Outcome {
			transform := c.init(opts...)
			if transform == nil {
				return Done(nil)
			}
			return transform(root, res)
		},
	}
}

// Plugins uses the plugin without options.
func (c *Creator) Plugins() []*Plugin {
	return []*Plugin{c.With()}
}

// Process runs css through a processor holding only this plugin.
func (c *Creator) Process(css any, opts Options, pluginOpts ...any) (*LazyResult, error) {
	return New(c.With(pluginOpts...)).Process(css, opts)
}
