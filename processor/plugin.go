package processor

import (
	"fmt"

	"github.com/eykd/postcss-go/ast"
)

// Hook transforms a whole tree. root is an *ast.Root, or an *ast.Document
// when a document was processed.
type Hook func(root ast.Container, res *Result) Outcome

// Plugin is one step of a pipeline. Inside a plugin the hooks run in this
// order: Once, then the node visitors for every node that is still attached,
// then OnceExit. Any of them may return a deferred Outcome, which makes the
// pipeline asynchronous.
type Plugin struct {
	Name string
	// Version is the runtime version the plugin was written for. When set
	// and the plugin fails, an incompatible version is reported to the logger.
	Version string

	Once        Hook
	Declaration func(d *ast.Declaration, res *Result) Outcome
	Rule        func(r *ast.Rule, res *Result) Outcome
	AtRule      func(a *ast.AtRule, res *Result) Outcome
	Comment     func(c *ast.Comment, res *Result) Outcome
	OnceExit    Hook
}

// Pluggable is anything a Processor can be built from. Plugins expands the
// value into the ordered plugins it stands for.
type Pluggable interface {
	Plugins() []*Plugin
}

// Plugins returns p itself.
func (p *Plugin) Plugins() []*Plugin { return []*Plugin{p} }

// String names the plugin.
func (p *Plugin) String() string {
	if p.Name == "" {
		return "anonymous plugin"
	}
	return p.Name
}

func (p *Plugin) hasVisitors() bool {
	return p.Declaration != nil || p.Rule != nil || p.AtRule != nil || p.Comment != nil
}

// Plugins is a sequence of pluggables that flattens to their concatenation.
type Plugins []Pluggable

// Plugins flattens the sequence.
func (ps Plugins) Plugins() []*Plugin {
	var out []*Plugin
	for _, p := range ps {
		out = append(out, flatten(p)...)
	}
	return out
}

// TransformFunc is a bare transform, used as an unnamed plugin.
type TransformFunc func(root ast.Container, res *Result) Outcome

// Plugins wraps f as a plugin whose Once hook is f.
func (f TransformFunc) Plugins() []*Plugin {
	return []*Plugin{{Once: Hook(f)}}
}

// Factory produces a pluggable when a Processor is built.
type Factory func() Pluggable

// Plugins invokes the factory and flattens what it returns.
func (f Factory) Plugins() []*Plugin { return flatten(f()) }

func flatten(p Pluggable) []*Plugin {
	if p == nil {
		panic(fmt.Sprintf("%v is not a PostCSS plugin", p))
	}
	plugins := p.Plugins()
	for _, pl := range plugins {
		if pl == nil {
			panic(fmt.Sprintf("%v is not a PostCSS plugin", p))
		}
	}
	return plugins
}
