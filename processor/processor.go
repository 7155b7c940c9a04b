// Package processor runs CSS through an ordered pipeline of plugins.
//
// A Processor is built once from plugins and can process any number of
// inputs. Processing is lazy: Process only checks the input type. Parsing
// and the plugins run the first time the LazyResult is read, exactly once.
//
//	p := processor.New(myPlugin, processor.Plugins{other, third})
//	lr, err := p.Process(css, processor.Options{From: "app.css"})
//	if err != nil {
//		return err
//	}
//	out, err := lr.CSS()
package processor

import (
	"fmt"
	"slices"

	"github.com/eykd/postcss-go/ast"
)

// Version is the runtime version plugins are checked against.
const Version = "8.4.38"

// Options configures one Process call. They are echoed back unchanged by
// LazyResult.Opts and Result.Opts.
type Options struct {
	From string // source file name, used in errors and source references
	To   string // destination file name, for map generators

	// Map holds source map settings. The processor itself does not read it.
	Map any

	// Parser replaces the default CSS parser.
	Parser func(in *ast.Input) (*ast.Root, error)
	// Stringifier replaces the default stringifier.
	Stringifier func(n ast.Node, build ast.Builder)
	// MapGenerator, when set, computes Result.Map after stringifying.
	MapGenerator func(root ast.Node, css string, opts Options) (any, error)

	// Extra carries options for collaborators the processor does not know.
	Extra map[string]any
}

// Processor is an ordered list of plugins.
type Processor struct {
	plugins []*Plugin
}

// New builds a processor. Nested processors, Plugins sequences and
// factories are flattened into one ordered list. New panics if any value is
// nil, since that is always a programming error.
func New(plugins ...Pluggable) *Processor {
	return &Processor{plugins: Plugins(plugins).Plugins()}
}

// Plugins returns the flattened plugin list.
func (p *Processor) Plugins() []*Plugin { return slices.Clone(p.plugins) }

// Use appends more plugins.
func (p *Processor) Use(plugin Pluggable) *Processor {
	p.plugins = append(p.plugins, flatten(plugin)...)
	return p
}

// Version returns the runtime version.
func (p *Processor) Version() string { return Version }

// Process prepares css for the pipeline. css may be a string, a []byte, a
// fmt.Stringer, an *ast.Root or *ast.Document, or a previous *LazyResult or
// *Result whose tree is reused. Any other value is rejected with an
// *InputError before anything is parsed.
//
// Nothing is parsed here; syntax errors surface when the result is read.
func (p *Processor) Process(css any, opts Options) (*LazyResult, error) {
	var src source
	switch v := css.(type) {
	case *ast.Root:
		if v == nil {
			return nil, &InputError{Value: css}
		}
		src.tree = v
	case *ast.Document:
		if v == nil {
			return nil, &InputError{Value: css}
		}
		src.tree = v
	case *LazyResult:
		if v == nil {
			return nil, &InputError{Value: css}
		}
		src.lazy = v
	case *Result:
		if v == nil {
			return nil, &InputError{Value: css}
		}
		src.tree = v.Root
	case string:
		src.text = v
	case []byte:
		src.text = string(v)
	case fmt.Stringer:
		src.text = v.String()
	default:
		return nil, &InputError{Value: css}
	}
	return newLazyResult(p, src, opts), nil
}

type source struct {
	text string
	tree ast.Container
	lazy *LazyResult
}

// InputError reports a value Process cannot read CSS from.
type InputError struct {
	Value any
}

func (e *InputError) Error() string {
	if e.Value == nil {
		return "PostCSS received nil instead of CSS string"
	}
	return fmt.Sprintf("PostCSS received %v (%T) instead of CSS string", e.Value, e.Value)
}
