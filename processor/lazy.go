package processor

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/eykd/postcss-go/ast"
	"github.com/eykd/postcss-go/parser"
)

// LazyResult runs its pipeline the first time it is read and memoizes the
// outcome. The first read parses the input, then runs the plugins. Sync runs
// it on the calling goroutine and fails with ErrAsyncPlugin if a plugin
// defers; Async runs it to completion, awaiting deferred outcomes. Both share
// progress: after Sync fails on a deferred plugin, Async picks up from that
// plugin.
type LazyResult struct {
	processor *Processor
	opts      Options
	src       source

	mu       sync.Mutex
	result   *Result
	prepared bool
	next     int      // index of the next plugin to run
	pending  *pending // deferred outcome not awaited yet
	running  chan struct{}
	finished bool
	err      error
}

// pending is a deferred outcome. plugin is nil while the input itself is
// still being resolved.
type pending struct {
	plugin  *Plugin
	outcome Outcome
}

func newLazyResult(p *Processor, src source, opts Options) *LazyResult {
	return &LazyResult{
		processor: p,
		opts:      opts,
		src:       src,
		result:    &Result{Processor: p, Opts: opts},
	}
}

// prepare resolves the input into the tree the plugins work on. A previous
// LazyResult that defers yields a deferred outcome that awaits it. The caller
// holds r.mu.
func (r *LazyResult) prepare() Outcome {
	switch src := r.src; {
	case src.tree != nil:
		r.result.Root = src.tree
		return Done(nil)
	case src.lazy != nil:
		res, err := src.lazy.Sync()
		if errors.Is(err, ErrAsyncPlugin) {
			return Async(func(ctx context.Context) error {
				res, err := src.lazy.Async(ctx)
				if err != nil {
					return err
				}
				r.mu.Lock()
				defer r.mu.Unlock()
				r.result.Root = res.Root
				return nil
			})
		}
		if err != nil {
			return Done(err)
		}
		r.result.Root = res.Root
		return Done(nil)
	}
	in := ast.NewInput(r.src.text, r.opts.From)
	var (
		root *ast.Root
		err  error
	)
	if r.opts.Parser != nil {
		root, err = r.opts.Parser(in)
	} else {
		root, err = parser.ParseInput(in)
	}
	if err != nil {
		return Done(err)
	}
	r.result.Root = root
	return Done(nil)
}

// Processor returns the processor that created the result.
func (r *LazyResult) Processor() *Processor { return r.processor }

// Opts returns the options given to Process.
func (r *LazyResult) Opts() Options { return r.opts }

// Sync runs the pipeline on the calling goroutine.
func (r *LazyResult) Sync() (*Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finished {
		return r.outcome()
	}
	if r.running != nil || r.pending != nil {
		return nil, ErrAsyncPlugin
	}
	r.advance()
	if r.pending != nil {
		return nil, ErrAsyncPlugin
	}
	return r.outcome()
}

// Async runs the pipeline, awaiting deferred plugin work. Cancelling ctx stops
// the wait but not the work: the pipeline still runs to completion and a
// later call returns its outcome.
func (r *LazyResult) Async(ctx context.Context) (*Result, error) {
	r.mu.Lock()
	if r.finished {
		defer r.mu.Unlock()
		return r.outcome()
	}
	if r.running == nil {
		r.running = make(chan struct{})
		go r.drive(context.WithoutCancel(ctx), r.running)
	}
	running := r.running
	r.mu.Unlock()

	select {
	case <-running:
		r.mu.Lock()
		defer r.mu.Unlock()
		return r.outcome()
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *LazyResult) drive(ctx context.Context, done chan struct{}) {
	defer close(done)
	r.mu.Lock()
	defer r.mu.Unlock()
	for {
		r.advance()
		if r.finished {
			return
		}
		p := r.pending
		r.mu.Unlock()
		err := p.outcome.Wait(ctx)
		r.mu.Lock()
		r.pending = nil
		if err != nil {
			r.fail(p.plugin, err)
			return
		}
	}
}

// advance runs plugins until the pipeline finishes, fails or a plugin
// defers. The caller holds r.mu.
func (r *LazyResult) advance() {
	if !r.prepared && !r.finished && r.pending == nil {
		r.prepared = true
		o := r.prepare()
		switch {
		case o.Deferred():
			r.pending = &pending{outcome: o}
			return
		case o.err != nil:
			r.fail(nil, o.err)
			return
		}
	}
	for !r.finished && r.pending == nil {
		if r.next >= len(r.processor.plugins) {
			r.finish()
			return
		}
		p := r.processor.plugins[r.next]
		r.next++
		r.result.LastPlugin = p
		o := r.runPlugin(p)
		if o.Deferred() {
			r.pending = &pending{plugin: p, outcome: o}
			return
		}
		if o.err != nil {
			r.fail(p, o.err)
		}
	}
}

func (r *LazyResult) fail(p *Plugin, err error) {
	r.err = err
	if p != nil {
		r.err = pluginError(p, err)
	}
	r.finished = true
}

func (r *LazyResult) finish() {
	r.finished = true
	root := r.result.Root
	stringify := r.opts.Stringifier
	if stringify == nil {
		stringify = ast.Stringify
	}
	var b strings.Builder
	stringify(root, func(s string, _ ast.Node, _ ast.Edge) { b.WriteString(s) })
	r.result.CSS = b.String()

	if gen := r.opts.MapGenerator; gen != nil {
		m, err := gen(root, r.result.CSS, r.opts)
		if err != nil {
			r.err = err
			return
		}
		r.result.Map = m
	}
}

func (r *LazyResult) outcome() (*Result, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.result, nil
}

// runPlugin runs the hooks of one plugin in order.
func (r *LazyResult) runPlugin(p *Plugin) Outcome {
	root := r.result.Root
	res := r.result
	var steps []func() Outcome
	if p.Once != nil {
		steps = append(steps, func() Outcome { return p.Once(root, res) })
	}
	if p.hasVisitors() {
		steps = append(steps, func() Outcome { return r.visit(p, root) })
	}
	if p.OnceExit != nil {
		steps = append(steps, func() Outcome { return p.OnceExit(root, res) })
	}
	return sequence(steps)
}

// visit calls the node visitors of p over the nodes of root as they are when
// the visit starts. Nodes removed by an earlier visitor call are skipped.
func (r *LazyResult) visit(p *Plugin, root ast.Container) Outcome {
	var nodes []ast.Node
	root.Walk(func(n ast.Node, _ int) error {
		nodes = append(nodes, n)
		return nil
	})
	steps := make([]func() Outcome, 0, len(nodes))
	for _, n := range nodes {
		steps = append(steps, func() Outcome {
			if ast.RootOf(n) != ast.Node(root) {
				return Done(nil)
			}
			return r.visitNode(p, n)
		})
	}
	return sequence(steps)
}

func (r *LazyResult) visitNode(p *Plugin, n ast.Node) Outcome {
	res := r.result
	switch n := n.(type) {
	case *ast.Declaration:
		if p.Declaration != nil {
			return p.Declaration(n, res)
		}
	case *ast.Rule:
		if p.Rule != nil {
			return p.Rule(n, res)
		}
	case *ast.AtRule:
		if p.AtRule != nil {
			return p.AtRule(n, res)
		}
	case *ast.Comment:
		if p.Comment != nil {
			return p.Comment(n, res)
		}
	}
	return Done(nil)
}

// Root returns the processed tree.
func (r *LazyResult) Root() (ast.Container, error) {
	res, err := r.Sync()
	if err != nil {
		return nil, err
	}
	return res.Root, nil
}

// CSS returns the processed CSS text.
func (r *LazyResult) CSS() (string, error) {
	res, err := r.Sync()
	if err != nil {
		return "", err
	}
	return res.CSS, nil
}

// Content is an alias of CSS.
func (r *LazyResult) Content() (string, error) { return r.CSS() }

// Map returns the source map made by Options.MapGenerator, if any.
func (r *LazyResult) Map() (any, error) {
	res, err := r.Sync()
	if err != nil {
		return nil, err
	}
	return res.Map, nil
}

// Messages returns every message left by plugins.
func (r *LazyResult) Messages() ([]Message, error) {
	res, err := r.Sync()
	if err != nil {
		return nil, err
	}
	return res.Messages, nil
}

// Warnings returns the warnings left by plugins.
func (r *LazyResult) Warnings() ([]Message, error) {
	res, err := r.Sync()
	if err != nil {
		return nil, err
	}
	return res.Warnings(), nil
}

// String returns the processed CSS, or an empty string if processing failed.
func (r *LazyResult) String() string {
	css, _ := r.CSS()
	return css
}
