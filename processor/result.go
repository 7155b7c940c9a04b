package processor

import (
	"fmt"
	"strings"

	"github.com/eykd/postcss-go/ast"
)

// Result is the outcome of running a pipeline.
type Result struct {
	Processor *Processor
	Root      ast.Container
	CSS       string
	Map       any
	Opts      Options
	Messages  []Message

	// LastPlugin is the plugin that is running, or ran last.
	LastPlugin *Plugin
}

// String returns the output CSS.
func (r *Result) String() string { return r.CSS }

// Message is a record plugins leave on a result. Warnings have Type
// "warning"; other types are free for plugins to agree on.
type Message struct {
	Type   string
	Plugin string
	Text   string
	Node   ast.Node

	Line      int // 0 when there is no position
	Column    int
	EndLine   int
	EndColumn int

	Data map[string]any
}

// String formats the message like a syntax error at its position.
func (m Message) String() string {
	if m.Node == nil {
		if m.Plugin == "" {
			return m.Text
		}
		return m.Plugin + ": " + m.Text
	}
	err := m.Node.Error(m.Text)
	err.Plugin = m.Plugin
	if m.Line > 0 {
		err.Line, err.Column = m.Line, m.Column
	}
	return err.Error()
}

// WarningOptions locates a warning.
type WarningOptions struct {
	Node ast.Node
	// Plugin defaults to the name of the running plugin.
	Plugin string
	// Word narrows the position to the first occurrence of Word in the
	// node's CSS.
	Word string
}

// Warn records a warning and returns it.
func (r *Result) Warn(text string, opts WarningOptions) Message {
	m := Message{Type: "warning", Text: text, Node: opts.Node, Plugin: opts.Plugin}
	if m.Plugin == "" && r.LastPlugin != nil {
		m.Plugin = r.LastPlugin.Name
	}
	if n := opts.Node; n != nil && n.Source() != nil {
		src := n.Source()
		m.Line, m.Column = src.Start.Line, src.Start.Column
		if src.End != nil {
			m.EndLine, m.EndColumn = src.End.Line, src.End.Column
		}
		if opts.Word != "" {
			css := n.String()
			if i := strings.Index(css, opts.Word); i >= 0 {
				m.Line, m.Column = positionInside(css, src.Start, i)
				m.EndLine, m.EndColumn = positionInside(css, src.Start, i+len(opts.Word))
			}
		}
	}
	r.Messages = append(r.Messages, m)
	return m
}

// Warnings returns the messages of type "warning".
func (r *Result) Warnings() []Message {
	var out []Message
	for _, m := range r.Messages {
		if m.Type == "warning" {
			out = append(out, m)
		}
	}
	return out
}

// positionInside moves from start across css up to byte index.
func positionInside(css string, start ast.Position, index int) (line, col int) {
	line, col = start.Line, start.Column
	for _, r := range css[:index] {
		if r == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}

// Format renders warnings one per line.
func Format(msgs []Message) string {
	var b strings.Builder
	for _, m := range msgs {
		fmt.Fprintln(&b, m.String())
	}
	return b.String()
}
