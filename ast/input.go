package ast

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const bom = "\uFEFF"

// Input is one CSS source text together with its origin.
type Input struct {
	CSS    string // source text, without a leading byte order mark
	File   string // the "from" option; empty for anonymous input
	ID     string // "<input css XXXXXX>" for anonymous input
	HasBOM bool   // the text began with a byte order mark; written back by Stringify

	lineStarts []int // byte offset of every line start, built on first use
}

// NewInput wraps css as an Input. When from is empty the input receives a
// random identifier so that error messages and source references stay distinct.
func NewInput(css, from string) *Input {
	in := &Input{CSS: css, File: from}
	if strings.HasPrefix(css, bom) {
		in.HasBOM = true
		in.CSS = css[len(bom):]
	}
	if from == "" {
		in.ID = "<input css " + strings.ToUpper(uuid.NewString()[:6]) + ">"
	}
	return in
}

// From returns the file name of the input or its anonymous identifier.
func (in *Input) From() string {
	if in.File != "" {
		return in.File
	}
	return in.ID
}

// Position converts a byte offset into a 1-based line and column.
// Columns count runes, not bytes.
func (in *Input) Position(offset int) Position {
	if in.lineStarts == nil {
		in.lineStarts = []int{0}
		for i := 0; i < len(in.CSS); i++ {
			if in.CSS[i] == '\n' {
				in.lineStarts = append(in.lineStarts, i+1)
			}
		}
	}
	if offset > len(in.CSS) {
		offset = len(in.CSS)
	}
	if offset < 0 {
		offset = 0
	}
	line := sort.Search(len(in.lineStarts), func(i int) bool { return in.lineStarts[i] > offset }) - 1
	col := utf8.RuneCountInString(in.CSS[in.lineStarts[line]:offset]) + 1
	return Position{Offset: offset, Line: line + 1, Column: col}
}

// Error builds a SyntaxError located at the byte offset start. A negative end
// means the error has no end position.
func (in *Input) Error(reason string, start, end int) *SyntaxError {
	pos := in.Position(start)
	err := &SyntaxError{
		Reason: reason,
		File:   in.File,
		Line:   pos.Line,
		Column: pos.Column,
		Input:  in,
	}
	if end >= 0 {
		endPos := in.Position(end)
		err.EndLine, err.EndColumn = endPos.Line, endPos.Column
	}
	return err
}

// Position is a location within an Input.
type Position struct {
	Offset int // 0-based byte offset
	Line   int // 1-based
	Column int // 1-based
}

// Source records where a node came from. End is nil while the node is still
// being parsed and for nodes whose end could not be determined.
type Source struct {
	Input *Input
	Start Position
	End   *Position
}

// SyntaxError is a CSS parse error, or an error a plugin raised against a node.
type SyntaxError struct {
	Reason    string
	File      string // empty for anonymous input
	Line      int    // 0 when the position is unknown
	Column    int
	EndLine   int
	EndColumn int
	Plugin    string // set when the error came from a plugin
	Input     *Input
}

// Error formats the error as "[plugin: ]file:line:column: reason".
func (e *SyntaxError) Error() string {
	var b strings.Builder
	if e.Plugin != "" {
		b.WriteString(e.Plugin + ": ")
	}
	if e.File != "" {
		b.WriteString(e.File)
	} else if e.Input != nil && e.Input.ID != "" {
		b.WriteString(e.Input.ID)
	} else {
		b.WriteString("<css input>")
	}
	if e.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", e.Line, e.Column)
	}
	b.WriteString(": " + e.Reason)
	return b.String()
}
