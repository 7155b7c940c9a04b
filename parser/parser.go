// Package parser builds an ast.Root from CSS text.
//
// The parser is lossless: every byte of whitespace and every comment that is
// not a node of its own is kept in the node raws, so that stringifying an
// unmodified tree reproduces the input exactly.
package parser

import (
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/eykd/postcss-go/ast"
	"github.com/eykd/postcss-go/tokenizer"
)

// Parse parses css. from names the source file and may be empty.
func Parse(css, from string) (*ast.Root, error) {
	return ParseInput(ast.NewInput(css, from))
}

// ParseInput parses a prepared input. Syntax errors are returned as
// *ast.SyntaxError and no partial tree is returned.
func ParseInput(in *ast.Input) (*ast.Root, error) {
	p := newParser(in)
	if err := p.parse(); err != nil {
		return nil, err
	}
	return p.root, nil
}

// ParseDocument parses each input into its own root and collects the roots
// in one document.
func ParseDocument(inputs ...*ast.Input) (*ast.Document, error) {
	doc := ast.NewDocument()
	for _, in := range inputs {
		root, err := ParseInput(in)
		if err != nil {
			return nil, err
		}
		doc.Push(root)
	}
	return doc, nil
}

type token = tokenizer.Token

type parser struct {
	in   *ast.Input
	toks *tokenizer.Tokenizer
	root *ast.Root

	current   ast.Container
	spaces    string // whitespace waiting for the next node's "before"
	semicolon bool   // whether the last declaration ended with ";"
}

func newParser(in *ast.Input) *parser {
	root := ast.NewRoot()
	root.SetSource(&ast.Source{Input: in, Start: ast.Position{Line: 1, Column: 1}})
	return &parser{
		in:      in,
		toks:    tokenizer.New(in),
		root:    root,
		current: root,
	}
}

func (p *parser) parse() error {
	for !p.toks.EOF() {
		tok, err := p.toks.Next()
		if err != nil {
			return err
		}
		switch tok.Kind {
		case tokenizer.Space:
			p.spaces += tok.Value
		case tokenizer.Semicolon:
			p.freeSemicolon(tok)
		case tokenizer.CloseCurly:
			err = p.end(tok)
		case tokenizer.Comment:
			p.comment(tok)
		case tokenizer.AtWord:
			err = p.atRule(tok)
		case tokenizer.OpenCurly:
			p.emptyRule(tok)
		default:
			err = p.other(tok)
		}
		if err != nil {
			return err
		}
	}
	return p.endFile()
}

func (p *parser) position(offset int) ast.Position {
	return p.in.Position(offset)
}

// endAt returns the end position of a node whose last byte is at offset.
func (p *parser) endAt(offset int) *ast.Position {
	pos := p.in.Position(offset)
	pos.Offset = offset + 1
	return &pos
}

func (p *parser) init(n ast.Node, offset int) {
	p.current.Push(n)
	n.SetSource(&ast.Source{Input: p.in, Start: p.position(offset)})
	n.Raws()[ast.RawBefore] = p.spaces
	p.spaces = ""
	if n.Type() != ast.CommentNode {
		p.semicolon = false
	}
}

var allSpaceRE = regexp.MustCompile(`^\s*$`)

func (p *parser) comment(tok token) {
	n := ast.NewComment("")
	p.init(n, tok.Start)
	n.Source().End = p.endAt(tok.End)

	text := tok.Value[2 : len(tok.Value)-2]
	raws := n.Raws()
	if allSpaceRE.MatchString(text) {
		raws[ast.RawLeft] = text
		raws[ast.RawRight] = ""
		return
	}
	inner := strings.TrimLeftFunc(text, unicode.IsSpace)
	raws[ast.RawLeft] = text[:len(text)-len(inner)]
	n.Text = strings.TrimRightFunc(inner, unicode.IsSpace)
	raws[ast.RawRight] = inner[len(n.Text):]
}

func (p *parser) emptyRule(tok token) {
	n := ast.NewRule("")
	p.init(n, tok.Start)
	n.Raws()[ast.RawBetween] = ""
	p.current = n
}

func (p *parser) other(start token) error {
	var (
		end, colon bool
		bracket    = -1 // offset of the outermost open bracket
		brackets   []tokenizer.Kind
		tokens     []token
	)
	custom := strings.HasPrefix(start.Value, "--")

	tok := start
scan:
	for {
		kind := tok.Kind
		tokens = append(tokens, tok)

		switch {
		case kind == tokenizer.OpenParen || kind == tokenizer.OpenSquare:
			if bracket < 0 {
				bracket = tok.Start
			}
			brackets = append(brackets, closerOf(kind))
		case custom && colon && kind == tokenizer.OpenCurly:
			if bracket < 0 {
				bracket = tok.Start
			}
			brackets = append(brackets, tokenizer.CloseCurly)
		case len(brackets) == 0:
			switch kind {
			case tokenizer.Semicolon:
				if colon {
					return p.decl(tokens, custom)
				}
				break scan
			case tokenizer.OpenCurly:
				p.rule(tokens)
				return nil
			case tokenizer.CloseCurly:
				p.toks.Back(tokens[len(tokens)-1])
				tokens = tokens[:len(tokens)-1]
				end = true
				break scan
			case tokenizer.Colon:
				colon = true
			}
		case kind == brackets[len(brackets)-1]:
			brackets = brackets[:len(brackets)-1]
			if len(brackets) == 0 {
				bracket = -1
			}
		}

		next, err := p.toks.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		tok = next
	}

	if p.toks.EOF() {
		end = true
	}
	if len(brackets) > 0 {
		return p.in.Error("Unclosed bracket", bracket, bracket+1)
	}
	if end && colon {
		if !custom {
			for len(tokens) > 0 {
				last := tokens[len(tokens)-1]
				if last.Kind != tokenizer.Space && last.Kind != tokenizer.Comment {
					break
				}
				p.toks.Back(last)
				tokens = tokens[:len(tokens)-1]
			}
		}
		return p.decl(tokens, custom)
	}
	return p.unknownWord(tokens)
}

func closerOf(k tokenizer.Kind) tokenizer.Kind {
	if k == tokenizer.OpenParen {
		return tokenizer.CloseParen
	}
	return tokenizer.CloseSquare
}

func (p *parser) rule(tokens []token) {
	tokens = tokens[:len(tokens)-1]
	n := ast.NewRule("")
	p.init(n, tokens[0].Start)
	n.Raws()[ast.RawBetween] = spacesAndCommentsFromEnd(&tokens)
	n.Selector = p.raw(n, "selector", tokens, false)
	p.current = n
}

func (p *parser) decl(tokens []token, custom bool) error {
	n := ast.NewDecl("", "")
	p.init(n, tokens[0].Start)
	raws := n.Raws()

	last := tokens[len(tokens)-1]
	if last.Kind == tokenizer.Semicolon {
		p.semicolon = true
		tokens = tokens[:len(tokens)-1]
	}
	n.Source().End = p.endAt(lastPosition(last, tokens))

	for tokens[0].Kind != tokenizer.Word {
		if len(tokens) == 1 {
			return p.unknownWord(tokens)
		}
		raws[ast.RawBefore] += tokens[0].Value
		tokens = tokens[1:]
	}
	n.Source().Start = p.position(tokens[0].Start)

	for len(tokens) > 0 {
		k := tokens[0].Kind
		if k == tokenizer.Colon || k == tokenizer.Space || k == tokenizer.Comment {
			break
		}
		n.Prop += tokens[0].Value
		tokens = tokens[1:]
	}

	between := ""
	for len(tokens) > 0 {
		tok := tokens[0]
		tokens = tokens[1:]
		if tok.Kind == tokenizer.Colon {
			between += tok.Value
			break
		}
		if tok.Kind == tokenizer.Word && wordCharRE.MatchString(tok.Value) {
			return p.unknownWord([]token{tok})
		}
		between += tok.Value
	}

	if n.Prop != "" && (n.Prop[0] == '_' || n.Prop[0] == '*') {
		raws[ast.RawBefore] += n.Prop[:1]
		n.Prop = n.Prop[1:]
	}

	var firstSpaces []token
	for len(tokens) > 0 {
		k := tokens[0].Kind
		if k != tokenizer.Space && k != tokenizer.Comment {
			break
		}
		firstSpaces = append(firstSpaces, tokens[0])
		tokens = tokens[1:]
	}

	for i := len(tokens) - 1; i >= 0; i-- {
		tok := tokens[i]
		lower := strings.ToLower(tok.Value)
		if lower == "!important" {
			n.Important = true
			s := stringFrom(&tokens, i)
			s = spacesFromEnd(&tokens) + s
			if s != " !important" {
				raws[ast.RawImportant] = s
			}
			break
		}
		if lower == "important" {
			cache := append([]token(nil), tokens...)
			str := ""
			for j := i; j > 0; j-- {
				if startsWithBang(str) && cache[j].Kind != tokenizer.Space {
					break
				}
				str = cache[len(cache)-1].Value + str
				cache = cache[:len(cache)-1]
			}
			if startsWithBang(str) {
				n.Important = true
				raws[ast.RawImportant] = str
				tokens = cache
			}
		}
		if tok.Kind != tokenizer.Space && tok.Kind != tokenizer.Comment {
			break
		}
	}

	hasWord := false
	for _, t := range tokens {
		if t.Kind != tokenizer.Space && t.Kind != tokenizer.Comment {
			hasWord = true
			break
		}
	}
	if hasWord {
		for _, t := range firstSpaces {
			between += t.Value
		}
		firstSpaces = nil
	}
	raws[ast.RawBetween] = between
	n.Value = p.raw(n, "value", append(firstSpaces, tokens...), custom)

	if strings.Contains(n.Value, ":") && !custom {
		return p.checkMissedSemicolon(tokens)
	}
	return nil
}

var wordCharRE = regexp.MustCompile(`\w`)

func startsWithBang(s string) bool {
	return strings.HasPrefix(strings.TrimSpace(s), "!")
}

// lastPosition returns the offset of the last positioned byte of a
// declaration. Trailing whitespace does not count.
func lastPosition(last token, tokens []token) int {
	if last.Kind != tokenizer.Space {
		return last.End
	}
	for i := len(tokens) - 1; i >= 0; i-- {
		if tokens[i].Kind != tokenizer.Space {
			return tokens[i].End
		}
	}
	return last.Start
}

func (p *parser) atRule(tok token) error {
	n := ast.NewAtRule(tok.Value[1:], "")
	if n.Name == "" {
		return p.in.Error("At-rule without name", tok.Start, tok.Start+len(tok.Value))
	}
	p.init(n, tok.Start)

	var (
		last, open bool
		params     []token
		brackets   []tokenizer.Kind
	)
scan:
	for !p.toks.EOF() {
		t, err := p.toks.Next()
		if err != nil {
			return err
		}
		switch {
		case t.Kind == tokenizer.OpenParen || t.Kind == tokenizer.OpenSquare:
			brackets = append(brackets, closerOf(t.Kind))
		case t.Kind == tokenizer.OpenCurly && len(brackets) > 0:
			brackets = append(brackets, tokenizer.CloseCurly)
		case len(brackets) > 0 && t.Kind == brackets[len(brackets)-1]:
			brackets = brackets[:len(brackets)-1]
		}

		if len(brackets) == 0 {
			switch t.Kind {
			case tokenizer.Semicolon:
				n.Source().End = p.endAt(t.Start)
				p.semicolon = true
				break scan
			case tokenizer.OpenCurly:
				open = true
				break scan
			case tokenizer.CloseCurly:
				for i := len(params) - 1; i >= 0; i-- {
					if params[i].Kind != tokenizer.Space {
						n.Source().End = p.endAt(params[i].End)
						break
					}
				}
				if err := p.end(t); err != nil {
					return err
				}
				break scan
			default:
				params = append(params, t)
			}
		} else {
			params = append(params, t)
		}
		if p.toks.EOF() {
			last = true
			break
		}
	}

	raws := n.Raws()
	raws[ast.RawBetween] = spacesAndCommentsFromEnd(&params)
	if len(params) > 0 {
		raws[ast.RawAfterName] = spacesAndCommentsFromStart(&params)
		n.Params = p.raw(n, "params", params, false)
		if last {
			n.Source().End = p.endAt(params[len(params)-1].End)
			p.spaces = raws[ast.RawBetween]
			raws[ast.RawBetween] = ""
		}
	} else {
		raws[ast.RawAfterName] = ""
		n.Params = ""
	}
	if open {
		n.OpenBody()
		p.current = n
	}
	return nil
}

func (p *parser) end(tok token) error {
	raws := p.current.Raws()
	if len(p.current.Nodes()) > 0 {
		raws[ast.RawSemicolon] = strconv.FormatBool(p.semicolon)
	}
	p.semicolon = false
	raws[ast.RawAfter] += p.spaces
	p.spaces = ""

	parent := p.current.Parent()
	if parent == nil {
		return p.in.Error("Unexpected }", tok.Start, tok.Start+1)
	}
	p.current.Source().End = p.endAt(tok.Start)
	p.current = parent
	return nil
}

func (p *parser) endFile() error {
	if p.current.Parent() != nil {
		return p.in.Error("Unclosed block", p.current.Source().Start.Offset, -1)
	}
	raws := p.current.Raws()
	if len(p.current.Nodes()) > 0 {
		raws[ast.RawSemicolon] = strconv.FormatBool(p.semicolon)
	}
	raws[ast.RawAfter] += p.spaces
	end := p.position(p.toks.Position())
	p.root.Source().End = &end
	return nil
}

func (p *parser) freeSemicolon(tok token) {
	p.spaces += tok.Value
	nodes := p.current.Nodes()
	if len(nodes) == 0 {
		return
	}
	prev, ok := nodes[len(nodes)-1].(*ast.Rule)
	if ok && prev.Raws()[ast.RawOwnSemicolon] == "" {
		prev.Raws()[ast.RawOwnSemicolon] = p.spaces
		p.spaces = ""
	}
}

type rawValueSetter interface {
	SetRawValue(prop, value, raw string)
}

// raw joins tokens into a field value. Comments next to whitespace or at
// either end are dropped from the value; when anything was dropped, the
// verbatim text is recorded as well.
func (p *parser) raw(n rawValueSetter, prop string, tokens []token, custom bool) string {
	var value strings.Builder
	clean := true
	for i, tok := range tokens {
		switch {
		case tok.Kind == tokenizer.Space && i == len(tokens)-1 && !custom:
			clean = false
		case tok.Kind == tokenizer.Comment:
			if safeNeighbor(tokens, i-1) || safeNeighbor(tokens, i+1) {
				clean = false
			} else if strings.HasSuffix(value.String(), ",") {
				clean = false
			} else {
				value.WriteString(tok.Value)
			}
		default:
			value.WriteString(tok.Value)
		}
	}
	if !clean {
		var raw strings.Builder
		for _, tok := range tokens {
			raw.WriteString(tok.Value)
		}
		n.SetRawValue(prop, value.String(), raw.String())
	}
	return value.String()
}

func safeNeighbor(tokens []token, i int) bool {
	return i < 0 || i >= len(tokens) || tokens[i].Kind == tokenizer.Space
}

func (p *parser) checkMissedSemicolon(tokens []token) error {
	colon, err := p.colon(tokens)
	if err != nil || colon < 0 {
		return err
	}
	var tok token
	founded := 0
	for j := colon - 1; j >= 0; j-- {
		tok = tokens[j]
		if tok.Kind != tokenizer.Space {
			founded++
			if founded == 2 {
				break
			}
		}
	}
	offset := tok.Start
	if tok.Kind == tokenizer.Word {
		offset = tok.End + 1
	}
	return p.in.Error("Missed semicolon", offset, -1)
}

// colon returns the index of the first top-level colon in tokens, or -1.
func (p *parser) colon(tokens []token) (int, error) {
	depth := 0
	var prev *token
	for i := range tokens {
		tok := &tokens[i]
		switch tok.Kind {
		case tokenizer.OpenParen:
			depth++
		case tokenizer.CloseParen:
			depth--
		}
		if depth == 0 && tok.Kind == tokenizer.Colon {
			if prev == nil {
				return -1, p.in.Error("Double colon", tok.Start, tok.Start+len(tok.Value))
			}
			if prev.Kind == tokenizer.Word && prev.Value == "progid" {
				continue
			}
			return i, nil
		}
		prev = tok
	}
	return -1, nil
}

func (p *parser) unknownWord(tokens []token) error {
	first := tokens[0]
	return p.in.Error("Unknown word", first.Start, first.Start+len(first.Value))
}

func spacesAndCommentsFromEnd(tokens *[]token) string {
	spaces := ""
	for t := *tokens; len(t) > 0; t = *tokens {
		last := t[len(t)-1]
		if last.Kind != tokenizer.Space && last.Kind != tokenizer.Comment {
			break
		}
		spaces = last.Value + spaces
		*tokens = t[:len(t)-1]
	}
	return spaces
}

func spacesAndCommentsFromStart(tokens *[]token) string {
	spaces := ""
	for t := *tokens; len(t) > 0; t = *tokens {
		if t[0].Kind != tokenizer.Space && t[0].Kind != tokenizer.Comment {
			break
		}
		spaces += t[0].Value
		*tokens = t[1:]
	}
	return spaces
}

func spacesFromEnd(tokens *[]token) string {
	spaces := ""
	for t := *tokens; len(t) > 0; t = *tokens {
		last := t[len(t)-1]
		if last.Kind != tokenizer.Space {
			break
		}
		spaces = last.Value + spaces
		*tokens = t[:len(t)-1]
	}
	return spaces
}

// stringFrom cuts tokens at from and returns the text of the removed tail.
func stringFrom(tokens *[]token, from int) string {
	var b strings.Builder
	for _, t := range (*tokens)[from:] {
		b.WriteString(t.Value)
	}
	*tokens = (*tokens)[:from]
	return b.String()
}
