package ast

import (
	"regexp"
	"strings"
)

// Edge tells a Builder whether a fragment opens or closes a node's block.
type Edge int

// Fragment edges.
const (
	EdgeNone Edge = iota
	EdgeStart
	EdgeEnd
)

// Builder receives output fragments in order. n is the node the fragment
// belongs to, or nil for whitespace between nodes.
type Builder func(s string, n Node, edge Edge)

// Stringify streams the CSS text of n to build. Formatting comes from the
// node raws; slots that were never recorded are inferred from other nodes of
// the same tree, or from the defaults when nothing can be inferred.
func Stringify(n Node, build Builder) {
	s := &stringifier{build: build, cache: map[Node]map[string]string{}}
	s.stringify(n, false)
}

// String returns the CSS text of n.
func String(n Node) string {
	var b strings.Builder
	Stringify(n, func(s string, _ Node, _ Edge) { b.WriteString(s) })
	return b.String()
}

// Inference keys that are not raw slots of their own.
const (
	detectBeforeClose   = "beforeClose"
	detectBeforeComment = "beforeComment"
	detectBeforeDecl    = "beforeDecl"
	detectBeforeOpen    = "beforeOpen"
	detectBeforeRule    = "beforeRule"
	detectColon         = "colon"
	detectCommentLeft   = "commentLeft"
	detectCommentRight  = "commentRight"
	detectEmptyBody     = "emptyBody"
)

var defaultRaws = map[string]string{
	RawAfter:            "\n",
	detectBeforeClose:   "\n",
	detectBeforeComment: "\n",
	detectBeforeDecl:    "\n",
	detectBeforeOpen:    " ",
	detectBeforeRule:    "\n",
	detectColon:         ": ",
	detectCommentLeft:   " ",
	detectCommentRight:  " ",
	detectEmptyBody:     "",
	RawIndent:           "    ",
	RawSemicolon:        "false",
}

var (
	lastLineRE     = regexp.MustCompile(`[^\n]+$`)
	notColonOrSpRE = regexp.MustCompile(`[^\s:]`)
)

type stringifier struct {
	build Builder
	// cache holds inferred raws per tree top, filled on first use.
	cache map[Node]map[string]string
}

func (s *stringifier) stringify(n Node, semicolon bool) {
	switch n := n.(type) {
	case *Document:
		s.body(n)
	case *Root:
		if src := n.Source(); src != nil && src.Input != nil && src.Input.HasBOM {
			s.build(bom, nil, EdgeNone)
		}
		s.body(n)
		if after := n.raws[RawAfter]; after != "" {
			s.build(after, nil, EdgeNone)
		}
	case *AtRule:
		s.atRule(n, semicolon)
	case *Rule:
		s.block(n, rawValue(&n.NodeBase, "selector", n.Selector))
		if own := n.raws[RawOwnSemicolon]; own != "" {
			s.build(own, n, EdgeEnd)
		}
	case *Declaration:
		s.decl(n, semicolon)
	case *Comment:
		left := s.raw(n, RawLeft, detectCommentLeft)
		right := s.raw(n, RawRight, detectCommentRight)
		s.build("/*"+left+n.Text+right+"*/", n, EdgeNone)
	}
}

func (s *stringifier) atRule(a *AtRule, semicolon bool) {
	name := "@" + a.Name
	params := ""
	if a.Params != "" {
		params = rawValue(&a.NodeBase, "params", a.Params)
	}
	if after, ok := a.raws[RawAfterName]; ok {
		name += after
	} else if params != "" {
		name += " "
	}
	if a.HasBody() {
		s.block(a, name+params)
		return
	}
	end := a.raws[RawBetween]
	if semicolon {
		end += ";"
	}
	s.build(name+params+end, a, EdgeNone)
}

func (s *stringifier) decl(d *Declaration, semicolon bool) {
	between := s.raw(d, RawBetween, detectColon)
	out := d.Prop + between + rawValue(&d.NodeBase, "value", d.Value)
	if d.Important {
		if imp := d.raws[RawImportant]; imp != "" {
			out += imp
		} else {
			out += " !important"
		}
	}
	if semicolon {
		out += ";"
	}
	s.build(out, d, EdgeNone)
}

func (s *stringifier) block(c Container, start string) {
	between := s.raw(c, RawBetween, detectBeforeOpen)
	s.build(start+between+"{", c, EdgeStart)
	var after string
	if len(c.Nodes()) > 0 {
		s.body(c)
		after = s.raw(c, RawAfter, "")
	} else {
		after = s.raw(c, RawAfter, detectEmptyBody)
	}
	if after != "" {
		s.build(after, nil, EdgeNone)
	}
	s.build("}", c, EdgeEnd)
}

func (s *stringifier) body(c Container) {
	nodes := c.Nodes()
	last := len(nodes) - 1
	for last > 0 && nodes[last].Type() == CommentNode {
		last--
	}
	semicolon := s.raw(c, RawSemicolon, "") == "true"
	for i, child := range nodes {
		if before := s.raw(child, RawBefore, ""); before != "" {
			s.build(before, nil, EdgeNone)
		}
		s.stringify(child, last != i || semicolon)
	}
}

// raw returns the recorded slot own of n, or infers the value described by
// detect (own when empty).
func (s *stringifier) raw(n Node, own, detect string) string {
	if detect == "" {
		detect = own
	}
	b := n.base()
	if own != "" {
		if v, ok := b.raws[own]; ok {
			return v
		}
	}

	parent := b.parent
	if detect == RawBefore {
		if parent == nil || parent.Type() == DocumentNode ||
			(parent.Type() == RootNode && parent.First() == n) {
			return ""
		}
	}
	if parent == nil {
		return defaultRaws[detect]
	}

	top := RootOf(n).(Container)
	cache := s.cache[top]
	if cache == nil {
		cache = map[string]string{}
		s.cache[top] = cache
	}
	if v, ok := cache[detect]; ok {
		return v
	}
	if detect == RawBefore || detect == RawAfter {
		return s.beforeAfter(n, detect)
	}

	var v string
	var found bool
	switch detect {
	case RawSemicolon:
		v, found = inferSemicolon(top)
	case detectEmptyBody:
		v, found = inferEmptyBody(top)
	case RawIndent:
		v, found = inferIndent(top)
	case detectBeforeComment:
		v, found = s.inferBeforeComment(top, n)
	case detectBeforeDecl:
		v, found = s.inferBeforeDecl(top, n)
	case detectBeforeRule:
		v, found = inferBeforeRule(top)
	case detectBeforeClose:
		v, found = inferBeforeClose(top)
	case detectBeforeOpen:
		v, found = inferBeforeOpen(top)
	case detectColon:
		v, found = inferColon(top)
	default:
		visit(top, func(i Node) bool {
			v, found = i.base().raws[own]
			return !found
		})
	}
	if !found {
		v = defaultRaws[detect]
	}
	cache[detect] = v
	return v
}

func (s *stringifier) beforeAfter(n Node, detect string) string {
	var v string
	switch {
	case n.Type() == DeclNode:
		v = s.raw(n, "", detectBeforeDecl)
	case n.Type() == CommentNode:
		v = s.raw(n, "", detectBeforeComment)
	case detect == RawBefore:
		v = s.raw(n, "", detectBeforeRule)
	default:
		v = s.raw(n, "", detectBeforeClose)
	}
	depth := 0
	for p := n.Parent(); p != nil && p.Type() != RootNode; p = p.Parent() {
		depth++
	}
	if strings.Contains(v, "\n") {
		if indent := s.raw(n, "", RawIndent); indent != "" {
			v += strings.Repeat(indent, depth)
		}
	}
	return v
}

func (s *stringifier) inferBeforeComment(top Container, n Node) (string, bool) {
	v, found := firstBefore(top, func(i Node) bool { return i.Type() == CommentNode })
	if !found {
		return s.raw(n, "", detectBeforeDecl), true
	}
	return stripNonSpace(v), true
}

func (s *stringifier) inferBeforeDecl(top Container, n Node) (string, bool) {
	v, found := firstBefore(top, func(i Node) bool { return i.Type() == DeclNode })
	if !found {
		return s.raw(n, "", detectBeforeRule), true
	}
	return stripNonSpace(v), true
}

func inferBeforeRule(top Container) (string, bool) {
	v, found := firstBefore(top, func(i Node) bool {
		return hasBody(i) && (i.Parent() != top || top.First() != i)
	})
	return stripNonSpace(v), found
}

func inferBeforeClose(top Container) (string, bool) {
	var v string
	var found bool
	visit(top, func(i Node) bool {
		c, ok := i.(Container)
		if !ok || len(c.Nodes()) == 0 {
			return true
		}
		if v, found = i.base().raws[RawAfter]; found {
			v = trimLastLine(v)
		}
		return !found
	})
	return stripNonSpace(v), found
}

func inferBeforeOpen(top Container) (string, bool) {
	var v string
	var found bool
	visit(top, func(i Node) bool {
		if i.Type() != DeclNode {
			v, found = i.base().raws[RawBetween]
		}
		return !found
	})
	return v, found
}

func inferColon(top Container) (string, bool) {
	var v string
	var found bool
	visit(top, func(i Node) bool {
		if i.Type() != DeclNode {
			return true
		}
		if v, found = i.base().raws[RawBetween]; found {
			v = notColonOrSpRE.ReplaceAllString(v, "")
		}
		return !found
	})
	return v, found
}

func inferEmptyBody(top Container) (string, bool) {
	var v string
	var found bool
	visit(top, func(i Node) bool {
		if c, ok := i.(Container); ok && hasBody(i) && len(c.Nodes()) == 0 {
			v, found = i.base().raws[RawAfter]
		}
		return !found
	})
	return v, found
}

func inferIndent(top Container) (string, bool) {
	if v := top.base().raws[RawIndent]; v != "" {
		return v, true
	}
	var v string
	var found bool
	visit(top, func(i Node) bool {
		p := i.Parent()
		if p == nil || p == top || p.Parent() != top {
			return true
		}
		var before string
		if before, found = i.base().raws[RawBefore]; found {
			v = stripNonSpace(before[strings.LastIndex(before, "\n")+1:])
		}
		return !found
	})
	return v, found
}

func inferSemicolon(top Container) (string, bool) {
	var v string
	var found bool
	visit(top, func(i Node) bool {
		c, ok := i.(Container)
		if !ok || len(c.Nodes()) == 0 || c.Last().Type() != DeclNode {
			return true
		}
		v, found = i.base().raws[RawSemicolon]
		return !found
	})
	return v, found
}

// firstBefore returns the trimmed "before" of the first node accepted by match
// that recorded one.
func firstBefore(top Container, match func(Node) bool) (string, bool) {
	var v string
	var found bool
	visit(top, func(i Node) bool {
		if !match(i) {
			return true
		}
		if v, found = i.base().raws[RawBefore]; found {
			v = trimLastLine(v)
		}
		return !found
	})
	return v, found
}

// visit walks the descendants of c depth first until fn returns false. Unlike
// Walk it registers no iterator, so stringifying never touches the tree.
func visit(c Container, fn func(Node) bool) bool {
	for _, n := range c.Nodes() {
		if !fn(n) {
			return false
		}
		if sub, ok := n.(Container); ok && !visit(sub, fn) {
			return false
		}
	}
	return true
}

func hasBody(n Node) bool {
	switch n := n.(type) {
	case *AtRule:
		return n.HasBody()
	case Container:
		return true
	}
	return false
}

func trimLastLine(v string) string {
	if strings.Contains(v, "\n") {
		return lastLineRE.ReplaceAllString(v, "")
	}
	return v
}

func stripNonSpace(v string) string { return nonSpaceRE.ReplaceAllString(v, "") }

// rawValue returns the recorded source text for a field as long as the field
// still holds the value it was parsed as.
func rawValue(b *NodeBase, prop, value string) string {
	if clean, raw, ok := b.RawValue(prop); ok && clean == value {
		return raw
	}
	return value
}
