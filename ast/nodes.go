package ast

import "fmt"

// Document holds several roots, for example the style blocks of an HTML file.
type Document struct {
	ContainerBase
}

// NewDocument returns a document containing roots.
func NewDocument(roots ...*Root) *Document {
	d := &Document{}
	for _, r := range roots {
		d.Append(r)
	}
	return d
}

func (d *Document) Type() NodeType                 { return DocumentNode }
func (d *Document) String() string                 { return String(d) }
func (d *Document) container() *ContainerBase      { return &d.ContainerBase }
func (d *Document) Push(n Node) Container          { d.pushNode(d, onlyRoot(n)); return d }
func (d *Document) Append(nodes ...Node) Container { d.appendNodes(d, onlyRoots(nodes)); return d }
func (d *Document) Prepend(nodes ...Node) Container {
	d.prependNodes(d, onlyRoots(nodes))
	return d
}

func (d *Document) InsertBefore(ref Node, nodes ...Node) Container {
	d.insertBeforeNode(d, ref, onlyRoots(nodes))
	return d
}

func (d *Document) InsertAfter(ref Node, nodes ...Node) Container {
	d.insertAfterNode(d, ref, onlyRoots(nodes))
	return d
}

// Clone returns a deep copy of the document and all its roots.
func (d *Document) Clone() Node {
	c := &Document{}
	c.NodeBase = d.NodeBase.clone()
	cloneChildren(c, &d.ContainerBase)
	return c
}

func onlyRoot(n Node) Node {
	if _, ok := n.(*Root); !ok {
		panic(fmt.Sprintf("ast: a document can only contain roots, got %T", n))
	}
	return n
}

func onlyRoots(nodes []Node) []Node {
	for _, n := range nodes {
		onlyRoot(n)
	}
	return nodes
}

// Root is a parsed stylesheet.
type Root struct {
	ContainerBase
}

// NewRoot returns a root containing nodes.
func NewRoot(nodes ...Node) *Root {
	r := &Root{}
	r.Append(nodes...)
	return r
}

func (r *Root) Type() NodeType                 { return RootNode }
func (r *Root) String() string                 { return String(r) }
func (r *Root) container() *ContainerBase      { return &r.ContainerBase }
func (r *Root) Push(n Node) Container          { r.pushNode(r, n); return r }
func (r *Root) Append(nodes ...Node) Container { r.appendNodes(r, nodes); return r }
func (r *Root) Prepend(nodes ...Node) Container {
	r.prependNodes(r, nodes)
	return r
}

func (r *Root) InsertBefore(ref Node, nodes ...Node) Container {
	r.insertBeforeNode(r, ref, nodes)
	return r
}

func (r *Root) InsertAfter(ref Node, nodes ...Node) Container {
	r.insertAfterNode(r, ref, nodes)
	return r
}

// RemoveChild detaches child. Removing the first node passes its leading
// whitespace on to the node that becomes first.
func (r *Root) RemoveChild(child Node) {
	if r.Index(child) == 0 && len(r.nodes) > 1 {
		copyRaw(r.nodes[1].base(), child.base(), RawBefore)
	}
	r.ContainerBase.RemoveChild(child)
}

// Clone returns a deep copy of the root.
func (r *Root) Clone() Node {
	c := &Root{}
	c.NodeBase = r.NodeBase.clone()
	cloneChildren(c, &r.ContainerBase)
	return c
}

// AtRule is an at-rule such as @media or @import. A nil child list means the
// rule has no body and ends with a semicolon; an empty non-nil list means
// an empty block.
type AtRule struct {
	ContainerBase
	Name   string
	Params string
}

// NewAtRule returns an at-rule. It has a body only when children are given;
// call OpenBody to give it an empty one.
func NewAtRule(name, params string, nodes ...Node) *AtRule {
	a := &AtRule{Name: name, Params: params}
	if len(nodes) > 0 {
		a.Append(nodes...)
	}
	return a
}

func (a *AtRule) Type() NodeType            { return AtRuleNode }
func (a *AtRule) String() string            { return String(a) }
func (a *AtRule) container() *ContainerBase { return &a.ContainerBase }

// HasBody reports whether the at-rule has a block, possibly empty.
func (a *AtRule) HasBody() bool { return a.nodes != nil }

// OpenBody gives the at-rule an empty block if it has none.
func (a *AtRule) OpenBody() {
	if a.nodes == nil {
		a.nodes = []Node{}
	}
}

func (a *AtRule) Push(n Node) Container { a.OpenBody(); a.pushNode(a, n); return a }

func (a *AtRule) Append(nodes ...Node) Container {
	a.OpenBody()
	a.appendNodes(a, nodes)
	return a
}

func (a *AtRule) Prepend(nodes ...Node) Container {
	a.OpenBody()
	a.prependNodes(a, nodes)
	return a
}

func (a *AtRule) InsertBefore(ref Node, nodes ...Node) Container {
	a.insertBeforeNode(a, ref, nodes)
	return a
}

func (a *AtRule) InsertAfter(ref Node, nodes ...Node) Container {
	a.insertAfterNode(a, ref, nodes)
	return a
}

// Clone returns a deep copy. A bodyless at-rule stays bodyless.
func (a *AtRule) Clone() Node {
	c := &AtRule{Name: a.Name, Params: a.Params}
	c.NodeBase = a.NodeBase.clone()
	cloneChildren(c, &a.ContainerBase)
	return c
}

// Rule is a selector followed by a block of declarations.
type Rule struct {
	ContainerBase
	Selector string
}

// NewRule returns a rule containing nodes.
func NewRule(selector string, nodes ...Node) *Rule {
	r := &Rule{Selector: selector}
	r.nodes = []Node{}
	r.Append(nodes...)
	return r
}

func (r *Rule) Type() NodeType                 { return RuleNode }
func (r *Rule) String() string                 { return String(r) }
func (r *Rule) container() *ContainerBase      { return &r.ContainerBase }
func (r *Rule) Push(n Node) Container          { r.pushNode(r, n); return r }
func (r *Rule) Append(nodes ...Node) Container { r.appendNodes(r, nodes); return r }
func (r *Rule) Prepend(nodes ...Node) Container {
	r.prependNodes(r, nodes)
	return r
}

func (r *Rule) InsertBefore(ref Node, nodes ...Node) Container {
	r.insertBeforeNode(r, ref, nodes)
	return r
}

func (r *Rule) InsertAfter(ref Node, nodes ...Node) Container {
	r.insertAfterNode(r, ref, nodes)
	return r
}

// Clone returns a deep copy of the rule.
func (r *Rule) Clone() Node {
	c := &Rule{Selector: r.Selector}
	c.NodeBase = r.NodeBase.clone()
	c.nodes = []Node{}
	cloneChildren(c, &r.ContainerBase)
	return c
}

// Declaration is a property and its value.
type Declaration struct {
	NodeBase
	Prop      string
	Value     string
	Important bool
}

// NewDecl returns a declaration.
func NewDecl(prop, value string) *Declaration {
	return &Declaration{Prop: prop, Value: value}
}

func (d *Declaration) Type() NodeType { return DeclNode }
func (d *Declaration) String() string { return String(d) }

// Clone returns a copy of the declaration.
func (d *Declaration) Clone() Node {
	c := &Declaration{Prop: d.Prop, Value: d.Value, Important: d.Important}
	c.NodeBase = d.NodeBase.clone()
	return c
}

// Comment is a /* ... */ comment. Text excludes the delimiters and the
// surrounding whitespace, which live in the left and right raws.
type Comment struct {
	NodeBase
	Text string
}

// NewComment returns a comment.
func NewComment(text string) *Comment { return &Comment{Text: text} }

func (c *Comment) Type() NodeType { return CommentNode }
func (c *Comment) String() string { return String(c) }

// Clone returns a copy of the comment.
func (c *Comment) Clone() Node {
	cp := &Comment{Text: c.Text}
	cp.NodeBase = c.NodeBase.clone()
	return cp
}
