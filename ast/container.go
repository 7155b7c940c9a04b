package ast

import (
	"errors"
	"regexp"
	"slices"
)

// SkipAll stops a walk when returned from its callback. The walk itself then
// returns nil.
var SkipAll = errors.New("skip everything and stop the walk")

// WalkFunc is called for every visited node with its index in the parent.
type WalkFunc func(n Node, index int) error

// Container is implemented by nodes that own an ordered list of children:
// Document, Root, AtRule and Rule.
//
// Every child's Parent is the container that holds it. Inserting a node that
// already belongs to a container moves it.
type Container interface {
	Node

	Nodes() []Node
	First() Node
	Last() Node
	// Index returns the position of child, or -1.
	Index(child Node) int

	// Push appends child without any formatting normalization.
	Push(child Node) Container
	Append(nodes ...Node) Container
	Prepend(nodes ...Node) Container
	// InsertBefore and InsertAfter do nothing when ref is not a child.
	InsertBefore(ref Node, nodes ...Node) Container
	InsertAfter(ref Node, nodes ...Node) Container
	RemoveChild(child Node)
	RemoveAll()

	// Each visits the direct children. Children may be removed or inserted
	// while iterating; every remaining child is visited exactly once.
	Each(fn WalkFunc) error
	// Walk visits every descendant depth first, parents before children,
	// with the same mutation guarantees as Each.
	Walk(fn WalkFunc) error
	WalkDecls(filter Filter, fn func(d *Declaration, index int) error) error
	WalkRules(filter Filter, fn func(r *Rule, index int) error) error
	WalkAtRules(filter Filter, fn func(a *AtRule, index int) error) error
	WalkComments(fn func(c *Comment, index int) error) error

	container() *ContainerBase
}

// Filter restricts the filtered walks to nodes whose defining field
// (property, selector or at-rule name) matches.
type Filter interface {
	Match(s string) bool
}

// Exact matches a field equal to the string.
type Exact string

// Match reports whether s equals e.
func (e Exact) Match(s string) bool { return string(e) == s }

type patternFilter struct{ re *regexp.Regexp }

func (p patternFilter) Match(s string) bool { return p.re.MatchString(s) }

// Pattern matches fields against a regular expression.
func Pattern(re *regexp.Regexp) Filter { return patternFilter{re: re} }

// ContainerBase carries the child list shared by every container kind.
type ContainerBase struct {
	NodeBase

	nodes []Node
	// iters holds the live index of every Each loop running over nodes, so
	// that insertions and removals can shift them.
	iters    map[int]int
	lastIter int
}

// Nodes returns the children. The slice must not be modified.
func (c *ContainerBase) Nodes() []Node { return c.nodes }

// First returns the first child, or nil.
func (c *ContainerBase) First() Node {
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[0]
}

// Last returns the last child, or nil.
func (c *ContainerBase) Last() Node {
	if len(c.nodes) == 0 {
		return nil
	}
	return c.nodes[len(c.nodes)-1]
}

// Index returns the position of child, or -1.
func (c *ContainerBase) Index(child Node) int {
	for i, n := range c.nodes {
		if n == child {
			return i
		}
	}
	return -1
}

// RemoveChild detaches child. Running iterations are shifted so that they
// neither skip nor repeat a sibling.
func (c *ContainerBase) RemoveChild(child Node) {
	i := c.Index(child)
	if i < 0 {
		return
	}
	child.base().parent = nil
	c.nodes = slices.Delete(c.nodes, i, i+1)
	for id, idx := range c.iters {
		if idx >= i {
			c.iters[id] = idx - 1
		}
	}
}

// RemoveAll detaches every child.
func (c *ContainerBase) RemoveAll() {
	for _, n := range c.nodes {
		n.base().parent = nil
	}
	clear(c.nodes)
	c.nodes = c.nodes[:0]
}

// Each visits the direct children.
func (c *ContainerBase) Each(fn WalkFunc) error {
	return stopped(c.each(fn))
}

// Walk visits every descendant, depth first.
func (c *ContainerBase) Walk(fn WalkFunc) error {
	return stopped(c.walk(fn))
}

// WalkDecls walks declarations whose property matches filter; a nil filter
// matches all of them.
func (c *ContainerBase) WalkDecls(filter Filter, fn func(d *Declaration, index int) error) error {
	return c.Walk(func(n Node, i int) error {
		if d, ok := n.(*Declaration); ok && (filter == nil || filter.Match(d.Prop)) {
			return fn(d, i)
		}
		return nil
	})
}

// WalkRules walks rules whose selector matches filter.
func (c *ContainerBase) WalkRules(filter Filter, fn func(r *Rule, index int) error) error {
	return c.Walk(func(n Node, i int) error {
		if r, ok := n.(*Rule); ok && (filter == nil || filter.Match(r.Selector)) {
			return fn(r, i)
		}
		return nil
	})
}

// WalkAtRules walks at-rules whose name matches filter.
func (c *ContainerBase) WalkAtRules(filter Filter, fn func(a *AtRule, index int) error) error {
	return c.Walk(func(n Node, i int) error {
		if a, ok := n.(*AtRule); ok && (filter == nil || filter.Match(a.Name)) {
			return fn(a, i)
		}
		return nil
	})
}

// WalkComments walks every comment.
func (c *ContainerBase) WalkComments(fn func(c *Comment, index int) error) error {
	return c.Walk(func(n Node, i int) error {
		if cm, ok := n.(*Comment); ok {
			return fn(cm, i)
		}
		return nil
	})
}

func (c *ContainerBase) each(fn WalkFunc) error {
	if c.iters == nil {
		c.iters = make(map[int]int)
	}
	c.lastIter++
	id := c.lastIter
	c.iters[id] = 0
	defer delete(c.iters, id)

	for c.iters[id] < len(c.nodes) {
		i := c.iters[id]
		if err := fn(c.nodes[i], i); err != nil {
			return err
		}
		c.iters[id]++
	}
	return nil
}

func (c *ContainerBase) walk(fn WalkFunc) error {
	return c.each(func(n Node, i int) error {
		if err := fn(n, i); err != nil {
			return err
		}
		if sub, ok := n.(Container); ok {
			return sub.container().walk(fn)
		}
		return nil
	})
}

func stopped(err error) error {
	if errors.Is(err, SkipAll) {
		return nil
	}
	return err
}

func (c *ContainerBase) pushNode(owner Container, n Node) {
	b := n.base()
	b.parent, b.self = owner, n
	c.nodes = append(c.nodes, n)
}

func (c *ContainerBase) appendNodes(owner Container, nodes []Node) {
	for _, n := range nodes {
		c.nodes = append(c.nodes, c.normalize(owner, []Node{n}, c.Last(), false)...)
	}
}

func (c *ContainerBase) prependNodes(owner Container, nodes []Node) {
	for i := len(nodes) - 1; i >= 0; i-- {
		added := c.normalize(owner, nodes[i:i+1], c.First(), true)
		c.nodes = append(added, c.nodes...)
		for id := range c.iters {
			c.iters[id] += len(added)
		}
	}
}

func (c *ContainerBase) insertBeforeNode(owner Container, ref Node, nodes []Node) {
	i := c.Index(ref)
	if i < 0 {
		return
	}
	added := c.normalize(owner, nodes, c.nodes[i], i == 0)
	if i = c.Index(ref); i < 0 {
		i = len(c.nodes)
	}
	c.nodes = slices.Insert(c.nodes, i, added...)
	for id, idx := range c.iters {
		if i <= idx {
			c.iters[id] = idx + len(added)
		}
	}
}

func (c *ContainerBase) insertAfterNode(owner Container, ref Node, nodes []Node) {
	i := c.Index(ref)
	if i < 0 {
		return
	}
	added := c.normalize(owner, nodes, c.nodes[i], false)
	if i = c.Index(ref); i < 0 {
		i = len(c.nodes) - 1
	}
	c.nodes = slices.Insert(c.nodes, i+1, added...)
	for id, idx := range c.iters {
		if i < idx {
			c.iters[id] = idx + len(added)
		}
	}
}

var nonSpaceRE = regexp.MustCompile(`\S`)

// normalize detaches nodes from their previous parents and adopts them.
// Nodes without a recorded "before" take the whitespace of sample, so an
// inserted node lines up with its neighbours. Roots copy the sample's
// "before" verbatim instead, and hand the first node's spacing on when
// something is prepended.
func (c *ContainerBase) normalize(owner Container, nodes []Node, sample Node, prepend bool) []Node {
	isRoot := owner.Type() == RootNode
	adopted := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if p := n.Parent(); p != nil {
			p.RemoveChild(n)
		}
		b := n.base()
		if _, ok := b.raws[RawBefore]; !ok && sample != nil && !isRoot {
			if before, ok := sample.base().raws[RawBefore]; ok {
				b.SetRaw(RawBefore, nonSpaceRE.ReplaceAllString(before, ""))
			}
		}
		b.parent, b.self = owner, n
		adopted = append(adopted, n)
	}

	if isRoot && sample != nil {
		sb := sample.base()
		if prepend {
			if len(c.nodes) > 1 {
				copyRaw(sb, c.nodes[1].base(), RawBefore)
			} else {
				delete(sb.raws, RawBefore)
			}
		} else if c.First() != sample {
			for _, n := range adopted {
				copyRaw(n.base(), sb, RawBefore)
			}
		}
	}
	return adopted
}

// copyRaw sets dst's slot to src's, or clears it when src has none.
func copyRaw(dst, src *NodeBase, key string) {
	if v, ok := src.raws[key]; ok {
		dst.SetRaw(key, v)
		return
	}
	delete(dst.raws, key)
}

func cloneChildren(dst Container, src *ContainerBase) {
	if src.nodes != nil {
		dst.container().nodes = make([]Node, 0, len(src.nodes))
	}
	for _, n := range src.nodes {
		dst.Push(n.Clone())
	}
}
