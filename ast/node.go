// Package ast defines the mutable CSS syntax tree: Document, Root, AtRule,
// Rule, Declaration and Comment nodes, the container operations that move
// nodes around, the walkers that visit them and the stringifier that turns
// a tree back into CSS text.
//
// Every node keeps the formatting it was parsed with in its Raws, so a tree
// that nobody touched stringifies back to the exact source bytes.
package ast

import "maps"

// NodeType discriminates node kinds.
type NodeType string

// Node kinds.
const (
	DocumentNode NodeType = "document"
	RootNode     NodeType = "root"
	AtRuleNode   NodeType = "atrule"
	RuleNode     NodeType = "rule"
	DeclNode     NodeType = "decl"
	CommentNode  NodeType = "comment"
)

// Raws maps a formatting slot to the exact source text found there.
// A missing key means the slot was never recorded; the stringifier then
// infers it from other nodes or falls back to a default.
type Raws map[string]string

// Raw slot names.
const (
	RawBefore       = "before"       // whitespace and comments before the node
	RawAfter        = "after"        // text before the closing brace, or at the end of a root
	RawBetween      = "between"      // prop-to-value, selector-to-brace or params-to-end text
	RawSemicolon    = "semicolon"    // "true" if the last child ended with a semicolon
	RawAfterName    = "afterName"    // text between an at-rule name and its params
	RawImportant    = "important"    // the exact "!important" text, when unusual
	RawLeft         = "left"         // comment text before the content
	RawRight        = "right"        // comment text after the content
	RawOwnSemicolon = "ownSemicolon" // a stray semicolon after a rule
	RawIndent       = "indent"       // preferred indent unit, read from a root
)

// rawSuffix marks the uncleaned twin of a value slot, see SetRawValue.
const rawSuffix = ".raw"

// Node is implemented by every tree node.
type Node interface {
	Type() NodeType
	Parent() Container
	Raws() Raws
	Source() *Source
	SetSource(src *Source)

	// Remove detaches the node from its parent. It is safe to call from a
	// walk callback on the node being visited.
	Remove()
	// ReplaceWith puts nodes where this node was. The node itself may be
	// among them.
	ReplaceWith(nodes ...Node)
	Next() Node
	Prev() Node
	// Clone returns a detached deep copy, including raws and children.
	Clone() Node
	// Error returns a SyntaxError positioned at the start of the node.
	Error(reason string) *SyntaxError
	String() string

	base() *NodeBase
}

// NodeBase carries the state shared by every node kind.
type NodeBase struct {
	parent Container
	self   Node
	raws   Raws
	source *Source
}

func (b *NodeBase) base() *NodeBase { return b }

// Parent returns the owning container, or nil for a detached node.
func (b *NodeBase) Parent() Container { return b.parent }

// Raws returns the node's formatting map, creating it if needed.
func (b *NodeBase) Raws() Raws {
	if b.raws == nil {
		b.raws = Raws{}
	}
	return b.raws
}

// Raw returns a raw slot and whether it was recorded.
func (b *NodeBase) Raw(key string) (string, bool) {
	v, ok := b.raws[key]
	return v, ok
}

// SetRaw records a raw slot.
func (b *NodeBase) SetRaw(key, value string) {
	b.Raws()[key] = value
}

// SetRawValue records that the field prop was cleaned from raw, for example
// a value with comments stripped. The stringifier prints raw again as long as
// the field still equals value.
func (b *NodeBase) SetRawValue(prop, value, raw string) {
	b.Raws()[prop] = value
	b.raws[prop+rawSuffix] = raw
}

// RawValue returns the pair recorded by SetRawValue.
func (b *NodeBase) RawValue(prop string) (value, raw string, ok bool) {
	value, ok = b.raws[prop]
	if !ok {
		return "", "", false
	}
	raw, ok = b.raws[prop+rawSuffix]
	return value, raw, ok
}

// Source returns where the node was parsed from, or nil for built nodes.
func (b *NodeBase) Source() *Source { return b.source }

// SetSource replaces the node's source reference.
func (b *NodeBase) SetSource(src *Source) { b.source = src }

// Remove detaches the node from its parent.
func (b *NodeBase) Remove() {
	if b.parent != nil {
		b.parent.RemoveChild(b.self)
	}
}

// ReplaceWith inserts nodes in place of this node and removes it, unless it
// is among nodes.
func (b *NodeBase) ReplaceWith(nodes ...Node) {
	if b.parent == nil {
		return
	}
	parent := b.parent
	bookmark := b.self
	foundSelf := false
	for _, n := range nodes {
		switch {
		case n == b.self:
			foundSelf = true
		case foundSelf:
			parent.InsertAfter(bookmark, n)
			bookmark = n
		default:
			parent.InsertBefore(bookmark, n)
		}
	}
	if !foundSelf {
		b.Remove()
	}
}

// Next returns the following sibling, or nil.
func (b *NodeBase) Next() Node {
	if b.parent == nil {
		return nil
	}
	nodes := b.parent.Nodes()
	if i := b.parent.Index(b.self); i >= 0 && i+1 < len(nodes) {
		return nodes[i+1]
	}
	return nil
}

// Prev returns the preceding sibling, or nil.
func (b *NodeBase) Prev() Node {
	if b.parent == nil {
		return nil
	}
	if i := b.parent.Index(b.self); i > 0 {
		return b.parent.Nodes()[i-1]
	}
	return nil
}

// Error returns a SyntaxError positioned at the node's source start.
func (b *NodeBase) Error(reason string) *SyntaxError {
	if b.source == nil || b.source.Input == nil {
		return &SyntaxError{Reason: reason}
	}
	end := -1
	if b.source.End != nil {
		end = b.source.End.Offset
	}
	return b.source.Input.Error(reason, b.source.Start.Offset, end)
}

func (b *NodeBase) clone() NodeBase {
	return NodeBase{raws: maps.Clone(b.raws), source: b.source}
}

// RootOf returns the top-most ancestor of n, which is n itself when it has
// no parent.
func RootOf(n Node) Node {
	for n.Parent() != nil {
		n = n.Parent()
	}
	return n
}
