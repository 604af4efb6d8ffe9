// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package program

import (
	"errors"
	"fmt"
	"iter"
	"slices"
)

const (
	MinRepeatCount     = 1
	MaxRepeatCount     = 20
	DefaultRepeatCount = 2

	// DefaultFlattenLimit bounds Flatten when no limit is given.
	DefaultFlattenLimit = 500
)

var (
	// ErrRejected classifies structural edits that were refused. The program
	// is unchanged whenever it is returned.
	ErrRejected = errors.New("rejected edit")

	ErrNestedRepeat      = fmt.Errorf("%w: nested repeat blocks are not allowed", ErrRejected)
	ErrNestedConditional = fmt.Errorf("%w: nested condition blocks are not allowed", ErrRejected)
	ErrNotContainer      = fmt.Errorf("%w: only repeat and condition blocks can hold commands", ErrRejected)
	ErrInvalidSpec       = fmt.Errorf("%w: invalid block", ErrRejected)

	// ErrInvalidReference classifies edits that name a node which does not
	// exist or has the wrong kind.
	ErrInvalidReference = errors.New("invalid reference")

	ErrUnknownNode = fmt.Errorf("%w: unknown block", ErrInvalidReference)
	ErrNotRepeat   = fmt.Errorf("%w: block is not a repeat", ErrInvalidReference)
)

// ID identifies a node. IDs are assigned from 1 upwards and never reused
// within a Program.
type ID int

// Root is the parent id that addresses the top-level list.
const Root ID = 0

// Spec describes a node to insert.
type Spec struct {
	Kind      Kind
	Count     int
	Predicate Predicate
}

// Command returns the spec of an atomic command.
func Command(k Kind) Spec { return Spec{Kind: k} }

// RepeatN returns the spec of a repeat block running its body n times.
func RepeatN(n int) Spec { return Spec{Kind: Repeat, Count: n} }

// Until returns the spec of a condition block that loops until p holds.
func Until(p Predicate) Spec { return Spec{Kind: Conditional, Predicate: p} }

// Node is one block of the program. Its fields are read-only outside this
// package; use the Program edit operations to change the tree.
type Node struct {
	id        ID
	kind      Kind
	count     int
	predicate Predicate
	children  []*Node
	parent    *Node
}

func (n *Node) ID() ID               { return n.id }
func (n *Node) Kind() Kind           { return n.kind }
func (n *Node) Count() int           { return n.count }
func (n *Node) Predicate() Predicate { return n.predicate }

// Children returns the node's body. The slice must not be modified.
func (n *Node) Children() []*Node { return n.children }

// Program is the ordered root list plus the id index over the whole tree.
type Program struct {
	roots  []*Node
	index  map[ID]*Node
	nextID ID
}

// New returns an empty program.
func New() *Program {
	return &Program{
		index:  make(map[ID]*Node),
		nextID: 1,
	}
}

// Roots returns the top-level nodes. The slice must not be modified.
func (p *Program) Roots() []*Node { return p.roots }

// Empty reports whether the program has no nodes at all.
func (p *Program) Empty() bool { return len(p.roots) == 0 }

// Len returns the number of nodes in the tree.
func (p *Program) Len() int { return len(p.index) }

// Find resolves an id in O(1).
func (p *Program) Find(id ID) (*Node, bool) {
	n, ok := p.index[id]
	return n, ok
}

// Insert appends a new node to the body of parent, or to the root list when
// parent is Root. Nesting violations leave the tree unchanged.
func (p *Program) Insert(spec Spec, parent ID) (*Node, error) {
	if !spec.Kind.Valid() {
		return nil, fmt.Errorf("%w: unknown kind %d", ErrInvalidSpec, int(spec.Kind))
	}
	if spec.Kind == Conditional && !spec.Predicate.Valid() {
		return nil, fmt.Errorf("%w: condition block needs a predicate", ErrInvalidSpec)
	}

	var owner *Node
	if parent != Root {
		var ok bool
		owner, ok = p.index[parent]
		if !ok {
			return nil, fmt.Errorf("%w: parent %d", ErrUnknownNode, parent)
		}
		if !owner.kind.Container() {
			return nil, fmt.Errorf("%w: parent %d is %s", ErrNotContainer, parent, owner.kind)
		}
		for a := owner; a != nil; a = a.parent {
			if spec.Kind == Repeat && a.kind == Repeat {
				return nil, ErrNestedRepeat
			}
			if spec.Kind == Conditional && a.kind == Conditional {
				return nil, ErrNestedConditional
			}
		}
	}

	n := &Node{
		id:     p.nextID,
		kind:   spec.Kind,
		parent: owner,
	}
	switch spec.Kind {
	case Repeat:
		n.count = DefaultRepeatCount
		if spec.Count != 0 {
			n.count = ClampRepeatCount(spec.Count)
		}
	case Conditional:
		n.predicate = spec.Predicate
	}
	p.nextID++
	p.index[n.id] = n

	if owner == nil {
		p.roots = append(p.roots, n)
	} else {
		owner.children = append(owner.children, n)
	}
	return n, nil
}

// Remove excises the node and its subtree. It reports whether id was found.
func (p *Program) Remove(id ID) bool {
	n, ok := p.index[id]
	if !ok {
		return false
	}
	if n.parent == nil {
		p.roots = deleteNode(p.roots, n)
	} else {
		n.parent.children = deleteNode(n.parent.children, n)
	}
	p.forget(n)
	return true
}

// SetRepeatCount updates the iteration count of a repeat block, clamped to
// [MinRepeatCount, MaxRepeatCount]. It returns the stored value.
func (p *Program) SetRepeatCount(id ID, value int) (int, error) {
	n, ok := p.index[id]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownNode, id)
	}
	if n.kind != Repeat {
		return 0, fmt.Errorf("%w: %d is %s", ErrNotRepeat, id, n.kind)
	}
	n.count = ClampRepeatCount(value)
	return n.count, nil
}

// Prune removes, at any depth, every node whose kind the mode forbids. It
// returns how many blocks were pruned, not counting their descendants.
func (p *Program) Prune(m Mode) int {
	var removed int
	var strip func(nodes []*Node) []*Node
	strip = func(nodes []*Node) []*Node {
		return slices.DeleteFunc(nodes, func(n *Node) bool {
			if !m.Allows(n.kind) {
				p.forget(n)
				removed++
				return true
			}
			n.children = strip(n.children)
			return false
		})
	}
	p.roots = strip(p.roots)
	return removed
}

// Clear drops every node. IDs keep counting up.
func (p *Program) Clear() {
	p.roots = nil
	clear(p.index)
}

// Flatten returns the lazy, finite sequence of atomic kinds obtained by
// expanding each repeat block count times and inlining condition bodies once.
// Iteration stops after limit commands; a non-positive limit selects
// DefaultFlattenLimit. Each range over the sequence walks the tree afresh.
func (p *Program) Flatten(limit int) iter.Seq[Kind] {
	if limit <= 0 {
		limit = DefaultFlattenLimit
	}
	return func(yield func(Kind) bool) {
		emitted := 0
		var walk func(nodes []*Node) bool
		walk = func(nodes []*Node) bool {
			for _, n := range nodes {
				switch n.kind {
				case Repeat:
					for range n.count {
						if !walk(n.children) {
							return false
						}
					}
				case Conditional:
					if !walk(n.children) {
						return false
					}
				default:
					emitted++
					if !yield(n.kind) || emitted >= limit {
						return false
					}
				}
			}
			return true
		}
		walk(p.roots)
	}
}

// ClampRepeatCount bounds v to the allowed repeat range.
func ClampRepeatCount(v int) int {
	return max(MinRepeatCount, min(v, MaxRepeatCount))
}

// forget drops n and its descendants from the index and severs the links so
// stale pointers held elsewhere cannot reach back into the tree.
func (p *Program) forget(n *Node) {
	delete(p.index, n.id)
	for _, c := range n.children {
		p.forget(c)
	}
	n.parent = nil
	n.children = nil
}

func deleteNode(nodes []*Node, target *Node) []*Node {
	return slices.DeleteFunc(nodes, func(n *Node) bool { return n == target })
}
