// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev

package program

// View is a detached copy of a node, handed to presentation layers so they
// can project the tree without holding references into the program.
type View struct {
	ID        ID     `json:"id"`
	Kind      string `json:"kind"`
	Count     int    `json:"count,omitempty"`
	Predicate string `json:"predicate,omitempty"`
	Children  []View `json:"children,omitempty"`
}

// Views returns a deep copy of the whole program as data.
func (p *Program) Views() []View {
	return viewsOf(p.roots)
}

func viewsOf(nodes []*Node) []View {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]View, 0, len(nodes))
	for _, n := range nodes {
		v := View{ID: n.id, Kind: n.kind.String(), Children: viewsOf(n.children)}
		switch n.kind {
		case Repeat:
			v.Count = n.count
		case Conditional:
			v.Predicate = n.predicate.String()
		}
		out = append(out, v)
	}
	return out
}
