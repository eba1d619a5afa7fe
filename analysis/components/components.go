// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package components is the SCC & recursion classifier (C4). It runs Tarjan's algorithm (reused from
// internal/graphutil, the same routine that underlies the teacher's summary-based bottom-up dataflow passes) on
// the grammar's production graph, then labels each component NONE/LEFT/RIGHT/BOTH by inspecting its Concat
// productions.
package components

import (
	"git.amazon.com/pkg/ARG-StringApprox/analysis/functional"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
	"git.amazon.com/pkg/ARG-StringApprox/internal/graphutil"
)

// Recursion classifies how a component's own members reference each other in Concat productions.
type Recursion int

const (
	// NONE means no member's production concatenates two component members in a way that exposes left or
	// right recursion (including components of size 1 with no self-loop).
	NONE Recursion = iota
	// LEFT means some Concat(t1, t2) production has t1 in the component.
	LEFT
	// RIGHT means some Concat(t1, t2) production has t2 in the component.
	RIGHT
	// BOTH means both LEFT and RIGHT recursion were observed, requiring Mohri-Nederhof rewriting (C6).
	BOTH
)

func (r Recursion) String() string {
	switch r {
	case NONE:
		return "NONE"
	case LEFT:
		return "LEFT"
	case RIGHT:
		return "RIGHT"
	case BOTH:
		return "BOTH"
	default:
		return "?"
	}
}

// combine implements the §4.4 combining rule: NONE + x = x; x + x = x; x != y (both non-NONE) = BOTH. The source
// this classifier is modeled on contained two competing conventions for disagreement (collapse to BOTH, or
// stick with the first value seen); this implementation always collapses to BOTH, per the explicit decision in
// the design notes.
func combine(a, b Recursion) Recursion {
	if a == NONE {
		return b
	}
	if b == NONE {
		return a
	}
	if a == b {
		return a
	}
	return BOTH
}

// Component is a maximal strongly connected set of nonterminals in the production graph, plus its recursion
// classification.
type Component struct {
	Members   []*grammar.Nonterminal
	Recursion Recursion
}

// Contains reports whether nt belongs to c.
func (c *Component) Contains(nt *grammar.Nonterminal) bool {
	return functional.Exists(c.Members, func(m *grammar.Nonterminal) bool { return m.ID == nt.ID })
}

// Classify computes every component of g's production graph (an edge A->B for every production of A mentioning
// B, terminals dropped), in reverse topological order (leaves first, matching Tarjan's natural output order and
// the order C5's fix-point needs). Each component is labelled with its Recursion.
func Classify(g *grammar.Grammar) []*Component {
	present := make(map[uint32]bool, len(g.Nonterminals))
	for id := range g.Nonterminals {
		present[id] = true
	}
	// id-ascending order, so Tarjan's output (and everything downstream that walks it) is deterministic
	// across runs rather than following Go's randomised map iteration order.
	ids := functional.SetToOrderedSlice(present)
	sccs := graphutil.StronglyConnectedComponents(ids, func(id uint32) []uint32 {
		nt := g.Nonterminals[id]
		var out []uint32
		for _, s := range g.GetSuccessorsFor(nt) {
			out = append(out, s.ID)
		}
		return out
	})

	components := make([]*Component, 0, len(sccs))
	for _, scc := range sccs {
		memberSet := make(map[uint32]bool, len(scc))
		members := make([]*grammar.Nonterminal, 0, len(scc))
		for _, id := range scc {
			memberSet[id] = true
			members = append(members, g.Nonterminals[id])
		}
		components = append(components, &Component{
			Members:   members,
			Recursion: determineRecursion(members, memberSet),
		})
	}
	return components
}

// determineRecursion inspects every Concat(t1,t2) production of each member A: if t1 is in the component set
// LEFT, if t2 is in the component set RIGHT, combining per §4.4.
func determineRecursion(members []*grammar.Nonterminal, memberSet map[uint32]bool) Recursion {
	r := NONE
	for _, a := range members {
		for _, p := range a.Productions {
			cp, ok := p.(grammar.ConcatProduction)
			if !ok {
				continue
			}
			local := NONE
			if cp.A != nil && memberSet[cp.A.ID] {
				local = combine(local, LEFT)
			}
			if cp.B != nil && memberSet[cp.B.ID] {
				local = combine(local, RIGHT)
			}
			r = combine(r, local)
		}
	}
	return r
}

// IsComponentRecursive reports whether nt is "component-recursive" per C7's definition: it belongs to an SCC
// with more than one member, or it self-loops within its own productions.
func IsComponentRecursive(nt *grammar.Nonterminal, comp *Component) bool {
	if len(comp.Members) > 1 {
		return true
	}
	for _, p := range nt.Productions {
		for _, s := range p.Successors() {
			if s != nil && s.ID == nt.ID {
				return true
			}
		}
	}
	return false
}

// FindComponentFor returns the component containing nt, or nil if nt is not among the given components (which
// should not happen for any nonterminal reachable from a grammar Classify was run on).
func FindComponentFor(components []*Component, nt *grammar.Nonterminal) *Component {
	for _, c := range components {
		if c.Contains(nt) {
			return c
		}
	}
	return nil
}
