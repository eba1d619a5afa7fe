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

// Package automaton implements the NFA/Edge/State model produced by the Nederhof grammar-to-automaton
// construction (C7) and mutated in place by the operation resolver (C8). It defines its own minimal Operation
// interface rather than importing the operation catalogue package, so that package (stringops) can depend on
// automaton without creating an import cycle: automaton only needs enough of an operation's shape to replay its
// automaton-side effect. Priority is part of the interface for the charset approximation pass (C5), which ranks
// cyclic operation productions by it; taint resolution (C8) does not use it.
package automaton

import (
	"fmt"
	"regexp"
	"strings"
)

// Epsilon is the edge label used for ε-transitions.
const Epsilon = "ε"

// Operation is the automaton-facing view of a string-transforming operation (Reverse, Trim, ToUpperCase, ...).
// The operation catalogue package (stringops) implements this interface; automaton never imports stringops.
type Operation interface {
	// Priority ranks how eagerly a cyclic operation production should be eliminated during charset
	// approximation (C5); higher priority is eliminated first.
	Priority() int
	// AutomatonTransform rewrites the sub-automaton reachable only through states tainted by this operation
	// occurrence. taint identifies which occurrence is being resolved (its Boundary gives the fixed entry/exit
	// pair the rest of the automaton still reaches this scope through, see MarkBoundary). It is free to mutate
	// edges, add states, or leave the automaton unchanged.
	AutomatonTransform(nfa *NFA, taint OperationTaint, states []*State)
	// String names the operation, for diagnostics (dot labels, taint descriptions).
	String() string
}

// OperationTaint wraps a reference to an Operation occurrence. Two taints are equal iff they were produced by
// the same call to NewOperationTaint (i.e. the same operation occurrence in the grammar), never merely because
// they wrap equal operation values: two ReplaceBothKnown('f','x') productions at different grammar sites yield
// distinct, non-equal taints.
type OperationTaint struct {
	Op         Operation
	occurrence *taintOccurrence
}

// taintOccurrence is the shared identity behind one OperationTaint value, plus the fixed entry/exit boundary the
// grammar-to-NFA construction (C7) passes it through. entry/exit are set at most once, by the first build() call
// that carries this taint, which is always the production's own q0/q1 (the outermost occurrence) no matter how
// deep the taint is threaded afterward.
type taintOccurrence struct {
	entry, exit *State
}

// NewOperationTaint creates a fresh taint for one occurrence of op.
func NewOperationTaint(op Operation) OperationTaint {
	return OperationTaint{Op: op, occurrence: &taintOccurrence{}}
}

// Equal reports whether t and other wrap the same operation occurrence.
func (t OperationTaint) Equal(other OperationTaint) bool {
	return t.occurrence == other.occurrence
}

// MarkBoundary records entry/exit as this taint's fixed boundary the first time it is observed; later calls are
// a no-op, so the outermost (production-level) entry/exit always wins over any boundary passed to a deeper
// recursive call that threads the same taint further in.
func (t OperationTaint) MarkBoundary(entry, exit *State) {
	if t.occurrence.entry == nil {
		t.occurrence.entry = entry
		t.occurrence.exit = exit
	}
}

// Boundary returns the entry/exit pair recorded by MarkBoundary, or (nil, nil) if the taint was never threaded
// through build() (only possible for a taint built directly in a test, bypassing nfabuild).
func (t OperationTaint) Boundary() (entry, exit *State) {
	return t.occurrence.entry, t.occurrence.exit
}

// State is a node of the NFA. IsStart and IsAccepting mark the unique start/accept states after C7. Taints
// records the ancestor chain of operation occurrences whose scope includes this state; per the C7 invariant,
// taints deeper in the recursion appear later in the list.
type State struct {
	ID          int
	IsStart     bool
	IsAccepting bool
	Outgoing    []*Edge
	Taints      []OperationTaint
}

// HasTaint reports whether t is present in s's taint chain.
func (s *State) HasTaint(t OperationTaint) bool {
	for _, st := range s.Taints {
		if st.Equal(t) {
			return true
		}
	}
	return false
}

// Edge is a transition from one state to another. Op is either Epsilon or a regex fragment (a regex-escaped
// literal, or a character-class/Kleene-star fragment derived from a CharSet or non-literal terminal). Taints is
// the ordered ancestor chain attached when the edge was created by C7's build procedure.
type Edge struct {
	From   *State
	To     *State
	Op     string
	Taints []OperationTaint
}

// NFA is an epsilon-NFA with exactly one start state and exactly one accept state, the C7 postcondition.
type NFA struct {
	States []*State
	Start  *State
	Accept *State
	nextID int
}

// New returns an empty NFA with no states.
func New() *NFA {
	return &NFA{}
}

// NewState mints a fresh state, appends it to the automaton, and returns it.
func (n *NFA) NewState() *State {
	s := &State{ID: n.nextID}
	n.nextID++
	n.States = append(n.States, s)
	return s
}

// AddEdge creates and appends an edge from -> to labelled op, carrying taints, and records it on from.Outgoing.
func (n *NFA) AddEdge(from, to *State, op string, taints []OperationTaint) *Edge {
	e := &Edge{From: from, To: to, Op: op, Taints: append([]OperationTaint(nil), taints...)}
	from.Outgoing = append(from.Outgoing, e)
	return e
}

// RemoveState deletes s from the automaton along with any edge referencing it, as either endpoint. Used by
// operations (Reverse) that replace a sub-automaton and leave old states unreachable.
func (n *NFA) RemoveState(s *State) {
	out := n.States[:0]
	for _, st := range n.States {
		if st == s {
			continue
		}
		edges := st.Outgoing[:0]
		for _, e := range st.Outgoing {
			if e.To != s {
				edges = append(edges, e)
			}
		}
		st.Outgoing = edges
		out = append(out, st)
	}
	n.States = out
}

// RemoveUnreachable prunes every state not reachable from n.Start, and every edge pointing at a pruned state.
func (n *NFA) RemoveUnreachable() {
	if n.Start == nil {
		return
	}
	reachable := map[*State]bool{n.Start: true}
	worklist := []*State{n.Start}
	for len(worklist) > 0 {
		s := worklist[len(worklist)-1]
		worklist = worklist[:len(worklist)-1]
		for _, e := range s.Outgoing {
			if !reachable[e.To] {
				reachable[e.To] = true
				worklist = append(worklist, e.To)
			}
		}
	}
	kept := n.States[:0]
	for _, s := range n.States {
		if !reachable[s] {
			continue
		}
		edges := s.Outgoing[:0]
		for _, e := range s.Outgoing {
			if reachable[e.To] {
				edges = append(edges, e)
			}
		}
		s.Outgoing = edges
		kept = append(kept, s)
	}
	n.States = kept
}

var fragmentCache = map[string]*regexp.Regexp{}

// compileFragment compiles op as an exact-match regex (anchored both ends), caching by source text.
func compileFragment(op string) (*regexp.Regexp, error) {
	if re, ok := fragmentCache[op]; ok {
		return re, nil
	}
	re, err := regexp.Compile("^(?:" + op + ")$")
	if err != nil {
		return nil, err
	}
	fragmentCache[op] = re
	return re, nil
}

// Accepts reports whether s is accepted by the automaton: a path of edges from Start to Accept whose
// concatenated, fully-consumed edge labels equal s exactly. Non-epsilon edge labels are matched as a complete
// regex fragment against the substring the edge is hypothesised to consume; since the fragment may itself denote
// a run of characters (e.g. a charset's Kleene-starred class), every split point is tried via a memoized
// depth-first search over (state, position) pairs. This is a direct simulation, not the general NFA->DFA
// construction, and exists so tests can assert acceptance/rejection without depending on the external
// determiniser/regex extractor.
func (n *NFA) Accepts(s string) bool {
	if n.Start == nil || n.Accept == nil {
		return false
	}
	visited := map[[2]int]bool{}
	var visit func(st *State, pos int) bool
	visit = func(st *State, pos int) bool {
		if st == n.Accept && pos == len(s) {
			return true
		}
		// Guard against infinite ε-loops: a (state, pos) pair seen before is either on the current path or was
		// already explored without reaching Accept, so it cannot lead anywhere new.
		key := [2]int{st.ID, pos}
		if visited[key] {
			return false
		}
		visited[key] = true

		for _, e := range st.Outgoing {
			if e.Op == Epsilon {
				if visit(e.To, pos) {
					return true
				}
				continue
			}
			re, err := compileFragment(e.Op)
			if err != nil {
				continue
			}
			for end := pos; end <= len(s); end++ {
				if re.MatchString(s[pos:end]) && visit(e.To, end) {
					return true
				}
			}
		}
		return false
	}
	return visit(n.Start, 0)
}

// ToDot renders the automaton in Graphviz dot format for diagnostics.
func (n *NFA) ToDot() string {
	var b strings.Builder
	b.WriteString("digraph NFA {\n  rankdir=LR;\n")
	for _, s := range n.States {
		shape := "circle"
		if s.IsAccepting {
			shape = "doublecircle"
		}
		extra := ""
		if s.IsStart {
			extra = " [style=bold]"
		}
		b.WriteString(fmt.Sprintf("  %d [shape=%s]%s;\n", s.ID, shape, extra))
	}
	for _, s := range n.States {
		for _, e := range s.Outgoing {
			b.WriteString(fmt.Sprintf("  %d -> %d [label=%q];\n", e.From.ID, e.To.ID, e.Op))
		}
	}
	b.WriteString("}\n")
	return b.String()
}
