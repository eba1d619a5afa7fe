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

// Package grammar is the grammar model (C2): nonterminals identified by a stable id, productions as a closed
// sum type (Terminal, Unit, Concat, UnaryOp, BinaryOp), and the Grammar container that owns them. Equality and
// hashing of a Nonterminal is by id only, per the design notes on cyclic pointer graphs: grammar and automaton
// are never compared structurally.
package grammar

import (
	"fmt"
	"sort"
	"strings"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/charset"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/stringops"
)

// Terminal is a leaf symbol: either an epsilon marker, a literal string, or a non-literal regex fragment (e.g.
// the expansion of a source type like "int") paired with the CharSet of characters it may produce.
type Terminal struct {
	Value     string
	IsLiteral bool
	IsEpsilon bool
	CharSet   charset.CharSet
}

// Epsilon is the terminal that matches only the empty string.
func Epsilon() Terminal {
	return Terminal{IsEpsilon: true, CharSet: charset.Empty()}
}

// Literal returns a terminal that matches exactly value.
func Literal(value string) Terminal {
	return Terminal{Value: value, IsLiteral: true, CharSet: charset.FiniteFromString(value)}
}

// NonLiteral returns a terminal holding a regex fragment (not matched as a literal string) over cs.
func NonLiteral(regexFragment string, cs charset.CharSet) Terminal {
	return Terminal{Value: regexFragment, IsLiteral: false, CharSet: cs}
}

// NewTypedTerminal returns the non-literal terminal a declared source type expands to: pattern is the regex
// fragment substituted for it (e.g. "0|(-?[1-9][0-9]*)" for "int"), cs the set of characters a string matching
// pattern may contain (spec.md §3). It is NonLiteral under another name, kept distinct so call sites that are
// specifically resolving a type-regex-table entry (analysis/grammarinput) read as doing that, not as building an
// arbitrary non-literal terminal.
func NewTypedTerminal(pattern string, cs charset.CharSet) Terminal {
	return NonLiteral(pattern, cs)
}

// Symbol is the marker interface satisfied by *Nonterminal and Terminal, the two things that may appear on the
// right-hand side of a production.
type Symbol interface {
	symbol()
}

func (Terminal) symbol()      {}
func (*Nonterminal) symbol()  {}

// Production is the closed sum type of right-hand sides a Nonterminal may have. Every variant below is the
// only way to build one; switches over Production are expected to be exhaustive.
type Production interface {
	production()
	// Successors returns the nonterminals mentioned on the production's right-hand side, in order, dropping
	// terminals. Used by getSuccessorsFor/getAllPredecessors and by the SCC classifier (C4).
	Successors() []*Nonterminal
}

// TerminalProduction is X -> t.
type TerminalProduction struct {
	Term Terminal
}

func (TerminalProduction) production()              {}
func (TerminalProduction) Successors() []*Nonterminal { return nil }

// UnitProduction is X -> A.
type UnitProduction struct {
	A *Nonterminal
}

func (UnitProduction) production()                {}
func (p UnitProduction) Successors() []*Nonterminal { return []*Nonterminal{p.A} }

// ConcatProduction is X -> A B.
type ConcatProduction struct {
	A, B *Nonterminal
}

func (ConcatProduction) production() {}
func (p ConcatProduction) Successors() []*Nonterminal {
	return []*Nonterminal{p.A, p.B}
}

// UnaryOpProduction is X -> op(A).
type UnaryOpProduction struct {
	Op stringops.Operation
	A  *Nonterminal
}

func (UnaryOpProduction) production()                {}
func (p UnaryOpProduction) Successors() []*Nonterminal { return []*Nonterminal{p.A} }

// BinaryOpProduction is X -> op(A, B).
type BinaryOpProduction struct {
	Op   stringops.Operation
	A, B *Nonterminal
}

func (BinaryOpProduction) production() {}
func (p BinaryOpProduction) Successors() []*Nonterminal {
	return []*Nonterminal{p.A, p.B}
}

// Nonterminal is identified by a stable nonnegative integer id; Label is an optional display name used only by
// PrintGrammar/ToDot. Equality and hashing must be by id only — never compare Nonterminal values structurally,
// since Productions mutates in place across C5/C6.
type Nonterminal struct {
	ID          uint32
	Label       string
	Productions []Production
	// CharSet is the upper bound, computed by the fix-point approximation (C5), on the characters any string
	// derivable from this nonterminal may contain. Its zero value is the empty finite set, matching the
	// fix-point's initialisation of every charset to ∅.
	CharSet charset.CharSet
}

// Equal reports id equality, the only equality relation a Nonterminal supports.
func (n *Nonterminal) Equal(other *Nonterminal) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.ID == other.ID
}

func (n *Nonterminal) String() string {
	if n.Label != "" {
		return n.Label
	}
	return fmt.Sprintf("N%d", n.ID)
}

// Grammar owns every Nonterminal reachable from Start, plus a monotonically increasing id counter used to mint
// fresh nonterminals (the primed and helper nonterminals of C6).
type Grammar struct {
	Nonterminals map[uint32]*Nonterminal
	Start        *Nonterminal
	maxID        uint32
}

// New returns an empty grammar.
func New() *Grammar {
	return &Grammar{Nonterminals: map[uint32]*Nonterminal{}}
}

// AddNonterminal registers nt in the grammar, tracking its id against maxID.
func (g *Grammar) AddNonterminal(nt *Nonterminal) {
	g.Nonterminals[nt.ID] = nt
	if nt.ID > g.maxID || len(g.Nonterminals) == 1 {
		g.maxID = nt.ID
	}
}

// GetOrCreateNonterminal returns the nonterminal with the given id, creating and registering an empty one if
// absent.
func (g *Grammar) GetOrCreateNonterminal(id uint32) *Nonterminal {
	if nt, ok := g.Nonterminals[id]; ok {
		return nt
	}
	nt := &Nonterminal{ID: id}
	g.AddNonterminal(nt)
	if id > g.maxID {
		g.maxID = id
	}
	return nt
}

// CreateNewNonterminal mints and registers a nonterminal whose id is strictly greater than any id previously
// seen by this grammar (an existing nonterminal, a mint via this method, or a manual AddNonterminal/
// GetOrCreateNonterminal call). Used by C6's primed-nonterminal minting and the R/helper nonterminals introduced
// along the way.
func (g *Grammar) CreateNewNonterminal() *Nonterminal {
	g.maxID++
	nt := &Nonterminal{ID: g.maxID}
	g.Nonterminals[nt.ID] = nt
	return nt
}

// GetSuccessorsFor flattens nt's productions, dropping terminals, and returns the distinct nonterminals
// mentioned, in first-seen order. Used to build the A->B production graph edges for the SCC classifier (C4).
func (g *Grammar) GetSuccessorsFor(nt *Nonterminal) []*Nonterminal {
	seen := map[uint32]bool{}
	var out []*Nonterminal
	for _, p := range nt.Productions {
		for _, s := range p.Successors() {
			if s == nil || seen[s.ID] {
				continue
			}
			seen[s.ID] = true
			out = append(out, s)
		}
	}
	return out
}

// GetAllPredecessors computes, in one O(|productions|) pass over the whole grammar, the map from a
// nonterminal's id to the ids of every nonterminal with a production mentioning it.
func (g *Grammar) GetAllPredecessors() map[uint32][]uint32 {
	preds := map[uint32][]uint32{}
	seen := map[[2]uint32]bool{}
	ids := g.sortedIDs()
	for _, id := range ids {
		nt := g.Nonterminals[id]
		for _, p := range nt.Productions {
			for _, s := range p.Successors() {
				if s == nil {
					continue
				}
				key := [2]uint32{s.ID, nt.ID}
				if seen[key] {
					continue
				}
				seen[key] = true
				preds[s.ID] = append(preds[s.ID], nt.ID)
			}
		}
	}
	return preds
}

func (g *Grammar) sortedIDs() []uint32 {
	ids := make([]uint32, 0, len(g.Nonterminals))
	for id := range g.Nonterminals {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// PrintGrammar renders every production in the §6 textual dialect (A -> rhs1 | rhs2 | ...), one line per
// nonterminal, in id-ascending order. This is the inverse of grammarinput's parser, and their round trip is a
// testable property (spec.md §8.7).
func (g *Grammar) PrintGrammar() string {
	var b strings.Builder
	for _, id := range g.sortedIDs() {
		nt := g.Nonterminals[id]
		if len(nt.Productions) == 0 {
			continue
		}
		rhsides := make([]string, len(nt.Productions))
		for i, p := range nt.Productions {
			rhsides[i] = productionText(p)
		}
		fmt.Fprintf(&b, "%s -> %s\n", nt.String(), strings.Join(rhsides, " | "))
	}
	return b.String()
}

func productionText(p Production) string {
	switch pr := p.(type) {
	case TerminalProduction:
		if pr.Term.IsEpsilon {
			return "ε"
		}
		return pr.Term.Value
	case UnitProduction:
		return pr.A.String()
	case ConcatProduction:
		return pr.A.String() + " " + pr.B.String()
	case UnaryOpProduction:
		return pr.Op.String() + "(" + pr.A.String() + ")"
	case BinaryOpProduction:
		return pr.Op.String() + "(" + pr.A.String() + "," + pr.B.String() + ")"
	default:
		return "?"
	}
}

// ToDot renders the grammar's production graph (nonterminal -> nonterminal edges only, terminals omitted) in
// Graphviz dot format for diagnostics.
func (g *Grammar) ToDot() string {
	var b strings.Builder
	b.WriteString("digraph Grammar {\n")
	for _, id := range g.sortedIDs() {
		nt := g.Nonterminals[id]
		shape := "ellipse"
		if g.Start != nil && nt.ID == g.Start.ID {
			shape = "box"
		}
		fmt.Fprintf(&b, "  %d [label=%q shape=%s];\n", nt.ID, nt.String(), shape)
	}
	for _, id := range g.sortedIDs() {
		nt := g.Nonterminals[id]
		for _, succ := range g.GetSuccessorsFor(nt) {
			fmt.Fprintf(&b, "  %d -> %d;\n", nt.ID, succ.ID)
		}
	}
	b.WriteString("}\n")
	return b.String()
}
