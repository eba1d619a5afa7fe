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

// Package nfabuild is the grammar-to-NFA pass (C7): the Nederhof construction, which builds an ε-NFA with
// exactly one start and one accept state from a grammar whose every component is LEFT, RIGHT, or NONE-recursive
// (the C6 postcondition), attaching taint annotations wherever a UnaryOp/BinaryOp production is traversed.
package nfabuild

import (
	"errors"
	"regexp"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/automaton"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/components"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/config"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
)

// ErrMissingStart is returned when the grammar has no designated start nonterminal.
var ErrMissingStart = errors.New("nfabuild: grammar has no start nonterminal")

// Result is the outcome of Build: the constructed automaton plus the full ordered list of taints introduced
// anywhere during construction, in depth (introduction) order. The operation resolver (C8) processes this list
// in reverse.
type Result struct {
	NFA    *automaton.NFA
	Taints []automaton.OperationTaint
}

// Build runs the Nederhof construction over g, per §4.7. logs receives construction progress at Debug level; a
// nil logs is a silent no-op.
func Build(g *grammar.Grammar, logs *config.LogGroup) (*Result, error) {
	if g.Start == nil {
		return nil, ErrMissingStart
	}
	comps := components.Classify(g)
	compOf := make(map[uint32]*components.Component, len(g.Nonterminals))
	for _, c := range comps {
		for _, m := range c.Members {
			compOf[m.ID] = c
		}
	}
	logs.Debugf("nfabuild: building from %d nonterminal(s) across %d component(s)", len(g.Nonterminals), len(comps))

	nfa := automaton.New()
	q0 := nfa.NewState()
	q1 := nfa.NewState()
	q0.IsStart = true
	q1.IsAccepting = true
	nfa.Start = q0
	nfa.Accept = q1

	b := &builder{nfa: nfa, compOf: compOf}
	b.build(q0, []grammar.Symbol{g.Start}, q1, nil)
	logs.Debugf("nfabuild: built %d state(s), %d taint(s)", len(nfa.States), len(b.allTaints))
	return &Result{NFA: nfa, Taints: b.allTaints}, nil
}

type builder struct {
	nfa       *automaton.NFA
	compOf    map[uint32]*components.Component
	allTaints []automaton.OperationTaint
}

func (b *builder) newTaint(op automaton.Operation) automaton.OperationTaint {
	t := automaton.NewOperationTaint(op)
	b.allTaints = append(b.allTaints, t)
	return t
}

// markTaints records taints on s (skipping any already present), implementing "every state visited along a
// tainted subcall records that chain".
func markTaints(s *automaton.State, taints []automaton.OperationTaint) {
	for _, t := range taints {
		if !s.HasTaint(t) {
			s.Taints = append(s.Taints, t)
		}
	}
}

var literalEscape = regexp.MustCompile(`([.*+?()\[\]{}|^$\\])`)

func escapeLiteral(s string) string {
	return literalEscape.ReplaceAllString(s, `\$1`)
}

func isAllEpsilon(alpha []grammar.Symbol) bool {
	for _, s := range alpha {
		t, ok := s.(grammar.Terminal)
		if !ok || !t.IsEpsilon {
			return false
		}
	}
	return true
}

// build adds transitions from q0 to q1 accepting the language generated by the sentential form alpha, per the
// case analysis of §4.7 (evaluated top-to-bottom).
func (b *builder) build(q0 *automaton.State, alpha []grammar.Symbol, q1 *automaton.State, taints []automaton.OperationTaint) {
	if len(taints) > 0 {
		markTaints(q0, taints)
		markTaints(q1, taints)
		for _, t := range taints {
			t.MarkBoundary(q0, q1)
		}
	}

	switch {
	case len(alpha) == 0 || isAllEpsilon(alpha):
		b.nfa.AddEdge(q0, q1, automaton.Epsilon, taints)

	case len(alpha) == 1:
		switch sym := alpha[0].(type) {
		case grammar.Terminal:
			op := sym.Value
			if sym.IsLiteral {
				op = escapeLiteral(sym.Value)
			}
			b.nfa.AddEdge(q0, q1, op, taints)
		case *grammar.Nonterminal:
			b.buildNonterminal(q0, sym, q1, taints)
		}

	default:
		q := b.nfa.NewState()
		b.build(q0, alpha[:1], q, taints)
		b.build(q, alpha[1:], q1, taints)
	}
}

// buildNonterminal handles the |α|=1, α a Nonterminal case.
func (b *builder) buildNonterminal(q0 *automaton.State, a *grammar.Nonterminal, q1 *automaton.State, taints []automaton.OperationTaint) {
	comp := b.compOf[a.ID]
	if !components.IsComponentRecursive(a, comp) {
		for _, p := range a.Productions {
			rhs, prodTaints := rhsOf(p, taints, b)
			b.build(q0, rhs, q1, prodTaints)
		}
		return
	}

	memberSet := make(map[uint32]bool, len(comp.Members))
	for _, m := range comp.Members {
		memberSet[m.ID] = true
	}
	qOf := make(map[uint32]*automaton.State, len(comp.Members))
	for _, m := range comp.Members {
		qOf[m.ID] = b.nfa.NewState()
	}

	r := comp.Recursion
	for _, c := range comp.Members {
		qC := qOf[c.ID]
		for _, p := range c.Productions {
			rhs, prodTaints := rhsOf(p, taints, b)
			positions := memberPositions(rhs, memberSet)
			switch len(positions) {
			case 0:
				if r == components.LEFT {
					b.build(q0, rhs, qC, prodTaints)
				} else {
					b.build(qC, rhs, q1, prodTaints)
				}
			case 1:
				pos := positions[0]
				d := rhs[pos].(*grammar.Nonterminal)
				qD := qOf[d.ID]
				rest := removeAt(rhs, pos)
				if r == components.LEFT {
					b.build(qD, rest, qC, prodTaints)
				} else {
					b.build(qC, rest, qD, prodTaints)
				}
			default:
				// Never produced by C6; a comp-member in the wrong position or two comp-members need not be
				// handled (spec.md §4.7).
			}
		}
	}

	qA := qOf[a.ID]
	if r == components.LEFT {
		b.nfa.AddEdge(qA, q1, automaton.Epsilon, taints)
		markTaints(qA, taints)
	} else {
		b.nfa.AddEdge(q0, qA, automaton.Epsilon, taints)
		markTaints(qA, taints)
	}
}

// rhsOf returns the sentential form of production p's right-hand side and the taint chain to use for the
// subcall: taints unchanged for non-operation productions, or taints with a fresh taint for p's operation
// appended for UnaryOp/BinaryOp productions.
func rhsOf(p grammar.Production, taints []automaton.OperationTaint, b *builder) ([]grammar.Symbol, []automaton.OperationTaint) {
	switch pr := p.(type) {
	case grammar.TerminalProduction:
		return []grammar.Symbol{pr.Term}, taints
	case grammar.UnitProduction:
		return []grammar.Symbol{pr.A}, taints
	case grammar.ConcatProduction:
		return []grammar.Symbol{pr.A, pr.B}, taints
	case grammar.UnaryOpProduction:
		t := b.newTaint(pr.Op)
		return []grammar.Symbol{pr.A}, append(append([]automaton.OperationTaint(nil), taints...), t)
	case grammar.BinaryOpProduction:
		t := b.newTaint(pr.Op)
		return []grammar.Symbol{pr.A, pr.B}, append(append([]automaton.OperationTaint(nil), taints...), t)
	default:
		return nil, taints
	}
}

func memberPositions(rhs []grammar.Symbol, memberSet map[uint32]bool) []int {
	var out []int
	for i, s := range rhs {
		if nt, ok := s.(*grammar.Nonterminal); ok && memberSet[nt.ID] {
			out = append(out, i)
		}
	}
	return out
}

func removeAt(rhs []grammar.Symbol, pos int) []grammar.Symbol {
	out := make([]grammar.Symbol, 0, len(rhs)-1)
	out = append(out, rhs[:pos]...)
	out = append(out, rhs[pos+1:]...)
	return out
}
