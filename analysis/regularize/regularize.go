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

// Package regularize is the Mohri-Nederhof regular approximation pass (C6): every strongly connected component
// whose recursion is BOTH is rewritten, via freshly minted "primed" nonterminals, into a purely right-recursive
// shape. After this pass, a fresh SCC classification of the grammar must find no BOTH component left (spec.md
// §8.4) — this package deliberately leaves that reclassification to the caller (nfabuild re-runs
// components.Classify before building the automaton) rather than hand-patching Component values, since the
// design notes explicitly allow recomputing SCCs after C6 instead of re-entering it.
package regularize

import (
	"git.amazon.com/pkg/ARG-StringApprox/analysis/components"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/config"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
)

// Regularize rewrites every BOTH-recursive component of g in place. hotspotIDs is the externally supplied set of
// nonterminal ids (§6 "Hotspot identifier set") whose primed counterpart unconditionally receives an
// ε-production. logs receives, at Debug level, which components were rewritten; a nil logs is a silent no-op.
func Regularize(g *grammar.Grammar, hotspotIDs map[uint32]bool, logs *config.LogGroup) {
	comps := components.Classify(g)
	compOf := make(map[uint32]*components.Component, len(g.Nonterminals))
	for _, c := range comps {
		for _, m := range c.Members {
			compOf[m.ID] = c
		}
	}
	preds := g.GetAllPredecessors()

	for _, comp := range comps {
		if comp.Recursion != components.BOTH {
			continue
		}
		logs.Debugf("regularize: rewriting BOTH-recursive component of %d member(s)", len(comp.Members))
		regularizeComponent(g, comp, compOf, preds, hotspotIDs)
	}
}

func regularizeComponent(
	g *grammar.Grammar,
	comp *components.Component,
	compOf map[uint32]*components.Component,
	preds map[uint32][]uint32,
	hotspotIDs map[uint32]bool,
) {
	memberSet := make(map[uint32]bool, len(comp.Members))
	for _, m := range comp.Members {
		memberSet[m.ID] = true
	}

	// Step 1-2: decide needs-ε and mint every primed nonterminal up front, before any production is rewritten,
	// since later rewrite steps reference A' for every A in the component (including ones not yet visited).
	primed := make(map[uint32]*grammar.Nonterminal, len(comp.Members))
	for _, a := range comp.Members {
		aPrime := g.CreateNewNonterminal()
		primed[a.ID] = aPrime
		if needsEpsilon(a, comp, compOf, preds, hotspotIDs) {
			aPrime.Productions = append(aPrime.Productions, grammar.TerminalProduction{Term: grammar.Epsilon()})
		}
	}

	// Step 3: empty and rewrite every member's original productions.
	for _, a := range comp.Members {
		saved := a.Productions
		a.Productions = nil
		aPrime := primed[a.ID]
		for _, p := range saved {
			rewriteProduction(g, a, aPrime, p, memberSet, primed)
		}
	}
}

// needsEpsilon implements §4.6 step 1: A needs ε on its primed counterpart iff it is the hotspot, or some
// predecessor lies in a different component.
func needsEpsilon(
	a *grammar.Nonterminal,
	comp *components.Component,
	compOf map[uint32]*components.Component,
	preds map[uint32][]uint32,
	hotspotIDs map[uint32]bool,
) bool {
	if hotspotIDs[a.ID] {
		return true
	}
	for _, predID := range preds[a.ID] {
		if predComp, ok := compOf[predID]; !ok || predComp != comp {
			return true
		}
	}
	return false
}

// rewriteProduction dispatches one of A's original productions p to the corresponding §4.6 step 3 rewrite rule,
// appending the resulting productions to A, the primed nonterminals, or freshly minted component helpers.
func rewriteProduction(
	g *grammar.Grammar,
	a, aPrime *grammar.Nonterminal,
	p grammar.Production,
	memberSet map[uint32]bool,
	primed map[uint32]*grammar.Nonterminal,
) {
	switch pr := p.(type) {
	case grammar.UnitProduction:
		if memberSet[pr.A.ID] {
			// Unit(B): A->B, B'->A'.
			b := pr.A
			bPrime := primed[b.ID]
			a.Productions = append(a.Productions, grammar.UnitProduction{A: b})
			bPrime.Productions = append(bPrime.Productions, grammar.UnitProduction{A: aPrime})
		} else {
			// Unit(X): A->X A'.
			a.Productions = append(a.Productions, grammar.ConcatProduction{A: pr.A, B: aPrime})
		}

	case grammar.ConcatProduction:
		bInComp, cInComp := memberSet[pr.A.ID], memberSet[pr.B.ID]
		switch {
		case bInComp && cInComp:
			// Concat(B,C): A->B, B'->C, C'->A'.
			b, c := pr.A, pr.B
			bPrime, cPrime := primed[b.ID], primed[c.ID]
			a.Productions = append(a.Productions, grammar.UnitProduction{A: b})
			bPrime.Productions = append(bPrime.Productions, grammar.UnitProduction{A: c})
			cPrime.Productions = append(cPrime.Productions, grammar.UnitProduction{A: aPrime})
		case bInComp && !cInComp:
			// Concat(B,X): A->B, B'->X A'.
			b, x := pr.A, pr.B
			bPrime := primed[b.ID]
			a.Productions = append(a.Productions, grammar.UnitProduction{A: b})
			bPrime.Productions = append(bPrime.Productions, grammar.ConcatProduction{A: x, B: aPrime})
		case !bInComp && cInComp:
			// Concat(X,B): A->X B, B'->A'.
			x, b := pr.A, pr.B
			bPrime := primed[b.ID]
			a.Productions = append(a.Productions, grammar.ConcatProduction{A: x, B: b})
			bPrime.Productions = append(bPrime.Productions, grammar.UnitProduction{A: aPrime})
		default:
			// Concat(X,Y): mint R, A->R A', R->X Y.
			r := g.CreateNewNonterminal()
			a.Productions = append(a.Productions, grammar.ConcatProduction{A: r, B: aPrime})
			r.Productions = append(r.Productions, grammar.ConcatProduction{A: pr.A, B: pr.B})
		}

	case grammar.UnaryOpProduction:
		// UnaryOp(op,X): mint R, A->R A', R->op(X). Per §4.6, an op production surviving to C6 cannot have
		// its operand inside the component (C5 already eliminated every operation production on a cycle), so
		// X is always treated as external.
		r := g.CreateNewNonterminal()
		a.Productions = append(a.Productions, grammar.ConcatProduction{A: r, B: aPrime})
		r.Productions = append(r.Productions, grammar.UnaryOpProduction{Op: pr.Op, A: pr.A})

	case grammar.BinaryOpProduction:
		// BinaryOp(op,X,Y): mint R, A->R A', R->op(X,Y).
		r := g.CreateNewNonterminal()
		a.Productions = append(a.Productions, grammar.ConcatProduction{A: r, B: aPrime})
		r.Productions = append(r.Productions, grammar.BinaryOpProduction{Op: pr.Op, A: pr.A, B: pr.B})

	case grammar.TerminalProduction:
		// Terminal(t): mint R, A->R A', R->t.
		r := g.CreateNewNonterminal()
		a.Productions = append(a.Productions, grammar.ConcatProduction{A: r, B: aPrime})
		r.Productions = append(r.Productions, grammar.TerminalProduction{Term: pr.Term})
	}
}
