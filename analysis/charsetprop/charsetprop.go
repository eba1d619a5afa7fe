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

// Package charsetprop is the character-set approximation pass (C5): a per-SCC fix-point that computes an upper
// bound on the characters any string derivable from each nonterminal may contain, followed by an operation-cycle
// breaker that removes every UnaryOp/BinaryOp production participating in a cycle, replacing it with the
// terminal its operation would produce. This is what makes the later Mohri-Nederhof rewrite (C6) and Nederhof
// construction (C7) sound: neither can tolerate an operation sitting on a grammar cycle.
package charsetprop

import (
	"sort"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/charset"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/components"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/config"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/stringops"
	"git.amazon.com/pkg/ARG-StringApprox/internal/graphutil"
)

// RecomputeCharSet recomputes cs(A) as the union, over every production of A, of that production's
// contribution: a terminal contributes its own CharSet; a unit production contributes cs of its operand; a
// concat contributes the union of both operands' charsets; a unary/binary op production contributes its
// operation's CharsetTransform over its operand(s).
func RecomputeCharSet(nt *grammar.Nonterminal) charset.CharSet {
	cs := charset.Empty()
	for _, p := range nt.Productions {
		cs = cs.Union(productionCharSet(p))
	}
	return cs
}

func productionCharSet(p grammar.Production) charset.CharSet {
	switch pr := p.(type) {
	case grammar.TerminalProduction:
		return pr.Term.CharSet
	case grammar.UnitProduction:
		return pr.A.CharSet
	case grammar.ConcatProduction:
		return pr.A.CharSet.Union(pr.B.CharSet)
	case grammar.UnaryOpProduction:
		return pr.Op.CharsetTransform(pr.A.CharSet, charset.CharSet{})
	case grammar.BinaryOpProduction:
		return pr.Op.CharsetTransform(pr.A.CharSet, pr.B.CharSet)
	default:
		return charset.Empty()
	}
}

// Propagate runs the full C5 pass over g: a per-component fix-point (reverse topological order, so a
// component's successors are already stable), then repeated operation-cycle breaking. cfg bounds the fix-point
// round count per component (config.Config.MaxFixpointRounds); on an empty grammar it is a no-op. logs receives
// fix-point round counts and cycle-breaking decisions at Debug level; a nil logs is a silent no-op.
func Propagate(g *grammar.Grammar, cfg *config.Config, logs *config.LogGroup) {
	if len(g.Nonterminals) == 0 {
		return
	}
	maxRounds := config.DefaultMaxFixpointRounds
	if cfg != nil && cfg.MaxFixpointRounds > 0 {
		maxRounds = cfg.MaxFixpointRounds
	}
	comps := components.Classify(g)
	logs.Debugf("charsetprop: propagating over %d component(s), max %d round(s) each", len(comps), maxRounds)
	for _, comp := range comps {
		fixpoint(comp, maxRounds, logs)
	}
	breakOperationCycles(g, logs)
}

// fixpoint runs the worklist algorithm of §4.5 step 1 over one component: initialise (zero value is already ∅),
// worklist = component nonterminals in id-ascending order for determinism, recompute and re-enqueue predecessors
// within the component on change. If the round bound is reached with work still queued, every member's charset
// is widened to Σ and a warning is logged.
func fixpoint(comp *components.Component, maxRounds int, logs *config.LogGroup) {
	members := make([]*grammar.Nonterminal, len(comp.Members))
	copy(members, comp.Members)
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })

	memberSet := make(map[uint32]bool, len(members))
	for _, m := range members {
		memberSet[m.ID] = true
	}
	// predecessors restricted to this component: who (within the component) mentions this nonterminal.
	preds := make(map[uint32][]*grammar.Nonterminal)
	for _, a := range members {
		for _, p := range a.Productions {
			for _, s := range p.Successors() {
				if s != nil && memberSet[s.ID] {
					preds[s.ID] = append(preds[s.ID], a)
				}
			}
		}
	}

	worklist := append([]*grammar.Nonterminal(nil), members...)
	inWorklist := make(map[uint32]bool, len(members))
	for _, m := range members {
		inWorklist[m.ID] = true
	}

	bound := maxRounds * (len(members) + 1)
	rounds := 0
	for ; rounds < bound && len(worklist) > 0; rounds++ {
		a := worklist[0]
		worklist = worklist[1:]
		inWorklist[a.ID] = false

		newCS := RecomputeCharSet(a)
		logs.Tracef("charsetprop: popped %s, recomputed its charset", a)
		if newCS.Equal(a.CharSet) {
			continue
		}
		a.CharSet = newCS
		for _, p := range preds[a.ID] {
			if !inWorklist[p.ID] {
				logs.Tracef("charsetprop: %s changed, pushing predecessor %s", a, p)
				worklist = append(worklist, p)
				inWorklist[p.ID] = true
			}
		}
	}
	if len(worklist) > 0 {
		logs.Warnf("charsetprop: component of %d member(s) did not settle within %d round(s), widening to Σ",
			len(members), rounds)
		for _, m := range members {
			m.CharSet = charset.Sigma()
		}
		return
	}
	logs.Debugf("charsetprop: component of %d member(s) settled after %d round(s)", len(members), rounds)
}

// breakOperationCycles repeatedly finds, across all components, an operation production (UnaryOp or BinaryOp)
// with at least one operand in its own component, picks the highest-priority one (ties broken by encounter
// order), and replaces it with a TerminalProduction over the charset that operation would have produced. The SCC
// partition is recomputed after every single replacement, since the production graph changed.
func breakOperationCycles(g *grammar.Grammar, logs *config.LogGroup) {
	for {
		comps := components.Classify(g)
		if !breakOneCycle(comps, logs) {
			return
		}
	}
}

type opCycleCandidate struct {
	owner *grammar.Nonterminal
	idx   int
	op    stringops.Operation
}

// breakOneCycle finds and eliminates at most one operation-cycle production across all components, returning
// whether it found (and eliminated) one.
func breakOneCycle(comps []*components.Component, logs *config.LogGroup) bool {
	for _, comp := range comps {
		memberSet := make(map[uint32]bool, len(comp.Members))
		for _, m := range comp.Members {
			memberSet[m.ID] = true
		}
		var candidates []opCycleCandidate
		for _, owner := range comp.Members {
			for idx, p := range owner.Productions {
				switch pr := p.(type) {
				case grammar.UnaryOpProduction:
					if pr.A != nil && memberSet[pr.A.ID] {
						candidates = append(candidates, opCycleCandidate{owner, idx, pr.Op})
					}
				case grammar.BinaryOpProduction:
					if (pr.A != nil && memberSet[pr.A.ID]) || (pr.B != nil && memberSet[pr.B.ID]) {
						candidates = append(candidates, opCycleCandidate{owner, idx, pr.Op})
					}
				}
			}
		}
		if len(candidates) == 0 {
			continue
		}
		if logs != nil {
			cycles := graphutil.FindAllElementaryCycles(componentGraph(comp, memberSet))
			logs.Debugf("charsetprop: %d operation-cycle candidate(s) among %d elementary cycle(s) in this component",
				len(candidates), len(cycles))
		}
		best := candidates[0]
		for _, c := range candidates[1:] {
			if c.op.Priority() > best.op.Priority() {
				best = c
			}
		}
		p := best.owner.Productions[best.idx]
		var cs charset.CharSet
		switch pr := p.(type) {
		case grammar.UnaryOpProduction:
			cs = pr.Op.CharsetTransform(pr.A.CharSet, charset.CharSet{})
		case grammar.BinaryOpProduction:
			cs = pr.Op.CharsetTransform(pr.A.CharSet, pr.B.CharSet)
		}
		best.owner.Productions[best.idx] = grammar.TerminalProduction{
			Term: grammar.NonLiteral(cs.ToRegexPattern(), cs),
		}
		logs.Debugf("charsetprop: broke operation cycle at %s production %d (op priority %d)",
			best.owner.Label, best.idx, best.op.Priority())
		return true
	}
	return false
}

// componentGraph builds the graphutil.Graph view of comp's members and their within-component successor edges,
// for Johnson's elementary-cycle enumeration (a diagnostic over how many cycles a single operation-production
// removal can break, not something the core algorithm's correctness depends on).
func componentGraph(comp *components.Component, memberSet map[uint32]bool) graphutil.Graph {
	edges := make(map[int64]map[int64]bool, len(comp.Members))
	for _, m := range comp.Members {
		adj := map[int64]bool{}
		for _, p := range m.Productions {
			for _, s := range p.Successors() {
				if s != nil && memberSet[s.ID] {
					adj[int64(s.ID)] = true
				}
			}
		}
		edges[int64(m.ID)] = adj
	}
	return graphutil.NewGraph(edges, nil)
}
