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

package components_test

import (
	"testing"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/components"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
)

// buildS2 builds spec.md S2: S -> T S | a; T -> S P; P -> +  (BOTH recursive S/T component).
func buildS2(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New()
	s := g.GetOrCreateNonterminal(0)
	ty := g.GetOrCreateNonterminal(1)
	p := g.GetOrCreateNonterminal(2)
	s.Productions = []grammar.Production{
		grammar.ConcatProduction{A: ty, B: s},
		grammar.TerminalProduction{Term: grammar.Literal("a")},
	}
	ty.Productions = []grammar.Production{
		grammar.ConcatProduction{A: s, B: p},
	}
	p.Productions = []grammar.Production{
		grammar.TerminalProduction{Term: grammar.Literal("+")},
	}
	g.Start = s
	return g
}

func TestClassifyBothRecursive(t *testing.T) {
	g := buildS2(t)
	comps := components.Classify(g)

	var stComp *components.Component
	for _, c := range comps {
		if len(c.Members) == 2 {
			stComp = c
		}
	}
	if stComp == nil {
		t.Fatalf("expected a 2-member component for {S, T}, got %v", comps)
	}
	if stComp.Recursion != components.BOTH {
		t.Errorf("expected BOTH recursion for the S/T component, got %s", stComp.Recursion)
	}
}

func TestClassifyReverseTopoOrder(t *testing.T) {
	g := buildS2(t)
	comps := components.Classify(g)
	// P (id 2) is a leaf with no outgoing nonterminal edges; it must appear before the S/T component since
	// Tarjan's output is reverse-topological (leaves first).
	leafIdx, stIdx := -1, -1
	for i, c := range comps {
		if len(c.Members) == 1 && c.Members[0].ID == 2 {
			leafIdx = i
		}
		if len(c.Members) == 2 {
			stIdx = i
		}
	}
	if leafIdx == -1 || stIdx == -1 {
		t.Fatalf("expected to find both the leaf component and the S/T component, got %v", comps)
	}
	if leafIdx >= stIdx {
		t.Errorf("expected leaf component P (idx %d) before S/T component (idx %d)", leafIdx, stIdx)
	}
}

func TestClassifyNoneRecursive(t *testing.T) {
	g := grammar.New()
	a := g.GetOrCreateNonterminal(0)
	a.Productions = []grammar.Production{
		grammar.TerminalProduction{Term: grammar.Literal("x")},
	}
	comps := components.Classify(g)
	if len(comps) != 1 || comps[0].Recursion != components.NONE {
		t.Fatalf("expected a single NONE-recursive component, got %v", comps)
	}
}

func TestCrossCheckWithGonum(t *testing.T) {
	g := buildS2(t)
	comps := components.Classify(g)
	if err := components.CrossCheckWithGonum(g, comps); err != nil {
		t.Errorf("gonum cross-check disagreed with Classify: %v", err)
	}
}

func TestIsComponentRecursive(t *testing.T) {
	g := buildS2(t)
	comps := components.Classify(g)
	s := g.Nonterminals[0]
	comp := components.FindComponentFor(comps, s)
	if !components.IsComponentRecursive(s, comp) {
		t.Errorf("expected S to be component-recursive (2-member SCC)")
	}

	p := g.Nonterminals[2]
	pComp := components.FindComponentFor(comps, p)
	if components.IsComponentRecursive(p, pComp) {
		t.Errorf("expected P (singleton, no self-loop) to not be component-recursive")
	}
}

func TestIsComponentRecursiveSelfLoop(t *testing.T) {
	g := grammar.New()
	a := g.GetOrCreateNonterminal(0)
	a.Productions = []grammar.Production{
		grammar.UnitProduction{A: a},
	}
	comps := components.Classify(g)
	comp := components.FindComponentFor(comps, a)
	if !components.IsComponentRecursive(a, comp) {
		t.Errorf("expected a self-looping singleton to be component-recursive")
	}
}
