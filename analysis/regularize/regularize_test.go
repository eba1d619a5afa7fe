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

package regularize_test

import (
	"testing"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/charsetprop"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/components"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/regularize"
)

// buildS2 builds spec.md S2: S -> T S | a; T -> S P; P -> +.
func buildS2(t *testing.T) (*grammar.Grammar, *grammar.Nonterminal) {
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
	return g, s
}

func TestRegularizeEliminatesBoth(t *testing.T) {
	g, s := buildS2(t)
	charsetprop.Propagate(g, nil, nil)
	regularize.Regularize(g, map[uint32]bool{s.ID: true}, nil)

	comps := components.Classify(g)
	for _, c := range comps {
		if c.Recursion == components.BOTH {
			t.Fatalf("expected no BOTH-recursive component after regularization, found one with members %v",
				c.Members)
		}
	}
}

func TestRegularizeMintsFreshNonterminals(t *testing.T) {
	g, s := buildS2(t)
	before := len(g.Nonterminals)
	regularize.Regularize(g, map[uint32]bool{s.ID: true}, nil)
	after := len(g.Nonterminals)
	if after <= before {
		t.Fatalf("expected regularization to mint new (primed/helper) nonterminals, before=%d after=%d",
			before, after)
	}
}

func TestRegularizeNoOpOnNonBothGrammar(t *testing.T) {
	g := grammar.New()
	a := g.GetOrCreateNonterminal(0)
	a.Productions = []grammar.Production{
		grammar.TerminalProduction{Term: grammar.Literal("x")},
	}
	g.Start = a
	before := len(g.Nonterminals)
	regularize.Regularize(g, nil, nil)
	if len(g.Nonterminals) != before {
		t.Errorf("expected no new nonterminals minted for a NONE-recursive grammar")
	}
}
