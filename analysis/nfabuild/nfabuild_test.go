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

package nfabuild_test

import (
	"errors"
	"testing"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/charsetprop"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/nfabuild"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/regularize"
)

// buildS1 builds spec.md S1: A -> a | B; B -> A b (left recursion).
func buildS1(t *testing.T) *grammar.Grammar {
	t.Helper()
	g := grammar.New()
	a := g.GetOrCreateNonterminal(0)
	b := g.GetOrCreateNonterminal(1)
	tb := g.GetOrCreateNonterminal(2)
	a.Productions = []grammar.Production{
		grammar.TerminalProduction{Term: grammar.Literal("a")},
		grammar.UnitProduction{A: b},
	}
	b.Productions = []grammar.Production{
		grammar.ConcatProduction{A: a, B: tb},
	}
	tb.Productions = []grammar.Production{
		grammar.TerminalProduction{Term: grammar.Literal("b")},
	}
	g.Start = a
	return g
}

func runPipeline(t *testing.T, g *grammar.Grammar, hotspot map[uint32]bool) *nfabuild.Result {
	t.Helper()
	charsetprop.Propagate(g, nil, nil)
	regularize.Regularize(g, hotspot, nil)
	res, err := nfabuild.Build(g, nil)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	return res
}

func TestS1LeftRecursion(t *testing.T) {
	g := buildS1(t)
	res := runPipeline(t, g, map[uint32]bool{0: true})

	for _, s := range []string{"a", "ab", "abb", "abbb"} {
		if !res.NFA.Accepts(s) {
			t.Errorf("expected %q to be accepted", s)
		}
	}
	for _, s := range []string{"", "b", "ba"} {
		if res.NFA.Accepts(s) {
			t.Errorf("expected %q to be rejected", s)
		}
	}
}

func TestBuildExactlyOneStartAndAccept(t *testing.T) {
	g := buildS1(t)
	res := runPipeline(t, g, map[uint32]bool{0: true})

	starts, accepts := 0, 0
	for _, s := range res.NFA.States {
		if s.IsStart {
			starts++
		}
		if s.IsAccepting {
			accepts++
		}
	}
	if starts != 1 {
		t.Errorf("expected exactly one start state, got %d", starts)
	}
	if accepts != 1 {
		t.Errorf("expected exactly one accept state, got %d", accepts)
	}
}

func TestBuildMissingStart(t *testing.T) {
	g := grammar.New()
	_, err := nfabuild.Build(g, nil)
	if !errors.Is(err, nfabuild.ErrMissingStart) {
		t.Fatalf("expected ErrMissingStart, got %v", err)
	}
}

func TestS2ArithmeticAfterRegularization(t *testing.T) {
	// S -> T S | a; T -> S P; P -> +
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

	res := runPipeline(t, g, map[uint32]bool{s.ID: true})

	for _, str := range []string{"a", "a+a+a+a"} {
		if !res.NFA.Accepts(str) {
			t.Errorf("expected %q to be accepted", str)
		}
	}
	for _, str := range []string{"", "a+a+", "+a+a"} {
		if res.NFA.Accepts(str) {
			t.Errorf("expected %q to be rejected", str)
		}
	}
}
