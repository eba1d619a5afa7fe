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

package automaton_test

import (
	"testing"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/automaton"
)

// buildAB builds q0 --a--> q1 --b--> q2(accept), the simplest literal-concatenation NFA.
func buildAB() *automaton.NFA {
	n := automaton.New()
	q0 := n.NewState()
	q1 := n.NewState()
	q2 := n.NewState()
	q0.IsStart = true
	n.Start = q0
	q2.IsAccepting = true
	n.Accept = q2
	n.AddEdge(q0, q1, "a", nil)
	n.AddEdge(q1, q2, "b", nil)
	return n
}

func TestAcceptsLiteralConcat(t *testing.T) {
	n := buildAB()
	if !n.Accepts("ab") {
		t.Errorf("expected 'ab' to be accepted")
	}
	if n.Accepts("a") || n.Accepts("b") || n.Accepts("abb") || n.Accepts("") {
		t.Errorf("expected only 'ab' to be accepted")
	}
}

func TestAcceptsEpsilonLoop(t *testing.T) {
	// q0 --a--> q1, q1 --ε--> q1' accept with a self ε loop to check memoization guards against infinite
	// recursion.
	n := automaton.New()
	q0 := n.NewState()
	q1 := n.NewState()
	q0.IsStart = true
	n.Start = q0
	q1.IsAccepting = true
	n.Accept = q1
	n.AddEdge(q0, q1, "a", nil)
	n.AddEdge(q1, q1, automaton.Epsilon, nil)
	if !n.Accepts("a") {
		t.Errorf("expected 'a' to be accepted despite the self ε-loop")
	}
	if n.Accepts("aa") {
		t.Errorf("expected 'aa' to be rejected")
	}
}

func TestAcceptsKleeneFragment(t *testing.T) {
	n := automaton.New()
	q0 := n.NewState()
	q1 := n.NewState()
	q0.IsStart = true
	n.Start = q0
	q1.IsAccepting = true
	n.Accept = q1
	n.AddEdge(q0, q1, "(a|b)*", nil)
	for _, s := range []string{"", "a", "b", "abba", "aaaa"} {
		if !n.Accepts(s) {
			t.Errorf("expected %q to be accepted by (a|b)*", s)
		}
	}
	if n.Accepts("c") || n.Accepts("abc") {
		t.Errorf("expected strings containing 'c' to be rejected")
	}
}

func TestRemoveUnreachable(t *testing.T) {
	n := buildAB()
	orphan := n.NewState()
	n.AddEdge(orphan, orphan, automaton.Epsilon, nil)
	if len(n.States) != 4 {
		t.Fatalf("expected 4 states before pruning, got %d", len(n.States))
	}
	n.RemoveUnreachable()
	if len(n.States) != 3 {
		t.Errorf("expected 3 states after pruning the orphan, got %d", len(n.States))
	}
}

func TestOperationTaintIdentity(t *testing.T) {
	op := fakeOp{name: "reverse"}
	t1 := automaton.NewOperationTaint(op)
	t2 := automaton.NewOperationTaint(op)
	if t1.Equal(t2) {
		t.Errorf("two distinct taint occurrences referencing equal-valued operations must not be Equal")
	}
	if !t1.Equal(t1) {
		t.Errorf("a taint must equal itself")
	}
}

func TestOperationTaintBoundary(t *testing.T) {
	op := fakeOp{name: "reverse"}
	taint := automaton.NewOperationTaint(op)
	if entry, exit := taint.Boundary(); entry != nil || exit != nil {
		t.Fatalf("expected an unmarked taint to have a nil boundary, got (%v, %v)", entry, exit)
	}

	n := automaton.New()
	q0, q1 := n.NewState(), n.NewState()
	taint.MarkBoundary(q0, q1)
	if entry, exit := taint.Boundary(); entry != q0 || exit != q1 {
		t.Fatalf("expected boundary (%v, %v), got (%v, %v)", q0, q1, entry, exit)
	}

	// The outermost occurrence wins: a later, deeper MarkBoundary call must not overwrite it.
	qInner0, qInner1 := n.NewState(), n.NewState()
	taint.MarkBoundary(qInner0, qInner1)
	if entry, exit := taint.Boundary(); entry != q0 || exit != q1 {
		t.Fatalf("expected boundary to stay (%v, %v) after a second MarkBoundary call, got (%v, %v)", q0, q1, entry, exit)
	}
}

type fakeOp struct{ name string }

func (f fakeOp) Priority() int { return 1 }
func (f fakeOp) AutomatonTransform(nfa *automaton.NFA, taint automaton.OperationTaint, states []*automaton.State) {
}
func (f fakeOp) String() string { return f.name }
