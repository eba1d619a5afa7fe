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

package charset_test

import (
	"testing"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/charset"
)

func TestFiniteUnion(t *testing.T) {
	a := charset.FiniteFromString("ab")
	b := charset.FiniteFromString("bc")
	u := a.Union(b)
	if !u.IsFinite() {
		t.Fatalf("expected finite ∪ finite to be finite")
	}
	for _, c := range []rune("abc") {
		if !u.Contains(c) {
			t.Errorf("expected union to contain %q", c)
		}
	}
	if u.Contains('d') {
		t.Errorf("union should not contain 'd'")
	}
}

func TestFiniteUnionComplement(t *testing.T) {
	// finite ∪ (Σ∖R) = Σ∖(R∖finite)
	finite := charset.FiniteFromString("xy")
	comp := charset.SigmaMinus([]rune("xyz")...)
	u := finite.Union(comp)
	if u.IsFinite() {
		t.Fatalf("expected finite ∪ complement to be a complement")
	}
	// R∖finite = {z}, so result should exclude only 'z'
	if u.Contains('z') {
		t.Errorf("expected result to exclude 'z'")
	}
	if !u.Contains('x') || !u.Contains('w') {
		t.Errorf("expected result to include 'x' and 'w'")
	}
}

func TestComplementUnionComplement(t *testing.T) {
	// (Σ∖R1) ∪ (Σ∖R2) = Σ∖(R1∩R2)
	c1 := charset.SigmaMinus('a', 'b')
	c2 := charset.SigmaMinus('b', 'c')
	u := c1.Union(c2)
	if u.IsFinite() {
		t.Fatalf("expected complement ∪ complement to be a complement")
	}
	// R1∩R2 = {b}, so only 'b' is excluded
	if u.Contains('b') {
		t.Errorf("expected 'b' excluded from union")
	}
	if !u.Contains('a') || !u.Contains('c') {
		t.Errorf("expected 'a' and 'c' included in union")
	}
}

func TestIntersect(t *testing.T) {
	a := charset.FiniteFromString("abc")
	b := charset.SigmaMinus('a')
	i := a.Intersect(b)
	if !i.IsFinite() {
		t.Fatalf("expected finite ∩ complement to be finite")
	}
	if i.Contains('a') {
		t.Errorf("'a' should be excluded")
	}
	if !i.Contains('b') || !i.Contains('c') {
		t.Errorf("expected 'b' and 'c' present")
	}
}

func TestAddRemove(t *testing.T) {
	empty := charset.Empty()
	withA := empty.Add('a')
	if !withA.Contains('a') {
		t.Fatalf("expected 'a' to be added")
	}
	if empty.Contains('a') {
		t.Errorf("Add must not mutate the receiver")
	}

	sigma := charset.Sigma()
	withoutA := sigma.Remove('a')
	if withoutA.Contains('a') {
		t.Errorf("expected 'a' to be removed from Σ")
	}
	if !sigma.Contains('a') {
		t.Errorf("Remove must not mutate the receiver")
	}
}

func TestEqualNoNormalisation(t *testing.T) {
	sigma := charset.Sigma() // Σ∖∅
	// A finite set cannot represent "every character" in this test harness since runes are unbounded,
	// but Σ∖∅ must still not equal any finite set, even one built to mimic it superficially.
	finiteEmpty := charset.Empty()
	if sigma.Equal(finiteEmpty) {
		t.Errorf("Σ∖∅ must never equal the empty finite set")
	}
}

func TestEqualSameRepresentation(t *testing.T) {
	a := charset.FiniteFromString("abc")
	b := charset.FiniteFromString("cba")
	if !a.Equal(b) {
		t.Errorf("expected equal finite sets regardless of construction order")
	}

	c1 := charset.SigmaMinus('x', 'y')
	c2 := charset.SigmaMinus('y', 'x')
	if !c1.Equal(c2) {
		t.Errorf("expected equal complements regardless of construction order")
	}
}

func TestToRegexPatternFinite(t *testing.T) {
	cs := charset.FiniteFromString("ab")
	pat := cs.ToRegexPattern()
	if pat != "(a|b)*" {
		t.Errorf("got %q, want (a|b)*", pat)
	}
}

func TestToRegexPatternDigits(t *testing.T) {
	cs := charset.FiniteFromString("0123456789")
	pat := cs.ToRegexPattern()
	if pat != `(\d)*` {
		t.Errorf("got %q, want (\\d)*", pat)
	}
}

func TestToRegexPatternComplement(t *testing.T) {
	cs := charset.SigmaMinus('a', 'b')
	pat := cs.ToRegexPattern()
	if pat != "[^ab]*" {
		t.Errorf("got %q, want [^ab]*", pat)
	}
}

func TestToRegexPatternEmpty(t *testing.T) {
	cs := charset.Empty()
	if cs.ToRegexPattern() != "()*" {
		t.Errorf("expected ()* for the empty set, got %q", cs.ToRegexPattern())
	}
}
