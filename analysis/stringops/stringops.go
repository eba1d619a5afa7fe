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

// Package stringops is the operation catalogue (C3): Reverse, Trim, ToUpperCase, ToLowerCase, and the four
// Replace variants. Operation is a closed sum type — every variant below is the only way to build one, callers
// exhaustively switch rather than subclass, and each carries its priority and both transformers as data, not as
// overridable behaviour.
package stringops

import (
	"regexp"
	"strings"
	"unicode"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/automaton"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/charset"
)

// Operation implements automaton.Operation and additionally exposes a charset transformer, used by the
// fix-point approximation (C5) to compute cs(A) for a UnaryOp/BinaryOp production over its operand(s).
type Operation interface {
	automaton.Operation
	// CharsetTransform computes the charset an application of this operation yields given the charset(s) of
	// its operand(s). Unary operations ignore the second argument.
	CharsetTransform(a, b charset.CharSet) charset.CharSet
}

// ---- Reverse ----

// reverseOp reverses the string(s) its operand can produce.
type reverseOp struct{}

// Reverse is the singleton Reverse operation; reversal has no parameters.
var Reverse Operation = reverseOp{}

func (reverseOp) Priority() int { return 1 }
func (reverseOp) String() string { return "reverse" }

func (reverseOp) CharsetTransform(a, _ charset.CharSet) charset.CharSet { return a }

// AutomatonTransform implements the clone-and-reconnect construction of spec.md §4.3: it clones every tainted
// state, adds a reversed copy of every tainted-to-tainted edge over the clones, then bridges the untouched
// boundary states (taint.Boundary's entry/exit, fixed because the rest of the automaton — including sibling
// alternatives that share the same choice point — may still reference them) into the reversed clone, so that
// entering at the old entry reaches the old exit having traversed the clone back-to-front. The stale original
// interior states are then pruned; the boundary states themselves are kept, with only their internal edges
// removed, since they are reused in place rather than cloned. Boundary is looked up from taint rather than
// guessed from edge shape: a boundary state can have outgoing edges to states outside the tainted set that
// belong to an untainted sibling alternative at the same choice point, which would make an edge-based "is this
// the exit" test misfire.
func (reverseOp) AutomatonTransform(nfa *automaton.NFA, taint automaton.OperationTaint, states []*automaton.State) {
	if len(states) == 0 {
		return
	}
	entry, exit := taint.Boundary()
	if entry == nil || exit == nil {
		// Not threaded through nfabuild's construction (only possible in a test built by hand); leave the
		// automaton unchanged rather than guess at a reconnection that could make it unsound in the other
		// direction.
		return
	}
	inSet := make(map[*automaton.State]bool, len(states))
	for _, s := range states {
		inSet[s] = true
	}

	clone := make(map[*automaton.State]*automaton.State, len(states))
	for _, s := range states {
		clone[s] = nfa.NewState()
	}

	type internalEdge struct {
		from, to *automaton.State
		op       string
		taints   []automaton.OperationTaint
	}
	var edges []internalEdge
	for _, s := range states {
		kept := s.Outgoing[:0]
		for _, e := range s.Outgoing {
			if inSet[e.To] {
				edges = append(edges, internalEdge{from: s, to: e.To, op: e.Op, taints: e.Taints})
				continue
			}
			kept = append(kept, e)
		}
		s.Outgoing = kept
	}
	for _, e := range edges {
		nfa.AddEdge(clone[e.to], clone[e.from], e.op, e.taints)
	}

	// Entering at the old entry now steps straight into the clone of the old exit (the reversed structure's own
	// start); emerging from the clone of the old entry (the reversed structure's own accept) steps back out to
	// the old exit, so the rest of the automaton still enters/leaves through the same two fixed states.
	nfa.AddEdge(entry, clone[exit], automaton.Epsilon, nil)
	nfa.AddEdge(clone[entry], exit, automaton.Epsilon, nil)

	for _, s := range states {
		if s == entry || s == exit {
			continue
		}
		nfa.RemoveState(s)
	}
}

// ---- Trim ----

// trimOp removes leading/trailing whitespace. Its automaton transformer is acknowledged in the source as
// incomplete; it widens implicitly by leaving tainted edges unchanged, matching the reference behaviour.
type trimOp struct{}

// Trim is the singleton Trim operation.
var Trim Operation = trimOp{}

func (trimOp) Priority() int  { return 1 }
func (trimOp) String() string { return "trim" }

func (trimOp) CharsetTransform(a, _ charset.CharSet) charset.CharSet { return a }

// AutomatonTransform is a no-op: the precise edge rewriting trim would require (stripping leading/trailing
// whitespace runs from the tainted sub-language) is left undone in the source this catalogue was modeled on.
func (trimOp) AutomatonTransform(*automaton.NFA, automaton.OperationTaint, []*automaton.State) {}

// ---- ToLowerCase / ToUpperCase ----

type toLowerOp struct{}
type toUpperOp struct{}

// ToLowerCase is the singleton lower-casing operation.
var ToLowerCase Operation = toLowerOp{}

// ToUpperCase is the singleton upper-casing operation.
var ToUpperCase Operation = toUpperOp{}

func (toLowerOp) Priority() int  { return 2 }
func (toLowerOp) String() string { return "toLowerCase" }
func (toUpperOp) Priority() int  { return 2 }
func (toUpperOp) String() string { return "toUpperCase" }

func (toLowerOp) CharsetTransform(a, _ charset.CharSet) charset.CharSet {
	return caseTransform(a, unicode.ToLower, 'A', 'Z')
}

func (toUpperOp) CharsetTransform(a, _ charset.CharSet) charset.CharSet {
	return caseTransform(a, unicode.ToUpper, 'a', 'z')
}

// caseTransform implements both case operations' symmetric charset law: a finite set maps to the finite set of
// each member's cased form; a Σ-complement Σ∖R maps to Σ∖(R ∪ the opposite case's range), since no character in
// that range is left after the case mapping.
func caseTransform(a charset.CharSet, fold func(rune) rune, lo, hi rune) charset.CharSet {
	if a.IsFinite() {
		out := charset.Empty()
		for _, c := range a.Members() {
			out = out.Add(fold(c))
		}
		return out
	}
	widened := a
	for c := lo; c <= hi; c++ {
		widened = widened.Remove(c)
	}
	return widened
}

func (toLowerOp) AutomatonTransform(nfa *automaton.NFA, _ automaton.OperationTaint, states []*automaton.State) {
	caseAutomatonTransform(nfa, states, strings.ToLower)
}

func (toUpperOp) AutomatonTransform(nfa *automaton.NFA, _ automaton.OperationTaint, states []*automaton.State) {
	caseAutomatonTransform(nfa, states, strings.ToUpper)
}

var literalRe = regexp.MustCompile(`^[a-zA-Z]+$`)

// caseAutomatonTransform lowercases/uppercases every purely-alphabetic literal edge label inside the tainted
// region; edges whose label is a regex fragment (not a plain literal) are left alone, per the contract that only
// "tainted literal edges" are rewritten.
func caseAutomatonTransform(_ *automaton.NFA, states []*automaton.State, fold func(string) string) {
	inSet := make(map[*automaton.State]bool, len(states))
	for _, s := range states {
		inSet[s] = true
	}
	for _, s := range states {
		for _, e := range s.Outgoing {
			if !inSet[e.To] {
				continue
			}
			if e.Op != automaton.Epsilon && literalRe.MatchString(e.Op) {
				e.Op = fold(e.Op)
			}
		}
	}
}

// ---- Replace variants ----

// ReplaceBothKnown replaces every occurrence of the single character Old with New; both endpoints are known
// statically.
type ReplaceBothKnownOp struct {
	Old, New rune
}

func (ReplaceBothKnownOp) Priority() int  { return 4 }
func (r ReplaceBothKnownOp) String() string { return "replace[" + string(r.Old) + "," + string(r.New) + "]" }

func (r ReplaceBothKnownOp) CharsetTransform(a, _ charset.CharSet) charset.CharSet {
	if a.Contains(r.Old) {
		return a.Remove(r.Old).Add(r.New)
	}
	return a
}

// AutomatonTransform rewrites literal edges character-by-character, leaves negated character classes and the
// "." wildcard unchanged, and rewrites positive character classes by replacing Old with New; a starred class
// (as charset.ToRegexPattern emits) is handled as its class. Ranges inside
// classes (e.g. "[a-z]") are not rewritten; this mirrors the acknowledged incompleteness of the reference regex
// rewriter (see the design notes on ReplaceBothKnown).
func (r ReplaceBothKnownOp) AutomatonTransform(_ *automaton.NFA, _ automaton.OperationTaint, states []*automaton.State) {
	inSet := make(map[*automaton.State]bool, len(states))
	for _, s := range states {
		inSet[s] = true
	}
	for _, s := range states {
		for _, e := range s.Outgoing {
			if !inSet[e.To] || e.Op == automaton.Epsilon {
				continue
			}
			e.Op = rewriteReplaceFragment(e.Op, r.Old, r.New)
		}
	}
}

func rewriteReplaceFragment(op string, old, newC rune) string {
	oldS, newS := string(old), string(newC)
	switch {
	case op == "." || op == "[^]" :
		return op
	case strings.HasPrefix(op, "[") && strings.HasSuffix(op, "]*"):
		return rewriteReplaceFragment(op[:len(op)-1], old, newC) + "*"
	case strings.HasPrefix(op, "[^") && strings.HasSuffix(op, "]"):
		// Negated class: returned unchanged. If old is excluded the class never produces it, so the replacement
		// has no effect on it; if old is producible the class keeps accepting it, and substituting new for old
		// inside the exclusion set would drop strings the class could produce.
		inner := op[2 : len(op)-1]
		if strings.Contains(inner, oldS) {
			return op
		}
		return "[^" + inner + "]"
	case strings.HasPrefix(op, "[") && strings.HasSuffix(op, "]"):
		inner := op[1 : len(op)-1]
		inner = strings.ReplaceAll(inner, oldS, newS)
		return "[" + inner + "]"
	default:
		return strings.ReplaceAll(op, oldS, newS)
	}
}

// ReplaceOldKnownOp replaces a statically-known Old with a value only known at analysis time via a node
// reference (NewRef); since the new value is not known, the charset transform widens to Σ.
type ReplaceOldKnownOp struct {
	Old    rune
	NewRef string
}

func (ReplaceOldKnownOp) Priority() int   { return 3 }
func (r ReplaceOldKnownOp) String() string { return "replace[" + string(r.Old) + "," + r.NewRef + "]" }

func (r ReplaceOldKnownOp) CharsetTransform(a, _ charset.CharSet) charset.CharSet {
	if a.Contains(r.Old) {
		return charset.Sigma()
	}
	return a
}

// AutomatonTransform is not required for the regex path; the charset widening to Σ already makes the result a
// sound over-approximation, so tainted edges are left unchanged.
func (ReplaceOldKnownOp) AutomatonTransform(*automaton.NFA, automaton.OperationTaint, []*automaton.State) {}

// ReplaceNewKnownOp replaces a statically-unknown Old (referenced by OldRef) with a known New.
type ReplaceNewKnownOp struct {
	OldRef string
	New    rune
}

func (ReplaceNewKnownOp) Priority() int   { return 2 }
func (r ReplaceNewKnownOp) String() string { return "replace[" + r.OldRef + "," + string(r.New) + "]" }

func (r ReplaceNewKnownOp) CharsetTransform(a, _ charset.CharSet) charset.CharSet {
	return a.Add(r.New)
}

// AutomatonTransform is not required for the regex path; widening is sound without an edge rewrite.
func (ReplaceNewKnownOp) AutomatonTransform(*automaton.NFA, automaton.OperationTaint, []*automaton.State) {}

// ReplaceNoneKnownOp replaces two statically-unknown values; nothing about the result can be bounded below Σ.
type ReplaceNoneKnownOp struct {
	OldRef, NewRef string
}

func (ReplaceNoneKnownOp) Priority() int   { return 5 }
func (r ReplaceNoneKnownOp) String() string { return "replace[" + r.OldRef + "," + r.NewRef + "]" }

func (ReplaceNoneKnownOp) CharsetTransform(charset.CharSet, charset.CharSet) charset.CharSet {
	return charset.Sigma()
}

// AutomatonTransform widens to Σ* implicitly by leaving tainted edges unchanged: since every tainted edge
// remains matchable as before, and the charset transform already returned Σ, this keeps the automaton a sound
// over-approximation without rewriting the sub-automaton at all.
func (ReplaceNoneKnownOp) AutomatonTransform(*automaton.NFA, automaton.OperationTaint, []*automaton.State) {}
