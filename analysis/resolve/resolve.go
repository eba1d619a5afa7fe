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

// Package resolve is the operation resolver (C8): after the Nederhof construction (C7) returns the ordered list
// of taints introduced anywhere in the automaton, Resolve replays each operation in reverse order of
// introduction (innermost first), matching the original expression's evaluation order.
package resolve

import (
	"git.amazon.com/pkg/ARG-StringApprox/analysis/automaton"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/config"
)

// Resolve walks taints in reverse introduction order; for each, it collects every state whose taint chain
// contains it and invokes that taint's operation's automaton transform over those states. logs receives, at
// Debug level, the resolution order; a nil logs is a silent no-op.
func Resolve(nfa *automaton.NFA, taints []automaton.OperationTaint, logs *config.LogGroup) {
	for i := len(taints) - 1; i >= 0; i-- {
		t := taints[i]
		states := statesWithTaint(nfa, t)
		logs.Debugf("resolve: applying taint %d/%d (introduction order) over %d state(s)", i, len(taints), len(states))
		t.Op.AutomatonTransform(nfa, t, states)
	}
}

func statesWithTaint(nfa *automaton.NFA, t automaton.OperationTaint) []*automaton.State {
	var out []*automaton.State
	for _, s := range nfa.States {
		if s.HasTaint(t) {
			out = append(out, s)
		}
	}
	return out
}
