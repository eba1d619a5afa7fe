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

package components

import (
	"fmt"

	"gonum.org/v1/gonum/graph/topo"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
	"git.amazon.com/pkg/ARG-StringApprox/internal/graphutil"
)

// CrossCheckWithGonum recomputes g's SCC partition via gonum's independent Tarjan implementation (through the
// graphutil.Graph adapter) and verifies it agrees, set-for-set, with the partition Classify produced. It returns
// an error describing the mismatch rather than panicking, since this is a diagnostic aid (cmd/strapprox logs a
// Warnf and continues on mismatch), not a correctness gate the core pipeline depends on.
func CrossCheckWithGonum(g *grammar.Grammar, got []*Component) error {
	edges := make(map[int64]map[int64]bool, len(g.Nonterminals))
	for id, nt := range g.Nonterminals {
		adj := map[int64]bool{}
		for _, s := range g.GetSuccessorsFor(nt) {
			adj[int64(s.ID)] = true
		}
		edges[int64(id)] = adj
	}
	gg := graphutil.NewGraph(edges, nil)

	gonumSccs := topo.TarjanSCC(gg)
	gonumSets := make([]map[uint32]bool, 0, len(gonumSccs))
	for _, scc := range gonumSccs {
		set := map[uint32]bool{}
		for _, n := range scc {
			set[uint32(n.ID())] = true
		}
		gonumSets = append(gonumSets, set)
	}

	for _, c := range got {
		set := map[uint32]bool{}
		for _, m := range c.Members {
			set[m.ID] = true
		}
		if !containsSet(gonumSets, set) {
			return fmt.Errorf("components: SCC %v not found among gonum's independently computed SCCs", keys(set))
		}
	}
	if len(gonumSets) != len(got) {
		return fmt.Errorf("components: gonum found %d SCCs, Classify found %d", len(gonumSets), len(got))
	}
	return nil
}

func containsSet(sets []map[uint32]bool, target map[uint32]bool) bool {
	for _, s := range sets {
		if len(s) != len(target) {
			continue
		}
		match := true
		for k := range target {
			if !s[k] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func keys(m map[uint32]bool) []uint32 {
	out := make([]uint32, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	return out
}
