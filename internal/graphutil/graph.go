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

package graphutil

import (
	"sort"
	"strconv"

	"gonum.org/v1/gonum/graph"
)

// Graph is an abstraction over an adjacency map that lets generic integer-id graphs (a grammar's production
// graph, an NFA's state graph, ...) be handed to existing graph libraries. It implements the Iterator shape
// expected by github.com/yourbasic/graph (Order/Visit) and gonum.org/v1/gonum/graph's graph.Graph, so both
// Johnson's elementary-cycles algorithm and gonum's topo package can run over it.
type Graph struct {
	// order is the number of nodes in the graph
	order int

	// IDMap maps from node IDs to Node
	IDMap map[int64]Node

	// Keys are all the node IDs, sorted
	Keys []int64

	// Edges is an adjacency matrix: Edges[x][y] means there is a directed edge from x to y
	Edges map[int64]map[int64]bool
}

// NewGraph builds a Graph from an adjacency map and an optional label map (labels may be nil; a missing label
// defaults to the decimal id). edges must be keyed by every node id that participates in the graph, even nodes
// whose adjacency set is empty.
func NewGraph(edges map[int64]map[int64]bool, labels map[int64]string) Graph {
	n := len(edges)
	idmap := make(map[int64]Node, n)
	keys := make([]int64, 0, n)
	for id := range edges {
		keys = append(keys, id)
		idmap[id] = Node{id: id, label: labels[id]}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return Graph{order: n, IDMap: idmap, Keys: keys, Edges: edges}
}

// Subgraph returns a new graph that is the original graph restricted to the nodes in include. Only edges that
// have both endpoints in include are kept. The subgraph's order is the same as in original and its IDMap holds
// only the included nodes, so node indices stay consistent across subgraphs; this is relied upon by
// FindAllElementaryCycles.
func Subgraph(original Graph, include []int64) Graph {
	idmap := make(map[int64]Node, len(include))
	edges := make(map[int64]map[int64]bool, len(include))
	for _, i := range include {
		idmap[i] = original.IDMap[i]
	}
	for _, i := range include {
		edges[i] = map[int64]bool{}
		for e := range original.Edges[i] {
			if _, ok := idmap[e]; ok {
				edges[i][e] = true
			}
		}
	}
	keys := make([]int64, len(include))
	copy(keys, include)
	return Graph{order: original.Order(), IDMap: idmap, Edges: edges, Keys: keys}
}

// Order implements the Iterator interface expected by github.com/yourbasic/graph.
func (g Graph) Order() int {
	return g.order
}

// Visit implements the Iterator interface expected by github.com/yourbasic/graph.
func (g Graph) Visit(v int, do func(w int, c int64) (skip bool)) (aborted bool) {
	if _, ok := g.IDMap[int64(v)]; !ok {
		return false
	}
	for w := range g.Edges[int64(v)] {
		if do(int(w), 1) {
			return true
		}
	}
	return false
}

// *************** gonum graph.Graph implementation **********************

// Node implements the gonum graph.Graph interface.
func (g Graph) Node(v int64) graph.Node {
	n, ok := g.IDMap[v]
	if !ok {
		return nil
	}
	return n
}

// Nodes returns the set of nodes in the graph.
func (g Graph) Nodes() graph.Nodes {
	keys := make([]int64, len(g.Keys))
	copy(keys, g.Keys)
	return &NodeSet{nodes: g.IDMap, ids: keys, cur: -1}
}

// From returns the set of nodes reachable from id via one edge.
func (g Graph) From(id int64) graph.Nodes {
	var keys []int64
	for out := range g.Edges[id] {
		keys = append(keys, out)
	}
	return &NodeSet{nodes: g.IDMap, ids: keys, cur: -1}
}

// To returns the set of nodes that have an edge to id.
func (g Graph) To(id int64) graph.Nodes {
	var keys []int64
	for src, out := range g.Edges {
		if out[id] {
			keys = append(keys, src)
		}
	}
	return &NodeSet{nodes: g.IDMap, ids: keys, cur: -1}
}

// HasEdgeBetween returns true if there is an edge between the two node identifiers, in either direction.
func (g Graph) HasEdgeBetween(xid, yid int64) bool {
	return g.Edges[xid][yid] || g.Edges[yid][xid]
}

// HasEdgeFromTo returns true if there is an edge from u to v.
func (g Graph) HasEdgeFromTo(uid, vid int64) bool {
	return g.Edges[uid][vid]
}

// Edge returns the edge between the two identifiers, or nil if none exists.
func (g Graph) Edge(uid, vid int64) graph.Edge {
	if g.Edges[uid][vid] {
		return Edge{from: g.IDMap[uid], to: g.IDMap[vid]}
	}
	return nil
}

// *************** Node / NodeSet / Edge **********************

// Node is a wrapper around an integer id (and optional display label) implementing the gonum graph.Node interface.
type Node struct {
	id    int64
	label string
}

// ID returns the id of the node.
func (n Node) ID() int64 {
	return n.id
}

func (n Node) String() string {
	if n.label != "" {
		return n.label
	}
	return strconv.FormatInt(n.id, 10)
}

// NodeSet implements the gonum graph.Nodes interface, an iterator over a set of nodes.
type NodeSet struct {
	nodes map[int64]Node
	ids   []int64
	cur   int
}

// Next moves the current node to the next, and returns true if such a node exists.
func (ns *NodeSet) Next() bool {
	if ns.cur < len(ns.ids)-1 {
		ns.cur++
		return true
	}
	return false
}

// Len returns the number of nodes remaining in the set.
func (ns *NodeSet) Len() int {
	if ns.cur >= len(ns.ids) {
		return 0
	}
	return len(ns.ids) - ns.cur - 1
}

// Reset resets the iterator to the start of the set.
func (ns *NodeSet) Reset() {
	ns.cur = -1
}

// Node returns the current node in the set.
func (ns *NodeSet) Node() graph.Node {
	return ns.nodes[ns.ids[ns.cur]]
}

// Edge implements the gonum graph.Edge interface.
type Edge struct {
	from Node
	to   Node
}

// From returns the origin of the edge.
func (e Edge) From() graph.Node {
	return e.from
}

// To returns the destination of the edge.
func (e Edge) To() graph.Node {
	return e.to
}

// ReversedEdge returns a new value representing the reversed edge.
func (e Edge) ReversedEdge() graph.Edge {
	return Edge{from: e.to, to: e.from}
}
