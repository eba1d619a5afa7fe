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

// strapprox: a tool for running the string-value regular approximation pipeline over a grammar-input file.
// -hotspot Comma-separated nonterminal ids whose primed counterparts receive an ε-production during
//          regularization (spec.md §4.6); defaults to the start nonterminal alone.
// -dotout  Given a path for a .dot file, writes the constructed automaton's graphviz representation.
// -accepts Comma-separated sample strings to test for acceptance against the constructed automaton.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/charsetprop"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/components"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/config"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammarinput"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/nfabuild"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/regularize"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/resolve"
	"git.amazon.com/pkg/ARG-StringApprox/internal/formatutil"
)

var (
	configPath = flag.String("config", "", "Config file")
	hotspotArg = flag.String("hotspot", "", "Comma-separated nonterminal ids to mark as regularization hotspots (default: the start nonterminal)")
	dotOut     = flag.String("dotout", "", "Output file for the constructed automaton's dot representation (no output if not specified)")
	acceptsArg = flag.String("accepts", "", "Comma-separated sample strings to test for acceptance")
)

const usage = ` Run the string-value regular approximation pipeline over a grammar-input file.
Usage:
    strapprox [options] <grammar-input file>
Examples:
Run the pipeline and print the resulting automaton's dot representation
% strapprox -dotout out.dot grammar.txt
Run the pipeline and check whether some sample strings are accepted
% strapprox -accepts "a,ab,abb" grammar.txt
`

func main() {
	flag.Parse()

	if flag.NArg() != 1 {
		_, _ = fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
		os.Exit(2)
	}

	cfg := config.NewDefault()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not load config %s: %v\n", *configPath, err)
			os.Exit(1)
		}
	}
	logs := config.NewLogGroup(cfg)

	src, err := os.ReadFile(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not read grammar-input file: %v\n", err)
		os.Exit(1)
	}

	logs.Infof(formatutil.Faint("parsing grammar-input"))
	g, err := grammarinput.Parse(string(src), cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatutil.Red(fmt.Sprintf("could not parse grammar-input: %v", err)))
		os.Exit(1)
	}
	if g.Start == nil {
		fmt.Fprintln(os.Stderr, formatutil.Red("grammar-input file declares no nonterminals"))
		os.Exit(1)
	}

	hotspots, err := parseHotspots(*hotspotArg, g.Start.ID)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatutil.Red(fmt.Sprintf("invalid -hotspot: %v", err)))
		os.Exit(1)
	}

	comps := components.Classify(g)
	if err := components.CrossCheckWithGonum(g, comps); err != nil {
		logs.Warnf("component cross-check against gonum's Tarjan implementation failed: %v", err)
	} else {
		logs.Debugf("component cross-check: gonum agrees on %d SCC(s)", len(comps))
	}

	logs.Infof(formatutil.Faint("propagating character sets (C5)"))
	charsetprop.Propagate(g, cfg, logs)

	logs.Infof(formatutil.Faint("regularizing recursive components (C6)"))
	regularize.Regularize(g, hotspots, logs)

	logs.Infof(formatutil.Faint("building automaton (C7)"))
	res, err := nfabuild.Build(g, logs)
	if err != nil {
		fmt.Fprintln(os.Stderr, formatutil.Red(fmt.Sprintf("could not build automaton: %v", err)))
		os.Exit(1)
	}

	logs.Infof(formatutil.Faint("resolving operations (C8)"))
	resolve.Resolve(res.NFA, res.Taints, logs)

	if *dotOut != "" {
		logs.Infof(formatutil.Faint("writing automaton dot to " + *dotOut))
		if err := os.WriteFile(*dotOut, []byte(res.NFA.ToDot()), 0o644); err != nil {
			fmt.Fprintln(os.Stderr, formatutil.Red(fmt.Sprintf("could not write dot file: %v", err)))
			os.Exit(1)
		}
	}

	if *acceptsArg != "" {
		for _, s := range strings.Split(*acceptsArg, ",") {
			if res.NFA.Accepts(s) {
				fmt.Printf("%s%s\n", formatutil.Green("ACCEPT "), formatutil.Sanitize(s))
			} else {
				fmt.Printf("%s%s\n", formatutil.Red("REJECT "), formatutil.Sanitize(s))
			}
		}
	}
}

// parseHotspots parses a comma-separated list of nonterminal ids, defaulting to just start if empty.
func parseHotspots(arg string, start uint32) (map[uint32]bool, error) {
	if arg == "" {
		return map[uint32]bool{start: true}, nil
	}
	out := make(map[uint32]bool)
	for _, field := range strings.Split(arg, ",") {
		id, err := strconv.ParseUint(strings.TrimSpace(field), 10, 32)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid nonterminal id: %w", field, err)
		}
		out[uint32(id)] = true
	}
	return out, nil
}
