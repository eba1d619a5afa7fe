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

// Package grammarinput parses the grammar-input text format (§6): one rule per line, "A -> rhs1 | rhs2 | …",
// where an alternative is a dense symbol sequence ("Ab" = Concat(A, terminal 'b')), one of the five
// operation-call forms ("reverse(B)", "trim(B)", "toUpperCase(B)", "toLowerCase(B)", "replace[o,n](B)"), or a
// typed-terminal reference ("<int>") resolved against a config.Config's type-regex-table.
//
// Parsing is split in two phases, the way a hand-written recursive-descent reader commonly delegates a
// structured sub-grammar to a parser generator: line/alternative splitting and the dense symbol-sequence scan
// are plain Go (that micro-format is a character stream, not a phrase structure — a grammar library buys
// nothing there), while each operation-call alternative, which does have real phrase structure (a keyword,
// optional bracketed arguments, a parenthesised operand), is parsed with participle/v2.
package grammarinput

import (
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"git.amazon.com/pkg/ARG-StringApprox/analysis/charset"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/config"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/functional"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/grammar"
	"git.amazon.com/pkg/ARG-StringApprox/analysis/stringops"
)

// Error taxonomy, per §7.
var (
	// ErrInvalidProduction is returned when a line is malformed: missing "->", an empty alternative, or a
	// symbol sequence of length 0 or more than 2 (longer concatenations must be flattened upstream).
	ErrInvalidProduction = errors.New("grammarinput: invalid production")
	// ErrUnknownOperation is returned when an alternative has the shape of an operation call (Name(Arg) or
	// Name[old,new](Arg)) but Name is outside {reverse, trim, toUpperCase, toLowerCase, replace}.
	ErrUnknownOperation = errors.New("grammarinput: unknown operation")
	// ErrInvalidReplaceArity is returned when replace[...] receives other than two single-character arguments.
	ErrInvalidReplaceArity = errors.New("grammarinput: replace requires exactly two single-character arguments")
)

// opCallAST is the participle grammar for one operation-call alternative, parsed in isolation from a single
// alternative's text (not the whole multi-line grammar): Name optionally followed by a bracketed [old,new] pair,
// then a mandatory parenthesised operand.
type opCallAST struct {
	Name string `parser:"@Word"`
	Old  string `parser:"( '[' @Word ','"`
	New  string `parser:"  @Word ']' )?"`
	Arg  string `parser:"'(' @Word ')'"`
}

var opCallLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t]+`},
	{Name: "LBracket", Pattern: `\[`},
	{Name: "RBracket", Pattern: `\]`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "Comma", Pattern: `,`},
	{Name: "Word", Pattern: `[^\s,\[\]()]+`},
})

var opCallParser = participle.MustBuild[opCallAST](
	participle.Lexer(opCallLexer),
	participle.Elide("Whitespace"),
)

// Parser holds the incremental state of one grammar-input parse: the grammar under construction and a single
// name-to-id map shared by explicitly-named nonterminals and synthetic terminal-wrapper nonterminals (T_<n>
// labels). A single shared namespace means a forward reference to a not-yet-declared nonterminal and a later
// reference to a synthetic terminal wrapper of the same name resolve to the same underlying nonterminal however
// they are first encountered — required for PrintGrammar's output, which can mention a T_<n> nonterminal (inside
// another production's dense symbol sequence) before its own declaration line, to re-parse correctly.
type Parser struct {
	g       *grammar.Grammar
	ids     map[string]uint32
	nextID  uint32
	started bool
	cfg     *config.Config
}

// Parse parses the full grammar-input text into a *grammar.Grammar. Blank lines are ignored; a line beginning
// with '#' is treated as a comment. The first nonterminal explicitly named (as a rule's left-hand side, or as an
// identifier referenced within a symbol sequence or operation-call operand) becomes the grammar's start
// nonterminal; synthetic terminal-wrapper nonterminals never do. cfg supplies the type-regex-table used to
// resolve a "<typeName>" alternative into a typed terminal; a nil cfg widens every such reference to Sigma,
// exactly as an unrecognised type name does (spec.md §7).
func Parse(text string, cfg *config.Config) (*grammar.Grammar, error) {
	p := &Parser{g: grammar.New(), ids: map[string]uint32{}, cfg: cfg}
	for lineNo, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := p.parseLine(line); err != nil {
			return nil, fmt.Errorf("grammarinput: line %d: %w", lineNo+1, err)
		}
	}
	return p.g, nil
}

func (p *Parser) parseLine(line string) error {
	idx := strings.Index(line, "->")
	if idx < 0 {
		return fmt.Errorf("%w: missing '->' in %q", ErrInvalidProduction, line)
	}
	lhsName := strings.TrimSpace(line[:idx])
	if !isNonterminalName(lhsName) {
		return fmt.Errorf("%w: left-hand side %q is not a nonterminal name", ErrInvalidProduction, lhsName)
	}
	lhs := p.nonterminalFor(lhsName)

	for _, altText := range strings.Split(line[idx+2:], "|") {
		altText = strings.TrimSpace(altText)
		if altText == "" {
			return fmt.Errorf("%w: empty alternative in %q", ErrInvalidProduction, line)
		}
		prod, err := p.parseAlt(altText)
		if err != nil {
			return err
		}
		lhs.Productions = append(lhs.Productions, prod)
	}
	return nil
}

func (p *Parser) parseAlt(altText string) (grammar.Production, error) {
	if typeName, ok := typedTerminalName(altText); ok {
		return grammar.TerminalProduction{Term: p.resolveTypedTerminal(typeName)}, nil
	}
	if ast, err := opCallParser.ParseString("", altText); err == nil {
		return p.buildOpProduction(ast)
	}
	elems, err := p.scanSymbolSequence(altText)
	if err != nil {
		return nil, err
	}
	switch len(elems) {
	case 1:
		e := elems[0]
		if e.nt != nil {
			return grammar.UnitProduction{A: e.nt}, nil
		}
		return grammar.TerminalProduction{Term: e.term}, nil
	case 2:
		return grammar.ConcatProduction{A: p.resolveForConcat(elems[0]), B: p.resolveForConcat(elems[1])}, nil
	default:
		return nil, fmt.Errorf("%w: symbol sequence %q has %d symbols, want 1 or 2 (flatten longer "+
			"concatenations upstream)", ErrInvalidProduction, altText, len(elems))
	}
}

// resolveForConcat wraps a raw terminal element in its synthetic T_<n> nonterminal, since ConcatProduction's
// operands are both typed *grammar.Nonterminal. A named-nonterminal element is returned unchanged. This wrapping
// is deliberately done only here, for the two-element case — a standalone single-terminal alternative (see
// parseAlt's length-1 case) becomes a TerminalProduction directly and never needs a synthetic wrapper at all.
func (p *Parser) resolveForConcat(e symbolElem) *grammar.Nonterminal {
	if e.nt != nil {
		return e.nt
	}
	if e.term.IsEpsilon {
		return p.epsilonNonterminal()
	}
	return p.terminalNonterminalFor([]rune(e.term.Value)[0])
}

// typedTerminalName recognises a typed-terminal alternative "<typeName>": angle brackets, which neither the
// dense symbol-sequence scanner nor a nonterminal/operation-call name can otherwise produce, mark a reference
// into the engine's type-regex-table rather than a literal sequence of characters.
func typedTerminalName(altText string) (string, bool) {
	if len(altText) < 3 || altText[0] != '<' || altText[len(altText)-1] != '>' {
		return "", false
	}
	name := altText[1 : len(altText)-1]
	if name == "" || strings.ContainsAny(name, "<> \t") {
		return "", false
	}
	return name, true
}

// resolveTypedTerminal looks typeName up in the configured type-regex-table, widening to Sigma when cfg is nil
// or the type is unrecognised (spec.md §7: "unknown types widen to Sigma", never an error).
func (p *Parser) resolveTypedTerminal(typeName string) grammar.Terminal {
	found := functional.None[config.TypeRegex]()
	if p.cfg != nil {
		found = p.cfg.Lookup(typeName)
	}
	return functional.MapOption(found, func(tr config.TypeRegex) grammar.Terminal {
		cs := charset.FiniteFromString(tr.Chars)
		if tr.Chars == "" {
			cs = charset.Sigma()
		}
		return grammar.NewTypedTerminal(tr.Pattern, cs)
	}).ValueOr(grammar.NewTypedTerminal(".*", charset.Sigma()))
}

func (p *Parser) buildOpProduction(ast *opCallAST) (grammar.Production, error) {
	if !isNonterminalName(ast.Arg) {
		return nil, fmt.Errorf("%w: operation operand %q is not a nonterminal name", ErrInvalidProduction, ast.Arg)
	}
	arg := p.nonterminalFor(ast.Arg)

	switch ast.Name {
	case "reverse":
		if ast.Old != "" {
			return nil, fmt.Errorf("%w: reverse takes no [old,new] arguments", ErrInvalidProduction)
		}
		return grammar.UnaryOpProduction{Op: stringops.Reverse, A: arg}, nil
	case "trim":
		if ast.Old != "" {
			return nil, fmt.Errorf("%w: trim takes no [old,new] arguments", ErrInvalidProduction)
		}
		return grammar.UnaryOpProduction{Op: stringops.Trim, A: arg}, nil
	case "toUpperCase":
		if ast.Old != "" {
			return nil, fmt.Errorf("%w: toUpperCase takes no [old,new] arguments", ErrInvalidProduction)
		}
		return grammar.UnaryOpProduction{Op: stringops.ToUpperCase, A: arg}, nil
	case "toLowerCase":
		if ast.Old != "" {
			return nil, fmt.Errorf("%w: toLowerCase takes no [old,new] arguments", ErrInvalidProduction)
		}
		return grammar.UnaryOpProduction{Op: stringops.ToLowerCase, A: arg}, nil
	case "replace":
		oldR, newR := []rune(ast.Old), []rune(ast.New)
		if len(oldR) != 1 || len(newR) != 1 {
			return nil, ErrInvalidReplaceArity
		}
		return grammar.UnaryOpProduction{Op: stringops.ReplaceBothKnownOp{Old: oldR[0], New: newR[0]}, A: arg}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, ast.Name)
	}
}

// symbolElem is one unresolved element of a dense symbol sequence: either a reference to an already-known
// nonterminal (nt set), or a raw terminal (an ordinary character or epsilon, term set and nt nil). Resolution of
// a raw terminal into a synthetic T_<n> nonterminal is deferred to the caller, since whether that wrapping is
// needed at all depends on how many elements the sequence has (see resolveForConcat).
type symbolElem struct {
	nt   *grammar.Nonterminal
	term grammar.Terminal
}

// scanSymbolSequence scans a dense symbol sequence into 1 or 2 elements. A run starting with an uppercase letter
// and continuing through digits/underscores is one nonterminal reference (so multi-character names like "A1"
// are supported); a following lowercase letter is NOT folded into the same identifier, since the worked examples
// this format is modeled on (e.g. "B -> Ab") rely on the letter immediately after a nonterminal being its own
// terminal symbol, not a continuation of the name.
func (p *Parser) scanSymbolSequence(s string) ([]symbolElem, error) {
	runes := []rune(strings.Join(strings.Fields(s), ""))
	var out []symbolElem
	for i := 0; i < len(runes); {
		c := runes[i]
		if c == 'ε' {
			out = append(out, symbolElem{term: grammar.Epsilon()})
			i++
			continue
		}
		if unicode.IsUpper(c) {
			j := i + 1
			for j < len(runes) && (unicode.IsDigit(runes[j]) || runes[j] == '_') {
				j++
			}
			out = append(out, symbolElem{nt: p.nonterminalFor(string(runes[i:j]))})
			i = j
			continue
		}
		out = append(out, symbolElem{term: grammar.Literal(string(c))})
		i++
	}
	if len(out) == 0 || len(out) > 2 {
		return nil, fmt.Errorf("%w: symbol sequence %q has %d symbols, want 1 or 2 (flatten longer "+
			"concatenations upstream)", ErrInvalidProduction, s, len(out))
	}
	return out, nil
}

func isNonterminalName(s string) bool {
	r := []rune(s)
	if len(r) == 0 || !unicode.IsUpper(r[0]) {
		return false
	}
	for _, c := range r[1:] {
		if !unicode.IsDigit(c) && c != '_' {
			return false
		}
	}
	return true
}

func (p *Parser) nonterminalFor(name string) *grammar.Nonterminal {
	nt := p.nonterminalNamed(name)
	if !p.started {
		p.g.Start = nt
		p.started = true
	}
	return nt
}

// terminalLabel names a synthetic terminal-wrapper nonterminal T_<codepoint>, per the recognition rule's "a
// synthetic nonterminal labelled T<C>" convention. The underscore-plus-digits suffix, rather than the literal
// character, keeps the label itself a valid nonterminal name under isNonterminalName — required so that
// PrintGrammar's output re-parses (spec.md §8.7's round-trip property) instead of misreading the wrapped
// character as a continuation of the identifier.
func terminalLabel(c rune) string {
	return fmt.Sprintf("T_%d", c)
}

// terminalNonterminalFor returns the synthetic T_<n> nonterminal wrapping literal character c, minting it on
// first use. Its TerminalProduction is (re)assigned unconditionally rather than only at creation: a forward
// reference to this same name (e.g. "B -> A T_98" parsed before "T_98 -> b" is reached) may have already minted
// the id via nonterminalFor without any production attached, and this call must still make it a proper terminal
// wrapper rather than leaving that earlier placeholder in place.
func (p *Parser) terminalNonterminalFor(c rune) *grammar.Nonterminal {
	nt := p.nonterminalNamed(terminalLabel(c))
	nt.Productions = []grammar.Production{grammar.TerminalProduction{Term: grammar.Literal(string(c))}}
	return nt
}

func (p *Parser) epsilonNonterminal() *grammar.Nonterminal {
	nt := p.nonterminalNamed(terminalLabel(0))
	nt.Productions = []grammar.Production{grammar.TerminalProduction{Term: grammar.Epsilon()}}
	return nt
}

// nonterminalNamed returns the nonterminal for name, minting a fresh id on first use. Unlike nonterminalFor, it
// never affects Start: synthetic terminal-wrapper nonterminals must not become the start symbol merely because
// they are the first thing textually scanned inside some other nonterminal's first alternative.
func (p *Parser) nonterminalNamed(name string) *grammar.Nonterminal {
	id, ok := p.ids[name]
	if !ok {
		id = p.nextID
		p.nextID++
		p.ids[name] = id
	}
	nt := p.g.GetOrCreateNonterminal(id)
	nt.Label = name
	return nt
}
