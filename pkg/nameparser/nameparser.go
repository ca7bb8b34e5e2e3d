// Package nameparser consumes the message parts produced by pkg/namelexer
// and builds the root splitast.Sequence that models the name's grammar,
// enforcing every operator-placement and argument-reordering rule along
// the way.
//
// The parser is a recursive-descent parser with one-token lookahead and
// one parsing method per grammar rule, but it fails fast on the first
// malformed construct rather than accumulating errors: a malformed name is
// fatal for the whole splitter instance, so there is no use in continuing
// past the first violation.
package nameparser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bits-and-blooms/bitset"

	"github.com/kristofer/avail/pkg/errcode"
	"github.com/kristofer/avail/pkg/namelexer"
	"github.com/kristofer/avail/pkg/splitast"
)

// MalformedMessage is the error returned for any lexer- or parser-level
// rejection of a message name. The partially built tree is always
// discarded alongside it.
type MalformedMessage struct {
	Code     errcode.Code
	Message  string
	Position int
}

func (e *MalformedMessage) Error() string {
	return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
}

// Result carries the parse-time bookkeeping that the splitter facade
// (pkg/splitter) exposes verbatim for diagnostics.
type Result struct {
	Parts                      []namelexer.Part
	NumberOfSectionCheckpoints int
	UnderscorePartNumbers      []int // 0-based part index for each underscore, in absolute order
}

// Parse lexes and parses name, returning the root Sequence on success.
func Parse(name string) (*splitast.Sequence, *Result, error) {
	parts, err := namelexer.Lex(name)
	if err != nil {
		le := err.(*namelexer.Error)
		return nil, nil, &MalformedMessage{Code: le.Code, Message: le.Message, Position: le.Position}
	}

	p := &Parser{parts: parts, nextUnderscoreIndex: 1}
	root, perr := p.parseSequence()
	if perr != nil {
		return nil, nil, perr
	}
	if !p.atEnd() {
		return nil, nil, p.fail(errcode.UnbalancedGuillemets, "unexpected %q at top level", p.peek())
	}

	return root, &Result{
		Parts:                      parts,
		NumberOfSectionCheckpoints: p.numberOfSectionCheckpoints,
		UnderscorePartNumbers:      p.underscorePartNumbers,
	}, nil
}

// Parser holds the state of one parse: the part stream, the current
// position, and the running counters the grammar needs threaded through
// every recursive call (absolute underscore indices, section-checkpoint
// subscripts).
type Parser struct {
	parts []namelexer.Part
	pos   int

	nextUnderscoreIndex        int
	underscorePartNumbers      []int
	numberOfSectionCheckpoints int
}

func (p *Parser) atEnd() bool { return p.pos >= len(p.parts) }

func (p *Parser) peek() string {
	if p.atEnd() {
		return ""
	}
	return p.parts[p.pos].Text
}

func (p *Parser) advance() namelexer.Part {
	part := p.parts[p.pos]
	p.pos++
	return part
}

func (p *Parser) position() int {
	if p.atEnd() {
		if len(p.parts) == 0 {
			return 1
		}
		last := p.parts[len(p.parts)-1]
		return last.Position + len([]rune(last.Text))
	}
	return p.parts[p.pos].Position
}

func (p *Parser) fail(code errcode.Code, format string, args ...interface{}) error {
	return &MalformedMessage{Code: code, Message: fmt.Sprintf(format, args...), Position: p.position()}
}

// parseSequence consumes parts until end-of-parts, "»" or "‡", handling
// alternation accumulation and the numbered-argument consistency check on
// the way out.
func (p *Parser) parseSequence() (*splitast.Sequence, error) {
	seq := splitast.NewSequence()
	var pendingAlternatives []splitast.Expression

	for !p.atEnd() && p.peek() != "»" && p.peek() != "‡" {
		e, err := p.parseAtom()
		if err != nil {
			return nil, err
		}
		e, err = p.parsePostfixModifiers(e)
		if err != nil {
			return nil, err
		}

		if !p.atEnd() && p.peek() == "|" {
			p.advance()
			if err := p.ensureAlternativeIsPlain(e); err != nil {
				return nil, err
			}
			pendingAlternatives = append(pendingAlternatives, e)
			continue
		}

		if len(pendingAlternatives) > 0 {
			if err := p.ensureAlternativeIsPlain(e); err != nil {
				return nil, err
			}
			alt := splitast.NewAlternation(append(pendingAlternatives, e))
			pendingAlternatives = nil
			if err := p.addToSequence(seq, alt); err != nil {
				return nil, err
			}
			continue
		}

		if err := p.addToSequence(seq, e); err != nil {
			return nil, err
		}
	}

	if len(pendingAlternatives) > 0 {
		return nil, p.fail(errcode.VerticalBarMustSeparateTokensOrSimpleGroups, "trailing | with no following alternative")
	}
	if err := p.checkForConsistentOrdinals(seq); err != nil {
		return nil, err
	}
	return seq, nil
}

// parseGroup parses a before-dagger sequence, optionally one "‡" and an
// after-dagger sequence, closed by "»".
func (p *Parser) parseGroup() (*splitast.Group, error) {
	p.advance() // consume «
	before, err := p.parseSequence()
	if err != nil {
		return nil, err
	}

	g := splitast.NewGroup(before, splitast.NewSequence())

	if !p.atEnd() && p.peek() == "‡" {
		daggerPosition := p.parts[p.pos].Position
		p.advance()
		after, err := p.parseSequence()
		if err != nil {
			return nil, err
		}
		g.AfterDagger = after
		g.HasDagger = true
		g.DaggerPosition = daggerPosition

		if !p.atEnd() && p.peek() == "‡" {
			return nil, p.fail(errcode.IncorrectUseOfDoubleDagger, "a group may contain at most one ‡")
		}
	}

	if p.atEnd() || p.peek() != "»" {
		return nil, p.fail(errcode.UnbalancedGuillemets, "missing » to close «")
	}
	p.advance()
	return g, nil
}

// parseAtom parses one grammar atom: a literal, an argument hole, a raw
// token hole, a group, or a section checkpoint. Free-standing modifier
// characters with nothing to modify are rejected here with their specific
// error codes.
func (p *Parser) parseAtom() (splitast.Expression, error) {
	switch p.peek() {
	case "_":
		return p.parseArgumentForm()
	case "…":
		return p.parseRawTokenForm()
	case "«":
		g, err := p.parseGroup()
		if err != nil {
			return nil, err
		}
		return p.parseGroupSuffix(g)
	case "»":
		return nil, p.fail(errcode.UnbalancedGuillemets, "unbalanced » with no matching «")
	case "‡":
		return nil, p.fail(errcode.IncorrectUseOfDoubleDagger, "‡ outside of a group")
	case "§":
		return p.parseSectionCheckpoint(), nil
	case "`":
		return p.parseEscapedLiteral()
	case "#":
		return nil, p.fail(errcode.OctothorpMustFollowASimpleGroupOrEllipsis, "free-standing #")
	case "$":
		return nil, p.fail(errcode.DollarSignMustFollowAnEllipsis, "free-standing $")
	case "?":
		return nil, p.fail(errcode.QuestionMarkMustFollowASimpleGroup, "free-standing ?")
	case "⁇":
		return nil, p.fail(errcode.DoubleQuestionMarkMustFollowATokenOrSimpleGroup, "free-standing ⁇")
	case "~":
		return nil, p.fail(errcode.CaseInsensitiveExpressionCanonization, "free-standing ~")
	case "!":
		return nil, p.fail(errcode.ExclamationMarkMustFollowAnAlternationGroup, "free-standing !")
	case "↑":
		return nil, p.fail(errcode.UpArrowMustFollowArgument, "free-standing ↑")
	default:
		if _, ok := ordinalFor(p.peek()); ok {
			return nil, p.fail(errcode.InconsistentArgumentReordering, "circled number ordinal with no preceding argument or group")
		}
		tokenIndex := p.pos
		p.advance()
		return splitast.NewSimple(tokenIndex), nil
	}
}

func (p *Parser) parseArgumentForm() (splitast.Expression, error) {
	tokenIndex := p.pos
	p.advance() // consume _

	kind := splitast.KindArgument
	if !p.atEnd() {
		switch p.peek() {
		case "†":
			kind = splitast.KindArgumentInModuleScope
			p.advance()
		case "↑":
			kind = splitast.KindVariableQuote
			p.advance()
		case "!":
			kind = splitast.KindArgumentForMacroOnly
			p.advance()
		}
	}

	idx := p.nextUnderscoreIndex
	p.nextUnderscoreIndex++
	p.underscorePartNumbers = append(p.underscorePartNumbers, tokenIndex)
	return splitast.NewArgument(kind, idx, tokenIndex), nil
}

func (p *Parser) parseRawTokenForm() (splitast.Expression, error) {
	tokenIndex := p.pos
	p.advance() // consume …

	kind := splitast.KindRawKeywordTokenArgument
	if !p.atEnd() {
		switch p.peek() {
		case "!":
			kind = splitast.KindRawTokenArgument
			p.advance()
		case "#":
			kind = splitast.KindRawWholeNumberLiteralTokenArgument
			p.advance()
		case "$":
			kind = splitast.KindRawStringLiteralTokenArgument
			p.advance()
		}
	}

	idx := p.nextUnderscoreIndex
	p.nextUnderscoreIndex++
	p.underscorePartNumbers = append(p.underscorePartNumbers, tokenIndex)
	return splitast.NewArgument(kind, idx, tokenIndex), nil
}

func (p *Parser) parseSectionCheckpoint() splitast.Expression {
	tokenIndex := p.pos
	p.advance() // consume §
	p.numberOfSectionCheckpoints++
	return splitast.NewSectionCheckpoint(p.numberOfSectionCheckpoints, tokenIndex)
}

// parseEscapedLiteral handles a standalone backquote part: the lexer only
// ever emits one when it was not immediately followed by "_" (that case is
// fused into an identifier run already), so here it must be followed by an
// operator character to escape into a literal.
func (p *Parser) parseEscapedLiteral() (splitast.Expression, error) {
	p.advance() // consume `
	if p.atEnd() {
		return nil, p.fail(errcode.ExpectedOperatorAfterBackquote, "backquote at end of name with nothing to escape")
	}
	next := p.parts[p.pos]
	if isIdentifierText(next.Text) {
		return nil, p.fail(errcode.ExpectedOperatorAfterBackquote, "backquote must be followed by an operator character")
	}
	literalIndex := p.pos
	p.advance()
	return splitast.NewSimple(literalIndex), nil
}

// isIdentifierText reports whether every code point of s is an identifier
// rune (letter or digit, matching pkg/namelexer's definition), which is true
// exactly when s is an identifier-run Part rather than an operator part.
func isIdentifierText(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// parseGroupSuffix resolves the "after »" modifiers that transform a bare
// Group into a Counter, Optional, cardinality-1 Group or NumberedChoice.
func (p *Parser) parseGroupSuffix(g *splitast.Group) (splitast.Expression, error) {
	underscoreCount := g.UnderscoreCount()
	if p.atEnd() {
		return g, nil
	}

	switch p.peek() {
	case "#":
		if underscoreCount != 0 {
			return nil, p.fail(errcode.OctothorpMustFollowASimpleGroupOrEllipsis, "# counting group must contain no arguments")
		}
		p.advance()
		return splitast.NewCounter(g), nil

	case "?":
		if g.HasDagger {
			return nil, p.fail(errcode.QuestionMarkMustFollowASimpleGroup, "? cannot follow a group with a double dagger")
		}
		p.advance()
		if underscoreCount == 0 {
			return splitast.NewOptional(g.BeforeDagger), nil
		}
		g.MaximumCardinality = 1
		return g, nil

	case "!":
		alt, ok := soleAlternation(g)
		if !ok || underscoreCount != 0 || g.HasDagger {
			return nil, p.fail(errcode.ExclamationMarkMustFollowAnAlternationGroup, "! must follow a group containing exactly one alternation and no arguments")
		}
		p.advance()
		return splitast.NewNumberedChoice(alt), nil

	default:
		return g, nil
	}
}

func soleAlternation(g *splitast.Group) (*splitast.Alternation, bool) {
	if len(g.AfterDagger.Expressions) != 0 {
		return nil, false
	}
	if len(g.BeforeDagger.Expressions) != 1 {
		return nil, false
	}
	alt, ok := g.BeforeDagger.Expressions[0].(*splitast.Alternation)
	return alt, ok
}

// parsePostfixModifiers resolves the modifiers that apply generically
// after any expression: "⁇" (CompletelyOptional, when the subject is a
// bare token or a simple group), "~" (CaseInsensitive) and a circled-number
// explicit ordinal.
func (p *Parser) parsePostfixModifiers(e splitast.Expression) (splitast.Expression, error) {
	for !p.atEnd() {
		t := p.peek()

		if ord, ok := ordinalFor(t); ok {
			if !e.CanBeReordered() {
				return nil, p.fail(errcode.InconsistentArgumentReordering, "circled number ordinal may only follow an argument or a group")
			}
			e.SetExplicitOrdinal(ord)
			p.advance()
			continue
		}

		if t == "⁇" {
			ok := false
			switch v := e.(type) {
			case *splitast.Simple:
				ok = true
			case *splitast.Group:
				ok = v.UnderscoreCount() == 0 && !v.HasDagger
			}
			if !ok {
				return nil, p.fail(errcode.DoubleQuestionMarkMustFollowATokenOrSimpleGroup, "⁇ must follow a token or a simple group with no arguments")
			}
			e = splitast.NewCompletelyOptional(e)
			p.advance()
			continue
		}

		if t == "~" {
			if _, isArg := e.(*splitast.Argument); isArg {
				return nil, p.fail(errcode.TildeMustNotFollowArgument, "~ must not follow an argument")
			}
			if !p.isLowerCase(e) {
				return nil, p.fail(errcode.CaseInsensitiveExpressionCanonization, "~ may only follow an all-lowercase expression")
			}
			e = splitast.NewCaseInsensitive(e)
			p.advance()
			continue
		}

		break
	}
	return e, nil
}

func (p *Parser) isLowerCase(e splitast.Expression) bool {
	switch v := e.(type) {
	case *splitast.Simple:
		text := p.parts[v.TokenIndex].Text
		return text == strings.ToLower(text)
	case *splitast.Group:
		return p.sequenceIsLowerCase(v.BeforeDagger) && p.sequenceIsLowerCase(v.AfterDagger)
	case *splitast.Sequence:
		return p.sequenceIsLowerCase(v)
	default:
		return false
	}
}

func (p *Parser) sequenceIsLowerCase(seq *splitast.Sequence) bool {
	for _, e := range seq.Expressions {
		if !p.isLowerCase(e) {
			return false
		}
	}
	return true
}

func (p *Parser) ensureAlternativeIsPlain(e splitast.Expression) error {
	if containsArgumentOrGroup(e) {
		return p.fail(errcode.AlternativeMustNotContainArguments, "an alternative must not contain an argument, subgroup or underscore")
	}
	return nil
}

func containsArgumentOrGroup(e splitast.Expression) bool {
	switch v := e.(type) {
	case *splitast.Argument:
		return true
	case *splitast.Group, *splitast.Counter, *splitast.Optional, *splitast.CompletelyOptional, *splitast.NumberedChoice:
		return true
	case *splitast.CaseInsensitive:
		return containsArgumentOrGroup(v.Expression)
	case *splitast.Alternation:
		for _, alt := range v.Alternatives {
			if containsArgumentOrGroup(alt) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// addToSequence appends e to seq. The first reorderable child fixes
// whether the sequence is in "all-numbered" or "none-numbered" mode, and
// every later reorderable child must agree.
func (p *Parser) addToSequence(seq *splitast.Sequence, e splitast.Expression) error {
	if e.CanBeReordered() {
		hasOrdinal := e.ExplicitOrdinal() != -1
		switch seq.ArgumentsAreReordered {
		case splitast.OrdinalsUnset:
			if hasOrdinal {
				seq.ArgumentsAreReordered = splitast.OrdinalsAllNumbered
			} else {
				seq.ArgumentsAreReordered = splitast.OrdinalsNoneNumbered
			}
		case splitast.OrdinalsAllNumbered:
			if !hasOrdinal {
				return p.fail(errcode.InconsistentArgumentReordering, "mixed explicit and implicit argument ordinals")
			}
		case splitast.OrdinalsNoneNumbered:
			if hasOrdinal {
				return p.fail(errcode.InconsistentArgumentReordering, "mixed explicit and implicit argument ordinals")
			}
		}
	}
	seq.Expressions = append(seq.Expressions, e)
	return nil
}

// checkForConsistentOrdinals checks that when a sequence is
// "all-numbered", its ordinals form a permutation of 1..N with N >= 2 that
// is not the identity. Uses a bitset for compact membership tracking of
// which ordinals have been seen.
func (p *Parser) checkForConsistentOrdinals(seq *splitast.Sequence) error {
	if seq.ArgumentsAreReordered != splitast.OrdinalsAllNumbered {
		return nil
	}

	var ordinals []int
	for _, e := range seq.Expressions {
		if e.CanBeReordered() {
			ordinals = append(ordinals, e.ExplicitOrdinal())
		}
	}
	n := len(ordinals)
	if n < 2 {
		return p.fail(errcode.InconsistentArgumentReordering, "at least two reorderable arguments are required to use explicit ordinals")
	}

	seen := bitset.New(uint(n + 1))
	identity := true
	for i, ord := range ordinals {
		if ord < 1 || ord > n {
			return p.fail(errcode.InconsistentArgumentReordering, "ordinal %d is out of range 1..%d", ord, n)
		}
		if seen.Test(uint(ord)) {
			return p.fail(errcode.InconsistentArgumentReordering, "duplicate ordinal %d", ord)
		}
		seen.Set(uint(ord))
		if ord != i+1 {
			identity = false
		}
	}
	if identity {
		return p.fail(errcode.InconsistentArgumentReordering, "explicit ordinals must not be the identity permutation")
	}

	seq.PermutedArguments = ordinals
	return nil
}

// ordinalFor maps one of the 51 circled-number code points ⓪..㊿ to its
// ordinal 0..50.
func ordinalFor(text string) (int, bool) {
	r := []rune(text)
	if len(r) != 1 {
		return 0, false
	}
	c := r[0]
	switch {
	case c == 0x24EA:
		return 0, true
	case c >= 0x2460 && c <= 0x2468:
		return int(c-0x2460) + 1, true
	case c == 0x2469:
		return 10, true
	case c >= 0x246A && c <= 0x2473:
		return int(c-0x246A) + 11, true
	case c >= 0x3251 && c <= 0x325F:
		return int(c-0x3251) + 21, true
	case c >= 0x32B1 && c <= 0x32BF:
		return int(c-0x32B1) + 36, true
	default:
		return 0, false
	}
}

// CircledNumberFor is ordinalFor's inverse: it renders ordinal (0..50) back
// to its circled-number code point, for tooling that prints a name's
// explicit reordering ordinals rather than parsing them.
func CircledNumberFor(ordinal int) (string, bool) {
	var c rune
	switch {
	case ordinal == 0:
		c = 0x24EA
	case ordinal >= 1 && ordinal <= 9:
		c = 0x2460 + rune(ordinal-1)
	case ordinal == 10:
		c = 0x2469
	case ordinal >= 11 && ordinal <= 20:
		c = 0x246A + rune(ordinal-11)
	case ordinal >= 21 && ordinal <= 35:
		c = 0x3251 + rune(ordinal-21)
	case ordinal >= 36 && ordinal <= 50:
		c = 0x32B1 + rune(ordinal-36)
	default:
		return "", false
	}
	return string(c), true
}
