// Package namelexer splits a method name string into the ordered list of
// message parts the name parser consumes.
//
// Unlike a source-code tokenizer that scans program text for keywords,
// literals and operators, the name lexer here scans a *method name* — a
// short grammar-encoding string — and classifies every code point as
// either "identifier" (a letter or digit, merged into a run) or
// "operator-or-hole-or-space" (emitted as its own one-character part, with
// a few escape rules around backquote and single spaces between runs).
package namelexer

import (
	"fmt"
	"unicode"

	"github.com/kristofer/avail/pkg/errcode"
)

// Part is one lexical unit of a message name: its text (with any
// backquote escapes already resolved) and the one-based code-point
// position in the original name where it starts.
type Part struct {
	Text     string
	Position int
}

// Error is returned when a name cannot be lexed canonically. It always
// carries errcode.MethodNameIsNotCanonical, the only failure mode this
// layer defines.
type Error struct {
	Code     errcode.Code
	Message  string
	Position int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at position %d: %s", e.Code, e.Position, e.Message)
}

func newError(position int, format string, args ...interface{}) *Error {
	return &Error{
		Code:     errcode.MethodNameIsNotCanonical,
		Message:  fmt.Sprintf(format, args...),
		Position: position,
	}
}

// isIdentifierRune reports whether r is an "identifier" code point: a
// letter or digit. Everything else — including `_`, `…`, `/`, `$`, space,
// backquote and every guillemet/dagger/circled-number/punctuation mark —
// is an operator-or-hole-or-space code point.
func isIdentifierRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Lex splits name into message parts, enforcing the whitespace-placement
// rule that a bare space is legal only between two identifier runs, or
// immediately before an escaped-underscore run via backquote.
func Lex(name string) ([]Part, error) {
	runes := []rune(name)
	n := len(runes)
	var parts []Part
	lastWasIdentifierRun := false

	pos := 0
	for pos < n {
		r := runes[pos]

		switch {
		case isIdentifierRune(r):
			start := pos
			var text []rune
			for pos < n {
				r = runes[pos]
				if isIdentifierRune(r) {
					text = append(text, r)
					pos++
					continue
				}
				if r == '`' && pos+1 < n && runes[pos+1] == '_' {
					text = append(text, '_')
					pos += 2
					continue
				}
				break
			}
			parts = append(parts, Part{Text: string(text), Position: start + 1})
			lastWasIdentifierRun = true

		case r == ' ':
			if !lastWasIdentifierRun {
				return nil, newError(pos+1, "space may only follow an identifier run")
			}
			if !nextStartsIdentifierRun(runes, pos+1) {
				return nil, newError(pos+1, "space must be followed by an identifier run (or an escaped `_ run)")
			}
			pos++ // consumed, emits no part
			// lastWasIdentifierRun stays true; the following run still
			// counts as following an identifier run for chained spaces
			// like "a b c".

		case r == '`':
			if pos+1 < n && runes[pos+1] == '_' {
				// A backquote-escaped underscore run starting fresh
				// (not already inside an identifier run), e.g. the
				// " `_b" pattern the space rule allows.
				start := pos
				text := []rune{'_'}
				pos += 2
				for pos < n {
					r = runes[pos]
					if isIdentifierRune(r) {
						text = append(text, r)
						pos++
						continue
					}
					if r == '`' && pos+1 < n && runes[pos+1] == '_' {
						text = append(text, '_')
						pos += 2
						continue
					}
					break
				}
				parts = append(parts, Part{Text: string(text), Position: start + 1})
				lastWasIdentifierRun = true
			} else {
				parts = append(parts, Part{Text: "`", Position: pos + 1})
				lastWasIdentifierRun = false
				pos++
			}

		default:
			// Every other operator-or-hole-or-space code point becomes
			// its own one-character part.
			parts = append(parts, Part{Text: string(r), Position: pos + 1})
			lastWasIdentifierRun = false
			pos++
		}
	}

	return parts, nil
}

// nextStartsIdentifierRun reports whether the rune at index i begins an
// identifier run, either directly or via a `_ escape.
func nextStartsIdentifierRun(runes []rune, i int) bool {
	if i >= len(runes) {
		return false
	}
	if isIdentifierRune(runes[i]) {
		return true
	}
	return runes[i] == '`' && i+1 < len(runes) && runes[i+1] == '_'
}
