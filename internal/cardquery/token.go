// Package cardquery implements the card search language shared by every
// search surface of Mindvault.
//
// A query is a boolean combination of free-text and field-scoped terms:
//
//	apple AND NOT banana
//	(x OR y) z
//	title:meet* tags:urgent created:2025-03-05
//
// Adjacent terms are joined by an implicit AND. Precedence from low to high
// is OR, AND, NOT; parentheses group. A term may carry a field prefix
// (field:value) naming one of the aliases in Aliases; any other term is
// matched against the aggregate of the human-authored text fields. A '*'
// inside a term matches any run of characters.
//
// The package is pure: compiling and matching never fail, never log and keep
// no state between calls. Malformed input (unbalanced parentheses, dangling
// operators, empty field values, unknown aliases) degrades to a well-defined
// boolean result instead of an error.
package cardquery

import "strings"

// TokenKind identifies the type of a query token.
type TokenKind int

const (
	TokTerm   TokenKind = iota // free text or field:value
	TokAnd                     // AND (case-insensitive)
	TokOr                      // OR (case-insensitive)
	TokNot                     // NOT (case-insensitive)
	TokLParen                  // (
	TokRParen                  // )
)

func (k TokenKind) String() string {
	switch k {
	case TokTerm:
		return "TERM"
	case TokAnd:
		return "AND"
	case TokOr:
		return "OR"
	case TokNot:
		return "NOT"
	case TokLParen:
		return "("
	case TokRParen:
		return ")"
	default:
		return "UNKNOWN"
	}
}

// isOperator reports whether k is one of the boolean operators.
func (k TokenKind) isOperator() bool {
	return k == TokAnd || k == TokOr || k == TokNot
}

// precedence returns the binding strength of an operator; higher binds tighter.
func (k TokenKind) precedence() int {
	switch k {
	case TokOr:
		return 1
	case TokAnd:
		return 2
	case TokNot:
		return 3
	default:
		return 0
	}
}

// Token is one lexical element of a query. Lit is set for TokTerm only.
type Token struct {
	Kind TokenKind
	Lit  string
}

func (t Token) String() string {
	if t.Kind == TokTerm {
		return t.Lit
	}
	return t.Kind.String()
}

// joinTokens renders tokens separated by single spaces.
func joinTokens(tokens []Token) string {
	parts := make([]string, len(tokens))
	for i, t := range tokens {
		parts[i] = t.String()
	}
	return strings.Join(parts, " ")
}
