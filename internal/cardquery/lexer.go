package cardquery

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

var keywords = []struct {
	word string
	kind TokenKind
}{
	{"AND", TokAnd},
	{"OR", TokOr},
	{"NOT", TokNot},
}

// Tokenize splits a raw query into tokens.
//
// At each position the scanner tries, in order: '(', ')', a case-insensitive
// AND/OR/NOT that ends on a word boundary, and finally a maximal run of
// characters that are neither whitespace nor parentheses, which becomes a
// term. Whitespace separates tokens and is never emitted. Terms keep their
// original text, including any ':' and '*'.
func Tokenize(input string) []Token {
	var tokens []Token

	pos := 0
	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])

		switch {
		case unicode.IsSpace(r):
			pos += size
		case r == '(':
			tokens = append(tokens, Token{Kind: TokLParen})
			pos += size
		case r == ')':
			tokens = append(tokens, Token{Kind: TokRParen})
			pos += size
		default:
			if kind, n := keywordAt(input[pos:]); n > 0 {
				tokens = append(tokens, Token{Kind: kind})
				pos += n
				continue
			}
			end := scanTerm(input, pos)
			tokens = append(tokens, Token{Kind: TokTerm, Lit: input[pos:end]})
			pos = end
		}
	}

	return tokens
}

// scanTerm returns the end offset of the term starting at pos.
func scanTerm(input string, pos int) int {
	for pos < len(input) {
		r, size := utf8.DecodeRuneInString(input[pos:])
		if r == '(' || r == ')' || unicode.IsSpace(r) {
			break
		}
		pos += size
	}
	return pos
}

// keywordAt reports whether s starts with an operator keyword followed by a
// word boundary, returning its kind and byte length.
func keywordAt(s string) (TokenKind, int) {
	for _, kw := range keywords {
		n := len(kw.word)
		if len(s) < n || !strings.EqualFold(s[:n], kw.word) {
			continue
		}
		if n < len(s) && isWordByte(s[n]) {
			continue
		}
		return kw.kind, n
	}
	return 0, 0
}

// isWordByte matches the ASCII word class [A-Za-z0-9_].
func isWordByte(b byte) bool {
	return b == '_' ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z') ||
		('0' <= b && b <= '9')
}

// InsertImplicitAnd returns a copy of tokens with an AND inserted between
// every adjacent pair where the left token ends an operand (a term or ')')
// and the right token starts one (a term, '(' or NOT).
func InsertImplicitAnd(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens)*2)
	for i, tok := range tokens {
		out = append(out, tok)
		if i == len(tokens)-1 {
			break
		}
		if endsOperand(tok.Kind) && startsOperand(tokens[i+1].Kind) {
			out = append(out, Token{Kind: TokAnd})
		}
	}
	return out
}

func endsOperand(k TokenKind) bool {
	return k == TokTerm || k == TokRParen
}

func startsOperand(k TokenKind) bool {
	return k == TokTerm || k == TokLParen || k == TokNot
}
