package cardquery

// Query is a compiled query: its tokens in postfix order plus a prepared
// matcher for every term. A Query is immutable and safe for concurrent use.
type Query struct {
	raw     string
	postfix []Token
	ops     []op
}

// op is one postfix instruction. term is set for TokTerm only.
type op struct {
	kind TokenKind
	term *matcher
}

// Compile tokenizes raw, inserts implicit ANDs and converts the result to
// postfix form. It accepts any input; a blank query compiles to an empty
// program that matches nothing.
func Compile(raw string) *Query {
	postfix := toPostfix(InsertImplicitAnd(Tokenize(raw)))

	ops := make([]op, len(postfix))
	for i, tok := range postfix {
		ops[i] = op{kind: tok.Kind}
		if tok.Kind == TokTerm {
			ops[i].term = newMatcher(ParseTerm(tok.Lit))
		}
	}

	return &Query{raw: raw, postfix: postfix, ops: ops}
}

// Raw returns the query text the program was compiled from.
func (q *Query) Raw() string { return q.raw }

// Empty reports whether the program has no instructions.
func (q *Query) Empty() bool { return len(q.ops) == 0 }

// Tokens returns a copy of the program in postfix order. It only ever holds
// terms and AND/OR/NOT.
func (q *Query) Tokens() []Token {
	out := make([]Token, len(q.postfix))
	copy(out, q.postfix)
	return out
}

// String renders the postfix program.
func (q *Query) String() string {
	return joinTokens(q.postfix)
}

// toPostfix is a shunting-yard conversion that never fails.
//
// Operators pop every stacked operator of greater or equal precedence before
// being pushed. A ')' pops operators until the matching '(' which is
// discarded; a ')' without a partner is dropped. Any '(' left over at the end
// of input is discarded without being emitted.
func toPostfix(tokens []Token) []Token {
	out := make([]Token, 0, len(tokens))
	var stack []Token

	pop := func() Token {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return top
	}

	for _, tok := range tokens {
		switch tok.Kind {
		case TokTerm:
			out = append(out, tok)

		case TokAnd, TokOr, TokNot:
			for len(stack) > 0 {
				top := stack[len(stack)-1]
				if !top.Kind.isOperator() || top.Kind.precedence() < tok.Kind.precedence() {
					break
				}
				out = append(out, pop())
			}
			stack = append(stack, tok)

		case TokLParen:
			stack = append(stack, tok)

		case TokRParen:
			for len(stack) > 0 && stack[len(stack)-1].Kind != TokLParen {
				out = append(out, pop())
			}
			if len(stack) > 0 {
				pop()
			}
		}
	}

	for len(stack) > 0 {
		if top := pop(); top.Kind != TokLParen {
			out = append(out, top)
		}
	}

	return out
}
