package cardquery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompilePostfix(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"apple", "apple"},
		{"apple AND NOT banana", "apple banana NOT AND"},
		{"(x OR y) AND z", "x y OR z AND"},
		{"(x OR y) z", "x y OR z AND"},
		{"a OR b c", "a b c AND OR"},
		{"a AND b OR c", "a b AND c OR"},
		{"a OR b OR c", "a b OR c OR"},
		{"NOT (a OR b)", "a b OR NOT"},
		{"((a)", "a"},
		{"a)) OR b", "a b OR"},
		{"(a OR", "a OR"},
		{"AND apple", "apple AND"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, Compile(tt.input).String())
		})
	}
}

func TestCompile_OutputHasNoParens(t *testing.T) {
	for _, in := range []string{"((a) OR (b", ")(", "a ) ( b", "(((", ")))"} {
		for _, tok := range Compile(in).Tokens() {
			assert.NotEqual(t, TokLParen, tok.Kind, in)
			assert.NotEqual(t, TokRParen, tok.Kind, in)
		}
	}
}

func TestCompile_Deterministic(t *testing.T) {
	for _, in := range []string{"apple banana", "(x OR y) AND NOT z*", "title:a tags:b created:2025"} {
		assert.Equal(t, Compile(in).Tokens(), Compile(in).Tokens(), in)
	}
}

func TestCompile_Empty(t *testing.T) {
	q := Compile("   ")
	assert.True(t, q.Empty())
	assert.Empty(t, q.Tokens())
	assert.Equal(t, "   ", q.Raw())
}

func TestCompile_TokensIsACopy(t *testing.T) {
	q := Compile("a b")
	toks := q.Tokens()
	toks[0] = term("mutated")
	assert.Equal(t, "a b AND", q.String())
}
