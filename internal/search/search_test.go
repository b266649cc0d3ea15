package search

import (
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mindvault/internal/models"
)

var cards = []models.Card{
	{ID: "a", Title: "apple pie", Tags: []string{"food"}},
	{ID: "b", Title: "apple banana split", Tags: []string{"food", "urgent"}},
	{ID: "c", Title: "banana bread", Tags: []string{"work"}},
	{ID: "d", Content: "pear", Tags: nil},
}

func TestWorkspace(t *testing.T) {
	s := New()
	res := s.Workspace("apple AND NOT banana", cards)
	assert.Equal(t, []string{"a"}, res.IDs)
	assert.Equal(t, 1, res.Count)
	require.Len(t, res.Cards, 1)
	assert.Equal(t, "apple pie", res.Cards[0].Title)
}

func TestWorkspace_BlankPolicy(t *testing.T) {
	none := New()
	res := none.Workspace("   ", cards)
	assert.Equal(t, 0, res.Count)
	assert.NotNil(t, res.Cards)
	assert.NotNil(t, res.IDs)

	all := New(WithBlankQuery(BlankAll))
	assert.Equal(t, []string{"a", "b", "c", "d"}, all.Workspace("", cards).IDs)

	fallback := New(WithBlankQuery("bogus"))
	assert.Equal(t, 0, fallback.Workspace("", cards).Count)
}

func TestWorkspace_MalformedQueryIsNotBlank(t *testing.T) {
	s := New(WithBlankQuery(BlankAll))
	assert.Equal(t, 0, s.Workspace("(", cards).Count)
	assert.Equal(t, 0, s.Workspace("AND apple", cards).Count)
}

func TestOutsideGroup(t *testing.T) {
	s := New()
	group := &models.Group{ID: "g", CardIDs: []string{"a"}}

	res := s.OutsideGroup("apple", cards, group)
	assert.Equal(t, []string{"b"}, res.IDs)

	res = s.OutsideGroup("title:banana", cards, group)
	assert.Equal(t, []string{"b", "c"}, res.IDs)
}

func TestOutsideGroup_NoGroupIsAlwaysEmpty(t *testing.T) {
	s := New(WithBlankQuery(BlankAll))
	for _, q := range []string{"", "   ", "apple", "NOT apple", "NOT", "*", "(x OR y"} {
		res := s.OutsideGroup(q, cards, nil)
		assert.Equal(t, 0, res.Count, q)
		assert.Empty(t, res.IDs, q)
	}
}

func TestOutsideGroup_BlankQuery(t *testing.T) {
	s := New(WithBlankQuery(BlankAll))
	res := s.OutsideGroup("", cards, &models.Group{ID: "g"})
	assert.Equal(t, 0, res.Count)
}

func TestSitesAgree(t *testing.T) {
	s := New()
	empty := &models.Group{ID: "empty"}
	for _, q := range []string{"apple", "tags:urgent", "NOT banana", "ti:*bread", "(apple OR pear) NOT split"} {
		assert.Equal(t, s.Workspace(q, cards).IDs, s.OutsideGroup(q, cards, empty).IDs, q)
	}
}

func TestCompile_Memo(t *testing.T) {
	s := New()
	q1 := s.Compile("apple banana")
	q2 := s.Compile("apple banana")
	assert.Same(t, q1, q2)

	q3 := s.Compile("pear")
	assert.NotSame(t, q1, q3)
	assert.Equal(t, "pear", q3.Raw())
}

func TestCompile_Truncates(t *testing.T) {
	s := New(WithMaxQueryLength(5))
	assert.Equal(t, "apple", s.Compile("apple banana").Raw())

	// "é" is two bytes; the cut must not split it.
	s = New(WithMaxQueryLength(2))
	assert.Equal(t, "a", s.Compile("aé").Raw())
}

func TestSearcher_Concurrent(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			q := "apple"
			if i%2 == 1 {
				q = "banana"
			}
			for j := 0; j < 50; j++ {
				res := s.Workspace(q, cards)
				assert.Equal(t, 2, res.Count)
			}
		}(i)
	}
	wg.Wait()
}

func TestInGroup(t *testing.T) {
	assert.Equal(t, cards, InGroup(cards, nil))
	got := InGroup(cards, &models.Group{CardIDs: []string{"c", "a", "zzz"}})
	assert.Equal(t, []string{"a", "c"}, ids(got))
}

func TestNotInGroup(t *testing.T) {
	assert.Nil(t, NotInGroup(cards, nil))
	got := NotInGroup(cards, &models.Group{CardIDs: []string{"a", "d"}})
	assert.Equal(t, []string{"b", "c"}, ids(got))
}

func TestTagFilter(t *testing.T) {
	tests := []struct {
		name   string
		filter TagFilter
		want   []string
	}{
		{"empty keeps all", TagFilter{}, []string{"a", "b", "c", "d"}},
		{"blank names ignored", TagFilter{Include: []string{" "}}, []string{"a", "b", "c", "d"}},
		{"include", TagFilter{Include: []string{"food"}}, []string{"a", "b"}},
		{"exclude", TagFilter{Exclude: []string{"urgent"}}, []string{"a", "c", "d"}},
		{"exclude wins", TagFilter{Include: []string{"food"}, Exclude: []string{"urgent"}}, []string{"a"}},
		{"include any", TagFilter{Include: []string{"work", "urgent"}}, []string{"b", "c"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(tt.filter.Apply(cards)))
		})
	}
}

func TestParseTagList(t *testing.T) {
	assert.Nil(t, ParseTagList(""))
	assert.Equal(t, []string{"a", "b c"}, ParseTagList(" a ,, b c ,"))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 0))
	assert.Equal(t, "abc", truncate("abc", 10))
	assert.Equal(t, strings.Repeat("x", 4), truncate(strings.Repeat("x", 9), 4))
}

func ids(cs []models.Card) []string {
	out := make([]string, 0, len(cs))
	for _, c := range cs {
		out = append(out, c.ID)
	}
	return out
}
