package cardquery

import (
	"regexp"
	"strings"

	"github.com/starford/mindvault/internal/models"
)

// matcher tests one resolved term against a projection.
type matcher struct {
	field  Field
	needle string         // lowercased value, used when re is nil
	re     *regexp.Regexp // wildcard pattern; nil when the value has no '*'
	never  bool           // scoped term with an empty value
}

func newMatcher(t Term) *matcher {
	m := &matcher{field: t.Field}
	if t.Scoped && strings.TrimSpace(t.Value) == "" {
		m.never = true
		return m
	}

	m.needle = strings.ToLower(t.Value)
	if strings.Contains(m.needle, "*") {
		re, err := compileWildcard(m.needle)
		if err != nil {
			m.never = true
			return m
		}
		m.re = re
	}
	return m
}

// compileWildcard turns a '*' pattern into a case-insensitive regex that
// requires its literal segments to appear in order. Every other character is
// matched literally.
func compileWildcard(pattern string) (*regexp.Regexp, error) {
	segments := strings.Split(pattern, "*")
	for i, seg := range segments {
		segments[i] = regexp.QuoteMeta(seg)
	}

	var b strings.Builder
	b.WriteString("(?is)^.*")
	b.WriteString(strings.Join(segments, ".*"))
	b.WriteString(".*$")
	return regexp.Compile(b.String())
}

func (m *matcher) match(p *Projection) bool {
	if m.never {
		return false
	}
	text := p.Get(m.field)
	if m.re != nil {
		return m.re.MatchString(text)
	}
	return strings.Contains(text, m.needle)
}

// Match reports whether c satisfies the query.
func (q *Query) Match(c *models.Card) bool {
	if q.Empty() {
		return false
	}
	p := Project(c)
	return q.MatchProjection(&p)
}

// MatchProjection evaluates the postfix program against a projection.
//
// Operators that find too few operands on the stack use false for each
// missing one, so the evaluation is defined for every program. An empty
// program evaluates to false.
func (q *Query) MatchProjection(p *Projection) bool {
	stack := make([]bool, 0, 8)

	pop := func() bool {
		if len(stack) == 0 {
			return false
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}

	for _, o := range q.ops {
		switch o.kind {
		case TokTerm:
			stack = append(stack, o.term.match(p))
		case TokNot:
			stack = append(stack, !pop())
		case TokAnd:
			right, left := pop(), pop()
			stack = append(stack, left && right)
		case TokOr:
			right, left := pop(), pop()
			stack = append(stack, left || right)
		}
	}

	return pop()
}

// Filter returns the cards matching q in their input order.
func (q *Query) Filter(cards []models.Card) []models.Card {
	if q.Empty() {
		return nil
	}
	var out []models.Card
	for i := range cards {
		if q.Match(&cards[i]) {
			out = append(out, cards[i])
		}
	}
	return out
}

// Filter compiles query and returns the matching cards in input order.
func Filter(query string, cards []models.Card) []models.Card {
	return Compile(query).Filter(cards)
}

// FilterIDs compiles query and returns the IDs of the matching cards in
// input order.
func FilterIDs(query string, cards []models.Card) []string {
	matched := Compile(query).Filter(cards)
	ids := make([]string, len(matched))
	for i := range matched {
		ids[i] = matched[i].ID
	}
	return ids
}
