package search

import (
	"strings"

	"github.com/starford/mindvault/internal/models"
)

// InGroup returns the cards that belong to group, in input order. A nil group
// means no group is active and every card is kept.
func InGroup(cards []models.Card, group *models.Group) []models.Card {
	if group == nil {
		return cards
	}
	members := idSet(group.CardIDs)
	out := make([]models.Card, 0, len(group.CardIDs))
	for _, c := range cards {
		if _, ok := members[c.ID]; ok {
			out = append(out, c)
		}
	}
	return out
}

// NotInGroup returns the cards outside group, in input order. Without an
// active group there is no outside, so a nil group yields nothing.
func NotInGroup(cards []models.Card, group *models.Group) []models.Card {
	if group == nil {
		return nil
	}
	members := idSet(group.CardIDs)
	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if _, ok := members[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// TagFilter narrows a card list by exact tag membership.
type TagFilter struct {
	Include []string
	Exclude []string
}

// Apply keeps a card unless it carries an excluded tag, or includes are set
// and it carries none of them. Blank tag names are ignored; an empty filter
// keeps everything.
func (f TagFilter) Apply(cards []models.Card) []models.Card {
	include := tagSet(f.Include)
	exclude := tagSet(f.Exclude)
	if len(include) == 0 && len(exclude) == 0 {
		return cards
	}

	out := make([]models.Card, 0, len(cards))
	for _, c := range cards {
		if hasAny(c.Tags, exclude) {
			continue
		}
		if len(include) > 0 && !hasAny(c.Tags, include) {
			continue
		}
		out = append(out, c)
	}
	return out
}

// ParseTagList splits a comma separated tag list.
func ParseTagList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func idSet(ids []string) map[string]struct{} {
	m := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		m[id] = struct{}{}
	}
	return m
}

func tagSet(tags []string) map[string]struct{} {
	m := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			m[t] = struct{}{}
		}
	}
	return m
}

func hasAny(tags []string, set map[string]struct{}) bool {
	for _, t := range tags {
		if _, ok := set[t]; ok {
			return true
		}
	}
	return false
}
