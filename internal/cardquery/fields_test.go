package cardquery

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/mindvault/internal/models"
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		raw  string
		want Term
	}{
		{"apple", Term{Field: FieldAll, Value: "apple"}},
		{"title:apple", Term{Field: FieldTitle, Scoped: true, Value: "apple"}},
		{"TI:Apple", Term{Field: FieldTitle, Scoped: true, Value: "Apple"}},
		{"text:x", Term{Field: FieldContent, Scoped: true, Value: "x"}},
		{"body:x", Term{Field: FieldContent, Scoped: true, Value: "x"}},
		{"note:x", Term{Field: FieldComment, Scoped: true, Value: "x"}},
		{"date:2025", Term{Field: FieldCreated, Scoped: true, Value: "2025"}},
		{"modified:2025", Term{Field: FieldUpdated, Scoped: true, Value: "2025"}},
		{"copy:abc", Term{Field: FieldCopyRef, Scoped: true, Value: "abc"}},
		{"copied:2025", Term{Field: FieldCopiedAt, Scoped: true, Value: "2025"}},
		{"originalcreated:2024", Term{Field: FieldOriginalCreatedAt, Scoped: true, Value: "2024"}},
		{"sem:idea", Term{Field: FieldSemantic, Scoped: true, Value: "idea"}},
		{"comment:", Term{Field: FieldComment, Scoped: true, Value: ""}},
		{"tags:a:b", Term{Field: FieldTags, Scoped: true, Value: "a:b"}},
		{"unknown:value", Term{Field: FieldAll, Value: "unknown:value"}},
		{":leading", Term{Field: FieldAll, Value: ":leading"}},
		{"all:x", Term{Field: FieldAll, Value: "all:x"}},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseTerm(tt.raw))
		})
	}
}

func TestAliases(t *testing.T) {
	list := Aliases()
	require.NotEmpty(t, list)
	assert.True(t, sort.SliceIsSorted(list, func(i, j int) bool { return list[i].Name < list[j].Name }))

	byName := make(map[string]string, len(list))
	for _, a := range list {
		byName[a.Name] = a.Field
	}
	assert.Equal(t, "created", byName["date"])
	assert.Equal(t, "copyRef", byName["copy"])
	assert.Equal(t, "originalCreatedAt", byName["originalcreatedat"])
	assert.NotContains(t, byName, "all")
}

func TestProject(t *testing.T) {
	c := &models.Card{
		Title:        "Apple Pie",
		Content:      "Bake at 200C",
		Tags:         []string{"Food", "urgent"},
		SemanticTags: []string{"cooking"},
		Type:         "image",
		CreatedAt:    "2025-03-05T10:00:00Z",
		CopyRef:      "ABC-123",
	}
	p := Project(c)

	assert.Equal(t, "apple pie", p.Get(FieldTitle))
	assert.Equal(t, "food urgent", p.Get(FieldTags))
	assert.Equal(t, "image", p.Get(FieldType))
	assert.Equal(t, "abc-123", p.Get(FieldCopyRef))
	assert.Equal(t, "", p.Get(FieldCaption))
	assert.Equal(t, "", p.Get(FieldUpdated))
	assert.Equal(t, "apple pie bake at 200c food urgent cooking", p.Get(FieldAll))
	assert.Equal(t, "", p.Get(Field(-1)))
}

func TestProject_NilCard(t *testing.T) {
	p := Project(nil)
	for f := Field(0); f < fieldCount; f++ {
		assert.Equal(t, "", p.Get(f), f.String())
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{"", ""},
		{"2025-03-05T10:00:00Z", "2025-03-05t10:00:00z 2025-03-05 2025/03/05 05-03 03-05 05/03 03/05"},
		{"2025-03-05", "2025-03-05 2025-03-05 2025/03/05 05-03 03-05 05/03 03/05"},
		{"2025-12-31T23:30:00+02:00", "2025-12-31t23:30:00+02:00 2025-12-31 2025/12/31 31-12 12-31 31/12 12/31"},
		{"Someday Soon", "someday soon"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeDate(tt.raw))
		})
	}
}

func TestFieldString(t *testing.T) {
	assert.Equal(t, "copiedAt", FieldCopiedAt.String())
	assert.Equal(t, "all", FieldAll.String())
	assert.Equal(t, "unknown", Field(42).String())
}
