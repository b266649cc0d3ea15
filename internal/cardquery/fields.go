package cardquery

import (
	"sort"
	"strings"
)

// Field is a searchable card attribute.
type Field int

const (
	FieldTitle Field = iota
	FieldContent
	FieldCaption
	FieldComment
	FieldOCR
	FieldTags
	FieldSemantic
	FieldCreated
	FieldUpdated
	FieldType
	FieldCopyRef
	FieldCopiedAt
	FieldOriginalCreatedAt
	FieldAll

	fieldCount
)

var fieldNames = [fieldCount]string{
	FieldTitle:             "title",
	FieldContent:           "content",
	FieldCaption:           "caption",
	FieldComment:           "comment",
	FieldOCR:               "ocr",
	FieldTags:              "tags",
	FieldSemantic:          "semantic",
	FieldCreated:           "created",
	FieldUpdated:           "updated",
	FieldType:              "type",
	FieldCopyRef:           "copyRef",
	FieldCopiedAt:          "copiedAt",
	FieldOriginalCreatedAt: "originalCreatedAt",
	FieldAll:               "all",
}

// String returns the canonical field key.
func (f Field) String() string {
	if f < 0 || f >= fieldCount {
		return "unknown"
	}
	return fieldNames[f]
}

// aliases maps lowercase user-facing prefixes to fields. "all" is not an
// alias: the aggregate is reachable only through unscoped terms.
var aliases = map[string]Field{
	"type":              FieldType,
	"copyref":           FieldCopyRef,
	"copy":              FieldCopyRef,
	"copied":            FieldCopiedAt,
	"copiedat":          FieldCopiedAt,
	"originalcreated":   FieldOriginalCreatedAt,
	"originalcreatedat": FieldOriginalCreatedAt,
	"title":             FieldTitle,
	"ti":                FieldTitle,
	"content":           FieldContent,
	"text":              FieldContent,
	"body":              FieldContent,
	"caption":           FieldCaption,
	"cap":               FieldCaption,
	"comment":           FieldComment,
	"note":              FieldComment,
	"ocr":               FieldOCR,
	"ocrtext":           FieldOCR,
	"tags":              FieldTags,
	"tag":               FieldTags,
	"semantic":          FieldSemantic,
	"sem":               FieldSemantic,
	"created":           FieldCreated,
	"createdat":         FieldCreated,
	"date":              FieldCreated,
	"updated":           FieldUpdated,
	"updatedat":         FieldUpdated,
	"modified":          FieldUpdated,
}

// LookupAlias resolves a field alias case-insensitively.
func LookupAlias(alias string) (Field, bool) {
	f, ok := aliases[strings.ToLower(alias)]
	return f, ok
}

// Alias is one entry of the alias table.
type Alias struct {
	Name  string `json:"alias"`
	Field string `json:"field"`
}

// Aliases returns the alias table sorted by alias name. Autocomplete hints
// use it to complete a trailing partial "alias:" in the raw query.
func Aliases() []Alias {
	out := make([]Alias, 0, len(aliases))
	for name, f := range aliases {
		out = append(out, Alias{Name: name, Field: f.String()})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Term is a term token resolved against the alias table.
//
// A term is scoped when the text before its first ':' is a known alias; the
// value is then the text after the colon. Otherwise Scoped is false, Field is
// FieldAll and Value is the whole original text, colon included.
type Term struct {
	Field  Field
	Scoped bool
	Value  string
}

// ParseTerm resolves the raw text of a term token.
func ParseTerm(raw string) Term {
	if i := strings.IndexByte(raw, ':'); i > 0 {
		if f, ok := LookupAlias(raw[:i]); ok {
			return Term{Field: f, Scoped: true, Value: raw[i+1:]}
		}
	}
	return Term{Field: FieldAll, Value: raw}
}
