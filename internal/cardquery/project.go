package cardquery

import (
	"strings"
	"time"

	"github.com/starford/mindvault/internal/models"
)

// Projection is the lowercased searchable text of one card, indexed by Field.
// Absent attributes project to the empty string.
type Projection [fieldCount]string

// Get returns the projected text of f.
func (p *Projection) Get(f Field) string {
	if f < 0 || f >= fieldCount {
		return ""
	}
	return p[f]
}

// Project builds the projection of c.
//
// The aggregate FieldAll joins title, content, caption, comment, OCR text,
// tags and semantic tags only. Type, dates and copy provenance stay out of it
// so that a bare word never matches card metadata.
func Project(c *models.Card) Projection {
	var p Projection
	if c == nil {
		return p
	}

	p[FieldTitle] = strings.ToLower(c.Title)
	p[FieldContent] = strings.ToLower(c.Content)
	p[FieldCaption] = strings.ToLower(c.Caption)
	p[FieldComment] = strings.ToLower(c.Comment)
	p[FieldOCR] = strings.ToLower(c.OCRText)
	p[FieldTags] = strings.ToLower(strings.Join(c.Tags, " "))
	p[FieldSemantic] = strings.ToLower(strings.Join(c.SemanticTags, " "))
	p[FieldCreated] = normalizeDate(c.CreatedAt)
	p[FieldUpdated] = normalizeDate(c.UpdatedAt)
	p[FieldType] = strings.ToLower(c.Type)
	p[FieldCopyRef] = strings.ToLower(c.CopyRef)
	p[FieldCopiedAt] = normalizeDate(c.CopiedAt)
	p[FieldOriginalCreatedAt] = normalizeDate(c.OriginalCreatedAt)

	var all []string
	for _, f := range []Field{FieldTitle, FieldContent, FieldCaption, FieldComment, FieldOCR, FieldTags, FieldSemantic} {
		if p[f] != "" {
			all = append(all, p[f])
		}
	}
	p[FieldAll] = strings.Join(all, " ")

	return p
}

// dateForms renders, in one pass, YYYY-MM-DD YYYY/MM/DD DD-MM MM-DD DD/MM MM/DD.
const dateForms = "2006-01-02 2006/01/02 02-01 01-02 02/01 01/02"

// dateLayouts are the stored timestamp formats recognised by normalizeDate.
var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"2006/01/02",
	time.RFC1123Z,
	time.RFC1123,
	time.RFC850,
	time.ANSIC,
	"January 2, 2006",
	"Jan 2, 2006",
}

// normalizeDate returns the searchable text of a date field: the raw value
// followed by the common numeric renderings of its calendar date, or the raw
// value alone when it cannot be parsed. The calendar date is taken in the
// offset written in the value; values without an offset are read as UTC.
func normalizeDate(raw string) string {
	if raw == "" {
		return ""
	}
	t, ok := parseDate(strings.TrimSpace(raw))
	if !ok {
		return strings.ToLower(raw)
	}
	return strings.ToLower(raw + " " + t.Format(dateForms))
}

func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
