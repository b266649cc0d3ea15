// Package parser reads and writes card files: YAML frontmatter followed by a
// Markdown body that becomes the card content.
package parser

import (
	"bytes"
	"fmt"
	"path"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/mindvault/internal/checksum"
	"github.com/starford/mindvault/internal/models"
)

const delim = "---"

var tagRe = regexp.MustCompile(`(?:^|\s)#([A-Za-z][A-Za-z0-9_/-]*)`)

// stringList accepts either a YAML sequence or a single scalar.
type stringList []string

func (l *stringList) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if v := strings.TrimSpace(n.Value); v != "" {
			*l = stringList{v}
		}
		return nil
	case yaml.SequenceNode:
		var items []string
		if err := n.Decode(&items); err != nil {
			return err
		}
		*l = items
		return nil
	default:
		return fmt.Errorf("parser: expected string or list, got yaml kind %d", n.Kind)
	}
}

// frontmatter is the on-disk header. Dates are strings so that whatever the
// author wrote survives a read/write cycle unchanged.
type frontmatter struct {
	ID                string     `yaml:"id,omitempty"`
	Title             string     `yaml:"title,omitempty"`
	Type              string     `yaml:"type,omitempty"`
	Caption           string     `yaml:"caption,omitempty"`
	Comment           string     `yaml:"comment,omitempty"`
	OCR               string     `yaml:"ocr,omitempty"`
	Tags              stringList `yaml:"tags,omitempty"`
	SemanticTags      stringList `yaml:"semantic_tags,omitempty"`
	Created           string     `yaml:"created,omitempty"`
	Updated           string     `yaml:"updated,omitempty"`
	CopyRef           string     `yaml:"copy_ref,omitempty"`
	CopiedAt          string     `yaml:"copied_at,omitempty"`
	OriginalCreatedAt string     `yaml:"original_created_at,omitempty"`
}

// Parse decodes a card file stored at path (vault relative).
//
// A missing id falls back to the file name stem, a missing type to text, and
// a missing title to the first H1 of the body. Inline #tags in the body are
// merged after the frontmatter tags. Malformed frontmatter is not an error:
// the whole file is treated as body.
func Parse(filePath string, data []byte) *models.Card {
	fm, body := splitFrontmatter(data)

	c := &models.Card{
		ID:                strings.TrimSpace(fm.ID),
		Path:              filePath,
		Title:             fm.Title,
		Content:           body,
		Caption:           fm.Caption,
		Comment:           fm.Comment,
		OCRText:           fm.OCR,
		Tags:              mergeTags(fm.Tags, body),
		SemanticTags:      nonNil(fm.SemanticTags),
		CreatedAt:         fm.Created,
		UpdatedAt:         fm.Updated,
		Type:              strings.ToLower(strings.TrimSpace(fm.Type)),
		CopyRef:           fm.CopyRef,
		CopiedAt:          fm.CopiedAt,
		OriginalCreatedAt: fm.OriginalCreatedAt,
		Checksum:          checksum.Sum(data),
	}
	if c.ID == "" {
		c.ID = stem(filePath)
	}
	if c.Type == "" {
		c.Type = models.CardTypeText
	}
	if c.Title == "" {
		c.Title = firstHeading(body)
	}
	return c
}

// Render encodes c in the card file format. Path and Checksum are not part
// of the file.
func Render(c *models.Card) ([]byte, error) {
	fm := frontmatter{
		ID:                c.ID,
		Title:             c.Title,
		Type:              c.Type,
		Caption:           c.Caption,
		Comment:           c.Comment,
		OCR:               c.OCRText,
		Tags:              c.Tags,
		SemanticTags:      c.SemanticTags,
		Created:           c.CreatedAt,
		Updated:           c.UpdatedAt,
		CopyRef:           c.CopyRef,
		CopiedAt:          c.CopiedAt,
		OriginalCreatedAt: c.OriginalCreatedAt,
	}
	head, err := yaml.Marshal(&fm)
	if err != nil {
		return nil, fmt.Errorf("parser: render frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(delim + "\n")
	buf.Write(head)
	buf.WriteString(delim + "\n")
	buf.WriteString(c.Content)
	if c.Content != "" && !strings.HasSuffix(c.Content, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// FileName returns the vault path used for a card with the given id.
func FileName(id string) string {
	return id + ".md"
}

// splitFrontmatter separates the YAML header between leading --- lines from
// the body. Without a complete, valid header the entire input is body.
func splitFrontmatter(data []byte) (frontmatter, string) {
	var fm frontmatter
	trimmed := bytes.TrimLeft(data, "\n\r")
	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return fm, string(data)
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return fm, string(data)
	}

	block := rest[:idx]
	body := strings.TrimLeft(string(rest[idx+1+len(delim):]), "\n\r")

	if err := yaml.Unmarshal(block, &fm); err != nil {
		return frontmatter{}, string(data)
	}
	return fm, body
}

// mergeTags returns the frontmatter tags followed by inline #tags, without
// duplicates.
func mergeTags(fmTags []string, body string) []string {
	seen := make(map[string]struct{})
	out := []string{}
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, dup := seen[t]; dup {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}

	for _, t := range fmTags {
		add(t)
	}
	for _, m := range tagRe.FindAllStringSubmatch(body, -1) {
		add(m[1])
	}
	return out
}

func firstHeading(body string) string {
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(trimmed[2:])
		}
	}
	return ""
}

func stem(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	return strings.TrimSuffix(base, path.Ext(base))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
