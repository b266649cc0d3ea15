package mcpserver

// QuerySyntax documents the card query language for LLM consumers of the
// search tools.
const QuerySyntax = `# Mindvault Card Query Syntax

Card queries are boolean filters over cards. There is no ranking: matches
come back in the workspace's natural order (creation date, then id).

## Terms

- A bare word matches if it appears anywhere in the card's title, content,
  caption, comment, OCR text, tags or semantic tags (case-insensitive
  substring).
- ` + "`field:value`" + ` restricts the match to one field. ` + "`field:`" + ` with no value
  never matches.
- ` + "`*`" + ` is a wildcard. A term containing ` + "`*`" + ` must match the whole field
  text: ` + "`ti:draft*`" + ` matches titles starting with "draft", ` + "`*draft*`" + ` is the
  same as a plain ` + "`draft`" + `.

Dates, type and copy provenance are only searchable through their field.

## Operators

| Operator | Meaning | Precedence |
|---|---|---|
| ` + "`NOT x`" + ` | x does not match | highest |
| ` + "`x AND y`" + ` | both match | |
| ` + "`x OR y`" + ` | either matches | lowest |
| ` + "`( ... )`" + ` | grouping | |

Operators are case-insensitive whole words. Adjacent terms are joined with
AND, so ` + "`apple banana`" + ` means ` + "`apple AND banana`" + ` and ` + "`apple NOT pie`" + ` means
` + "`apple AND NOT pie`" + `. Unbalanced parentheses and dangling operators never fail;
they simply match less.

## Fields

| Field | Aliases |
|---|---|
| title | title, ti |
| content | content, text, body |
| caption | caption, cap |
| comment | comment, note |
| ocr | ocr, ocrtext |
| tags | tags, tag |
| semantic | semantic, sem |
| created | created, createdat, date |
| updated | updated, updatedat, modified |
| type | type (text, image, zotero) |
| copyRef | copyref, copy |
| copiedAt | copied, copiedat |
| originalCreatedAt | originalcreated, originalcreatedat |

## Dates

A parseable date field can be matched by any of: the stored text,
` + "`YYYY-MM-DD`" + `, ` + "`YYYY/MM/DD`" + `, ` + "`DD-MM`" + `, ` + "`MM-DD`" + `, ` + "`DD/MM`" + `, ` + "`MM/DD`" + `. For example
` + "`date:2025-03`" + ` finds cards created in March 2025 and ` + "`created:05/03`" + ` finds
cards created on 5 March (or 3 May) of any year.

## Examples

` + "```" + `
tag:thesis NOT tag:draft
(ti:intro OR ti:conclusion) date:2024
type:image caption:*diagram*
type:zotero originalcreated:2023
` + "```" + `

## Groups

` + "`search_cards`" + ` searches the workspace: all cards, or only a group's cards when
` + "`group`" + ` is set. ` + "`find_group_candidates`" + ` searches the cards NOT yet in a
group; it always returns nothing without a group.
`
