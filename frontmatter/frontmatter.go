// Package frontmatter splits a Markdown document into its leading
// "---" delimited key/value block and the body that follows it.
//
// The block is not YAML. Each line is split at its first colon, so values
// may contain colons, quotes and brackets without escaping. The only
// structured form understood is a block list under tags or categories:
//
//	tags:
//	  - go
//	  - "web"
//
// Parsing never fails. A document without a block yields empty metadata
// and the full text as content.
package frontmatter

import (
	"regexp"
	"slices"
	"strings"
)

var reBlock = regexp.MustCompile(`(?s)^---\s*\n(.*?)\n---\s*\n(.*)$`)

// listKeys may carry a block list when their inline value is empty.
var listKeys = map[string]bool{
	"tags":       true,
	"categories": true,
}

// Document is a parsed Markdown file.
type Document struct {
	Metadata Metadata
	Content  string
}

// Value is one front-matter entry. Items is set only for block lists.
type Value struct {
	Text  string
	Items []string
}

// IsList reports whether the value came from a block list.
func (v Value) IsList() bool {
	return v.Items != nil
}

// List returns the value as a list of strings. Block lists are copied,
// inline values go through ParseArrayField.
func (v Value) List() []string {
	if v.Items != nil {
		return slices.Clone(v.Items)
	}
	return ParseArrayField(v.Text)
}

// Metadata maps front-matter keys to their values.
type Metadata map[string]Value

// Has reports whether key was present in the block.
func (m Metadata) Has(key string) bool {
	_, ok := m[key]
	return ok
}

// String returns the inline value for key. Block lists are joined with ", ".
func (m Metadata) String(key string) string {
	v, ok := m[key]
	if !ok {
		return ""
	}
	if v.Items != nil {
		return strings.Join(v.Items, ", ")
	}
	return v.Text
}

// List returns key as a list. Missing keys yield an empty, non-nil slice.
func (m Metadata) List(key string) []string {
	v, ok := m[key]
	if !ok {
		return []string{}
	}
	return v.List()
}

// Keys returns the metadata keys in sorted order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Parse splits text into metadata and content.
func Parse(text string) Document {
	match := reBlock.FindStringSubmatch(text)
	if match == nil {
		return Document{Metadata: Metadata{}, Content: text}
	}
	return Document{Metadata: parseBlock(match[1]), Content: match[2]}
}

func parseBlock(block string) Metadata {
	md := Metadata{}
	lines := strings.Split(block, "\n")
	for i := 0; i < len(lines); i++ {
		line := lines[i]
		idx := strings.Index(line, ":")
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if value == "" && listKeys[key] {
			items, next := blockList(lines, i+1)
			md[key] = Value{Items: items}
			i = next - 1
			continue
		}
		md[key] = Value{Text: value}
	}
	return md
}

// blockList reads "- item" lines starting at lines[start]. It returns the
// items and the index of the first line that is not part of the list.
func blockList(lines []string, start int) ([]string, int) {
	items := []string{}
	i := start
	for ; i < len(lines); i++ {
		trimmed := strings.TrimSpace(lines[i])
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "-") {
			break
		}
		if item := unquote(strings.TrimSpace(trimmed[1:])); item != "" {
			items = append(items, item)
		}
	}
	return items, i
}

func unquote(s string) string {
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return strings.TrimSpace(s[1 : len(s)-1])
		}
	}
	return s
}

var arrayCleaner = strings.NewReplacer("[", "", "]", "", `"`, "", "'", "")

// ParseArrayField parses an inline list such as `[a, "b", 'c']` or a plain
// comma separated string. Empty input yields an empty, non-nil slice.
func ParseArrayField(s string) []string {
	cleaned := strings.TrimSpace(arrayCleaner.Replace(s))
	out := []string{}
	if cleaned == "" {
		return out
	}
	for _, item := range strings.Split(cleaned, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
