package wiki

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// frontMatter holds the YAML fields a document may declare.
type frontMatter struct {
	Title string `yaml:"title"`
}

// splitFrontMatter separates an optional leading "---" YAML block from the
// Markdown body. A leading "---" is front matter only when a closing "---"
// line follows and the lines between form a YAML mapping (or are blank);
// otherwise it is a thematic break and raw is returned unchanged.
func splitFrontMatter(raw string) (frontMatter, string) {
	const delimiter = "---"

	firstNewline := strings.Index(raw, "\n")
	if firstNewline < 0 || strings.TrimRight(raw[:firstNewline], "\r") != delimiter {
		return frontMatter{}, raw
	}
	rest := raw[firstNewline+1:]

	// The closing delimiter must sit on a line of its own.
	offset := 0
	for {
		lineEnd := strings.Index(rest[offset:], "\n")
		var line string
		if lineEnd < 0 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+lineEnd]
		}
		if strings.TrimRight(line, "\r") == delimiter {
			fm, ok := decodeFrontMatter(rest[:offset])
			if !ok {
				return frontMatter{}, raw
			}
			body := ""
			if lineEnd >= 0 {
				body = rest[offset+lineEnd+1:]
			}
			return fm, strings.TrimLeft(body, "\r\n")
		}
		if lineEnd < 0 {
			return frontMatter{}, raw
		}
		offset += lineEnd + 1
	}
}

// decodeFrontMatter reports whether block is a YAML mapping, or blank.
func decodeFrontMatter(block string) (frontMatter, bool) {
	var fm frontMatter
	if strings.TrimSpace(block) == "" {
		return fm, true
	}
	var node yaml.Node
	if err := yaml.Unmarshal([]byte(block), &node); err != nil {
		return fm, false
	}
	if len(node.Content) == 0 || node.Content[0].Kind != yaml.MappingNode {
		return fm, false
	}
	if err := node.Content[0].Decode(&fm); err != nil {
		return fm, false
	}
	return fm, true
}
