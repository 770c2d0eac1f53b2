package wiki

import (
	"path"
	"regexp"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// markdownLinkPattern matches inline links and images: an optional "!",
// the link text, the target and an optional quoted title.
var markdownLinkPattern = regexp.MustCompile(`(!?)\[([^\]]*)\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)

// RewriteLinks converts links to sibling Markdown files into Confluence
// cross-page links "[text|Parent^Child]". children maps the derived title
// of each child document to its page title. Links to unknown documents,
// non-Markdown targets, images and links inside code are left unchanged.
func RewriteLinks(doc, parentTitle string, children map[string]string) string {
	if parentTitle == "" || len(children) == 0 {
		return doc
	}

	code := codeRanges(doc)
	matches := markdownLinkPattern.FindAllStringSubmatchIndex(doc, -1)
	if len(matches) == 0 {
		return doc
	}

	var out strings.Builder
	last := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		if m[3] > m[2] || inRanges(code, start) {
			continue
		}
		linkText := doc[m[4]:m[5]]
		target := doc[m[6]:m[7]]

		base := path.Base(target)
		if !strings.EqualFold(path.Ext(base), markdownExt) {
			continue
		}
		title, ok := children[DerivedTitle(strings.TrimSuffix(base, path.Ext(base)))]
		if !ok {
			continue
		}

		out.WriteString(doc[last:start])
		out.WriteString("[" + linkText + "|" + parentTitle + "^" + title + "]")
		last = end
	}
	out.WriteString(doc[last:])
	return out.String()
}

type byteRange struct{ start, end int }

// codeRanges returns the byte ranges of code blocks and code spans in doc.
func codeRanges(doc string) []byteRange {
	src := []byte(doc)
	root := newMarkdown().Parser().Parse(text.NewReader(src))

	var ranges []byteRange
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *ast.FencedCodeBlock:
			if node.Info != nil {
				start, end := fenceBounds(src, node)
				ranges = append(ranges, byteRange{start, end})
			} else if lines := node.Lines(); lines.Len() > 0 {
				ranges = append(ranges, byteRange{lines.At(0).Start, lines.At(lines.Len() - 1).Stop})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock:
			if lines := node.Lines(); lines.Len() > 0 {
				ranges = append(ranges, byteRange{lines.At(0).Start, lines.At(lines.Len() - 1).Stop})
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeSpan:
			first, ok1 := node.FirstChild().(*ast.Text)
			last, ok2 := node.LastChild().(*ast.Text)
			if ok1 && ok2 {
				ranges = append(ranges, byteRange{first.Segment.Start, last.Segment.Stop})
			}
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return ranges
}

func inRanges(ranges []byteRange, offset int) bool {
	for _, r := range ranges {
		if offset >= r.start && offset < r.end {
			return true
		}
	}
	return false
}
