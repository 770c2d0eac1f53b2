package wiki

import (
	"bytes"
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// newMarkdown returns the Markdown engine shared by diagram extraction and
// storage conversion: GFM tables and fenced code, XHTML output, raw HTML kept.
func newMarkdown() goldmark.Markdown {
	return goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(
			gmhtml.WithXHTML(),
			gmhtml.WithUnsafe(),
		),
	)
}

// storageMacroPattern matches the storage-format snippets a document may
// already contain, such as the image references written by DiagramRenderer.
// CommonMark does not accept ':' in tag names, so these are shielded from
// the Markdown parser and restored afterwards.
var storageMacroPattern = regexp.MustCompile(`(?s)<ac:image>.*?</ac:image>|<ac:structured-macro\b.*?</ac:structured-macro>`)

const placeholderPrefix = "docwiki-storage-"

// StorageConverter converts Markdown into Confluence storage format.
type StorageConverter struct {
	md        goldmark.Markdown
	isDiagram func(lang string) bool
}

// NewStorageConverter creates a converter. Code blocks whose language
// satisfies isDiagram are left untouched; nil means no diagram languages.
func NewStorageConverter(isDiagram func(lang string) bool) *StorageConverter {
	if isDiagram == nil {
		isDiagram = func(string) bool { return false }
	}
	return &StorageConverter{md: newMarkdown(), isDiagram: isDiagram}
}

// Convert renders Markdown to HTML and rewrites every fenced or indented
// code block into a "code" structured macro whose body is the exact
// original text. Everything else keeps the Markdown renderer's output.
func (c *StorageConverter) Convert(markdown string) (string, error) {
	var macros []string
	shielded := storageMacroPattern.ReplaceAllStringFunc(markdown, func(m string) string {
		macros = append(macros, m)
		return fmt.Sprintf("<!--%s%d-->", placeholderPrefix, len(macros)-1)
	})

	src := []byte(shielded)
	doc := c.md.Parser().Parse(text.NewReader(src))
	var rendered bytes.Buffer
	if err := c.md.Renderer().Render(&rendered, src, doc); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}

	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(&rendered, body)
	if err != nil {
		return "", fmt.Errorf("parsing rendered html: %w", err)
	}

	// The HTML tokenizer folds CRLF into LF, so code bodies come from the
	// Markdown tree. They pair with <pre> elements by position unless raw
	// HTML in the document added <pre> elements of its own.
	blocks := &codeBodies{bodies: collectCodeBodies(doc, src)}
	if countPre(nodes) != len(blocks.bodies) {
		blocks = nil
	}

	var out bytes.Buffer
	for _, n := range nodes {
		c.rewriteCodeBlocks(n, blocks)
		if err := html.Render(&out, n); err != nil {
			return "", fmt.Errorf("serializing storage format: %w", err)
		}
	}

	result := out.String()
	for i, m := range macros {
		token := fmt.Sprintf("%s%d", placeholderPrefix, i)
		result = strings.ReplaceAll(result, "<!--"+token+"-->", m)
		// A snippet quoted inside inline code was escaped by the renderer.
		result = strings.ReplaceAll(result, stdhtml.EscapeString("<!--"+token+"-->"), stdhtml.EscapeString(m))
	}
	return result, nil
}

// codeBodies hands out literal code block bodies in document order.
type codeBodies struct {
	bodies []string
	next   int
}

// take returns the next body, or the text of pre when no bodies are known.
func (b *codeBodies) take(pre *html.Node) string {
	if b == nil || b.next >= len(b.bodies) {
		return textContent(pre)
	}
	body := b.bodies[b.next]
	b.next++
	return body
}

// collectCodeBodies returns the exact source lines of every fenced and
// indented code block in document order.
func collectCodeBodies(doc ast.Node, src []byte) []string {
	var bodies []string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n.Kind() {
		case ast.KindFencedCodeBlock, ast.KindCodeBlock:
			var b strings.Builder
			lines := n.Lines()
			for i := 0; i < lines.Len(); i++ {
				seg := lines.At(i)
				b.Write(seg.Value(src))
			}
			bodies = append(bodies, b.String())
			return ast.WalkSkipChildren, nil
		}
		return ast.WalkContinue, nil
	})
	return bodies
}

func countPre(nodes []*html.Node) int {
	count := 0
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
			count++
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range nodes {
		walk(n)
	}
	return count
}

// rewriteCodeBlocks replaces <pre> elements below n with code macros.
func (c *StorageConverter) rewriteCodeBlocks(n *html.Node, blocks *codeBodies) {
	if n.Type == html.ElementNode && n.DataAtom == atom.Pre {
		lang := codeLanguage(n)
		body := blocks.take(n)
		if c.isDiagram(lang) {
			return
		}
		// A RawNode is written verbatim, which keeps the CDATA body intact.
		macro := &html.Node{Type: html.RawNode, Data: CodeMacro(lang, body)}
		if n.Parent != nil {
			n.Parent.InsertBefore(macro, n)
			n.Parent.RemoveChild(n)
		} else {
			*n = *macro
		}
		return
	}
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		c.rewriteCodeBlocks(child, blocks)
		child = next
	}
}

// codeLanguage reads the "language-xxx" class of a <pre><code> block.
func codeLanguage(pre *html.Node) string {
	for _, el := range []*html.Node{pre.FirstChild, pre} {
		if el == nil || el.Type != html.ElementNode {
			continue
		}
		for _, attr := range el.Attr {
			if attr.Key != "class" {
				continue
			}
			for _, class := range strings.Fields(attr.Val) {
				if lang, ok := strings.CutPrefix(class, "language-"); ok {
					return lang
				}
			}
		}
	}
	return ""
}

// textContent concatenates every text node below n.
func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}

// CodeMacro returns a "code" structured macro. The body is stored as CDATA;
// any "]]>" in it is split across two sections so it survives intact.
func CodeMacro(lang, body string) string {
	var b strings.Builder
	b.WriteString(`<ac:structured-macro ac:name="code">`)
	if lang != "" {
		b.WriteString(`<ac:parameter ac:name="language">`)
		b.WriteString(stdhtml.EscapeString(lang))
		b.WriteString(`</ac:parameter>`)
	}
	b.WriteString(`<ac:plain-text-body><![CDATA[`)
	b.WriteString(strings.ReplaceAll(body, "]]>", "]]]]><![CDATA[>"))
	b.WriteString(`]]></ac:plain-text-body></ac:structured-macro>`)
	return b.String()
}

var (
	plainTextBodyPattern = regexp.MustCompile(`(?s)<ac:plain-text-body>(.*?)</ac:plain-text-body>`)
	cdataPattern         = regexp.MustCompile(`(?s)<!\[CDATA\[(.*?)\]\]>`)
	codeLanguagePattern  = regexp.MustCompile(`<ac:parameter ac:name="language">([^<]*)</ac:parameter>`)
)

// CodeBlock is a code macro read back from storage format.
type CodeBlock struct {
	Language string
	Body     string
}

// ReadCodeMacros returns the code macros of a storage document in order,
// with their literal bodies reassembled from CDATA sections.
func ReadCodeMacros(storage string) []CodeBlock {
	var blocks []CodeBlock
	for _, macro := range strings.Split(storage, `<ac:structured-macro ac:name="code">`)[1:] {
		end := strings.Index(macro, "</ac:structured-macro>")
		if end < 0 {
			continue
		}
		macro = macro[:end]

		var block CodeBlock
		if m := codeLanguagePattern.FindStringSubmatch(macro); m != nil {
			block.Language = stdhtml.UnescapeString(m[1])
		}
		if m := plainTextBodyPattern.FindStringSubmatch(macro); m != nil {
			var body strings.Builder
			for _, section := range cdataPattern.FindAllStringSubmatch(m[1], -1) {
				body.WriteString(section[1])
			}
			block.Body = body.String()
		}
		blocks = append(blocks, block)
	}
	return blocks
}
