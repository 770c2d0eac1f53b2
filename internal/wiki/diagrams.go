package wiki

import (
	"context"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"mvdan.cc/sh/v3/shell"

	"github.com/julianshen/docwiki/internal/integrations"
)

// DiagramConfig controls diagram extraction and rendering.
type DiagramConfig struct {
	// Languages maps a fence language tag to the extension used for the
	// temporary source file handed to the renderer.
	Languages map[string]string
	// Renderer is the renderer command line; "-i <source> -o <png>" is appended.
	Renderer string
}

// DefaultDiagramConfig returns sensible defaults for diagram rendering.
func DefaultDiagramConfig() DiagramConfig {
	return DiagramConfig{
		Languages: map[string]string{"mermaid": "mmd"},
		Renderer:  "mmdc",
	}
}

// DiagramRenderer turns fenced diagram blocks into attached PNG images.
type DiagramRenderer struct {
	languages map[string]string
	command   []string
	runner    integrations.CommandRunner
}

// NewDiagramRenderer creates a DiagramRenderer. The renderer command line is
// split with shell quoting rules, so "npx -y @mermaid-js/mermaid-cli" works.
func NewDiagramRenderer(cfg DiagramConfig, runner integrations.CommandRunner) (*DiagramRenderer, error) {
	command, err := shell.Fields(cfg.Renderer, nil)
	if err != nil {
		return nil, fmt.Errorf("parsing renderer command %q: %w", cfg.Renderer, err)
	}
	if len(command) == 0 {
		return nil, fmt.Errorf("diagram renderer command is empty")
	}

	languages := make(map[string]string, len(cfg.Languages))
	for lang, ext := range cfg.Languages {
		languages[strings.ToLower(lang)] = strings.TrimPrefix(ext, ".")
	}

	return &DiagramRenderer{
		languages: languages,
		command:   command,
		runner:    runner,
	}, nil
}

// IsDiagramLanguage reports whether blocks tagged lang are pre-rendered.
func (r *DiagramRenderer) IsDiagramLanguage(lang string) bool {
	_, ok := r.languages[strings.ToLower(lang)]
	return ok
}

// Render extracts every diagram block of doc in order, renders block n to
// "{outDir}/{prefix}_diagram_{n}.png" and replaces the block with an image
// reference to that file. It returns the rewritten text and the image paths.
// Any renderer failure fails the whole document.
func (r *DiagramRenderer) Render(ctx context.Context, doc, outDir, prefix string) (string, []string, error) {
	blocks := FindDiagramBlocks(doc, r.IsDiagramLanguage)
	if len(blocks) == 0 {
		return doc, nil, nil
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("creating directory %s: %w", outDir, err)
	}

	images := make([]string, 0, len(blocks))
	for _, b := range blocks {
		png, err := r.renderBlock(ctx, b, outDir, prefix)
		if err != nil {
			return "", nil, err
		}
		images = append(images, png)
	}

	var out strings.Builder
	last := 0
	for i, b := range blocks {
		out.WriteString(doc[last:b.Start])
		out.WriteString(ImageReference(filepath.Base(images[i])))
		last = b.End
	}
	out.WriteString(doc[last:])

	return out.String(), images, nil
}

func (r *DiagramRenderer) renderBlock(ctx context.Context, b DiagramBlock, outDir, prefix string) (string, error) {
	base := fmt.Sprintf("%s_diagram_%d", prefix, b.Ordinal)
	src := filepath.Join(outDir, base+"."+r.languages[strings.ToLower(b.Language)])
	png := filepath.Join(outDir, base+".png")

	if err := os.WriteFile(src, []byte(b.Source), 0o644); err != nil {
		return "", fmt.Errorf("writing diagram source %s: %w", src, err)
	}
	defer os.Remove(src)

	args := make([]string, 0, len(r.command)+3)
	args = append(args, r.command[1:]...)
	args = append(args, "-i", src, "-o", png)

	out, err := r.runner.CombinedOutput(ctx, "", r.command[0], args...)
	if err != nil {
		return "", fmt.Errorf("rendering diagram %d of %s: %w: %s", b.Ordinal, prefix, err, strings.TrimSpace(string(out)))
	}
	if _, err := os.Stat(png); err != nil {
		return "", fmt.Errorf("rendering diagram %d of %s: renderer produced no image: %w", b.Ordinal, prefix, err)
	}
	return png, nil
}

// ImageReference returns the storage-format snippet that displays an
// attachment of the current page.
func ImageReference(filename string) string {
	return `<ac:image><ri:attachment ri:filename="` + html.EscapeString(filename) + `" /></ac:image>`
}

// FindDiagramBlocks returns the fenced code blocks of doc whose language
// satisfies isDiagram, in document order with 1-based ordinals. Each block
// carries its exact byte range so identical blocks stay distinguishable.
func FindDiagramBlocks(doc string, isDiagram func(lang string) bool) []DiagramBlock {
	src := []byte(doc)
	root := newMarkdown().Parser().Parse(text.NewReader(src))

	var blocks []DiagramBlock
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		fb, ok := n.(*ast.FencedCodeBlock)
		if !ok {
			return ast.WalkContinue, nil
		}
		if fb.Info == nil {
			return ast.WalkSkipChildren, nil
		}
		lang := string(fb.Language(src))
		if !isDiagram(lang) {
			return ast.WalkSkipChildren, nil
		}

		var source strings.Builder
		lines := fb.Lines()
		for i := 0; i < lines.Len(); i++ {
			seg := lines.At(i)
			source.Write(seg.Value(src))
		}

		start, end := fenceBounds(src, fb)
		blocks = append(blocks, DiagramBlock{
			Language: lang,
			Source:   source.String(),
			Ordinal:  len(blocks) + 1,
			Start:    start,
			End:      end,
		})
		return ast.WalkSkipChildren, nil
	})
	return blocks
}

// fenceBounds returns the byte range from the opening fence to the end of
// the closing fence. Container prefixes such as list markers or "> " before
// the opening fence are left outside the range. An unterminated block ends
// with its last content line.
func fenceBounds(src []byte, fb *ast.FencedCodeBlock) (int, int) {
	i := fb.Info.Segment.Start
	for i > 0 && isBlank(src[i-1]) {
		i--
	}
	fenceEnd := i
	for i > 0 && (src[i-1] == '`' || src[i-1] == '~') {
		i--
	}
	start := i
	fenceChar := src[fenceEnd-1]
	fenceLen := fenceEnd - start

	var pos int
	if lines := fb.Lines(); lines.Len() > 0 {
		pos = lines.At(lines.Len() - 1).Stop
	} else {
		pos = nextLine(src, fb.Info.Segment.Stop)
	}

	j := pos
	for j < len(src) && (isBlank(src[j]) || src[j] == '>') {
		j++
	}
	k := j
	for k < len(src) && src[k] == fenceChar {
		k++
	}
	if k-j >= fenceLen {
		m := k
		for m < len(src) && isBlank(src[m]) {
			m++
		}
		if m == len(src) || src[m] == '\n' || src[m] == '\r' {
			return start, k
		}
	}
	return start, pos
}

// nextLine returns the offset of the line following offset.
func nextLine(src []byte, offset int) int {
	for offset < len(src) {
		if src[offset] == '\n' {
			return offset + 1
		}
		offset++
	}
	return len(src)
}

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}
