// Package scaffold writes the placeholder documentation set that an operator
// fills in with an LLM before publishing, and owns the prompt used for that step.
package scaffold

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
)

// DocsDirName is the name of the documentation folder created next to the clone.
const DocsDirName = "docs"

// Documents lists the generated file names in emission order.
var Documents = []string{
	"index.md",
	"architecture.md",
	"database.md",
	"classes.md",
	"web.md",
}

//go:embed templates/*.md
var templates embed.FS

//go:embed prompt.txt
var promptText string

var promptTmpl = template.Must(template.New("prompt").Parse(promptText))

// Result describes what Emit wrote.
type Result struct {
	DocsDir string
	Files   []string
}

// DocsDir returns the documentation folder for repoPath. It is a sibling of
// the repository, never inside it.
func DocsDir(repoPath string) string {
	return filepath.Join(filepath.Dir(filepath.Clean(repoPath)), DocsDirName)
}

// Emit creates the documentation folder for repoPath and writes every
// placeholder document, overwriting existing files.
func Emit(repoPath string) (*Result, error) {
	dir := DocsDir(repoPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", dir, err)
	}

	res := &Result{DocsDir: dir}
	for _, name := range Documents {
		body, err := Template(name)
		if err != nil {
			return nil, err
		}
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		res.Files = append(res.Files, path)
	}
	return res, nil
}

// Template returns the placeholder content for a document name.
func Template(name string) ([]byte, error) {
	data, err := templates.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("unknown document template %q: %w", name, err)
	}
	return data, nil
}

// Prompt renders the instructions an operator pastes into an LLM session.
// repoDir and docsDir are shown as the paths the LLM should read and write.
func Prompt(repoDir, docsDir string) string {
	var buf bytes.Buffer
	data := struct{ RepoDir, DocsDir string }{
		RepoDir: filepath.Base(repoDir),
		DocsDir: filepath.Base(docsDir),
	}
	if err := promptTmpl.Execute(&buf, data); err != nil {
		// The template is embedded and has no failing actions.
		panic("scaffold: prompt template: " + err.Error())
	}
	return buf.String()
}
