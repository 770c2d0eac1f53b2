package wiki

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// IndexName is the document that becomes the root page.
const IndexName = "index"

// markdownExt is the extension of documentation files.
const markdownExt = ".md"

// DocSet is an ordered documentation set: the index document, if present,
// first, then every other document by file name.
type DocSet struct {
	Dir       string
	Documents []Document
}

// Index returns the index document, if the set has one.
func (s *DocSet) Index() (Document, bool) {
	if len(s.Documents) > 0 && s.Documents[0].IsIndex() {
		return s.Documents[0], true
	}
	return Document{}, false
}

// Children returns every document except the index.
func (s *DocSet) Children() []Document {
	if _, ok := s.Index(); ok {
		return s.Documents[1:]
	}
	return s.Documents
}

// LoadDocSet reads every Markdown file directly inside dir. Subdirectories
// and generated diagram sources are ignored.
func LoadDocSet(dir string) (*DocSet, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading docs folder %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), markdownExt) {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Slice(names, func(i, j int) bool {
		iIndex := docName(names[i]) == IndexName
		jIndex := docName(names[j]) == IndexName
		if iIndex != jIndex {
			return iIndex
		}
		return names[i] < names[j]
	})

	set := &DocSet{Dir: dir}
	for _, name := range names {
		doc, err := LoadDocument(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		set.Documents = append(set.Documents, doc)
	}
	return set, nil
}

// LoadDocument reads one Markdown file and splits off its front matter.
func LoadDocument(path string) (Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Document{}, fmt.Errorf("reading %s: %w", path, err)
	}
	fm, body := splitFrontMatter(string(raw))
	return Document{
		Name:  docName(path),
		Path:  path,
		Title: strings.TrimSpace(fm.Title),
		Body:  body,
	}, nil
}

// docName strips the Markdown extension from a file name.
func docName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}
