package wiki

import (
	"context"
	"errors"
	"fmt"
)

var (
	// ErrIndexFailed is returned when the root page cannot be published;
	// the remaining documents have no parent and are not attempted.
	ErrIndexFailed = errors.New("index document failed")
	// ErrPageExists is returned under ConflictFail when a page with the
	// same title already exists in the space.
	ErrPageExists = errors.New("page already exists")
	// ErrPageNotFound is returned by PageClient.FindPage when no page matches.
	ErrPageNotFound = errors.New("page not found")
)

// Document is one Markdown file of a documentation set.
type Document struct {
	Name  string // file name without extension, e.g. "architecture"
	Path  string
	Title string // front matter title override, may be empty
	Body  string // Markdown with front matter removed
}

// IsIndex reports whether the document is the root of the page tree.
func (d Document) IsIndex() bool {
	return d.Name == IndexName
}

// DiagramBlock is a fenced diagram region inside a document.
type DiagramBlock struct {
	Language string
	Source   string
	Ordinal  int // 1-based, in document order
	Start    int // byte offset of the opening fence
	End      int // byte offset just past the closing fence
}

// Page is a page in the wiki service.
type Page struct {
	ID       string
	Title    string
	ParentID string
	Version  int
}

// PageRequest carries everything needed to create or update a page.
type PageRequest struct {
	SpaceKey       string
	Title          string
	Body           string
	ParentID       string
	Type           string // "page"
	Representation string // "storage"
}

// PageClient is the subset of the wiki service API the publisher needs.
type PageClient interface {
	CreatePage(ctx context.Context, req PageRequest) (*Page, error)
	FindPage(ctx context.Context, spaceKey, title string) (*Page, error)
	UpdatePage(ctx context.Context, page *Page, req PageRequest) (*Page, error)
	AttachFile(ctx context.Context, pageID, path string) error
}

// ConflictPolicy decides what happens when a page title already exists.
type ConflictPolicy string

const (
	ConflictFail   ConflictPolicy = "fail"
	ConflictUpdate ConflictPolicy = "update"
	ConflictCreate ConflictPolicy = "create"
)

// ParseConflictPolicy validates a policy name. Empty means ConflictFail.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case "", ConflictFail:
		return ConflictFail, nil
	case ConflictUpdate, ConflictCreate:
		return ConflictPolicy(s), nil
	default:
		return "", fmt.Errorf("unknown conflict policy %q (want fail, update or create)", s)
	}
}

// State is the publisher's progress through a run.
type State int

const (
	StateNotStarted State = iota
	StateIndexPublished
	StateChildrenPublished
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateNotStarted:        "not-started",
	StateIndexPublished:    "index-published",
	StateChildrenPublished: "children-published",
	StateDone:              "done",
	StateFailed:            "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// MarshalText renders the state by name in JSON reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// DocResult records the outcome of publishing one document.
type DocResult struct {
	Document    string   `json:"document"`
	Title       string   `json:"title"`
	PageID      string   `json:"page_id,omitempty"`
	ParentID    string   `json:"parent_id,omitempty"`
	Action      string   `json:"action,omitempty"` // "created" or "updated"
	Attachments []string `json:"attachments,omitempty"`
	Error       string   `json:"error,omitempty"`
}

// Report summarizes a publish run.
type Report struct {
	RunID     string      `json:"run_id"`
	SpaceKey  string      `json:"space_key"`
	State     State       `json:"state"`
	Documents []DocResult `json:"documents"`
}

// Failed returns the number of documents that did not publish cleanly.
func (r *Report) Failed() int {
	n := 0
	for _, d := range r.Documents {
		if d.Error != "" {
			n++
		}
	}
	return n
}
