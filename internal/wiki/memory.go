package wiki

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
)

// MemoryPage is a page held by MemoryClient.
type MemoryPage struct {
	Page
	SpaceKey    string
	Body        string
	Attachments []string // attachment file names in upload order
}

// MemoryClient is an in-process PageClient. It backs dry runs and tests.
// Errors can be injected per page title or attachment file name.
type MemoryClient struct {
	mu     sync.Mutex
	pages  []*MemoryPage
	nextID int

	CreateErr map[string]error // keyed by page title
	AttachErr map[string]error // keyed by attachment base name
}

// NewMemoryClient creates an empty MemoryClient.
func NewMemoryClient() *MemoryClient {
	return &MemoryClient{nextID: 1}
}

// CreatePage stores a new page.
func (m *MemoryClient) CreatePage(_ context.Context, req PageRequest) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.CreateErr[req.Title]; err != nil {
		return nil, err
	}
	if req.ParentID != "" && m.find(req.ParentID) == nil {
		return nil, fmt.Errorf("parent page %s: %w", req.ParentID, ErrPageNotFound)
	}

	p := &MemoryPage{
		Page: Page{
			ID:       fmt.Sprintf("%d", m.nextID),
			Title:    req.Title,
			ParentID: req.ParentID,
			Version:  1,
		},
		SpaceKey: req.SpaceKey,
		Body:     req.Body,
	}
	m.nextID++
	m.pages = append(m.pages, p)
	page := p.Page
	return &page, nil
}

// FindPage returns the first page with title in the space.
func (m *MemoryClient) FindPage(_ context.Context, spaceKey, title string) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, p := range m.pages {
		if p.SpaceKey == spaceKey && p.Title == title {
			page := p.Page
			return &page, nil
		}
	}
	return nil, ErrPageNotFound
}

// UpdatePage replaces the body and parent of an existing page.
func (m *MemoryClient) UpdatePage(_ context.Context, page *Page, req PageRequest) (*Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.CreateErr[req.Title]; err != nil {
		return nil, err
	}
	p := m.find(page.ID)
	if p == nil {
		return nil, fmt.Errorf("page %s: %w", page.ID, ErrPageNotFound)
	}
	if page.Version != p.Version {
		return nil, fmt.Errorf("page %s: version conflict (have %d, stored %d)", page.ID, page.Version, p.Version)
	}
	p.Title = req.Title
	p.Body = req.Body
	p.ParentID = req.ParentID
	p.Version++
	updated := p.Page
	return &updated, nil
}

// AttachFile records an attachment, replacing one with the same name.
func (m *MemoryClient) AttachFile(_ context.Context, pageID, path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := filepath.Base(path)
	if err := m.AttachErr[name]; err != nil {
		return err
	}
	p := m.find(pageID)
	if p == nil {
		return fmt.Errorf("page %s: %w", pageID, ErrPageNotFound)
	}
	for _, existing := range p.Attachments {
		if existing == name {
			return nil
		}
	}
	p.Attachments = append(p.Attachments, name)
	return nil
}

// Pages returns a snapshot of every stored page in creation order.
func (m *MemoryClient) Pages() []MemoryPage {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]MemoryPage, 0, len(m.pages))
	for _, p := range m.pages {
		cp := *p
		cp.Attachments = append([]string(nil), p.Attachments...)
		out = append(out, cp)
	}
	return out
}

func (m *MemoryClient) find(id string) *MemoryPage {
	for _, p := range m.pages {
		if p.ID == id {
			return p
		}
	}
	return nil
}
