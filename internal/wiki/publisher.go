package wiki

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"

	"github.com/google/uuid"
)

// PublishConfig controls a publish run.
type PublishConfig struct {
	SpaceKey          string
	FallbackTitle     string
	RewriteLinks      bool
	PrefixChildTitles bool
	OnConflict        ConflictPolicy
	// ImageDir receives rendered diagrams; empty means the docs folder.
	ImageDir string
}

// PublishedPage is a page a run created or updated.
type PublishedPage struct {
	RunID    string
	SpaceKey string
	Document string
	Title    string
	PageID   string
	ParentID string
	Action   string
}

// Ledger records published pages.
type Ledger interface {
	RecordPage(ctx context.Context, p PublishedPage) error
}

// Publisher publishes a documentation set as a page tree: the index page
// first, then every other document as its child.
type Publisher struct {
	client    PageClient
	diagrams  *DiagramRenderer
	converter *StorageConverter
	cfg       PublishConfig
	ledger    Ledger
	progress  io.Writer
	newRunID  func() string
}

// PublisherOption configures a Publisher.
type PublisherOption func(*Publisher)

// WithLedger records every published page in l.
func WithLedger(l Ledger) PublisherOption {
	return func(p *Publisher) {
		p.ledger = l
	}
}

// WithProgress writes one progress line per step to w.
func WithProgress(w io.Writer) PublisherOption {
	return func(p *Publisher) {
		p.progress = w
	}
}

// WithRunID overrides run id generation.
func WithRunID(fn func() string) PublisherOption {
	return func(p *Publisher) {
		p.newRunID = fn
	}
}

// NewPublisher creates a Publisher.
func NewPublisher(client PageClient, diagrams *DiagramRenderer, cfg PublishConfig, opts ...PublisherOption) *Publisher {
	if cfg.OnConflict == "" {
		cfg.OnConflict = ConflictFail
	}
	if cfg.FallbackTitle == "" {
		cfg.FallbackTitle = DefaultFallbackTitle
	}
	p := &Publisher{
		client:    client,
		diagrams:  diagrams,
		converter: NewStorageConverter(diagrams.IsDiagramLanguage),
		cfg:       cfg,
		progress:  io.Discard,
		newRunID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// publishRun is the state of one run, threaded through every document.
type publishRun struct {
	report      *Report
	imageDir    string
	parentID    string
	parentTitle string
	children    map[string]string // derived title -> page title
}

// Publish publishes set. A failed index document halts the run with
// ErrIndexFailed; a failed child is recorded in the report and the run
// continues. The report is returned in both cases.
func (p *Publisher) Publish(ctx context.Context, set *DocSet) (*Report, error) {
	run := &publishRun{
		report: &Report{
			RunID:    p.newRunID(),
			SpaceKey: p.cfg.SpaceKey,
			State:    StateNotStarted,
		},
		imageDir: p.cfg.ImageDir,
	}
	if run.imageDir == "" {
		run.imageDir = set.Dir
	}

	index, hasIndex := set.Index()
	if hasIndex {
		run.parentTitle = IndexTitle(index, p.cfg.FallbackTitle)
	}
	run.children = make(map[string]string)
	for _, doc := range set.Children() {
		run.children[DerivedTitle(doc.Name)] = p.childTitle(run, doc)
	}

	if hasIndex {
		res, err := p.publishDocument(ctx, run, index, run.parentTitle, "")
		run.report.Documents = append(run.report.Documents, res)
		if err != nil {
			run.report.State = StateFailed
			log.Printf("WARNING: index page %q failed, skipping %d child documents: %v", run.parentTitle, len(set.Children()), err)
			return run.report, fmt.Errorf("%w: %w", ErrIndexFailed, err)
		}
		run.parentID = res.PageID
		run.report.State = StateIndexPublished
	} else {
		fmt.Fprintf(p.progress, "publish: no %s%s in %s, publishing documents without a parent\n", IndexName, markdownExt, set.Dir)
	}

	for _, doc := range set.Children() {
		if err := ctx.Err(); err != nil {
			return run.report, err
		}
		res, err := p.publishDocument(ctx, run, doc, p.childTitle(run, doc), run.parentID)
		run.report.Documents = append(run.report.Documents, res)
		if err != nil {
			log.Printf("WARNING: document %s failed: %v", doc.Name, err)
			continue
		}
		run.report.State = StateChildrenPublished
	}

	run.report.State = StateDone
	fmt.Fprintf(p.progress, "publish: done, %d of %d documents published\n",
		len(run.report.Documents)-run.report.Failed(), len(run.report.Documents))
	return run.report, nil
}

func (p *Publisher) childTitle(run *publishRun, doc Document) string {
	return ChildTitle(doc, run.parentTitle, p.cfg.PrefixChildTitles)
}

// publishDocument runs every stage for one document. The returned result
// is filled in as far as the document got, even on error.
func (p *Publisher) publishDocument(ctx context.Context, run *publishRun, doc Document, title, parentID string) (DocResult, error) {
	res := DocResult{Document: doc.Name, Title: title, ParentID: parentID}
	fail := func(err error) (DocResult, error) {
		res.Error = err.Error()
		return res, err
	}

	fmt.Fprintf(p.progress, "publish: rendering diagrams for %s...\n", doc.Name)
	text, images, err := p.diagrams.Render(ctx, doc.Body, run.imageDir, doc.Name)
	if err != nil {
		return fail(err)
	}

	if p.cfg.RewriteLinks {
		text = RewriteLinks(text, run.parentTitle, run.children)
	}

	body, err := p.converter.Convert(text)
	if err != nil {
		return fail(fmt.Errorf("converting %s: %w", doc.Name, err))
	}

	fmt.Fprintf(p.progress, "publish: publishing %q...\n", title)
	page, action, err := p.putPage(ctx, PageRequest{
		SpaceKey:       p.cfg.SpaceKey,
		Title:          title,
		Body:           body,
		ParentID:       parentID,
		Type:           "page",
		Representation: "storage",
	})
	if err != nil {
		return fail(err)
	}
	res.PageID = page.ID
	res.Action = action

	for _, img := range images {
		fmt.Fprintf(p.progress, "publish: attaching %s...\n", filepath.Base(img))
		if err := p.client.AttachFile(ctx, page.ID, img); err != nil {
			return fail(fmt.Errorf("attaching %s to page %s: %w", filepath.Base(img), page.ID, err))
		}
		res.Attachments = append(res.Attachments, filepath.Base(img))
	}

	if p.ledger != nil {
		err := p.ledger.RecordPage(ctx, PublishedPage{
			RunID:    run.report.RunID,
			SpaceKey: p.cfg.SpaceKey,
			Document: doc.Name,
			Title:    title,
			PageID:   page.ID,
			ParentID: parentID,
			Action:   action,
		})
		if err != nil {
			log.Printf("WARNING: recording page %s in ledger: %v", page.ID, err)
		}
	}
	return res, nil
}

// putPage creates or updates the page according to the conflict policy.
func (p *Publisher) putPage(ctx context.Context, req PageRequest) (*Page, string, error) {
	if p.cfg.OnConflict != ConflictCreate {
		existing, err := p.client.FindPage(ctx, req.SpaceKey, req.Title)
		switch {
		case err == nil && p.cfg.OnConflict == ConflictUpdate:
			page, err := p.client.UpdatePage(ctx, existing, req)
			if err != nil {
				return nil, "", fmt.Errorf("updating page %q: %w", req.Title, err)
			}
			return page, "updated", nil
		case err == nil:
			return nil, "", fmt.Errorf("%w: %q (id %s) in space %s", ErrPageExists, req.Title, existing.ID, req.SpaceKey)
		case !errors.Is(err, ErrPageNotFound):
			return nil, "", fmt.Errorf("looking up page %q: %w", req.Title, err)
		}
	}

	page, err := p.client.CreatePage(ctx, req)
	if err != nil {
		return nil, "", fmt.Errorf("creating page %q: %w", req.Title, err)
	}
	return page, "created", nil
}
