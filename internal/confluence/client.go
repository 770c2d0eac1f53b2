// Package confluence implements wiki.PageClient on the Confluence REST API.
package confluence

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hashicorp/go-cleanhttp"
	"golang.org/x/time/rate"

	"github.com/julianshen/docwiki/internal/wiki"
)

const contentPath = "/rest/api/content"

// APIError is a non-2xx response from Confluence.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("confluence API error %d", e.StatusCode)
	}
	return fmt.Sprintf("confluence API error %d: %s", e.StatusCode, e.Message)
}

// Client talks to one Confluence site with basic authentication.
type Client struct {
	baseURL  string
	username string
	token    string
	client   *http.Client
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the per-request timeout. Zero leaves it unset.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.client.Timeout = d
	}
}

// WithRateLimit spaces requests to at most rps per second. Zero or less
// disables limiting.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a Client for the site at baseURL, e.g.
// "https://example.atlassian.net/wiki".
func New(baseURL, username, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		token:    token,
		client:   cleanhttp.DefaultPooledClient(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type apiSpace struct {
	Key string `json:"key"`
}

type apiAncestor struct {
	ID string `json:"id"`
}

type apiStorage struct {
	Value          string `json:"value"`
	Representation string `json:"representation"`
}

type apiBody struct {
	Storage apiStorage `json:"storage"`
}

type apiVersion struct {
	Number int `json:"number"`
}

type apiContent struct {
	ID        string        `json:"id,omitempty"`
	Type      string        `json:"type"`
	Title     string        `json:"title"`
	Space     *apiSpace     `json:"space,omitempty"`
	Ancestors []apiAncestor `json:"ancestors,omitempty"`
	Body      *apiBody      `json:"body,omitempty"`
	Version   *apiVersion   `json:"version,omitempty"`
}

type apiContentList struct {
	Results []apiContent `json:"results"`
}

type apiErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func contentFromRequest(req wiki.PageRequest) apiContent {
	typ := req.Type
	if typ == "" {
		typ = "page"
	}
	repr := req.Representation
	if repr == "" {
		repr = "storage"
	}
	content := apiContent{
		Type:  typ,
		Title: req.Title,
		Space: &apiSpace{Key: req.SpaceKey},
		Body:  &apiBody{Storage: apiStorage{Value: req.Body, Representation: repr}},
	}
	if req.ParentID != "" {
		content.Ancestors = []apiAncestor{{ID: req.ParentID}}
	}
	return content
}

func (a apiContent) page() *wiki.Page {
	p := &wiki.Page{ID: a.ID, Title: a.Title}
	if a.Version != nil {
		p.Version = a.Version.Number
	}
	// Ancestors are listed root first; the direct parent is last.
	if n := len(a.Ancestors); n > 0 {
		p.ParentID = a.Ancestors[n-1].ID
	}
	return p
}

// CreatePage creates a page, parented when req.ParentID is set.
func (c *Client) CreatePage(ctx context.Context, req wiki.PageRequest) (*wiki.Page, error) {
	var out apiContent
	if err := c.doJSON(ctx, http.MethodPost, contentPath, contentFromRequest(req), &out); err != nil {
		return nil, err
	}
	page := out.page()
	if page.ParentID == "" {
		page.ParentID = req.ParentID
	}
	return page, nil
}

// FindPage looks a page up by exact title. It returns wiki.ErrPageNotFound
// when the space has no such page.
func (c *Client) FindPage(ctx context.Context, spaceKey, title string) (*wiki.Page, error) {
	q := url.Values{}
	q.Set("spaceKey", spaceKey)
	q.Set("title", title)
	q.Set("type", "page")
	q.Set("expand", "version,ancestors")

	var out apiContentList
	if err := c.doJSON(ctx, http.MethodGet, contentPath+"?"+q.Encode(), nil, &out); err != nil {
		return nil, err
	}
	if len(out.Results) == 0 {
		return nil, wiki.ErrPageNotFound
	}
	return out.Results[0].page(), nil
}

// UpdatePage replaces the page body as the next version of page.
func (c *Client) UpdatePage(ctx context.Context, page *wiki.Page, req wiki.PageRequest) (*wiki.Page, error) {
	content := contentFromRequest(req)
	content.ID = page.ID
	content.Version = &apiVersion{Number: page.Version + 1}

	var out apiContent
	if err := c.doJSON(ctx, http.MethodPut, contentPath+"/"+url.PathEscape(page.ID), content, &out); err != nil {
		return nil, err
	}
	updated := out.page()
	if updated.ParentID == "" {
		updated.ParentID = req.ParentID
	}
	return updated, nil
}

// AttachFile uploads path to the page, replacing an attachment with the
// same file name.
func (c *Client) AttachFile(ctx context.Context, pageID, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening attachment: %w", err)
	}
	defer f.Close()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return fmt.Errorf("creating form file: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return fmt.Errorf("reading attachment %s: %w", path, err)
	}
	if err := w.WriteField("minorEdit", "true"); err != nil {
		return fmt.Errorf("writing form field: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("closing form: %w", err)
	}

	endpoint := contentPath + "/" + url.PathEscape(pageID) + "/child/attachment"
	httpReq, err := c.newRequest(ctx, http.MethodPut, endpoint, &buf)
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())
	httpReq.Header.Set("X-Atlassian-Token", "no-check")

	return c.do(httpReq, nil)
}

func (c *Client) doJSON(ctx context.Context, method, endpoint string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encoding request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := c.newRequest(ctx, method, endpoint, body)
	if err != nil {
		return err
	}
	if in != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	return c.do(httpReq, out)
}

func (c *Client) newRequest(ctx context.Context, method, endpoint string, body io.Reader) (*http.Request, error) {
	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.SetBasicAuth(c.username, c.token)
	httpReq.Header.Set("Accept", "application/json")
	return httpReq, nil
}

func (c *Client) do(httpReq *http.Request, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(httpReq.Context()); err != nil {
			return err
		}
	}

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var parsed apiErrorBody
		if json.Unmarshal(respBody, &parsed) == nil && parsed.Message != "" {
			apiErr.Message = parsed.Message
		} else {
			apiErr.Message = strings.TrimSpace(string(respBody))
		}
		return fmt.Errorf("%s %s: %w", httpReq.Method, httpReq.URL.Path, apiErr)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}
