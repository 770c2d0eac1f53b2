package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianshen/docwiki/internal/wiki"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/wiki/", "bot@example.com", "secret", WithHTTPClient(srv.Client()))
}

func TestCreatePage(t *testing.T) {
	var got apiContent
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/wiki/rest/api/content", r.URL.Path)
		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "bot@example.com", user)
		assert.Equal(t, "secret", pass)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"id":"42","type":"page","title":"Architecture","version":{"number":1},"ancestors":[{"id":"7"}]}`)
	})

	page, err := c.CreatePage(context.Background(), wiki.PageRequest{
		SpaceKey:       "DOCS",
		Title:          "Architecture",
		Body:           "<p>hi</p>",
		ParentID:       "7",
		Type:           "page",
		Representation: "storage",
	})
	require.NoError(t, err)
	assert.Equal(t, &wiki.Page{ID: "42", Title: "Architecture", ParentID: "7", Version: 1}, page)

	assert.Equal(t, "page", got.Type)
	assert.Equal(t, "Architecture", got.Title)
	require.NotNil(t, got.Space)
	assert.Equal(t, "DOCS", got.Space.Key)
	assert.Equal(t, []apiAncestor{{ID: "7"}}, got.Ancestors)
	require.NotNil(t, got.Body)
	assert.Equal(t, "<p>hi</p>", got.Body.Storage.Value)
	assert.Equal(t, "storage", got.Body.Storage.Representation)
}

func TestCreatePageWithoutParentOmitsAncestors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		assert.NotContains(t, string(raw), "ancestors")
		_, _ = io.WriteString(w, `{"id":"1","title":"Home","version":{"number":1}}`)
	})

	page, err := c.CreatePage(context.Background(), wiki.PageRequest{SpaceKey: "DOCS", Title: "Home"})
	require.NoError(t, err)
	assert.Empty(t, page.ParentID)
}

func TestFindPage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		q := r.URL.Query()
		assert.Equal(t, "DOCS", q.Get("spaceKey"))
		assert.Equal(t, "Acme & Co", q.Get("title"))
		assert.Equal(t, "version,ancestors", q.Get("expand"))
		_, _ = io.WriteString(w, `{"results":[{"id":"9","title":"Acme & Co","version":{"number":3},"ancestors":[{"id":"1"},{"id":"2"}]}]}`)
	})

	page, err := c.FindPage(context.Background(), "DOCS", "Acme & Co")
	require.NoError(t, err)
	assert.Equal(t, &wiki.Page{ID: "9", Title: "Acme & Co", ParentID: "2", Version: 3}, page)
}

func TestFindPageNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[]}`)
	})

	_, err := c.FindPage(context.Background(), "DOCS", "Missing")
	assert.ErrorIs(t, err, wiki.ErrPageNotFound)
}

func TestUpdatePageBumpsVersion(t *testing.T) {
	var got apiContent
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wiki/rest/api/content/9", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, `{"id":"9","title":"Acme","version":{"number":4}}`)
	})

	page, err := c.UpdatePage(context.Background(),
		&wiki.Page{ID: "9", Title: "Acme", Version: 3},
		wiki.PageRequest{SpaceKey: "DOCS", Title: "Acme", Body: "<p>v2</p>", ParentID: "1"})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Version)
	assert.Equal(t, "1", page.ParentID)

	require.NotNil(t, got.Version)
	assert.Equal(t, 4, got.Version.Number)
	assert.Equal(t, "9", got.ID)
}

func TestAttachFile(t *testing.T) {
	png := filepath.Join(t.TempDir(), "index_diagram_1.png")
	require.NoError(t, os.WriteFile(png, []byte("\x89PNG data"), 0o644))

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		assert.Equal(t, "/wiki/rest/api/content/42/child/attachment", r.URL.Path)
		assert.Equal(t, "no-check", r.Header.Get("X-Atlassian-Token"))

		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		assert.Equal(t, "true", r.FormValue("minorEdit"))
		f, hdr, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		defer f.Close()
		assert.Equal(t, "index_diagram_1.png", hdr.Filename)
		data, _ := io.ReadAll(f)
		assert.Equal(t, "\x89PNG data", string(data))

		_, _ = io.WriteString(w, `{"results":[{"id":"att1"}]}`)
	})

	require.NoError(t, c.AttachFile(context.Background(), "42", png))
}

func TestAttachMissingFile(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("no request expected")
	})
	err := c.AttachFile(context.Background(), "42", filepath.Join(t.TempDir(), "nope.png"))
	assert.Error(t, err)
}

func TestAPIError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"statusCode":400,"message":"A page with this title already exists"}`)
	})

	_, err := c.CreatePage(context.Background(), wiki.PageRequest{SpaceKey: "DOCS", Title: "Acme"})
	require.Error(t, err)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "A page with this title already exists", apiErr.Message)
	assert.Contains(t, err.Error(), "POST /wiki/rest/api/content")
}

func TestAPIErrorPlainBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
	})

	_, err := c.FindPage(context.Background(), "DOCS", "Acme")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Unauthorized", apiErr.Message)
}

func TestRateLimitHonorsContext(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"results":[]}`)
	})
	WithRateLimit(0.001)(c)

	// The first request consumes the only token.
	_, err := c.FindPage(context.Background(), "DOCS", "A")
	require.ErrorIs(t, err, wiki.ErrPageNotFound)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.FindPage(ctx, "DOCS", "B")
	require.Error(t, err)
	assert.NotErrorIs(t, err, wiki.ErrPageNotFound)
}

func TestNewTrimsBaseURLAndSetsTimeout(t *testing.T) {
	c := New("https://example.atlassian.net/wiki/", "u", "t", WithTimeout(5*time.Second))
	assert.Equal(t, "https://example.atlassian.net/wiki", c.baseURL)
	assert.Equal(t, 5*time.Second, c.client.Timeout)
	assert.Nil(t, c.limiter)
}
