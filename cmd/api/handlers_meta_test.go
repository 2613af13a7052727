// cmd/api/handlers_meta_test.go
package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tmejia-dev/library-catalog/internal/data"
)

func TestLibraryStats(t *testing.T) {
	app, stores := newTestApplication()

	// 2 available + 1 borrowed book across two categories, one of which is
	// empty; uncategorized books never appear in books_by_category.
	stores.stats.snapshot = data.Stats{
		TotalBooks:      3,
		AvailableBooks:  2,
		BorrowedBooks:   1,
		TotalAuthors:    2,
		TotalCategories: 2,
		BooksByCategory: map[string]int64{
			"Science Fiction": 3,
			"History":         0,
		},
		BooksByAvailability: map[string]int64{
			"Available":         2,
			"Borrowed":          1,
			"Under Maintenance": 0,
		},
	}

	ts := httptest.NewServer(app.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/stats")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got struct {
		Stats data.Stats `json:"stats"`
	}
	readBody(t, resp, &got)

	assert.Equal(t, int64(3), got.Stats.TotalBooks)
	assert.Equal(t, int64(2), got.Stats.AvailableBooks)
	assert.Equal(t, int64(1), got.Stats.BorrowedBooks)

	// The empty category still shows up with a zero count.
	require.Contains(t, got.Stats.BooksByCategory, "History")
	assert.Equal(t, int64(0), got.Stats.BooksByCategory["History"])

	// All three availability labels are always present.
	for _, label := range []string{"Available", "Borrowed", "Under Maintenance"} {
		assert.Contains(t, got.Stats.BooksByAvailability, label)
	}
}

func TestAPIOverview(t *testing.T) {
	app, stores := newTestApplication()
	stores.stats.totals = data.Totals{Books: 12, Authors: 3, Categories: 4}

	ts := httptest.NewServer(app.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/")
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var got map[string]any
	readBody(t, resp, &got)

	books, ok := got["books"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(12), books["total_books"])
	assert.Equal(t, "/api/books", books["list_create"])

	authors, ok := got["authors"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(3), authors["total_authors"])

	assert.Equal(t, "/api/stats", got["statistics"])
}

// Every advertised path must be routable as given: httprouter matches paths
// exactly, so a stale trailing slash in the directory would 301 instead of
// serving the resource.
func TestAPIOverview_PathsMatchRegisteredRoutes(t *testing.T) {
	app, _ := newTestApplication()

	ts := httptest.NewServer(app.routes())
	defer ts.Close()

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	for name, path := range endpointDirectory {
		if strings.ContainsAny(path, ":?") {
			continue // parameterized or query-string templates
		}

		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()

		assert.NotEqual(t, http.StatusMovedPermanently, resp.StatusCode,
			"directory entry %q advertises %q, which only redirects", name, path)
		assert.Equal(t, http.StatusOK, resp.StatusCode, "directory entry %q", name)
	}
}

func TestUnknownRoute_ReturnsJSON404(t *testing.T) {
	app, _ := newTestApplication()

	ts := httptest.NewServer(app.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/widgets")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)

	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))
	resp.Body.Close()
}

func TestMethodNotAllowed(t *testing.T) {
	app, _ := newTestApplication()

	ts := httptest.NewServer(app.routes())
	defer ts.Close()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/stats", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestRequestIDHeader(t *testing.T) {
	app, _ := newTestApplication()

	ts := httptest.NewServer(app.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	// A caller-supplied id is echoed back unchanged.
	req, err := http.NewRequest(http.MethodGet, ts.URL+"/api/", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")

	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}
