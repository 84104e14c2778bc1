package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ryosukesatoh/morning-summary/internal/provider"
)

func article(i int) string {
	return fmt.Sprintf(`{"source":{"id":null,"name":"Source %d"},"title":"Headline %d","description":"Desc %d","url":"https://news.example.com/%d"}`, i, i, i, i)
}

func articles(n int) string {
	parts := make([]string, n)
	for i := range parts {
		parts[i] = article(i + 1)
	}
	return `{"status":"ok","totalResults":` + fmt.Sprint(n) + `,"articles":[` + strings.Join(parts, ",") + `]}`
}

func testClient(ts *httptest.Server) *NewsAPIClient {
	return &NewsAPIClient{
		apiKey:  "news-key",
		country: "us",
		client:  ts.Client(),
		baseURL: ts.URL,
	}
}

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func TestTopHeadlinesRequest(t *testing.T) {
	var gotPath, gotKey string
	var gotQuery map[string][]string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		gotKey = r.Header.Get("X-Api-Key")
		w.Write([]byte(articles(2)))
	}))
	defer ts.Close()

	_, err := testClient(ts).TopHeadlines(context.Background(), "politics", 5)
	require.NoError(t, err)

	assert.Equal(t, "/top-headlines", gotPath)
	assert.Equal(t, "news-key", gotKey)
	assert.Equal(t, []string{"us"}, gotQuery["country"])
	assert.Equal(t, []string{"politics"}, gotQuery["category"])
	assert.Equal(t, []string{"5"}, gotQuery["pageSize"])
	assert.NotContains(t, gotQuery, "apiKey")
}

func TestTopHeadlinesPreservesRankingOrder(t *testing.T) {
	ts := serve(t, http.StatusOK, articles(3))

	digest, err := testClient(ts).TopHeadlines(context.Background(), "politics", 5)
	require.NoError(t, err)

	require.Len(t, digest.Headlines, 3)
	for i, h := range digest.Headlines {
		assert.Equal(t, fmt.Sprintf("Headline %d", i+1), h.Title)
		assert.Equal(t, fmt.Sprintf("Source %d", i+1), h.Source)
		assert.Equal(t, fmt.Sprintf("https://news.example.com/%d", i+1), h.URL)
		assert.Equal(t, fmt.Sprintf("Desc %d", i+1), h.Description)
	}
}

func TestTopHeadlinesNeverExceedsFive(t *testing.T) {
	ts := serve(t, http.StatusOK, articles(12))

	for _, limit := range []int{0, 5, 20} {
		digest, err := testClient(ts).TopHeadlines(context.Background(), "politics", limit)
		require.NoError(t, err)
		require.Len(t, digest.Headlines, MaxHeadlines)
		assert.Equal(t, "Headline 1", digest.Headlines[0].Title)
		assert.Equal(t, "Headline 5", digest.Headlines[4].Title)
	}

	digest, err := testClient(ts).TopHeadlines(context.Background(), "politics", 2)
	require.NoError(t, err)
	assert.Len(t, digest.Headlines, 2)
}

func TestTopHeadlinesOmitsIncompleteEntries(t *testing.T) {
	body := `{"status":"ok","articles":[
		{"source":{"name":"A"},"title":"Keep one","url":"https://a.example/1"},
		{"source":{"name":"B"},"title":null,"url":"https://b.example/1"},
		{"source":{"name":"C"},"title":"No url"},
		{"title":"No source","url":"https://d.example/1"},
		{"source":{"name":""},"title":"Blank source","url":"https://e.example/1"},
		{"source":{"name":"[Removed]"},"title":"[Removed]","url":"https://removed.com"},
		{"source":{"name":"F"},"title":42,"url":"https://f.example/1"},
		{"source":{"name":"G"},"title":"Keep two","url":"https://g.example/1","description":null}
	]}`
	ts := serve(t, http.StatusOK, body)

	digest, err := testClient(ts).TopHeadlines(context.Background(), "politics", 5)
	require.NoError(t, err)

	require.Len(t, digest.Headlines, 2)
	assert.Equal(t, "Keep one", digest.Headlines[0].Title)
	assert.Equal(t, "Keep two", digest.Headlines[1].Title)
	assert.Empty(t, digest.Headlines[1].Description)
}

func TestTopHeadlinesCapAppliesAfterFiltering(t *testing.T) {
	parts := []string{`{"title":"dropped"}`}
	for i := 1; i <= 6; i++ {
		parts = append(parts, article(i))
	}
	ts := serve(t, http.StatusOK, `{"status":"ok","articles":[`+strings.Join(parts, ",")+`]}`)

	digest, err := testClient(ts).TopHeadlines(context.Background(), "politics", 5)
	require.NoError(t, err)
	require.Len(t, digest.Headlines, 5)
	assert.Equal(t, "Headline 5", digest.Headlines[4].Title)
}

func TestTopHeadlinesEmpty(t *testing.T) {
	ts := serve(t, http.StatusOK, `{"status":"ok","totalResults":0,"articles":[]}`)

	digest, err := testClient(ts).TopHeadlines(context.Background(), "politics", 5)
	require.NoError(t, err)
	assert.Empty(t, digest.Headlines)
}

func TestTopHeadlinesErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{"server error", http.StatusInternalServerError, ``, "status 500"},
		{"bad key", http.StatusUnauthorized, `{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`, "API key is invalid"},
		{"not json", http.StatusOK, `<html>oops</html>`, "invalid json"},
		{"error status in body", http.StatusOK, `{"status":"error","articles":[]}`, "schema validation failed"},
		{"missing articles", http.StatusOK, `{"status":"ok"}`, "schema validation failed"},
		{"articles wrong type", http.StatusOK, `{"status":"ok","articles":"none"}`, "schema validation failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := serve(t, tt.status, tt.body)

			_, err := testClient(ts).TopHeadlines(context.Background(), "politics", 5)
			require.Error(t, err)
			assert.True(t, provider.Is(err, provider.News), "got %T: %v", err, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestTopHeadlinesNetworkError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := ts.URL
	ts.Close()

	c := NewNewsAPIClient("key", addr, "us", time.Second)
	_, err := c.TopHeadlines(context.Background(), "politics", 5)
	require.Error(t, err)
	assert.True(t, provider.Is(err, provider.News))
}
