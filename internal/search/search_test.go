package search_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gnemet/DeckForge/internal/config"
	"github.com/gnemet/DeckForge/internal/search"
	"github.com/stretchr/testify/require"
)

const resultsPage = `<html><body>
<div class="result">
  <h2><a class="result__a" href="//duckduckgo.com/l/?uddg=https%3A%2F%2Fexample.com%2Fremote&rut=abc">Remote work statistics</a></h2>
  <a class="result__snippet">Around 28% of workdays are remote.</a>
</div>
<div class="result">
  <h2><a class="result__a" href="https://example.org/guide">A guide to hybrid teams</a></h2>
  <div class="result__snippet">  Practical tips.  </div>
</div>
<div class="result"><span>ad without link</span></div>
<div class="result">
  <h2><a class="result__a" href="https://example.net/third">Third</a></h2>
</div>
</body></html>`

func TestSearch(t *testing.T) {
	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		require.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(resultsPage))
	}))
	defer server.Close()

	s := search.NewSearcher(config.SearchConfig{Endpoint: server.URL + "/html/", MaxResults: 2, Timeout: 5 * time.Second})

	results, err := s.Search(context.Background(), "remote work")
	require.NoError(t, err)
	require.Equal(t, "remote work", gotQuery)
	require.Equal(t, []search.Result{
		{Title: "Remote work statistics", URL: "https://example.com/remote", Snippet: "Around 28% of workdays are remote."},
		{Title: "A guide to hybrid teams", URL: "https://example.org/guide", Snippet: "Practical tips."},
	}, results)

	lines := search.Context(results)
	require.Equal(t, "Remote work statistics: Around 28% of workdays are remote. (https://example.com/remote)", lines[0])
}

func TestSearchStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := search.NewSearcher(config.SearchConfig{Endpoint: server.URL}).Search(context.Background(), "x")
	require.Error(t, err)
}
