package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/gnemet/DeckForge/internal/config"
)

const userAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36"

type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
}

// Searcher queries an HTML search page (DuckDuckGo's by default) and scrapes
// the results.
type Searcher struct {
	endpoint   string
	maxResults int
	client     *http.Client
}

func NewSearcher(cfg config.SearchConfig) *Searcher {
	max := cfg.MaxResults
	if max <= 0 {
		max = 5
	}
	return &Searcher{
		endpoint:   cfg.Endpoint,
		maxResults: max,
		client:     &http.Client{Timeout: cfg.Timeout},
	}
}

func (s *Searcher) Search(ctx context.Context, query string) ([]Result, error) {
	u, err := url.Parse(s.endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid search endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to parse search results: %w", err)
	}

	var results []Result
	doc.Find(".result").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		title := strings.TrimSpace(link.Text())
		href, _ := link.Attr("href")
		if title == "" || href == "" {
			return true
		}

		results = append(results, Result{
			Title:   title,
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").Text()),
		})
		return len(results) < s.maxResults
	})
	return results, nil
}

// resolveRedirect unwraps DuckDuckGo's "/l/?uddg=<target>" links.
func resolveRedirect(href string) string {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	return href
}

// Context turns results into prompt lines.
func Context(results []Result) []string {
	lines := make([]string, 0, len(results))
	for _, r := range results {
		line := r.Title
		if r.Snippet != "" {
			line += ": " + r.Snippet
		}
		if r.URL != "" {
			line += " (" + r.URL + ")"
		}
		lines = append(lines, line)
	}
	return lines
}
