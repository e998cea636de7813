// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package arxiv fetches recent papers from the arXiv Atom API.
package arxiv

import (
	"context"
	"encoding/xml"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/pdiddy/paper-digest/internal/httputil"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// apiBase is the arXiv query endpoint. Declared as a var so tests can
// substitute an httptest server.
var apiBase = "https://export.arxiv.org/api/query"

// pageSize is the number of entries requested per API call. arXiv caps
// single responses well above this; smaller pages keep partial failures
// cheap.
const pageSize = 100

// arXiv asks for no more than one request every three seconds.
var apiLimit = rate.Every(3 * time.Second)

// Client queries the arXiv API for recent submissions.
type Client struct {
	HTTP    *http.Client
	limiter *rate.Limiter
}

// NewClient returns a Client using the given HTTP client, with request
// pacing that respects arXiv's rate guidance.
func NewClient(httpClient *http.Client) *Client {
	return &Client{
		HTTP:    httpClient,
		limiter: rate.NewLimiter(apiLimit, 1),
	}
}

// Fetch returns up to cfg.MaxResults papers matching cfg.Query, newest
// submissions first. Publication timestamps are normalized to
// cfg.Timezone.
func (c *Client) Fetch(ctx context.Context, cfg types.FetchConfig) ([]types.Paper, error) {
	if strings.TrimSpace(cfg.Query) == "" {
		return nil, fmt.Errorf("empty arXiv query")
	}

	loc, err := loadLocation(cfg.Timezone)
	if err != nil {
		return nil, err
	}

	maxResults := cfg.MaxResults
	if maxResults <= 0 {
		maxResults = 50
	}

	var papers []types.Paper
	for start := 0; start < maxResults; start += pageSize {
		count := pageSize
		if remaining := maxResults - start; remaining < count {
			count = remaining
		}

		entries, err := c.fetchPage(ctx, cfg, start, count)
		if err != nil {
			return nil, err
		}

		for _, entry := range entries {
			p, ok := toPaper(entry, loc)
			if !ok {
				continue
			}
			papers = append(papers, p)
		}

		// A short page means the feed is exhausted.
		if len(entries) < count {
			break
		}
	}

	return papers, nil
}

// fetchPage retrieves one page of the feed, waiting on the rate limiter
// before issuing the request.
func (c *Client) fetchPage(ctx context.Context, cfg types.FetchConfig, start, count int) ([]entry, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	u := fmt.Sprintf("%s?search_query=%s&start=%d&max_results=%d&sortBy=submittedDate&sortOrder=descending",
		apiBase, url.QueryEscape(cfg.Query), start, count)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	resp, err := httputil.DoWithRetry(ctx, c.HTTP, req, 0)
	if err != nil {
		return nil, fmt.Errorf("arXiv API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("arXiv API returned HTTP %d", resp.StatusCode)
	}

	var f feed
	if err := xml.NewDecoder(resp.Body).Decode(&f); err != nil {
		return nil, fmt.Errorf("parsing arXiv response: %w", err)
	}
	return f.Entries, nil
}

// toPaper converts one feed entry into a Paper. Entries without a
// recognizable arXiv ID are skipped.
func toPaper(e entry, loc *time.Location) (types.Paper, bool) {
	id := extractID(e.ID)
	if id == "" {
		return types.Paper{}, false
	}

	p := types.Paper{
		ID:         id,
		Title:      strings.Join(strings.Fields(e.Title), " "),
		Abstract:   strings.TrimSpace(e.Summary),
		Link:       e.ID,
		JournalRef: strings.TrimSpace(e.JournalRef),
	}

	for _, a := range e.Authors {
		p.Authors = append(p.Authors, strings.TrimSpace(a.Name))
	}

	if t, parseErr := time.Parse(time.RFC3339, e.Published); parseErr == nil {
		p.Published = t.In(loc)
	}

	return p, true
}

// loadLocation resolves the configured timezone, defaulting to UTC.
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", name, err)
	}
	return loc, nil
}

// arXiv Atom feed XML structures.
type feed struct {
	Entries []entry `xml:"entry"`
}

type entry struct {
	ID         string   `xml:"id"`
	Title      string   `xml:"title"`
	Summary    string   `xml:"summary"`
	Published  string   `xml:"published"`
	JournalRef string   `xml:"journal_ref"`
	Authors    []author `xml:"author"`
}

type author struct {
	Name string `xml:"name"`
}

// extractID pulls the arXiv ID from the entry's <id> URL
// (e.g. "http://arxiv.org/abs/2301.07041v1" → "2301.07041").
func extractID(idURL string) string {
	const prefix = "/abs/"
	idx := strings.Index(idURL, prefix)
	if idx < 0 {
		return ""
	}
	id := idURL[idx+len(prefix):]

	// Strip version suffix (e.g. "v1", "v2").
	if vIdx := strings.LastIndex(id, "v"); vIdx > 0 {
		if _, err := strconv.Atoi(id[vIdx+1:]); err == nil {
			id = id[:vIdx]
		}
	}
	return id
}
