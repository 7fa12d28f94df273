// Package phonefind guesses a company's phone number from the public web.
//
// This is fragile by nature: a free-text search followed by regex matching
// over uncontrolled third-party HTML. It is treated strictly as a best-effort
// collaborator; any failure degrades to the "not found" marker and never
// affects the batch outcome.
package phonefind

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var phoneLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cnpj_phone_lookups_total",
	Help: "Total site phone lookups by result",
}, []string{"result"}) // "found", "not_found", "error"

// NotFound is returned when no phone number could be extracted.
const NotFound = "N/A"

// phonePattern matches Brazilian landline/mobile formats like
// "(11) 4002-8922" or "11 98765-4321".
var phonePattern = regexp.MustCompile(`\(?\d{2}\)?\s?\d{4,5}-\d{4}`)

// maxPageBytes bounds how much of a result page is scanned.
const maxPageBytes = 512 * 1024

// Searcher returns result URLs for a free-text query.
type Searcher interface {
	Search(ctx context.Context, query string) ([]string, error)
}

// Finder resolves a company name to a phone number via web search.
type Finder struct {
	searcher   Searcher
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewFinder creates a finder using the given search collaborator.
func NewFinder(searcher Searcher, logger zerolog.Logger) *Finder {
	return &Finder{
		searcher:   searcher,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (f *Finder) SetHTTPClient(httpClient *http.Client) {
	f.httpClient = httpClient
}

// PhoneForCompany searches for the company's site and extracts the first
// phone-shaped substring from it. Returns NotFound on any failure.
func (f *Finder) PhoneForCompany(ctx context.Context, name string) string {
	if name == "" || name == NotFound {
		phoneLookupsTotal.WithLabelValues("not_found").Inc()
		return NotFound
	}

	urls, err := f.searcher.Search(ctx, "site oficial "+name)
	if err != nil {
		f.logger.Warn().Err(err).Str("company", name).Msg("Web search failed")
		phoneLookupsTotal.WithLabelValues("error").Inc()
		return NotFound
	}

	for _, pageURL := range urls {
		phone, ok := f.phoneFromPage(ctx, pageURL)
		if ok {
			f.logger.Debug().Str("company", name).Str("url", pageURL).Msg("Phone found on site")
			phoneLookupsTotal.WithLabelValues("found").Inc()
			return phone
		}
	}

	phoneLookupsTotal.WithLabelValues("not_found").Inc()
	return NotFound
}

// phoneFromPage fetches a page and scans it for a phone-shaped substring.
func (f *Finder) phoneFromPage(ctx context.Context, pageURL string) (string, bool) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", false
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return "", false
	}

	match := phonePattern.FindString(string(body))
	if match == "" {
		return "", false
	}
	return match, true
}

// WebSearcher is a minimal HTML search-engine scraper: it fetches the result
// page for a query and extracts outbound result links.
type WebSearcher struct {
	endpoint   string
	httpClient *http.Client
	maxResults int
}

// DefaultSearchEndpoint serves plain-HTML results without JavaScript.
const DefaultSearchEndpoint = "https://html.duckduckgo.com/html/"

var resultLinkPattern = regexp.MustCompile(`href="(https?://[^"]+)"`)

// NewWebSearcher creates a searcher against endpoint (DefaultSearchEndpoint
// when empty), returning at most maxResults links per query.
func NewWebSearcher(endpoint string, maxResults int) *WebSearcher {
	if endpoint == "" {
		endpoint = DefaultSearchEndpoint
	}
	if maxResults <= 0 {
		maxResults = 1
	}
	return &WebSearcher{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		maxResults: maxResults,
	}
}

// Search implements Searcher.
func (s *WebSearcher) Search(ctx context.Context, query string) ([]string, error) {
	searchURL := s.endpoint + "?q=" + url.QueryEscape(query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read search results: %w", err)
	}

	endpointHost := hostOf(s.endpoint)
	var links []string
	for _, m := range resultLinkPattern.FindAllStringSubmatch(string(body), -1) {
		link := m[1]
		// Skip the engine's own navigation links.
		if endpointHost != "" && hostOf(link) == endpointHost {
			continue
		}
		links = append(links, link)
		if len(links) >= s.maxResults {
			break
		}
	}
	return links, nil
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
