package openalex

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	// BaseURL is the OpenAlex works endpoint.
	BaseURL = "https://api.openalex.org/works"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 60 * time.Second

	// RateLimit is 2 requests per second, matching the politeness pause
	// the harvester has always used against the OpenAlex API.
	RateLimit = 2.0

	// PerPage is the page size requested from the API.
	PerPage = 200

	// FirstCursor starts cursor pagination from the beginning.
	FirstCursor = "*"
)

// Client is a rate-limited HTTP client for the OpenAlex works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the mailto address sent with every request, which
// puts requests in the OpenAlex polite pool.
func WithMailto(addr string) ClientOption {
	return func(c *Client) {
		c.mailto = addr
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a new OpenAlex works API client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WorksFilter builds the filter expression for one institution (by ROR
// id) over an inclusive publication-year range.
func WorksFilter(rorID string, fromYear, toYear int) string {
	return fmt.Sprintf("authorships.institutions.ror:%s,publication_year:%d-%d",
		rorID, fromYear, toYear)
}

// Page is one page of a cursor-paginated works listing. Results is kept
// as raw JSON so pages can be stored verbatim in the raw store.
type Page struct {
	Meta struct {
		Count      int    `json:"count"`
		NextCursor string `json:"next_cursor"`
	} `json:"meta"`
	Results []json.RawMessage `json:"results"`
}

// ResultsJSON returns the page's results as a single JSON array.
func (p *Page) ResultsJSON() ([]byte, error) {
	return json.Marshal(p.Results)
}

// WorksPage fetches one page of works matching the filter, starting at
// the given cursor (FirstCursor for the first page). The returned
// page's Meta.NextCursor is empty once the listing is exhausted.
func (c *Client) WorksPage(ctx context.Context, filter, cursor string) (*Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	params := url.Values{}
	params.Set("filter", filter)
	params.Set("per_page", fmt.Sprint(PerPage))
	params.Set("cursor", cursor)
	if c.mailto != "" {
		params.Set("mailto", c.mailto)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching works page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("works request failed: %s: %s", resp.Status, body)
	}

	var page Page
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decoding works page: %w", err)
	}

	return &page, nil
}
