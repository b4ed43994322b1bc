package report

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lox/airdash/internal/htmlutil"
	"github.com/lox/airdash/internal/httputil"
)

// DefaultURLTemplate points at the pre-generated per-station profiling reports.
const DefaultURLTemplate = "https://raw.githubusercontent.com/echelon2718/Air-Quality-Analysis-Properties/main/properties/{station}.html"

const maxReportBytes = 16 << 20

// StatusError is returned when the report host answers with a non-200 status.
type StatusError struct {
	URL  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d", e.Code)
}

// Report is a fetched HTML report fragment.
type Report struct {
	Station   string
	URL       string
	HTML      string
	Status    int
	FetchedAt time.Time
	Duration  time.Duration
}

// Text renders the report as plain text.
func (r *Report) Text() string {
	return htmlutil.ToText(r.HTML)
}

// Client fetches station summary reports. It never retries and never caches:
// a failed fetch is reported to the caller as is.
type Client struct {
	httpClient  *http.Client
	urlTemplate string
}

func NewClient(urlTemplate string) *Client {
	if urlTemplate == "" {
		urlTemplate = DefaultURLTemplate
	}
	return &Client{
		httpClient:  httputil.NewClient(),
		urlTemplate: urlTemplate,
	}
}

// URL returns the report location for station.
func (c *Client) URL(station string) string {
	return strings.ReplaceAll(c.urlTemplate, "{station}", url.PathEscape(station))
}

// Fetch retrieves the report for station. On a non-200 response the returned
// Report still carries the status and timing, alongside a *StatusError.
func (c *Client) Fetch(ctx context.Context, station string) (*Report, error) {
	start := time.Now()
	rep := &Report{
		Station:   station,
		URL:       c.URL(station),
		FetchedAt: start.UTC(),
	}
	defer func() { rep.Duration = time.Since(start) }()

	req, err := http.NewRequestWithContext(ctx, "GET", rep.URL, nil)
	if err != nil {
		return rep, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return rep, fmt.Errorf("fetch report: %w", err)
	}
	defer resp.Body.Close()

	rep.Status = resp.StatusCode
	if resp.StatusCode != http.StatusOK {
		return rep, &StatusError{URL: rep.URL, Code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxReportBytes))
	if err != nil {
		return rep, fmt.Errorf("read body: %w", err)
	}
	rep.HTML = string(body)
	return rep, nil
}
