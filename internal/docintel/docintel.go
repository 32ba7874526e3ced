// Package docintel extracts structured insights from the PDF research
// reports that accompany the equity universe snapshot. Extraction runs
// against an external document intelligence endpoint; report lookup is
// local.
package docintel

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/ScreenerGo/internal/logger"
)

// Extraction is the structured content pulled out of one report.
type Extraction struct {
	TextContent     string            `json:"text_content"`
	Tables          []Table           `json:"tables"`
	KeyFigures      map[string]string `json:"key_figures"`
	AnalystInsights []string          `json:"analyst_insights"`
}

// Table is one extracted table, already flattened to rows of cells.
type Table struct {
	Caption string     `json:"caption,omitempty"`
	Rows    [][]string `json:"rows"`
}

// RankedSection is one retrieval hit inside a report.
type RankedSection struct {
	Content        string  `json:"content"`
	RelevanceScore float64 `json:"relevance_score"`
	PageNumber     int     `json:"page_number"`
	Section        string  `json:"section"`
	SourceFile     string  `json:"source_file,omitempty"`
}

// Service extracts and searches report content.
type Service interface {
	Extract(ctx context.Context, pdfPath, queryContext string) (*Extraction, error)
	Search(ctx context.Context, pdfPath, query string) ([]RankedSection, error)
}

// Client talks to a document intelligence HTTP endpoint.
type Client struct {
	client *resty.Client
	apiKey string
}

// NewClient builds a client for the given endpoint. The endpoint must
// be non-empty; the key may be empty for unauthenticated deployments.
func NewClient(endpoint, apiKey string) (*Client, error) {
	if endpoint == "" {
		return nil, fmt.Errorf("document intelligence endpoint not configured")
	}

	client := resty.New()
	client.SetBaseURL(endpoint)
	client.SetTimeout(60 * time.Second)

	return &Client{client: client, apiKey: apiKey}, nil
}

type extractRequest struct {
	Document     []byte `json:"document"`
	QueryContext string `json:"query_context,omitempty"`
}

type searchRequest struct {
	Document []byte `json:"document"`
	Query    string `json:"query"`
}

// Extract uploads the report and returns the structured extraction.
func (c *Client) Extract(ctx context.Context, pdfPath, queryContext string) (*Extraction, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", pdfPath, err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Ocp-Apim-Subscription-Key", c.apiKey).
		SetBody(extractRequest{Document: data, QueryContext: queryContext}).
		Post("/extract")
	if err != nil {
		return nil, fmt.Errorf("extract request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("extract API error %d: %s", resp.StatusCode(), resp.String())
	}

	var out Extraction
	if err := json.Unmarshal(resp.Body(), &out); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}
	logger.Log.Debugf("extracted %d tables and %d insights from %s",
		len(out.Tables), len(out.AnalystInsights), filepath.Base(pdfPath))
	return &out, nil
}

// Search runs a retrieval query against the report and returns the
// matching sections, best first.
func (c *Client) Search(ctx context.Context, pdfPath, query string) ([]RankedSection, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", pdfPath, err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Ocp-Apim-Subscription-Key", c.apiKey).
		SetBody(searchRequest{Document: data, Query: query}).
		Post("/search")
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("search API error %d: %s", resp.StatusCode(), resp.String())
	}

	var sections []RankedSection
	if err := json.Unmarshal(resp.Body(), &sections); err != nil {
		return nil, fmt.Errorf("parse search response: %w", err)
	}

	base := filepath.Base(pdfPath)
	for i := range sections {
		sections[i].SourceFile = base
	}
	sort.SliceStable(sections, func(i, j int) bool {
		return sections[i].RelevanceScore > sections[j].RelevanceScore
	})
	return sections, nil
}

// ReportLocator finds the PDF report belonging to one ticker inside a
// reports directory.
type ReportLocator struct {
	reportsDir string
}

func NewReportLocator(reportsDir string) *ReportLocator {
	return &ReportLocator{reportsDir: reportsDir}
}

// Locate returns the report path for the ticker. When no file names
// the ticker, the first report in the directory is returned so the
// caller still gets universe-level commentary.
func (l *ReportLocator) Locate(ticker string) (string, error) {
	if l.reportsDir == "" {
		return "", fmt.Errorf("reports directory not configured")
	}
	if _, err := os.Stat(l.reportsDir); err != nil {
		return "", fmt.Errorf("reports directory not found: %s", l.reportsDir)
	}

	matches, err := filepath.Glob(filepath.Join(l.reportsDir, "*"+ticker+"*.pdf"))
	if err != nil {
		return "", err
	}
	if len(matches) > 0 {
		sort.Strings(matches)
		return matches[0], nil
	}

	all, err := filepath.Glob(filepath.Join(l.reportsDir, "*.pdf"))
	if err != nil {
		return "", err
	}
	if len(all) == 0 {
		return "", fmt.Errorf("no report found for stock: %s", ticker)
	}
	sort.Strings(all)
	logger.Log.Debugf("no report names %s, falling back to %s", ticker, filepath.Base(all[0]))
	return all[0], nil
}

// Available lists the report file names in the directory.
func (l *ReportLocator) Available() []string {
	all, err := filepath.Glob(filepath.Join(l.reportsDir, "*.pdf"))
	if err != nil {
		return nil
	}
	sort.Strings(all)
	names := make([]string, 0, len(all))
	for _, p := range all {
		names = append(names, filepath.Base(p))
	}
	return names
}
