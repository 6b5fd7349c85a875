// Package enrich attaches portraits and short summaries to figures using the
// Wikipedia page summary endpoint.
package enrich

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ppiankov/giants/internal/util"
)

var (
	// ErrNoImage means the summary carried neither a thumbnail nor an original image
	ErrNoImage = errors.New("summary has no image")
	// ErrDisallowed means robots.txt forbids the summary URL
	ErrDisallowed = errors.New("disallowed by robots.txt")
)

// FetchError records why a portrait could not be fetched for an article
type FetchError struct {
	ArticleID string
	Err       error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("portrait %s: %v", e.ArticleID, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Summary is the subset of the page summary response that is used
type Summary struct {
	Title         string `json:"title"`
	Extract       string `json:"extract"`
	ExtractHTML   string `json:"extract_html"`
	Thumbnail     *image `json:"thumbnail"`
	OriginalImage *image `json:"originalimage"`
}

type image struct {
	Source string `json:"source"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// ImageURL prefers the thumbnail over the original image
func (s *Summary) ImageURL() string {
	if s.Thumbnail != nil && s.Thumbnail.Source != "" {
		return s.Thumbnail.Source
	}
	if s.OriginalImage != nil && s.OriginalImage.Source != "" {
		return s.OriginalImage.Source
	}
	return ""
}

// PlainText returns the extract without markup
func (s *Summary) PlainText() string {
	if s.ExtractHTML != "" {
		if text := PlainText(s.ExtractHTML); text != "" {
			return text
		}
	}
	return strings.TrimSpace(s.Extract)
}

// SummaryClient fetches page summaries
type SummaryClient struct {
	endpoint   string
	userAgent  string
	maxBytes   int64
	httpClient *http.Client
}

// NewSummaryClient creates a client for endpoint, e.g.
// https://en.wikipedia.org/api/rest_v1/page/summary
func NewSummaryClient(endpoint, userAgent string, maxBytes int64, client *http.Client) *SummaryClient {
	if client == nil {
		client = http.DefaultClient
	}
	return &SummaryClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		userAgent:  userAgent,
		maxBytes:   maxBytes,
		httpClient: client,
	}
}

// URL returns the summary URL of an article
func (c *SummaryClient) URL(articleID string) string {
	return c.endpoint + "/" + url.PathEscape(articleID)
}

// Fetch performs a single GET for the article summary. Every failure is a
// *FetchError.
func (c *SummaryClient) Fetch(ctx context.Context, articleID string) (*Summary, error) {
	body, err := util.Get(ctx, c.httpClient, c.URL(articleID), c.userAgent, "application/json", c.maxBytes)
	if err != nil {
		return nil, &FetchError{ArticleID: articleID, Err: err}
	}

	var s Summary
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, &FetchError{ArticleID: articleID, Err: fmt.Errorf("decode summary: %w", err)}
	}
	return &s, nil
}
