package catalogapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_catalog/internal/models"
)

// defaultMaxPages bounds a single fetch in case the upstream keeps reporting
// more pages.
const defaultMaxPages = 500

// Config holds the catalog endpoint settings.
type Config struct {
	BaseURL  string
	APIKey   string
	Timeout  time.Duration
	PageSize int
	Debug    bool
}

// Client is a minimal HTTP client for the upstream catalog service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pageSize   int
	maxPages   int
	debug      bool
}

// NewClient constructs a new catalog client with sane defaults.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 200
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		pageSize:   pageSize,
		maxPages:   defaultMaxPages,
		debug:      cfg.Debug,
	}
}

// Name identifies the source in logs and metrics.
func (c *Client) Name() string {
	return "http"
}

// FetchProducts retrieves the full product list, following pagination when
// the endpoint returns an envelope with totalPages. Pages past maxPages are
// not fetched; the truncation is logged.
func (c *Client) FetchProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	for page := 1; page <= c.maxPages; page++ {
		items, totalPages, err := c.fetchPage(ctx, page)
		if err != nil {
			return nil, err
		}
		for _, it := range items {
			products = append(products, it.ToProduct())
		}
		if totalPages == 0 {
			// Bare array or no pagination meta: the whole list came back.
			break
		}
		if page >= totalPages || len(items) == 0 {
			break
		}
		if page == c.maxPages {
			log.Warn().
				Int("max_pages", c.maxPages).
				Int("total_pages", totalPages).
				Int("products", len(products)).
				Msg("[CATALOG] Page limit reached, product list is incomplete")
		}
	}
	if products == nil {
		products = []models.Product{}
	}
	return products, nil
}

// fetchPage GETs one page. totalPages is 0 when the response carries no
// pagination metadata.
func (c *Client) fetchPage(ctx context.Context, page int) ([]ProductItem, int, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(c.pageSize))
	endpoint := c.baseURL + "/products?" + q.Encode()

	body, err := c.doRequest(ctx, endpoint)
	if err != nil {
		return nil, 0, err
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var items []ProductItem
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, 0, fmt.Errorf("failed to decode product list: %w", err)
		}
		return items, 0, nil
	}

	var resp ProductListResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, 0, fmt.Errorf("failed to decode product list: %w", err)
	}
	totalPages := 0
	if resp.Meta != nil && resp.Meta.Pagination != nil {
		totalPages = resp.Meta.Pagination.TotalPages
	}
	return resp.Data, totalPages, nil
}

// doRequest performs the HTTP GET and returns the body of a 2xx response.
func (c *Client) doRequest(ctx context.Context, endpoint string) ([]byte, error) {
	if c.debug {
		log.Debug().Str("endpoint", endpoint).Msg("[CATALOG] Outgoing request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if c.debug {
		log.Debug().
			Str("endpoint", endpoint).
			Int("status_code", resp.StatusCode).
			Int("bytes", len(respBody)).
			Msg("[CATALOG] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncate(respBody, 256)}
	}
	return respBody, nil
}

// StatusError reports a non-2xx response from the catalog service.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("catalog service returned %d: %s", e.StatusCode, e.Body)
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
