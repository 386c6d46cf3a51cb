package datasource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/alexanderramin/compass/internal/domain"
)

// httpClient implements DataSource against the product-insights HTTP API.
type httpClient struct {
	cfg  Config
	http *http.Client
}

// NewHTTPClient creates a DataSource backed by the insights API.
func NewHTTPClient(cfg Config) DataSource {
	return &httpClient{
		cfg: cfg,
		http: &http.Client{
			Transport: &http.Transport{
				DialContext: (&net.Dialer{
					Timeout: 5 * time.Second,
				}).DialContext,
			},
		},
	}
}

func (c *httpClient) Report(ctx context.Context, productID string) (*domain.InsightReport, error) {
	var out domain.InsightReport
	if err := c.get(ctx, "report", c.productPath(productID, "report"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) ReleaseReport(ctx context.Context, productID string) (*domain.ReleaseReport, error) {
	var out domain.ReleaseReport
	if err := c.get(ctx, "release_report", c.productPath(productID, "release-report"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Budget(ctx context.Context, productID string) (*domain.ProductBudgetDocument, error) {
	var out domain.ProductBudgetDocument
	if err := c.get(ctx, "budget", c.productPath(productID, "budget"), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *httpClient) Features(ctx context.Context, productID string) ([]domain.Feature, error) {
	var out []domain.Feature
	if err := c.get(ctx, "features", c.productPath(productID, "features"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) Issues(ctx context.Context, productID string) ([]domain.Issue, error) {
	var out []domain.Issue
	if err := c.get(ctx, "issues", c.productPath(productID, "issues"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) Releases(ctx context.Context, productID string) ([]domain.Release, error) {
	var out []domain.Release
	if err := c.get(ctx, "releases", c.productPath(productID, "releases"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) Statuses(ctx context.Context, productID string) ([]domain.StatusOption, error) {
	path := "/api/statuses"
	if productID != "" {
		path += "?product=" + url.QueryEscape(productID)
	}
	var out []domain.StatusOption
	if err := c.get(ctx, "statuses", path, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *httpClient) SaveBudget(ctx context.Context, productID string, doc *domain.ProductBudgetDocument, scope SaveScope) error {
	const op = "save_budget"

	body, err := json.Marshal(doc)
	if err != nil {
		return NewError(KindFatal, op, fmt.Errorf("marshaling document: %w", err))
	}

	u := c.cfg.Endpoint + c.productPath(productID, "budget") + "?scope=" + url.QueryEscape(string(scope))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return NewError(KindFatal, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return NewError(KindTransient, op, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return c.classifyStatus(op, resp.StatusCode)
}

func (c *httpClient) productPath(productID, resource string) string {
	return "/api/products/" + url.PathEscape(productID) + "/" + resource
}

func (c *httpClient) get(ctx context.Context, op, path string, out any) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint+path, nil)
	if err != nil {
		return NewError(KindFatal, op, err)
	}
	c.authorize(req)

	resp, err := c.http.Do(req)
	if err != nil {
		return NewError(KindTransient, op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return NewError(KindTransient, op, fmt.Errorf("reading response: %w", err))
	}

	if err := c.classifyStatus(op, resp.StatusCode); err != nil {
		return err
	}

	if err := json.Unmarshal(body, out); err != nil {
		return NewError(KindFatal, op, fmt.Errorf("decoding response: %w", err))
	}
	return nil
}

func (c *httpClient) authorize(req *http.Request) {
	if c.cfg.APIToken != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
	}
}

func (c *httpClient) classifyStatus(op string, status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusNotFound:
		return NewError(KindNotFound, op, fmt.Errorf("status %d", status))
	case status >= 500 || status == http.StatusTooManyRequests:
		return NewError(KindTransient, op, fmt.Errorf("status %d", status))
	default:
		return NewError(KindFatal, op, fmt.Errorf("status %d", status))
	}
}
