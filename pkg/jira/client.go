package jira

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"jiraminer/pkg/config"
	errs "jiraminer/pkg/errors"
	"jiraminer/pkg/logger"
)

// Client talks to a Jira-style REST API over HTTPS GET.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	fields     []string
	expand     string
	pageSize   int
	logger     logger.Logger
}

// NewClient creates a Jira API client from the pipeline configuration.
func NewClient(cfg *config.Config, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Scraper.RequestTimeout,
		},
		headers: map[string]string{
			"Accept":       "application/json",
			"Content-Type": "application/json",
			"User-Agent":   cfg.Jira.UserAgent,
		},
		baseURL:  cfg.Jira.BaseURL,
		fields:   cfg.Jira.Fields,
		expand:   cfg.Jira.Expand,
		pageSize: cfg.Scraper.PageSize,
		logger:   log,
	}
}

// SetHeader sets a custom header for the client.
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// PageSize returns the configured page size.
func (c *Client) PageSize() int {
	return c.pageSize
}

// SearchIssues fetches one page of issues for a project starting at the
// given zero-based offset. Errors are categorized: transport failures are
// network errors, a 429 is a rate-limit error, any other non-2xx status is a
// response error, and an undecodable or incomplete body is a parsing error.
func (c *Client) SearchIssues(ctx context.Context, projectKey string, startAt int) (*SearchResult, error) {
	url := SearchURL(c.baseURL, projectKey, c.fields, startAt, c.pageSize, c.expand)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeUnknown, 0, "failed to create request: %v", err)
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	c.logger.DebugWithFields("sending page request", map[string]interface{}{
		"project":  projectKey,
		"start_at": startAt,
		"url":      url,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("request cancelled: %w", ctx.Err())
		}
		c.logger.WarnWithFields("page request failed", map[string]interface{}{
			"project":  projectKey,
			"start_at": startAt,
			"error":    err.Error(),
			"duration": time.Since(start),
		})
		return nil, errs.New(errs.ErrorTypeNetwork, 0, "request failed: %v", err)
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("page request completed", map[string]interface{}{
		"project":  projectKey,
		"start_at": startAt,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if err := checkResponseStatus(resp); err != nil {
		return nil, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errs.New(errs.ErrorTypeNetwork, resp.StatusCode, "failed to read response body: %v", err)
	}

	var payload searchPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		preview := string(body)
		if len(preview) > 200 {
			preview = preview[:200] + "..."
		}
		c.logger.ErrorWithFields("failed to parse search response", map[string]interface{}{
			"project":      projectKey,
			"start_at":     startAt,
			"error":        err.Error(),
			"body_preview": preview,
		})
		return nil, errs.New(errs.ErrorTypeParsing, resp.StatusCode, "failed to parse search response: %v", err)
	}

	if payload.Total == nil {
		return nil, errs.New(errs.ErrorTypeParsing, resp.StatusCode, "search response missing total field")
	}
	if payload.Issues == nil {
		return nil, errs.New(errs.ErrorTypeParsing, resp.StatusCode, "search response missing issues field")
	}

	return &SearchResult{
		Total:  *payload.Total,
		Issues: payload.Issues,
	}, nil
}

// checkResponseStatus maps an HTTP status onto the error taxonomy.
func checkResponseStatus(resp *http.Response) error {
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return errs.New(errs.ErrorTypeRateLimit, resp.StatusCode, "rate limited by server")
	default:
		return errs.New(errs.ErrorTypeResponse, resp.StatusCode, "unexpected status %d", resp.StatusCode)
	}
}
