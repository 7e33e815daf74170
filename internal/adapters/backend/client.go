package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/okian/firmograph/internal/adapters/http/auth"
	"github.com/okian/firmograph/internal/domain/model"
	"github.com/okian/firmograph/pkg/logger"
	"github.com/okian/firmograph/pkg/metrics"
)

// Backend operations, relative to the base URL.
const (
	OpSearchCompanies   = "companies/search"
	OpGetCompany        = "companies/get"
	OpListPeers         = "companies/peers"
	OpListNews          = "companies/news"
	OpListJobPostings   = "companies/job-posts"
	OpListFundingRounds = "companies/funding-rounds"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultRetryMax     = 3
	defaultRetryWaitMin = 100 * time.Millisecond
	defaultRetryWaitMax = 2 * time.Second
	errorBodyLimit      = 512
)

// Client is the HTTP implementation of Backend. Each operation is a JSON POST
// of the typed query to <base>/<operation>; 5xx answers and transport errors
// are retried with backoff.
type Client struct {
	base         *url.URL
	retryMax     int
	retryWaitMin time.Duration
	retryWaitMax time.Duration
	timeout      time.Duration
	httpClient   *http.Client
	logger       logger.Logger

	rc *retryablehttp.Client
}

var _ Backend = (*Client)(nil)

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base url %q", ErrUnavailable, baseURL)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}

	c := &Client{
		base:         u,
		retryMax:     defaultRetryMax,
		retryWaitMin: defaultRetryWaitMin,
		retryWaitMax: defaultRetryWaitMax,
		timeout:      defaultTimeout,
		logger:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: c.timeout}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = c.httpClient
	rc.RetryMax = c.retryMax
	rc.RetryWaitMin = c.retryWaitMin
	rc.RetryWaitMax = c.retryWaitMax
	rc.Logger = leveledLogger{l: c.logger}
	c.rc = rc
	return c, nil
}

// SearchCompanies implements Backend.
func (c *Client) SearchCompanies(ctx context.Context, q model.SearchQuery) (model.CompaniesSearchResults, error) {
	var out model.CompaniesSearchResults
	err := c.call(ctx, OpSearchCompanies, q, &out)
	return out, err
}

// GetCompany implements Backend.
func (c *Client) GetCompany(ctx context.Context, id model.ObjectID) (model.Company, error) {
	var out model.Company
	err := c.call(ctx, OpGetCompany, struct {
		ID model.ObjectID `json:"id"`
	}{ID: id}, &out)
	return out, err
}

// ListPeers implements Backend.
func (c *Client) ListPeers(ctx context.Context, q model.PeersQuery) (model.CompanyPeers, error) {
	var out model.CompanyPeers
	err := c.call(ctx, OpListPeers, q, &out)
	return out, err
}

// ListNews implements Backend.
func (c *Client) ListNews(ctx context.Context, q model.FeedQuery) (model.NewsArticles, error) {
	var out model.NewsArticles
	err := c.call(ctx, OpListNews, q, &out)
	return out, err
}

// ListJobPostings implements Backend.
func (c *Client) ListJobPostings(ctx context.Context, q model.FeedQuery) (model.JobPostings, error) {
	var out model.JobPostings
	err := c.call(ctx, OpListJobPostings, q, &out)
	return out, err
}

// ListFundingRounds implements Backend.
func (c *Client) ListFundingRounds(ctx context.Context, q model.FeedQuery) (model.FundingRounds, error) {
	var out model.FundingRounds
	err := c.call(ctx, OpListFundingRounds, q, &out)
	return out, err
}

func (c *Client) endpoint(op string) string {
	return c.base.ResolveReference(&url.URL{Path: op}).String()
}

func (c *Client) call(ctx context.Context, op string, in, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RecordBackendCall(op, outcome(err), float64(time.Since(start).Milliseconds()))
		if err != nil && !errors.Is(err, ErrNotFound) {
			c.logger.Warn(ctx, "backend call failed", logger.String("operation", op), logger.Error(err))
		}
	}()

	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("%w: %s: encode: %w", ErrUpstream, op, err)
	}
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(op), body)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token, ok := auth.TokenFromContext(ctx); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.rc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, op)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
		return fmt.Errorf("%w: %s: status %d: %s", ErrUpstream, op, resp.StatusCode, bytes.TrimSpace(snippet))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %s: decode: %w", ErrUpstream, op, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	default:
		return "upstream_error"
	}
}

// leveledLogger adapts logger.Logger to retryablehttp.LeveledLogger.
type leveledLogger struct {
	l logger.Logger
}

func (a leveledLogger) Error(msg string, kv ...interface{}) {
	a.l.Error(context.Background(), msg, pairs(kv)...)
}

func (a leveledLogger) Info(msg string, kv ...interface{}) {
	a.l.Info(context.Background(), msg, pairs(kv)...)
}

func (a leveledLogger) Debug(msg string, kv ...interface{}) {
	a.l.Debug(context.Background(), msg, pairs(kv)...)
}

func (a leveledLogger) Warn(msg string, kv ...interface{}) {
	a.l.Warn(context.Background(), msg, pairs(kv)...)
}

func pairs(kv []interface{}) []logger.Field {
	fields := make([]logger.Field, 0, len(kv)/2+1)
	for i := 0; i < len(kv); i += 2 {
		key := fmt.Sprint(kv[i])
		if i+1 == len(kv) {
			fields = append(fields, logger.Any("extra", kv[i]))
			break
		}
		fields = append(fields, logger.Any(key, kv[i+1]))
	}
	return fields
}
