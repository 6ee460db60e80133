// Package httpclient is the concrete HTTP transport behind the traversal
// client: a JSON REST client with exponential backoff on transport-level
// failures. HTTP error statuses are reported to the caller as
// UnexpectedStatusError values, never retried here.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/graftdb/graft-go/pkg/logger"
)

const backOffMaxDuration = 3 * time.Second

// Client issues JSON requests against one server, addressed by paths
// relative to its API root. It is safe for concurrent use.
type Client struct {
	base       *url.URL
	httpClient *http.Client
	logger     logger.Logger
	maxElapsed time.Duration
}

// Option configures a Client during construction.
type Option func(*Client)

// WithHTTPClient replaces the underlying net/http client.
func WithHTTPClient(c *http.Client) Option {
	return func(client *Client) {
		client.httpClient = c
	}
}

// WithLogger sets the logger used for request-level debug logging.
func WithLogger(l logger.Logger) Option {
	return func(client *Client) {
		client.logger = l
	}
}

// WithTracing wraps the underlying transport with otelhttp so every
// request emits a client span.
func WithTracing() Option {
	return func(client *Client) {
		transport := client.httpClient.Transport
		if transport == nil {
			transport = http.DefaultTransport
		}
		client.httpClient.Transport = otelhttp.NewTransport(transport)
	}
}

// WithBackoffMaxElapsed bounds how long transport-level failures are
// retried before giving up.
func WithBackoffMaxElapsed(d time.Duration) Option {
	return func(client *Client) {
		client.maxElapsed = d
	}
}

// NewClient builds a transport rooted at apiURL, e.g. "http://localhost:7474/db/data".
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(apiURL)
	if err != nil {
		return nil, fmt.Errorf("parsing api url %q: %w", apiURL, err)
	}

	client := &Client{
		base:       base,
		httpClient: &http.Client{},
		logger:     logger.NewNoopLogger(),
		maxElapsed: backOffMaxDuration,
	}
	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// CreateWithBody POSTs a JSON body and decodes the response as a JSON
// array. A 204 response decodes as an empty list.
func (c *Client) CreateWithBody(ctx context.Context, path string, body any) ([]json.RawMessage, error) {
	list, _, _, err := c.do(ctx, http.MethodPost, path, body)
	return list, err
}

// CreateWithBodyAndHeaders is CreateWithBody, additionally exposing the
// response headers so callers can read location-style metadata.
func (c *Client) CreateWithBodyAndHeaders(ctx context.Context, path string, body any) ([]json.RawMessage, http.Header, error) {
	list, headers, _, err := c.do(ctx, http.MethodPost, path, body)
	return list, headers, err
}

// Retrieve GETs a path and decodes the response as a JSON array. The
// second return value is false when the server has no data for the path
// (204, or 404 against an expired or exhausted resource).
func (c *Client) Retrieve(ctx context.Context, path string) ([]json.RawMessage, bool, error) {
	list, _, status, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		var statusErr *UnexpectedStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	if status == http.StatusNoContent {
		return nil, false, nil
	}
	return list, true, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any) ([]json.RawMessage, http.Header, int, error) {
	target := c.resolve(path)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, nil, 0, fmt.Errorf("encoding request body: %w", err)
		}
	}

	requestID := uuid.NewString()
	start := time.Now()

	var resp *http.Response
	var respBody []byte

	backoffPolicy := backoff.NewExponentialBackOff()
	backoffPolicy.MaxElapsedTime = c.maxElapsed

	err := backoff.Retry(
		func() error {
			req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
			if err != nil {
				return backoff.Permanent(err)
			}
			req.Header.Set("Accept", "application/json")
			req.Header.Set("X-Request-Id", requestID)
			if body != nil {
				req.Header.Set("Content-Type", "application/json")
			}

			resp, respBody, err = c.roundTrip(req)
			if err != nil {
				return err
			}

			return nil
		},
		backoff.WithContext(backoffPolicy, ctx),
	)

	// All retries failed
	if err != nil {
		requestsTotal.WithLabelValues(method, "error").Inc()
		return nil, nil, 0, err
	}

	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()
	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())

	c.logger.Debug("request completed",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.String("request_id", requestID),
	)

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, 0, &UnexpectedStatusError{
			StatusCode: resp.StatusCode,
			Path:       path,
			Message:    gjson.GetBytes(respBody, "message").String(),
		}
	}

	if resp.StatusCode == http.StatusNoContent || len(respBody) == 0 {
		return nil, resp.Header, resp.StatusCode, nil
	}

	var list []json.RawMessage
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, nil, 0, fmt.Errorf("decoding response for %s %s: %w", method, path, err)
	}

	return list, resp.Header, resp.StatusCode, nil
}

func (c *Client) roundTrip(req *http.Request) (*http.Response, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, err
	}

	return resp, body, nil
}

func (c *Client) resolve(path string) string {
	base := strings.TrimSuffix(c.base.String(), "/")
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}
