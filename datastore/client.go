package datastore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Operation names used in errors.
const (
	opGet    = "get"
	opUpdate = "update"
	opStatus = "status poll"
)

// maxErrorBody caps how much of an error response body is included in
// error messages.
const maxErrorBody = 8 << 10

// Client is a Voids Datastore API client. It is safe for concurrent use.
type Client struct {
	httpClient     *http.Client
	base           string
	apiKey         string
	requestTimeout time.Duration
	poll           PollPolicy
	logger         *slog.Logger
}

// New returns a new Client. It fails with ErrAPIKeyMissing if cfg.APIKey is
// empty; no credential lookup or network activity happens here.
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrAPIKeyMissing
	}

	base := cfg.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", base, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", base)
	}

	requestTimeout := cfg.RequestTimeout
	if requestTimeout <= 0 {
		requestTimeout = DefaultRequestTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Client{
		httpClient:     httpClient,
		base:           base,
		apiKey:         cfg.APIKey,
		requestTimeout: requestTimeout,
		poll:           cfg.Poll.withDefaults(),
		logger:         logger,
	}, nil
}

// Get retrieves the value of a key. If the service defers the read, Get
// polls until the value is ready, the polling policy times out, or ctx is
// canceled.
func (c *Client) Get(ctx context.Context, namespace, key string, opts ...RequestOption) (Value, error) {
	return c.do(ctx, http.MethodGet, namespace, key, nil, "", opts)
}

// Update stores a new value for a key. Maps, slices, structs and
// json.RawMessage values are sent as JSON; strings, numbers and booleans as
// plain text; nil as a JSON null, which deletes the key. If the service
// defers the write, Update polls until it completes, the polling policy
// times out, or ctx is canceled.
func (c *Client) Update(ctx context.Context, namespace, key string, value any, opts ...RequestOption) (Value, error) {
	body, contentType, err := encodePayload(value)
	if err != nil {
		return Value{}, &Error{Op: opUpdate, Message: err.Error(), Err: err}
	}
	return c.do(ctx, http.MethodPost, namespace, key, body, contentType, opts)
}

// Delete removes a key by storing a JSON null.
func (c *Client) Delete(ctx context.Context, namespace, key string, opts ...RequestOption) (Value, error) {
	return c.Update(ctx, namespace, key, nil, opts...)
}

func (c *Client) do(ctx context.Context, method, namespace, key string, body []byte, contentType string, opts []RequestOption) (Value, error) {
	op := opGet
	if method == http.MethodPost {
		op = opUpdate
	}

	u := c.keyURL(namespace, key)
	status, raw, _, err := c.roundTrip(ctx, method, u, body, contentType, c.requestTimeout)
	if err != nil {
		return Value{}, &Error{Op: op, Err: err}
	}

	switch status {
	case http.StatusOK:
		return NewValue(raw), nil
	case http.StatusAccepted:
		id, err := requestID(raw)
		if err != nil {
			return Value{}, &Error{Op: op, Message: err.Error(), Err: err}
		}

		pol := c.poll
		for _, opt := range opts {
			opt(&pol)
		}

		c.logger.Debug("request deferred", "op", op, "request_id", id)

		return c.pollStatus(ctx, id, pol.withDefaults())
	default:
		return Value{}, &Error{Op: op, StatusCode: status, Message: errorMessage(raw)}
	}
}

// roundTrip sends a single request and reads its full body. The request is
// bounded by timeout in addition to any deadline already on ctx.
func (c *Client) roundTrip(ctx context.Context, method, url string, body []byte, contentType string, timeout time.Duration) (int, []byte, http.Header, error) {
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var br io.Reader
	if body != nil {
		br = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, br)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed creating request: %w", err)
	}
	req.Header.Set("Authorization", c.apiKey)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	c.logger.Debug("sending request", "method", method, "url", url)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, nil, fmt.Errorf("failed reading response body: %w", err)
	}

	return resp.StatusCode, raw, resp.Header, nil
}

func (c *Client) keyURL(namespace, key string) string {
	return c.base + "key/" + url.PathEscape(namespace) + "/" + url.PathEscape(key)
}

func (c *Client) statusURL(requestID string) string {
	return c.base + "status/" + url.PathEscape(requestID)
}

// requestID extracts the request id from a 202 response body. Both the
// requestId and request_id spellings are accepted.
func requestID(body []byte) (string, error) {
	var ack struct {
		RequestID       string `json:"requestId"`
		RequestIDLegacy string `json:"request_id"`
	}
	if err := json.Unmarshal(body, &ack); err != nil {
		return "", fmt.Errorf("deferred response is not valid JSON: %w", err)
	}

	id := ack.RequestID
	if id == "" {
		id = ack.RequestIDLegacy
	}
	if id == "" {
		return "", fmt.Errorf("deferred response carries no request id")
	}

	return id, nil
}

// errorMessage extracts a human-readable message from an error response
// body, preferring the JSON error and message fields over the raw text.
func errorMessage(body []byte) string {
	if len(body) > maxErrorBody {
		body = body[:maxErrorBody]
	}

	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &apiErr); err == nil {
		if apiErr.Error != "" {
			return apiErr.Error
		}
		if apiErr.Message != "" {
			return apiErr.Message
		}
	}

	return strings.TrimSpace(string(body))
}
