// AngelaMos | 2026
// client.go

package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/carterperez-dev/talentmarket/internal/config"
)

const (
	tracerName = "talentmarket/apiclient"

	IdempotencyKeyHeader = "Idempotency-Key"

	maxErrorBody = 64 << 10
)

// ErrTransport marks failures where no server answer was received.
var ErrTransport = errors.New("transport failure")

// APIError is a non 2xx answer. Message is the server text, unmodified.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func (e *APIError) IsPaymentProvider() bool {
	return e.Code == "PAYMENT_PROVIDER_ERROR"
}

// AsAPIError unwraps err to an *APIError.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type Client struct {
	baseURL    *url.URL
	http       *http.Client
	token      string
	propagator propagation.TextMapPropagator
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The client keeps its own cookie jar
// unless the given client already has one.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc.Jar == nil {
			hc.Jar = c.http.Jar
		}
		c.http = hc
	}
}

func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

func New(cfg *config.ClientConfig, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}

	c := &Client{
		baseURL:    base,
		http:       &http.Client{Timeout: cfg.Timeout, Jar: jar},
		token:      cfg.Token,
		propagator: otel.GetTextMapPropagator(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

type requestOptions struct {
	idempotencyKey string
}

type RequestOption func(*requestOptions)

func WithIdempotencyKey(key string) RequestOption {
	return func(o *requestOptions) {
		o.idempotencyKey = key
	}
}

// Do sends one JSON request. On a 2xx answer the envelope data is decoded
// into out when out is non nil.
func (c *Client) Do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body, out any,
	opts ...RequestOption,
) error {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}

	ctx, span := otel.Tracer(tracerName).Start(ctx, method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}
	if ro.idempotencyKey != "" {
		req.Header.Set(IdempotencyKeyHeader, ro.idempotencyKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "transport")
		return fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	span.SetAttributes(attribute.Int("http.response.status_code", resp.StatusCode))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		span.SetStatus(codes.Error, apiErr.Code)
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: decode %s %s: %w", ErrTransport, method, path, err)
	}

	if len(env.Data) == 0 || string(env.Data) == "null" {
		return nil
	}

	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}

	return nil
}

func (c *Client) newRequest(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
) (*http.Request, error) {
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))

	return req, nil
}

func decodeError(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Code:       "HTTP_" + strconv.Itoa(resp.StatusCode),
		Message:    http.StatusText(resp.StatusCode),
	}

	var env envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxErrorBody)).Decode(&env); err != nil {
		return apiErr
	}

	if env.Error != nil {
		if env.Error.Code != "" {
			apiErr.Code = env.Error.Code
		}
		if env.Error.Message != "" {
			apiErr.Message = env.Error.Message
		}
	}

	return apiErr
}
