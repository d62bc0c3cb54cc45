// Package supabase talks to a hosted Supabase project: PostgREST for table
// access and GoTrue for authentication.
package supabase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/competition-manager/internal/platform/logging"
	"github.com/riskibarqy/competition-manager/internal/platform/resilience"
	"github.com/riskibarqy/competition-manager/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const defaultMaxResponseBytes = 16 << 20

var (
	errSupabaseUnavailable = crerr.New("supabase unavailable")
	errResponseTooLarge    = crerr.New("supabase response too large")
)

// TokenSource supplies the access token of the signed-in user, honoring a
// session pinned to ctx.
type TokenSource interface {
	AccessToken(ctx context.Context) string
}

type ClientConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	AnonKey    string
	// Timeout of zero leaves the transport default in place.
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
	// MaxResponseBytes bounds a response body. Zero means 16 MiB.
	MaxResponseBytes int64
}

type client struct {
	httpClient *http.Client
	baseURL    string
	anonKey    string
	logger     *logging.Logger
	breaker    *resilience.CircuitBreaker
	flight     resilience.Group[[]byte]
	maxBody    int64
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	token  string
	prefer string
}

func newClient(cfg ClientConfig) (*client, error) {
	baseURL, err := validateHTTPBaseURL(cfg.BaseURL)
	if err != nil {
		return nil, crerr.Wrap(err, "invalid SUPABASE_URL")
	}
	anonKey := strings.TrimSpace(cfg.AnonKey)
	if anonKey == "" {
		return nil, crerr.New("supabase anon key is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	maxBody := cfg.MaxResponseBytes
	if maxBody <= 0 {
		maxBody = defaultMaxResponseBytes
	}

	logger = logger.Named("supabase")
	breaker := resilience.NewFromConfig(cfg.CircuitBreaker).
		WithFailurePredicate(isUnavailable).
		OnStateChange(func(from, to resilience.CircuitState) {
			logger.Warn("supabase circuit breaker state changed", "from", from, "to", to)
		})

	return &client{
		httpClient: httpClient,
		baseURL:    baseURL,
		anonKey:    anonKey,
		logger:     logger,
		breaker:    breaker,
		maxBody:    maxBody,
	}, nil
}

func (c *client) do(ctx context.Context, req request) ([]byte, error) {
	var raw []byte
	err := c.breaker.Execute(func() error {
		var callErr error
		raw, callErr = c.execute(ctx, req)
		return callErr
	})
	if errors.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "supabase circuit breaker rejected request", "state", c.breaker.State(), "path", req.path)
		return nil, fmt.Errorf("%w: remote data store is temporarily unavailable", usecase.ErrDependencyUnavailable)
	}
	return raw, err
}

func (c *client) execute(ctx context.Context, req request) ([]byte, error) {
	fullURL := c.baseURL + req.path
	if encoded := req.query.Encode(); encoded != "" {
		fullURL += "?" + encoded
	}

	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	var body io.Reader
	if req.body != nil {
		if err := sonic.ConfigDefault.NewEncoder(buf).Encode(req.body); err != nil {
			return nil, crerr.Wrap(err, "encode supabase request body")
		}
		body = bytes.NewReader(buf.B)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, fullURL, body)
	if err != nil {
		return nil, crerr.Wrap(err, "create supabase request")
	}
	token := req.token
	if token == "" {
		token = c.anonKey
	}
	httpReq.Header.Set("apikey", c.anonKey)
	httpReq.Header.Set("Authorization", "Bearer "+token)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if req.prefer != "" {
		httpReq.Header.Set("Prefer", req.prefer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("%s %s: %w", req.method, req.path, ctx.Err())
		}
		c.logger.WarnContext(ctx, "supabase request failed", "method", req.method, "path", req.path, "error", err)
		return nil, fmt.Errorf("%w: %w: %s %s: %v", usecase.ErrDependencyUnavailable, errSupabaseUnavailable, req.method, req.path, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, fmt.Errorf("%s %s: read response body: %w", req.method, req.path, ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w: read response body: %v", usecase.ErrDependencyUnavailable, errSupabaseUnavailable, err)
	}
	if int64(len(raw)) > c.maxBody {
		c.logger.WarnContext(ctx, "supabase response exceeds limit", "method", req.method, "path", req.path, "limit_bytes", c.maxBody)
		return nil, fmt.Errorf("%w: %w: %s %s: body exceeds %d bytes", usecase.ErrDependencyUnavailable, errResponseTooLarge, req.method, req.path, c.maxBody)
	}
	if resp.StatusCode/100 == 2 {
		return raw, nil
	}

	message := errorMessage(raw, resp.StatusCode)
	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: %s", usecase.ErrUnauthorized, message)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		c.logger.WarnContext(ctx, "supabase request non-2xx", "method", req.method, "path", req.path, "status_code", resp.StatusCode)
		return nil, fmt.Errorf("%w: %w: status=%d: %s", usecase.ErrDependencyUnavailable, errSupabaseUnavailable, resp.StatusCode, message)
	default:
		return nil, fmt.Errorf("%w: %s", usecase.ErrInvalidInput, message)
	}
}

func isUnavailable(err error) bool {
	return errors.Is(err, errSupabaseUnavailable)
}

// errorMessage picks the human-readable message out of a PostgREST or GoTrue error body.
func errorMessage(raw []byte, status int) string {
	var payload map[string]any
	if err := sonic.Unmarshal(raw, &payload); err == nil {
		for _, key := range []string{"message", "error_description", "msg", "error"} {
			if v, ok := payload[key].(string); ok && strings.TrimSpace(v) != "" {
				return strings.TrimSpace(v)
			}
		}
	}
	if text := strings.TrimSpace(string(raw)); text != "" {
		if len(text) > 512 {
			text = text[:512]
		}
		return text
	}
	return http.StatusText(status)
}

func validateHTTPBaseURL(raw string) (string, error) {
	candidate := strings.TrimSpace(raw)
	if candidate == "" {
		return "", crerr.New("value is empty")
	}

	parsed, err := url.Parse(candidate)
	if err != nil {
		return "", crerr.Wrapf(err, "parse %q", candidate)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", crerr.Newf("%q uses unsupported scheme=%q; expected http or https", candidate, parsed.Scheme)
	}
	if strings.TrimSpace(parsed.Host) == "" {
		return "", crerr.Newf("%q has empty host", candidate)
	}

	return strings.TrimRight(candidate, "/"), nil
}
