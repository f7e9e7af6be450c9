package tfl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/danpilch/journeypal/internal/api/resilience"
)

const (
	DefaultBaseURL   = "https://api.tfl.gov.uk"
	DefaultUserAgent = "journeypal/1.0"
)

// HTTPDoer executes HTTP requests.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Config holds configuration for the TfL client.
type Config struct {
	BaseURL   string
	AppKey    string
	UserAgent string

	Timeout               time.Duration
	MaxRetries            uint64
	CircuitBreakerTimeout time.Duration

	// HTTPClient overrides the resilient, traced default.
	HTTPClient HTTPDoer
}

// Client is a TfL Unified API client. It is safe for concurrent use.
type Client struct {
	baseURL    *url.URL
	appKey     string
	userAgent  string
	httpClient HTTPDoer
}

// NewClient creates a new TfL client.
func NewClient(cfg Config) (*Client, error) {
	rawBase := cfg.BaseURL
	if rawBase == "" {
		rawBase = DefaultBaseURL
	}
	base, err := url.Parse(rawBase)
	if err != nil {
		return nil, fmt.Errorf("parsing base url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", rawBase)
	}

	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		clientCfg := resilience.DefaultClientConfig("tfl")
		clientCfg.Transport = otelhttp.NewTransport(http.DefaultTransport)
		clientCfg.MaxRetries = cfg.MaxRetries
		if cfg.Timeout > 0 {
			clientCfg.Timeout = cfg.Timeout
		}
		if cfg.CircuitBreakerTimeout > 0 {
			clientCfg.CircuitBreaker.Timeout = cfg.CircuitBreakerTimeout
		}
		httpClient = resilience.NewClient(clientCfg)
	}

	return &Client{
		baseURL:    base,
		appKey:     cfg.AppKey,
		userAgent:  userAgent,
		httpClient: httpClient,
	}, nil
}

// Fetch issues a GET for requestPath (path plus query string) and returns the
// status and full body without interpreting either.
func (c *Client) Fetch(ctx context.Context, requestPath string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(requestPath), http.NoBody)
	if err != nil {
		return 0, nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("reading response body: %w", err)
	}

	return resp.StatusCode, body, nil
}

// resolve joins the base URL and a request path. Path and query are kept as
// given except for bytes that cannot appear in a request line.
func (c *Client) resolve(requestPath string) string {
	path, query, _ := strings.Cut(requestPath, "?")

	if c.appKey != "" {
		if query != "" {
			query += "&"
		}
		query += "app_key=" + url.QueryEscape(c.appKey)
	}

	u := *c.baseURL
	basePath := strings.TrimSuffix(u.EscapedPath(), "/")
	if unescaped, err := url.PathUnescape(basePath + path); err == nil {
		u.Path = unescaped
		u.RawPath = basePath + path
	} else {
		u.Path = strings.TrimSuffix(u.Path, "/") + path
		u.RawPath = ""
	}
	u.RawQuery = escapeUnsafe(query)
	u.Fragment = ""
	return u.String()
}

// escapeUnsafe percent-encodes spaces, control bytes, non-ASCII and '#'
// while leaving separators and existing escapes alone.
func escapeUnsafe(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch <= ' ' || ch >= 0x7f || ch == '#' || ch == '"' || ch == '<' || ch == '>' {
			b.WriteByte('%')
			b.WriteByte(hex[ch>>4])
			b.WriteByte(hex[ch&0x0f])
			continue
		}
		b.WriteByte(ch)
	}
	return b.String()
}
