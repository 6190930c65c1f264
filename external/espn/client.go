package espn

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/fasthttp"

	"github.com/riskibarqy/tennis-reminder/internal/domain/scoreboard"
	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/riskibarqy/tennis-reminder/internal/platform/resilience"
	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

const (
	DefaultUserAgent = "Mozilla/5.0"
	DefaultTimeout   = 10 * time.Second

	maxBodySize = 6 << 20
)

var errFeedTransient = crerr.New("scoreboard feed transient failure")

// SourceError is a failure of one source. It matches
// usecase.ErrDependencyUnavailable as well as the underlying cause.
type SourceError struct {
	Source string
	Err    error
}

func (e *SourceError) Error() string {
	return fmt.Sprintf("scoreboard source %s: %v", e.Source, e.Err)
}

func (e *SourceError) Unwrap() []error {
	return []error{usecase.ErrDependencyUnavailable, e.Err}
}

type ClientConfig struct {
	HTTPClient     *fasthttp.Client
	Source         string
	URL            string
	UserAgent      string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client fetches one scoreboard feed.
type Client struct {
	httpClient     *fasthttp.Client
	source         string
	url            string
	userAgent      string
	timeout        time.Duration
	maxRetries     int
	retryBackoff   time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:                DefaultUserAgent,
			ReadTimeout:         timeout,
			WriteTimeout:        timeout,
			MaxResponseBodySize: maxBodySize,
		}
	}

	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	retryBackoff := cfg.RetryBackoff
	if retryBackoff <= 0 {
		retryBackoff = time.Second
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		source:         strings.TrimSpace(cfg.Source),
		url:            strings.TrimSpace(cfg.URL),
		userAgent:      userAgent,
		timeout:        timeout,
		maxRetries:     max(cfg.MaxRetries, 0),
		retryBackoff:   retryBackoff,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker("feed-"+strings.ToLower(cfg.Source), breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

func (c *Client) Source() string {
	return c.source
}

// FetchScoreboard downloads and decodes the feed. Every failure is returned
// as a *SourceError.
func (c *Client) FetchScoreboard(ctx context.Context) (scoreboard.Document, error) {
	if c.url == "" {
		return scoreboard.Document{}, c.sourceError(fmt.Errorf("feed url is not configured"))
	}

	var raw []byte
	fetch := func() error {
		body, err := c.executeRequest(ctx)
		raw = body
		return err
	}

	var err error
	if c.circuitEnabled {
		err = c.breaker.Execute(fetch, isFeedCircuitFailure)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "scoreboard circuit breaker rejected request", "source", c.source, "state", c.breaker.State())
		}
	} else {
		err = fetch()
	}
	if err != nil {
		return scoreboard.Document{}, c.sourceError(err)
	}

	var doc scoreboard.Document
	if err := sonic.Unmarshal(raw, &doc); err != nil {
		return scoreboard.Document{}, c.sourceError(fmt.Errorf("decode scoreboard payload: %w", err))
	}
	doc.Source = c.source

	return doc, nil
}

func (c *Client) executeRequest(ctx context.Context) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw, status, err := c.do(ctx)
		switch {
		case err != nil:
			lastErr = crerr.Mark(fmt.Errorf("send request: %w", err), errFeedTransient)
		case status >= 200 && status < 300:
			return raw, nil
		case isRetryableStatus(status):
			lastErr = crerr.Mark(fmt.Errorf("feed status=%d body=%s", status, abbreviateBody(raw)), errFeedTransient)
		default:
			return nil, fmt.Errorf("feed status=%d body=%s", status, abbreviateBody(raw))
		}

		if attempt == c.maxRetries {
			break
		}
		backoff := time.Duration(attempt+1) * c.retryBackoff
		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	if lastErr == nil {
		lastErr = fmt.Errorf("feed request failed")
	}
	c.logger.WarnContext(ctx, "scoreboard request failed", "source", c.source, "url", c.url, "error", lastErr)
	return nil, lastErr
}

func (c *Client) do(ctx context.Context) ([]byte, int, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(c.userAgent)
	req.Header.Set(fasthttp.HeaderAccept, "application/json")

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if timeout <= 0 {
		return nil, 0, context.DeadlineExceeded
	}

	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		return nil, 0, err
	}

	body := append([]byte(nil), resp.Body()...)
	return body, resp.StatusCode(), nil
}

func (c *Client) sourceError(err error) error {
	return &SourceError{Source: c.source, Err: err}
}

func isFeedCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errFeedTransient)
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= 240 {
		return text
	}
	return text[:240] + "..."
}
