package telegram

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/riskibarqy/tennis-reminder/internal/platform/logging"
	"github.com/riskibarqy/tennis-reminder/internal/platform/resilience"
	"github.com/riskibarqy/tennis-reminder/internal/usecase"
)

const (
	DefaultBaseURL   = "https://api.telegram.org"
	DefaultParseMode = "Markdown"
)

var errTelegramTransient = crerr.New("telegram transient failure")

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Token          string
	ParseMode      string
	Timeout        time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client speaks the Bot API methods the reminder needs: sendMessage and
// getUpdates.
type Client struct {
	httpClient     *http.Client
	baseURL        string
	token          string
	parseMode      string
	timeout        time.Duration
	logger         *logging.Logger
	breaker        *resilience.CircuitBreaker
	circuitEnabled bool
}

type Chat struct {
	ID   int64  `json:"id"`
	Type string `json:"type"`
}

type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type Message struct {
	MessageID int64  `json:"message_id"`
	Chat      Chat   `json:"chat"`
	From      *User  `json:"from,omitempty"`
	Text      string `json:"text"`
}

type Update struct {
	UpdateID int64    `json:"update_id"`
	Message  *Message `json:"message,omitempty"`
}

type apiResponse[T any] struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
	Result      T      `json:"result"`
}

type sendMessageRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type getUpdatesRequest struct {
	Offset         int64    `json:"offset,omitempty"`
	Timeout        int      `json:"timeout"`
	AllowedUpdates []string `json:"allowed_updates"`
}

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		// Deadlines are per call so long polls can outlive the send timeout.
		httpClient = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	breakerCfg := resilience.NormalizeCircuitBreakerConfig(cfg.CircuitBreaker)

	return &Client{
		httpClient:     httpClient,
		baseURL:        baseURL,
		token:          strings.TrimSpace(cfg.Token),
		parseMode:      strings.TrimSpace(cfg.ParseMode),
		timeout:        timeout,
		logger:         logger,
		breaker:        resilience.NewCircuitBreaker("telegram", breakerCfg),
		circuitEnabled: breakerCfg.Enabled,
	}
}

// Send posts text to chat recipientID. When the formatted text is rejected
// as unparsable markup it is resent once as plain text.
func (c *Client) Send(ctx context.Context, recipientID, text string) error {
	recipientID = strings.TrimSpace(recipientID)
	if recipientID == "" {
		return fmt.Errorf("%w: recipient id is required", usecase.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: message text is required", usecase.ErrInvalidInput)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	payload := sendMessageRequest{ChatID: recipientID, Text: text, ParseMode: c.parseMode}
	var out apiResponse[Message]
	err := c.call(ctx, "sendMessage", payload, &out)
	if err != nil && payload.ParseMode != "" && isEntityParseError(err) {
		c.logger.WarnContext(ctx, "telegram rejected markup, resending as plain text", "chat_id", recipientID)
		payload.ParseMode = ""
		err = c.call(ctx, "sendMessage", payload, &out)
	}
	return err
}

// GetUpdates long-polls for message updates after offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64, wait time.Duration) ([]Update, error) {
	ctx, cancel := context.WithTimeout(ctx, wait+c.timeout)
	defer cancel()

	payload := getUpdatesRequest{
		Offset:         offset,
		Timeout:        int(wait.Seconds()),
		AllowedUpdates: []string{"message"},
	}
	var out apiResponse[[]Update]
	if err := c.call(ctx, "getUpdates", payload, &out); err != nil {
		return nil, err
	}
	return out.Result, nil
}

type apiError struct {
	Method      string
	Status      int
	Description string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("telegram %s status=%d: %s", e.Method, e.Status, e.Description)
}

func (c *Client) call(ctx context.Context, method string, payload any, target any) error {
	if c.token == "" {
		return fmt.Errorf("%w: telegram token is not configured", usecase.ErrDependencyUnavailable)
	}

	run := func() error {
		return c.execute(ctx, method, payload, target)
	}

	var err error
	if c.circuitEnabled {
		err = c.breaker.Execute(run, isTelegramCircuitFailure)
		if stderrors.Is(err, resilience.ErrCircuitOpen) {
			c.logger.WarnContext(ctx, "telegram circuit breaker rejected request", "method", method, "state", c.breaker.State())
			return fmt.Errorf("%w: telegram is temporarily unavailable", usecase.ErrDependencyUnavailable)
		}
	} else {
		err = run()
	}
	return err
}

func (c *Client) execute(ctx context.Context, method string, payload any, target any) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if err := sonic.ConfigDefault.NewEncoder(buf).Encode(payload); err != nil {
		return crerr.Wrapf(err, "encode %s payload", method)
	}

	endpoint := c.baseURL + "/bot" + c.token + "/" + method
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(buf.B))
	if err != nil {
		return crerr.Wrapf(err, "create %s request", method)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return crerr.Mark(fmt.Errorf("telegram %s: %s", method, c.redact(err.Error())), errTelegramTransient)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return crerr.Mark(fmt.Errorf("read telegram %s response: %w", method, err), errTelegramTransient)
	}

	if resp.StatusCode/100 != 2 {
		var failure apiResponse[any]
		_ = sonic.Unmarshal(raw, &failure)
		apiErr := &apiError{Method: method, Status: resp.StatusCode, Description: failure.Description}
		if apiErr.Description == "" {
			apiErr.Description = strings.TrimSpace(string(raw))
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError {
			return crerr.Mark(apiErr, errTelegramTransient)
		}
		return apiErr
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Wrapf(err, "decode telegram %s response", method)
	}
	return nil
}

func (c *Client) redact(value string) string {
	if c.token == "" {
		return value
	}
	return strings.ReplaceAll(value, c.token, "REDACTED")
}

func isTelegramCircuitFailure(err error) bool {
	if err == nil {
		return false
	}
	return crerr.Is(err, errTelegramTransient)
}

func isEntityParseError(err error) bool {
	var apiErr *apiError
	if !stderrors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusBadRequest && strings.Contains(strings.ToLower(apiErr.Description), "can't parse entities")
}

// ChatID renders a chat id the way recipients are stored.
func ChatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
