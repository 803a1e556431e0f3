package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"pixbot/internal/logger"
	"pixbot/internal/metrics"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const defaultTimeout = 30 * time.Second

// Poster is the outbound HTTP capability provider adapters depend on.
type Poster interface {
	Post(ctx context.Context, url string, body any, opts Options) (*Response, error)
}

type Options struct {
	Headers map[string]string
	Timeout time.Duration
}

type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker
	stats      metrics.Outbound
}

type ClientOption func(*Client)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithRateLimit throttles outbound calls. A non-positive limit disables it.
func WithRateLimit(limit float64, burst int) ClientOption {
	return func(c *Client) {
		if limit <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(limit), burst)
	}
}

// WithBreaker opens the circuit after the given number of consecutive
// network or 5xx failures and keeps it open for cooldown. Zero failures
// disables it.
func WithBreaker(name string, failures uint32, cooldown time.Duration) ClientOption {
	return func(c *Client) {
		if failures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= failures
			},
			IsSuccessful: countsAsSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.L().Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		})
	}
}

func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Post sends body as JSON. A 2xx answer returns the decoded response; any
// other outcome returns a *Error.
func (c *Client) Post(ctx context.Context, url string, body any, opts Options) (*Response, error) {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			c.stats.Rejected.Inc()
			return nil, &Error{Err: fmt.Errorf("rate limiter: %w", err)}
		}
	}

	if c.breaker == nil {
		return c.do(ctx, url, body, opts.Headers)
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, url, body, opts.Headers)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			c.stats.Rejected.Inc()
			return nil, &Error{Err: fmt.Errorf("circuit breaker %s: %w", c.breaker.Name(), err)}
		}
		return nil, err
	}
	return out.(*Response), nil
}

// Stats reports the calls made through this client so far.
func (c *Client) Stats() metrics.OutboundSnapshot {
	return c.stats.Snapshot()
}

func (c *Client) do(ctx context.Context, url string, body any, headers map[string]string) (*Response, error) {
	log := logger.FromCtx(ctx, zap.String("url", url))

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &Error{Err: fmt.Errorf("marshal request body: %w", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.stats.Requests.Inc()
	timer := metrics.StartTimer()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.stats.Failures.Inc()
		log.Warn("http request failed", zap.Error(err), zap.Duration("elapsed", timer.Elapsed()))
		return nil, &Error{RequestSent: true, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.stats.Failures.Inc()
		return nil, &Error{RequestSent: true, Err: fmt.Errorf("read response body: %w", err)}
	}

	out := &Response{
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
		Header:     resp.Header,
		Data:       decodeBody(raw),
		Body:       raw,
	}

	log.Debug("http request done",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", timer.Elapsed()),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.stats.Failures.Inc()
		return nil, &Error{Response: out}
	}
	return out, nil
}

func decodeBody(raw []byte) any {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return string(raw)
	}
	return v
}

// statusText strips the numeric prefix net/http keeps in resp.Status.
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

func countsAsSuccess(err error) bool {
	if err == nil {
		return true
	}
	var terr *Error
	if errors.As(err, &terr) && terr.Response != nil {
		return terr.Response.Status < http.StatusInternalServerError
	}
	return false
}
