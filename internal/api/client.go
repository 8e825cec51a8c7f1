// Package api is the HTTP client for the portfolio REST backend and the
// per-resource services built on it.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/Zachkp/portfolio-admin/internal/metrics"
)

const maxResponseBytes = 8 << 20

// Options configures a Client.
type Options struct {
	BaseURL     string
	Timeout     time.Duration
	RateLimit   float64
	RetryDelays []time.Duration
	Metrics     *metrics.Metrics
	HTTPClient  *http.Client
}

// Client talks JSON to the portfolio API. Copies made with WithToken share
// the transport, rate limiter and circuit breaker.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	delays  []time.Duration
	metrics *metrics.Metrics

	token          string
	onUnauthorized func()
}

func New(opts Options) *Client {
	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	limit := rate.Limit(opts.RateLimit)
	if opts.RateLimit <= 0 {
		limit = rate.Inf
	}
	burst := int(opts.RateLimit)
	if burst < 1 {
		burst = 1
	}

	c := &Client{
		baseURL: opts.BaseURL,
		http:    hc,
		limiter: rate.NewLimiter(limit, burst),
		delays:  opts.RetryDelays,
		metrics: opts.Metrics,
	}

	st := gobreaker.Settings{Name: "portfolio-api"}
	st.Interval = 60 * time.Second
	st.Timeout = 30 * time.Second
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 5
	}
	st.IsSuccessful = func(err error) bool {
		var apiErr *Error
		if errors.As(err, &apiErr) {
			return apiErr.Status < http.StatusInternalServerError
		}
		return err == nil || errors.Is(err, context.Canceled) || isLocal(err)
	}
	st.OnStateChange = func(name string, from, to gobreaker.State) {
		log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
		c.metrics.SetBreakerState(name, int(to))
	}
	c.breaker = gobreaker.NewCircuitBreaker(st)
	return c
}

// WithToken returns a copy of c that authenticates as token. onUnauthorized
// runs whenever the backend rejects the token.
func (c *Client) WithToken(token string, onUnauthorized func()) *Client {
	cp := *c
	cp.token = token
	cp.onUnauthorized = onUnauthorized
	return &cp
}

func (c *Client) get(ctx context.Context, route, path string, out any) error {
	if len(c.delays) == 0 {
		return c.exchange(ctx, route, http.MethodGet, path, nil, "", out)
	}
	return retry.Do(
		func() error {
			return c.exchange(ctx, route, http.MethodGet, path, nil, "", out)
		},
		retry.Context(ctx),
		retry.Attempts(uint(len(c.delays)+1)),
		retry.DelayType(func(n uint, _ error, _ *retry.Config) time.Duration {
			return c.delays[min(int(n), len(c.delays)-1)]
		}),
		retry.RetryIf(func(err error) bool {
			return ctx.Err() == nil && retryable(err)
		}),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Debug().Str("route", route).Uint("attempt", n+1).Err(err).Msg("retrying backend read")
		}),
	)
}

func (c *Client) sendJSON(ctx context.Context, route, method, path string, in, out any) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return local("encode %s request: %w", route, err)
		}
	}
	return c.exchange(ctx, route, method, path, payload, "application/json", out)
}

func (c *Client) exchange(ctx context.Context, route, method, path string, payload []byte, contentType string, out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.send(ctx, route, method, path, payload, contentType, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s %s: %w", method, path, ErrUnavailable)
	}
	return err
}

func (c *Client) send(ctx context.Context, route, method, path string, payload []byte, contentType string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return local("rate limit %s: %w", route, err)
	}

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return local("build %s request: %w", route, err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(route, 0, time.Since(start))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.metrics.ObserveRequest(route, resp.StatusCode, time.Since(start))
	log.Debug().Str("route", route).Str("method", method).Int("status", resp.StatusCode).Dur("took", time.Since(start)).Msg("backend request")
	if err != nil {
		return fmt.Errorf("read %s response: %w", route, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized()
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newError(resp.StatusCode, data)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return local("decode %s response: %w", route, err)
	}
	return nil
}
