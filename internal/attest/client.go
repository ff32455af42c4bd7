// Package attest requests signed transfer claims from the attestation service.
package attest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ppiankov/zktransfer/internal/util"
)

var (
	// ErrUnauthorized means the bearer token was rejected and a new one is needed
	ErrUnauthorized = errors.New("attestation service rejected the token")

	// ErrUnexpectedStatus is any other non-2xx answer
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// Request identifies the transfer to attest
type Request struct {
	ID   string `json:"id"`
	Bank string `json:"bank"`
}

// Options configures a Client
type Options struct {
	Endpoint     string
	Token        string
	Timeout      time.Duration
	UserAgent    string
	MaxBodyBytes int64
	MaxAttempts  int
	HTTPProxy    string
	HTTPSProxy   string
	NoProxy      string
}

// Waiter blocks until a request to rawURL may be sent
type Waiter interface {
	Wait(ctx context.Context, rawURL string) error
}

// Client fetches raw claim envelopes
type Client struct {
	httpClient *http.Client
	opts       Options
	limiter    Waiter
	log        zerolog.Logger
}

// newBackOff is replaced in tests
var newBackOff = func() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 500 * time.Millisecond
	b.MaxElapsedTime = 0
	return b
}

// NewClient creates a new Client with the given configuration
func NewClient(opts Options, limiter Waiter, log zerolog.Logger) *Client {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = 1
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = 1 << 20
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy, opts.NoProxy)

	return &Client{
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		opts:    opts,
		limiter: limiter,
		log:     log,
	}
}

// Endpoint returns the configured service URL
func (c *Client) Endpoint() string {
	return c.opts.Endpoint
}

// Fetch asks the attestation service for the signed claim of one transfer and returns the
// response body untouched. Transient failures are retried; 4xx answers are not.
func (c *Client) Fetch(ctx context.Context, req Request) (string, error) {
	if c.opts.Token == "" {
		return "", fmt.Errorf("%w: no bearer token configured", ErrUnauthorized)
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	requestID := uuid.NewString()
	attempt := 0

	var body string
	operation := func() error {
		attempt++
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx, c.opts.Endpoint); err != nil {
				return &backoff.PermanentError{Err: err}
			}
		}

		b, err := c.fetchOnce(ctx, payload, requestID)
		if err != nil {
			c.log.Warn().Err(err).Str("request_id", requestID).Int("attempt", attempt).Msg("attestation request failed")
			if !isRetryable(err) {
				return &backoff.PermanentError{Err: err}
			}
			return err
		}
		body = b
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(newBackOff(), uint64(c.opts.MaxAttempts-1)),
		ctx,
	)
	if err := backoff.Retry(operation, policy); err != nil {
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			return "", perm.Err
		}
		return "", err
	}

	c.log.Debug().Str("request_id", requestID).Int("attempts", attempt).Int("bytes", len(body)).Msg("attestation received")
	return body, nil
}

func (c *Client) fetchOnce(ctx context.Context, payload []byte, requestID string) (string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.opts.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", &permanentError{fmt.Errorf("create request: %w", err)}
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.opts.Token)
	httpReq.Header.Set("User-Agent", c.opts.UserAgent)
	httpReq.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status, kind: ErrUnauthorized}
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return "", &StatusError{Code: resp.StatusCode, Status: resp.Status, kind: ErrUnexpectedStatus}
	}

	// Read one byte past the limit so oversized bodies are detected instead of truncated
	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes+1))
	if err != nil {
		return "", fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.opts.MaxBodyBytes {
		return "", &permanentError{fmt.Errorf("response exceeds %d bytes", c.opts.MaxBodyBytes)}
	}

	return string(body), nil
}

// StatusError is a non-2xx answer
type StatusError struct {
	Code   int
	Status string
	kind   error
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%v: %s", e.kind, e.Status)
}

func (e *StatusError) Unwrap() error {
	return e.kind
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// isRetryable reports whether a failed attempt may succeed if repeated
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}

	var status *StatusError
	if errors.As(err, &status) {
		return status.Code == http.StatusTooManyRequests || status.Code >= 500
	}

	// transport errors: connection refused, reset, timeouts
	return true
}
