package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/discordops/observe"
	"github.com/jonwraymond/discordops/resilience"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// defaultRetryAfter is used when a 429 carries no readable retry_after.
const defaultRetryAfter = time.Second

type auditReasonKey struct{}

// WithAuditReason attaches an audit-log reason to calls made with ctx.
// Discord records it in the guild's audit log.
func WithAuditReason(ctx context.Context, reason string) context.Context {
	return context.WithValue(ctx, auditReasonKey{}, reason)
}

func auditReason(ctx context.Context) string {
	v, _ := ctx.Value(auditReasonKey{}).(string)
	return v
}

// permanentError stops the retry loop without being a Discord answer.
type permanentError struct{ err error }

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

func retryable(err error) bool {
	var perm *permanentError
	if errors.As(err, &perm) {
		return false
	}
	var ra *resilience.RetryAfterError
	if errors.As(err, &ra) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, resilience.ErrTimeout) {
		return true
	}
	// The caller's own cancellation or deadline.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// Get issues a GET and decodes the response into out. Concurrent identical
// GETs share one request.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return err
	}
	return decode(http.MethodGet, endpoint, raw, out)
}

// GetRaw issues a GET and returns the undecoded body.
func (c *Client) GetRaw(ctx context.Context, endpoint string) (json.RawMessage, error) {
	raw, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	// The body may be shared with coalesced callers.
	return json.RawMessage(bytes.Clone(raw)), nil
}

// Post issues a POST with a JSON body and decodes the response into out.
func (c *Client) Post(ctx context.Context, endpoint string, body, out any) error {
	return c.send(ctx, http.MethodPost, endpoint, body, out)
}

// Put issues a PUT with a JSON body and decodes the response into out.
func (c *Client) Put(ctx context.Context, endpoint string, body, out any) error {
	return c.send(ctx, http.MethodPut, endpoint, body, out)
}

// Patch issues a PATCH with a JSON body and decodes the response into out.
func (c *Client) Patch(ctx context.Context, endpoint string, body, out any) error {
	return c.send(ctx, http.MethodPatch, endpoint, body, out)
}

// Delete issues a DELETE and decodes the response into out.
func (c *Client) Delete(ctx context.Context, endpoint string, out any) error {
	return c.send(ctx, http.MethodDelete, endpoint, nil, out)
}

// PostOK issues a POST for an endpoint without a useful response body.
// A definitive non-2xx answer yields false with a nil error; breaker,
// rate-limit and transport failures are returned as errors.
func (c *Client) PostOK(ctx context.Context, endpoint string, body any) (bool, error) {
	return okResult(c.send(ctx, http.MethodPost, endpoint, body, nil))
}

// PutOK is the PUT counterpart of PostOK.
func (c *Client) PutOK(ctx context.Context, endpoint string, body any) (bool, error) {
	return okResult(c.send(ctx, http.MethodPut, endpoint, body, nil))
}

// PatchOK is the PATCH counterpart of PostOK.
func (c *Client) PatchOK(ctx context.Context, endpoint string, body any) (bool, error) {
	return okResult(c.send(ctx, http.MethodPatch, endpoint, body, nil))
}

// DeleteOK is the DELETE counterpart of PostOK.
func (c *Client) DeleteOK(ctx context.Context, endpoint string) (bool, error) {
	return okResult(c.send(ctx, http.MethodDelete, endpoint, nil, nil))
}

func okResult(err error) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case isDefinitive(err):
		return false, nil
	default:
		return false, err
	}
}

// flight is a coalesced GET. It runs detached from any single caller and
// is cancelled once every caller waiting on it has gone.
type flight struct {
	ctx     context.Context
	cancel  context.CancelFunc
	waiters int
}

func (c *Client) join(ctx context.Context, endpoint string) *flight {
	c.mu.Lock()
	defer c.mu.Unlock()
	f, ok := c.flights[endpoint]
	if !ok {
		fctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		f = &flight{ctx: fctx, cancel: cancel}
		c.flights[endpoint] = f
	}
	f.waiters++
	return f
}

func (c *Client) leave(endpoint string, f *flight) {
	c.mu.Lock()
	defer c.mu.Unlock()
	f.waiters--
	if f.waiters > 0 {
		return
	}
	if c.flights[endpoint] == f {
		delete(c.flights, endpoint)
		c.group.Forget(endpoint)
	}
	f.cancel()
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	f := c.join(ctx, endpoint)
	defer c.leave(endpoint, f)

	ch := c.group.DoChan(endpoint, func() (any, error) {
		return c.do(f.ctx, http.MethodGet, endpoint, nil)
	})
	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("discord: GET %s: %w", endpoint, context.Cause(ctx))
	}
}

func (c *Client) send(ctx context.Context, method, endpoint string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("discord: encode %s %s: %w", method, endpoint, err)
		}
	}
	raw, err := c.do(ctx, method, endpoint, payload)
	if err != nil {
		return err
	}
	return decode(method, endpoint, raw, out)
}

// do runs one call through the breaker, the rate-limit block, the pacing
// limiter and the retry loop, and returns the 2xx body.
func (c *Client) do(ctx context.Context, method, endpoint string, payload []byte) ([]byte, error) {
	ctx = observe.WithRequestID(ctx, uuid.NewString())
	log := c.config.Logger.WithCall(observe.CallMeta{
		Method:    method,
		Route:     observe.TemplateRoute(endpoint),
		RequestID: observe.RequestIDFromContext(ctx),
	})

	if c.config.Breaker.IsOpen(ctx) {
		log.Warn(ctx, "discord circuit open, call rejected")
		return nil, ErrCircuitOpen
	}
	if c.config.Tracker.ShouldBlock(ctx) {
		wait := c.config.Tracker.BlockedFor(ctx)
		log.Warn(ctx, "discord rate limit window open, call rejected", observe.Field{Key: "retry_in_ms", Value: wait.Milliseconds()})
		return nil, fmt.Errorf("%w: retry in %s", ErrRateLimited, wait)
	}

	var (
		data          []byte
		attempt       int
		lastTransport bool
	)
	retry := c.retryConfig
	retry.OnRetry = func(attempt int, err error, delay time.Duration) {
		log.Warn(ctx, "discord call retrying",
			observe.Field{Key: "attempt", Value: attempt},
			observe.Field{Key: "delay_ms", Value: delay.Milliseconds()},
			observe.Field{Key: "error", Value: err},
		)
	}
	err := resilience.NewRetry(retry).Execute(ctx, func(ctx context.Context) error {
		attempt++
		if attempt > 1 && c.config.Breaker.IsOpen(ctx) {
			return &permanentError{ErrCircuitOpen}
		}
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return &permanentError{err}
			}
		}
		attemptCtx := observe.WithAttempt(ctx, attempt)
		return resilience.WithDeadline(attemptCtx, c.config.Timeout, func(attemptCtx context.Context) error {
			resp, err := c.roundTrip(attemptCtx, method, endpoint, payload)
			if err != nil {
				var perm *permanentError
				lastTransport = !errors.As(err, &perm)
				return err
			}
			lastTransport = false
			c.config.Tracker.RecordResponse(ctx, resp.header, !resp.ok(), resp.status)
			switch {
			case resp.status == http.StatusTooManyRequests:
				return &resilience.RetryAfterError{
					Delay: resp.retryAfter(),
					Err:   resp.apiError(method, endpoint),
				}
			case resp.ok():
				c.config.Breaker.RecordSuccess(ctx)
				data = resp.body
				return nil
			default:
				c.config.Breaker.RecordFailure(ctx)
				return resp.apiError(method, endpoint)
			}
		})
	})

	var perm *permanentError
	if errors.As(err, &perm) {
		err = perm.err
	}
	if c.config.BreakOnTransportFailure && err != nil && lastTransport && errors.Is(err, ErrMaxRetriesExceeded) {
		c.config.Breaker.RecordFailure(ctx)
	}

	switch {
	case err == nil:
		log.Debug(ctx, "discord call succeeded", observe.Field{Key: "attempts", Value: attempt})
	case isDefinitive(err):
		log.Error(ctx, "discord call rejected", observe.Field{Key: "status", Value: StatusCode(err)}, observe.Field{Key: "error", Value: err})
	default:
		log.Error(ctx, "discord call failed", observe.Field{Key: "attempts", Value: attempt}, observe.Field{Key: "error", Value: err})
	}
	return data, err
}

type response struct {
	status int
	header http.Header
	body   []byte
}

func (r *response) ok() bool { return r.status >= 200 && r.status < 300 }

// retryAfter reads retry_after from a 429 body, then the Retry-After
// header, rounding up to whole seconds.
func (r *response) retryAfter() time.Duration {
	var body struct {
		RetryAfter *float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(r.body, &body); err == nil && body.RetryAfter != nil && *body.RetryAfter >= 0 {
		return time.Duration(math.Ceil(*body.RetryAfter)) * time.Second
	}
	if v, err := strconv.ParseFloat(r.header.Get("Retry-After"), 64); err == nil && v >= 0 {
		return time.Duration(math.Ceil(v)) * time.Second
	}
	return defaultRetryAfter
}

func (r *response) apiError(method, endpoint string) *APIError {
	apiErr := &APIError{StatusCode: r.status, Method: method, Endpoint: endpoint}
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(r.body, &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
	}
	return apiErr
}

func (c *Client) roundTrip(ctx context.Context, method, endpoint string, payload []byte) (*response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+endpoint, body)
	if err != nil {
		return nil, &permanentError{fmt.Errorf("discord: build %s %s: %w", method, endpoint, err)}
	}
	req.Header.Set("Authorization", c.cred.Header())
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if reason := auditReason(ctx); reason != "" {
		req.Header.Set("X-Audit-Log-Reason", url.PathEscape(reason))
	}

	resp, err := c.config.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("discord: read %s %s: %w", method, endpoint, err)
	}
	return &response{status: resp.StatusCode, header: resp.Header, body: raw}, nil
}

func decode(method, endpoint string, raw []byte, out any) error {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("discord: decode %s %s: %w", method, endpoint, err)
	}
	return nil
}
