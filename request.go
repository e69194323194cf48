package framequery

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/framequery/framequery-go/retry"
)

// do executes one API request with bounded retries. Status >= 500 and 429
// are retried with exponential backoff (a parseable Retry-After header
// overrides the computed delay), as are transport-level failures; every
// other status returns on the first attempt.
//
// The retry budget exhausting splits two ways: a still-failing HTTP
// response is returned for classification, while a transport failure is
// wrapped here, since no response exists to classify.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, []byte, error) {
	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, nil, &Error{Code: ErrTransport, Message: "encode request body", Cause: err}
		}
		payload = b
	}
	endpoint := c.baseURL + path

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, nil, &Error{Code: ErrTransport, Message: "rate limiter wait", Cause: err}
			}
		}

		var reqBody io.Reader
		if payload != nil {
			reqBody = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
		if err != nil {
			return nil, nil, &Error{Code: ErrTransport, Message: "create request", Cause: err}
		}
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("X-Request-Id", uuid.NewString())
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		start := time.Now()
		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.metrics.observeRequest(method, 0, time.Since(start))
			if attempt >= c.policy.MaxRetries {
				return nil, nil, &Error{
					Code:      ErrTransport,
					Message:   "request failed after retries",
					Retryable: true,
					Cause:     err,
				}
			}
			delay := c.policy.Delay(attempt)
			c.logger.Debug("transport error, retrying",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay),
				zap.Error(err))
			c.metrics.observeRetry()
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, nil, &Error{Code: ErrTransport, Message: "request canceled", Cause: err}
			}
			continue
		}

		respBody, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			c.metrics.observeRequest(method, resp.StatusCode, time.Since(start))
			return nil, nil, &Error{Code: ErrTransport, Message: "read response", Cause: err}
		}
		c.metrics.observeRequest(method, resp.StatusCode, time.Since(start))

		if retry.RetryableStatus(resp.StatusCode) && attempt < c.policy.MaxRetries {
			delay := c.policy.Delay(attempt)
			if d, ok := retry.ParseRetryAfter(resp.Header.Get("Retry-After")); ok {
				delay = d
			}
			c.logger.Debug("retryable status, retrying",
				zap.String("method", method),
				zap.String("path", path),
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
				zap.Duration("delay", delay))
			c.metrics.observeRetry()
			if err := sleepCtx(ctx, delay); err != nil {
				return nil, nil, &Error{Code: ErrTransport, Message: "request canceled", Cause: err}
			}
			continue
		}

		return resp, respBody, nil
	}
}

// request executes and classifies an API call, returning the unwrapped
// payload (the value under a "data" envelope, or the whole body).
func (c *Client) request(ctx context.Context, method, path string, body any) (any, error) {
	resp, respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	return handleResponse(resp, respBody)
}

// requestRaw executes an API call and returns the full JSON object without
// envelope unwrapping. The list endpoint keeps nextCursor beside data.
func (c *Client) requestRaw(ctx context.Context, method, path string, body any) (map[string]any, error) {
	resp, respBody, err := c.do(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, classifyError(resp.StatusCode, resp.Header, respBody)
	}
	if len(respBody) == 0 {
		return nil, nil
	}
	var raw map[string]any
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, &Error{
			Code:       ErrAPI,
			Message:    "invalid JSON in response",
			HTTPStatus: resp.StatusCode,
			Cause:      err,
		}
	}
	return raw, nil
}

// sleepCtx waits for d, returning early with ctx's error on cancellation.
func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
