package campaignbridge

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"time"
)

// decodeFunc consumes the body of a successful response. It runs inside the attempt so a
// body that fails to decode counts as a transient failure.
type decodeFunc func(status int, data []byte) error

// RequestExecutor handles the attempt loop: timeouts, classification, backoff and the
// RateLimiter wait.
type RequestExecutor struct {
	sdk *CampaignBridge
}

func NewRequestExecutor(sdk *CampaignBridge) *RequestExecutor {
	return &RequestExecutor{sdk: sdk}
}

// ExecuteWithRetry runs attempts strictly one after another until one succeeds, a terminal
// failure occurs, ctx is done, or cfg.retries retries have been spent.
func (re *RequestExecutor) ExecuteWithRetry(ctx context.Context, req *NormalizedRequest, cfg resolvedConfig, decode decodeFunc) (*NormalizedResponse, error) {
	log := re.sdk.log().With("method", req.Method, "endpoint", req.Endpoint, "request_id", req.Headers[requestIDHeader])

	for attempt := 0; ; attempt++ {
		if err := re.waitForRateLimit(ctx, cfg.timeout); err != nil {
			reqErr := newCancelledError(err)
			reqErr.Attempts = attempt
			return nil, reqErr
		}

		log.Debugw("sending request", "attempt", attempt+1)
		resp, reqErr := re.attempt(ctx, req, cfg, decode)
		if reqErr == nil {
			re.sdk.metrics.observeAttempt(req.Method, "success")
			if attempt > 0 {
				log.Debugw("request succeeded after retries", "attempts", attempt+1)
			}
			return resp, nil
		}
		reqErr.Attempts = attempt + 1
		outcome := reqErr.Kind.String()
		if reqErr.rateLimited {
			outcome = "rate_limited"
		}
		re.sdk.metrics.observeAttempt(req.Method, outcome)

		if reqErr.Terminal() {
			log.Debugw("terminal failure, not retrying", "kind", reqErr.Kind, "status", reqErr.Status, "error", reqErr.Message)
			return nil, reqErr
		}
		if attempt >= cfg.retries {
			reqErr.Kind = KindExhausted
			log.Debugw("max retries reached", "attempts", attempt+1, "error", reqErr.Message)
			return nil, reqErr
		}

		wait := calculateBackoff(cfg.retryDelay, cfg.maxRetryDelay, attempt)
		if reqErr.rateLimited {
			// A reset beyond the timeout is left to waitForRateLimit, which fails fast.
			if delay := re.sdk.rateLimiter.delayBeforeNextRequest(re.sdk.name); delay > wait && delay <= cfg.timeout {
				wait = delay
			}
		}
		log.Debugw("retrying", "attempt", attempt+1, "delay", wait, "status", reqErr.Status, "error", reqErr.Message)
		re.sdk.metrics.observeRetry(req.Method)
		if err := sleepContext(ctx, wait); err != nil {
			cancelled := newCancelledError(err)
			cancelled.Attempts = attempt + 1
			return nil, cancelled
		}
	}
}

// attempt performs one round trip under its own timeout. The timer is released when
// attempt returns, whichever way it returns.
func (re *RequestExecutor) attempt(ctx context.Context, req *NormalizedRequest, cfg resolvedConfig, decode decodeFunc) (*NormalizedResponse, *RequestError) {
	if err := ctx.Err(); err != nil {
		return nil, newCancelledError(err)
	}

	attemptCtx, cancel := context.WithTimeout(ctx, cfg.timeout)
	defer cancel()

	resp, err := re.sdk.adapter.ExecuteRequest(attemptCtx, req)
	if err != nil {
		if ctxErr := attemptCtx.Err(); ctxErr != nil {
			return nil, newCancelledError(ctxErr)
		}
		// Adapters may give up early when they know the deadline cannot be met.
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, newCancelledError(err)
		}
		return nil, newTransportError(err)
	}

	if info, parseErr := re.sdk.adapter.ParseRateLimitInfo(resp); parseErr == nil && info != nil {
		re.sdk.rateLimiter.UpdateRateLimits(re.sdk.name, info, cfg.maxRequestsOverride)
	}

	if resp.StatusCode == 204 {
		return resp, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		reqErr := newStatusError(resp.StatusCode, decodeErrorBody(resp.Data))
		reqErr.rateLimited = re.sdk.adapter.IsRateLimitError(resp)
		return nil, reqErr
	}
	if decode != nil {
		if err := decode(resp.StatusCode, resp.Data); err != nil {
			return nil, newTransportError(err)
		}
	}
	return resp, nil
}

// waitForRateLimit blocks until the server-reported quota resets. The wait counts against
// timeout: a reset further away than timeout fails immediately with DeadlineExceeded.
func (re *RequestExecutor) waitForRateLimit(ctx context.Context, timeout time.Duration) error {
	if re.sdk.rateLimiter.canProceed(re.sdk.name) {
		return nil
	}
	delay := re.sdk.rateLimiter.delayBeforeNextRequest(re.sdk.name)
	if delay > timeout {
		re.sdk.log().Debugw("rate limit resets after the timeout, giving up", "delay", delay, "timeout", timeout)
		return context.DeadlineExceeded
	}
	re.sdk.log().Debugw("rate limit exhausted, waiting for reset", "delay", delay)

	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return sleepContext(waitCtx, delay)
}

// decodeErrorBody never fails: an empty or undecodable body yields an empty map.
func decodeErrorBody(data []byte) map[string]any {
	details := map[string]any{}
	if len(data) == 0 {
		return details
	}
	if err := json.Unmarshal(data, &details); err != nil || details == nil {
		return map[string]any{}
	}
	return details
}

// calculateBackoff returns base * 2^attempt, capped at maxDelay when maxDelay > 0.
func calculateBackoff(base, maxDelay time.Duration, attempt int) time.Duration {
	backoff := base
	for i := 0; i < attempt; i++ {
		if maxDelay > 0 && backoff >= maxDelay {
			break
		}
		if backoff > math.MaxInt64/2 {
			return time.Duration(math.MaxInt64)
		}
		backoff *= 2
	}
	if maxDelay > 0 && backoff > maxDelay {
		return maxDelay
	}
	return backoff
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
