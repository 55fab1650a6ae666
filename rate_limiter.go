// rate_limiter.go
// ----------------
// This file defines the RateLimiter type, which stores the rate limit information reported by the
// server for each API key (usually one per client). The executor consults it before every attempt
// so a call that would certainly be rejected waits for the quota reset instead.
//
// Responsibilities:
// - Storing the latest NormalizedRateLimitInfo keyed by name.
// - Applying the client's MaxRequestsOverride on top of what the server reports.
// - Checking if requests can proceed based on RemainingRequests and ResetRequestsAt.
// - Calculating the delay before the next allowed request if the quota is exhausted.
package campaignbridge

import (
	"sync"
	"time"
)

type RateLimiter struct {
	mu     sync.Mutex
	limits map[string]*NormalizedRateLimitInfo
	now    func() time.Time
}

func NewRateLimiter() *RateLimiter {
	return &RateLimiter{
		limits: make(map[string]*NormalizedRateLimitInfo),
		now:    time.Now,
	}
}

// UpdateRateLimits replaces the stored info for key. Fields missing from info keep their
// previous values so a response without a reset header does not clear a known reset time.
// A non-nil maxOverride caps the server-reported quota: MaxRequests becomes the override and
// RemainingRequests never exceeds it.
func (r *RateLimiter) UpdateRateLimits(key string, info *NormalizedRateLimitInfo, maxOverride *int) {
	if info == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	prev, ok := r.limits[key]
	if !ok || prev == nil {
		prev = &NormalizedRateLimitInfo{}
		r.limits[key] = prev
	}
	if info.MaxRequests != nil {
		prev.MaxRequests = intPtr(*info.MaxRequests)
	}
	if info.RemainingRequests != nil {
		prev.RemainingRequests = intPtr(*info.RemainingRequests)
	}
	if info.ResetRequestsAt != nil {
		reset := *info.ResetRequestsAt
		prev.ResetRequestsAt = &reset
	}

	if maxOverride != nil {
		prev.MaxRequests = intPtr(*maxOverride)
		if prev.RemainingRequests == nil || *prev.RemainingRequests > *maxOverride {
			prev.RemainingRequests = intPtr(*maxOverride)
		}
	}
}

func intPtr(v int) *int { return &v }

// canProceed returns false if the quota is spent and the reset time hasn't passed yet.
func (r *RateLimiter) canProceed(key string) bool {
	return r.delayBeforeNextRequest(key) == 0
}

// delayBeforeNextRequest returns how long to wait before the next request, if at all.
func (r *RateLimiter) delayBeforeNextRequest(key string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	info, ok := r.limits[key]
	if !ok || info == nil {
		return 0
	}
	if info.RemainingRequests != nil && *info.RemainingRequests <= 0 && info.ResetRequestsAt != nil {
		nowMs := r.now().UnixMilli()
		if nowMs < *info.ResetRequestsAt {
			return time.Duration(*info.ResetRequestsAt-nowMs) * time.Millisecond
		}
	}
	return 0
}

// GetRateLimitInfo returns a copy of the info stored for key, or nil.
func (r *RateLimiter) GetRateLimitInfo(key string) *NormalizedRateLimitInfo {
	r.mu.Lock()
	defer r.mu.Unlock()

	if info, ok := r.limits[key]; ok && info != nil {
		copyInfo := *info
		return &copyInfo
	}
	return nil
}
