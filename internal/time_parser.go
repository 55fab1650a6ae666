// internal/time_parser.go
// ------------------------
// This internal package provides helpers for turning rate limit headers into absolute
// timestamps in milliseconds, the unit NormalizedRateLimitInfo stores.
//
// Functions:
// - ParseTimeStr: Convert strings like "1s", "6m0s" into milliseconds.
// - ParseRetryAfter: Convert a Retry-After value (seconds, HTTP-date or duration) into an absolute ms timestamp.
// - UnixToMs: Convert a UNIX timestamp in seconds to milliseconds.
package internal

import (
	"net/http"
	"strconv"
	"strings"
	"time"
)

// ParseTimeStr converts strings like "1s", "6m0s" or "250ms" into ms. Invalid input yields 0.
func ParseTimeStr(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0
	}
	return d.Milliseconds()
}

// ParseRetryAfter returns the absolute time (unix ms) a Retry-After value points at.
func ParseRetryAfter(value string, now time.Time) (int64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if sec, err := strconv.ParseInt(value, 10, 64); err == nil {
		if sec < 0 {
			return 0, false
		}
		return now.UnixMilli() + sec*1000, true
	}
	if t, err := http.ParseTime(value); err == nil {
		return t.UnixMilli(), true
	}
	if ms := ParseTimeStr(value); ms > 0 {
		return now.UnixMilli() + ms, true
	}
	return 0, false
}

// UnixToMs converts a UNIX timestamp in seconds to milliseconds.
func UnixToMs(timestamp int64) int64 {
	return timestamp * 1000
}
