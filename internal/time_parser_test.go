package internal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimeStr(t *testing.T) {
	require.Equal(t, int64(1000), ParseTimeStr("1s"))
	require.Equal(t, int64(360_000), ParseTimeStr("6m0s"))
	require.Equal(t, int64(250), ParseTimeStr(" 250ms "))
	require.Equal(t, int64(0), ParseTimeStr(""))
	require.Equal(t, int64(0), ParseTimeStr("soon"))
	require.Equal(t, int64(0), ParseTimeStr("-5s"))
}

func TestParseRetryAfter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	ms, ok := ParseRetryAfter("30", now)
	require.True(t, ok)
	require.Equal(t, now.Add(30*time.Second).UnixMilli(), ms)

	ms, ok = ParseRetryAfter("Wed, 01 May 2024 12:01:00 GMT", now)
	require.True(t, ok)
	require.Equal(t, now.Add(time.Minute).UnixMilli(), ms)

	ms, ok = ParseRetryAfter("1m30s", now)
	require.True(t, ok)
	require.Equal(t, now.Add(90*time.Second).UnixMilli(), ms)

	_, ok = ParseRetryAfter("", now)
	require.False(t, ok)
	_, ok = ParseRetryAfter("-1", now)
	require.False(t, ok)
	_, ok = ParseRetryAfter("later", now)
	require.False(t, ok)
}

func TestUnixToMs(t *testing.T) {
	require.Equal(t, int64(1_700_000_000_000), UnixToMs(1_700_000_000))
}
