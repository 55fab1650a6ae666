package campaignbridge

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusRequestTimeout is the synthetic status attached to timeouts and cancellations.
const StatusRequestTimeout = http.StatusRequestTimeout

// ErrorKind classifies a failed call.
type ErrorKind int

const (
	// KindTransient failures are retried while budget remains.
	KindTransient ErrorKind = iota
	// KindClient failures carry a status the server will keep rejecting.
	KindClient
	// KindCancelled covers both the per-attempt timeout and caller cancellation.
	KindCancelled
	// KindExhausted is the last transient failure once the retry budget is spent.
	KindExhausted
)

func (k ErrorKind) String() string {
	switch k {
	case KindTransient:
		return "transient"
	case KindClient:
		return "client"
	case KindCancelled:
		return "cancelled"
	case KindExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// RequestError is the only error shape returned by the client.
type RequestError struct {
	Kind     ErrorKind
	Message  string
	Status   int    // 0 when no response was received
	Code     string // machine-readable code from the error body, if any
	Details  map[string]any
	Attempts int
	Err      error

	rateLimited bool // the adapter flagged the response as throttled
}

func (e *RequestError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s (status %d)", e.Message, e.Status)
	}
	return e.Message
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// Terminal reports whether the failure must not be retried.
func (e *RequestError) Terminal() bool {
	return e.Kind != KindTransient
}

// terminalStatuses are never retried regardless of remaining budget.
var terminalStatuses = map[int]struct{}{
	http.StatusBadRequest:          {},
	http.StatusUnauthorized:        {},
	http.StatusForbidden:           {},
	http.StatusNotFound:            {},
	http.StatusUnprocessableEntity: {},
}

func isTerminalStatus(status int) bool {
	_, ok := terminalStatuses[status]
	return ok
}

func newStatusError(status int, details map[string]any) *RequestError {
	kind := KindTransient
	if isTerminalStatus(status) {
		kind = KindClient
	}
	msg := http.StatusText(status)
	if m, ok := details["message"].(string); ok && m != "" {
		msg = m
	} else if m, ok := details["error"].(string); ok && m != "" {
		msg = m
	}
	if msg == "" {
		msg = fmt.Sprintf("request failed with status %d", status)
	}
	code, _ := details["code"].(string)
	return &RequestError{
		Kind:    kind,
		Message: msg,
		Status:  status,
		Code:    code,
		Details: details,
	}
}

func newCancelledError(cause error) *RequestError {
	return &RequestError{
		Kind:    KindCancelled,
		Message: "request timed out or was cancelled",
		Status:  StatusRequestTimeout,
		Err:     cause,
	}
}

func newTransportError(cause error) *RequestError {
	return &RequestError{
		Kind:    KindTransient,
		Message: cause.Error(),
		Err:     cause,
	}
}

func asRequestError(err error) (*RequestError, bool) {
	var re *RequestError
	ok := errors.As(err, &re)
	return re, ok
}

// IsTerminal reports whether err is a failure that was not retried.
func IsTerminal(err error) bool {
	re, ok := asRequestError(err)
	return ok && re.Terminal()
}

// IsCancelled reports whether err came from a timeout or caller cancellation.
func IsCancelled(err error) bool {
	re, ok := asRequestError(err)
	return ok && re.Kind == KindCancelled
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	if re, ok := asRequestError(err); ok {
		return re.Status
	}
	return 0
}
