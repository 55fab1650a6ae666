package campaignbridge

// Method is one of the HTTP verbs the client issues.
type Method string

const (
	MethodGet    Method = "GET"    // retrieve
	MethodPost   Method = "POST"   // create
	MethodPut    Method = "PUT"    // replace
	MethodPatch  Method = "PATCH"  // partial update
	MethodDelete Method = "DELETE" // delete
)

// Valid reports whether m is one of the supported verbs.
func (m Method) Valid() bool {
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete:
		return true
	}
	return false
}

type NormalizedRequest struct {
	Method   Method
	Endpoint string
	Headers  map[string]string
	Body     []byte
}

type NormalizedResponse struct {
	StatusCode int
	Headers    map[string]string // keys are lower-cased
	Data       []byte
}

type NormalizedRateLimitInfo struct {
	MaxRequests       *int
	RemainingRequests *int
	ResetRequestsAt   *int64 // unix ms
}
