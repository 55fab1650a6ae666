package campaignbridge

import "context"

// ProviderAdapter defines the transport every backend must implement.
type ProviderAdapter interface {
	// ExecuteRequest performs one network round trip. It must honor ctx and
	// return an error only when no response was obtained.
	ExecuteRequest(ctx context.Context, req *NormalizedRequest) (*NormalizedResponse, error)
	ParseRateLimitInfo(resp *NormalizedResponse) (*NormalizedRateLimitInfo, error)
	IsRateLimitError(resp *NormalizedResponse) bool
}
