package campaignbridge

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
)

// Get retrieves path and decodes the response into T.
func Get[T any](ctx context.Context, sdk *CampaignBridge, path string, cfg ...*RequestConfig) (T, error) {
	return call[T](ctx, sdk, MethodGet, path, nil, cfg)
}

// Post creates a resource at path.
func Post[T any](ctx context.Context, sdk *CampaignBridge, path string, body any, cfg ...*RequestConfig) (T, error) {
	return call[T](ctx, sdk, MethodPost, path, body, cfg)
}

// Put replaces the resource at path.
func Put[T any](ctx context.Context, sdk *CampaignBridge, path string, body any, cfg ...*RequestConfig) (T, error) {
	return call[T](ctx, sdk, MethodPut, path, body, cfg)
}

// Patch partially updates the resource at path.
func Patch[T any](ctx context.Context, sdk *CampaignBridge, path string, body any, cfg ...*RequestConfig) (T, error) {
	return call[T](ctx, sdk, MethodPatch, path, body, cfg)
}

// Delete removes the resource at path.
func Delete[T any](ctx context.Context, sdk *CampaignBridge, path string, cfg ...*RequestConfig) (T, error) {
	return call[T](ctx, sdk, MethodDelete, path, nil, cfg)
}

func call[T any](ctx context.Context, sdk *CampaignBridge, method Method, path string, body any, cfgs []*RequestConfig) (T, error) {
	var out T
	var cfg *RequestConfig
	if len(cfgs) > 0 {
		cfg = cfgs[0]
	}

	decode := func(status int, data []byte) error {
		var v T
		if status != http.StatusNoContent && len(bytes.TrimSpace(data)) > 0 {
			if err := json.Unmarshal(data, &v); err != nil {
				return err
			}
		}
		out = v
		return nil
	}

	if _, err := sdk.do(ctx, method, path, body, cfg, decode); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}
