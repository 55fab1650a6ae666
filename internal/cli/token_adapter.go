package cli

import (
	"context"
	"fmt"
	"strings"

	campaignbridge "github.com/opengovern/campaign-bridge"
	"github.com/opengovern/campaign-bridge/mock"
	"golang.org/x/oauth2"
)

// tokenAdapter attaches a bearer token to requests served by the mock backend, the way the
// REST adapter does for the real service. A caller-set Authorization header wins.
type tokenAdapter struct {
	*mock.Adapter
	source oauth2.TokenSource
}

func (t *tokenAdapter) ExecuteRequest(ctx context.Context, req *campaignbridge.NormalizedRequest) (*campaignbridge.NormalizedResponse, error) {
	for k := range req.Headers {
		if strings.EqualFold(k, "Authorization") {
			return t.Adapter.ExecuteRequest(ctx, req)
		}
	}
	tok, err := t.source.Token()
	if err != nil {
		return nil, fmt.Errorf("acquire token: %w", err)
	}
	headers := make(map[string]string, len(req.Headers)+1)
	for k, v := range req.Headers {
		headers[k] = v
	}
	headers["Authorization"] = tok.Type() + " " + tok.AccessToken

	withAuth := *req
	withAuth.Headers = headers
	return t.Adapter.ExecuteRequest(ctx, &withAuth)
}
