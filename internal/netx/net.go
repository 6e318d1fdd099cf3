// Package netx holds small networking helpers shared by the sync core.
package netx

import (
	"context"
	"net/http"
	"time"
)

// Reachable reports whether the API at baseURL answers an HTTP request
// within the timeout. Any HTTP status counts as reachable; only transport
// failures count against it. Used to skip doomed retry attempts while
// offline.
func Reachable(ctx context.Context, baseURL string, timeout time.Duration) bool {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, baseURL, nil)
	if err != nil {
		return false
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	return true
}
