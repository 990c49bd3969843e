package github

import (
	"context"
	"errors"
	"net/http"

	gh "github.com/google/go-github/v82/github"

	"github.com/mudit06mah/guardian/internal/domain/port/driven"
)

// classify maps a failed go-github call onto the driven error taxonomy.
// Rate limiting, 5xx answers and transport failures are transient; 401 and
// 403 mean the token was rejected; any other status is a plain upstream error.
func classify(resp *gh.Response, err error) error {
	var rateErr *gh.RateLimitError
	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &rateErr) || errors.As(err, &abuseErr) {
		return driven.ErrTransientNetwork
	}

	if resp == nil || resp.Response == nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		return driven.ErrTransientNetwork
	}

	switch code := resp.StatusCode; {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return driven.ErrUpstreamAuth
	case code == http.StatusTooManyRequests || code >= http.StatusInternalServerError:
		return driven.ErrTransientNetwork
	default:
		return driven.ErrUpstream
	}
}

// classifyTokenExchange is stricter than classify: any answer GitHub gives to a
// token request that is not a success counts as an authentication failure.
func classifyTokenExchange(resp *gh.Response, err error) error {
	if resp == nil || resp.Response == nil {
		if errors.Is(err, context.Canceled) {
			return context.Canceled
		}
		return driven.ErrTransientNetwork
	}
	return driven.ErrUpstreamAuth
}

func isNotFound(resp *gh.Response) bool {
	return resp != nil && resp.Response != nil && resp.StatusCode == http.StatusNotFound
}
