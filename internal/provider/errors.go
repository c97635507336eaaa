package provider

import (
	"context"
	"fmt"
	"net/http"

	"github.com/tercet-ai/tercet/internal/core"
)

// maxResponseBytes caps provider response bodies.
const maxResponseBytes = 16 << 20

// transportError maps a failed network round trip to the taxonomy.
// Caller cancellation is passed through untouched so the executor can
// tell "give up entirely" from "this attempt failed".
func transportError(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return core.ErrTransport("request failed").WithCause(err)
}

// statusError maps a non-200 provider status to the taxonomy. Rate
// limits and server-side overload are transient; the rest of the 4xx
// space means the request itself is wrong and a retry cannot help.
func statusError(provider string, status int, message string) error {
	if message == "" {
		message = http.StatusText(status)
	}
	detail := fmt.Sprintf("%s: %s (HTTP %d)", provider, message, status)

	switch {
	case status == http.StatusTooManyRequests:
		return core.ErrRateLimit(detail)
	case status >= 500: // includes 529, Anthropic's overloaded status
		return core.ErrProvider(core.CodeOverloaded, detail, true)
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return core.ErrProvider(core.CodeAuthFailed, detail, false)
	default:
		return core.ErrProvider(core.CodeBadRequest, detail, false)
	}
}
