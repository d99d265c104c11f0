// Package apierr classifies openai-go client errors for retry decisions.
// The agent and judge adapters share one classification so retryability
// cannot drift between them.
package apierr

import (
	"errors"
	"net/http"

	openai "github.com/openai/openai-go"
)

// Transient reports whether err is worth retrying: timeouts, rate limits,
// and server-side failures are; other API errors are not.
func Transient(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.StatusCode == http.StatusRequestTimeout,
			apiErr.StatusCode == http.StatusTooManyRequests,
			apiErr.StatusCode >= 500:
			return true
		}
		return false
	}
	// Anything that never produced an HTTP status is a network-level
	// failure (dial errors, resets, context deadline inside the client).
	return true
}
