package provider

import (
	"errors"
	"net/http"
	"time"

	"google.golang.org/genai"
)

// ErrRateLimited marks a transient rate-limit failure from a provider.
// HTTP clients wrap their 429 responses with it.
var ErrRateLimited = errors.New("provider rate limited")

// DefaultRetrySleep is the wait between attempts when a provider does not
// say how long to back off.
const DefaultRetrySleep = 30 * time.Second

// IsRateLimitError reports whether err is a transient rate-limit failure
// worth retrying. It recognizes the ErrRateLimited sentinel and genai API
// errors carrying a 429 status code.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests
	}
	return false
}
