package retry

import (
	"errors"
	"strings"

	"google.golang.org/api/googleapi"
)

// retryableCodes are HTTP status codes worth another attempt.
var retryableCodes = map[int]struct{}{
	408: {},
	409: {},
	429: {},
	500: {},
	502: {},
	503: {},
	504: {},
}

// transientPatterns match socket-level failures in lowercased error messages.
var transientPatterns = []string{
	"timeout",
	"timed out",
	"econnreset",
	"connection reset",
	"socket hang up",
	"etimedout",
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// StatusCode extracts the HTTP status code carried by err, or 0.
func StatusCode(err error) int {
	var gErr *googleapi.Error
	if errors.As(err, &gErr) {
		return gErr.Code
	}
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return 0
}

// IsRetryable reports whether err belongs to the transient class.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	if _, ok := retryableCodes[StatusCode(err)]; ok {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, p := range transientPatterns {
		if strings.Contains(msg, p) {
			return true
		}
	}
	return false
}
