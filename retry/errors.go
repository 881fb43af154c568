package retry

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spetersoncode/stepper"
)

// statusCoder is implemented by the Anthropic and OpenAI SDK errors.
type statusCoder interface {
	StatusCode() int
}

// IsTransient reports whether err is worth retrying.
//
// Errors implementing [stepper.CategorizedError] are trusted. Otherwise rate
// limits, server errors, network timeouts and connection resets count as
// transient. Context cancellation never does.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var ce stepper.CategorizedError
	if errors.As(err, &ce) {
		return ce.Category() == stepper.ErrorTransient
	}

	var sc statusCoder
	if errors.As(err, &sc) && isTransientStatusCode(sc.StatusCode()) {
		return true
	}

	if code := googleAPIErrorCode(err); code > 0 && isTransientStatusCode(code) {
		return true
	}

	return isTransientNetworkError(err)
}

func isTransientStatusCode(code int) bool {
	return code == 429 || (code >= 500 && code < 600)
}

// googleAPIErrorCode reads the status code from a "googleapi: Error NNN:" message.
func googleAPIErrorCode(err error) int {
	msg := err.Error()
	if !strings.Contains(msg, "googleapi:") {
		return 0
	}
	for _, code := range []int{429, 500, 502, 503, 504} {
		if strings.Contains(msg, "Error "+strconv.Itoa(code)) {
			return code
		}
	}
	return 0
}

var transientPatterns = []string{
	"connection reset",
	"connection refused",
	"timeout",
	"temporary failure",
	"service unavailable",
	"too many requests",
	"rate limit",
	"server error",
	"bad gateway",
	"gateway timeout",
	"overloaded",
}

func isTransientNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return true
		}
		if urlErr.Err != nil && isTransientNetworkError(urlErr.Err) {
			return true
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return dnsErr.IsTemporary
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		switch errno {
		case syscall.ECONNRESET, syscall.ECONNREFUSED, syscall.ETIMEDOUT:
			return true
		}
	}

	msg := strings.ToLower(err.Error())
	for _, pattern := range transientPatterns {
		if strings.Contains(msg, pattern) {
			return true
		}
	}
	return false
}

// effectiveDelay honors a server Retry-After hint when it exceeds the backoff.
func effectiveDelay(configured time.Duration, err error) time.Duration {
	if server := stepper.RetryAfterOf(err); server > configured {
		return server
	}
	return configured
}
