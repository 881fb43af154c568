// Package provider holds helpers shared by the language model backends.
package provider

import (
	"net/http"
	"strconv"
	"time"

	"github.com/spetersoncode/stepper"
)

// WrapHTTPError categorizes a backend error by its HTTP status code.
// A code of zero leaves err untouched so network failures fall through to
// retry heuristics.
func WrapHTTPError(err error, code int, resp *http.Response) error {
	if err == nil || code == 0 {
		return err
	}
	return stepper.NewHTTPError(err.Error(), code, RetryAfter(resp), err)
}

// RetryAfter extracts the Retry-After duration from an HTTP response.
// Returns 0 if the header is missing or cannot be parsed.
func RetryAfter(resp *http.Response) time.Duration {
	if resp == nil {
		return 0
	}

	header := resp.Header.Get("Retry-After")
	if header == "" {
		return 0
	}

	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}

	if t, err := http.ParseTime(header); err == nil {
		if delay := time.Until(t); delay > 0 {
			return delay
		}
	}

	return 0
}
