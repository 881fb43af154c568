package provider

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/spetersoncode/stepper"
	"github.com/stretchr/testify/assert"
)

func TestRetryAfter(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   time.Duration
	}{
		{"missing", "", 0},
		{"seconds", "7", 7 * time.Second},
		{"garbage", "soon", 0},
		{"past date", "Mon, 02 Jan 2006 15:04:05 GMT", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := &http.Response{Header: http.Header{}}
			if tt.header != "" {
				resp.Header.Set("Retry-After", tt.header)
			}
			assert.Equal(t, tt.want, RetryAfter(resp))
		})
	}

	t.Run("nil response", func(t *testing.T) {
		assert.Zero(t, RetryAfter(nil))
	})

	t.Run("future date", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{}}
		resp.Header.Set("Retry-After", time.Now().Add(time.Hour).UTC().Format(http.TimeFormat))
		assert.Greater(t, RetryAfter(resp), 58*time.Minute)
	})
}

func TestWrapHTTPError(t *testing.T) {
	cause := errors.New("upstream")

	t.Run("no status code", func(t *testing.T) {
		assert.Same(t, cause, WrapHTTPError(cause, 0, nil))
	})

	t.Run("nil error", func(t *testing.T) {
		assert.NoError(t, WrapHTTPError(nil, 500, nil))
	})

	t.Run("rate limit with hint", func(t *testing.T) {
		resp := &http.Response{Header: http.Header{"Retry-After": []string{"3"}}}

		err := WrapHTTPError(cause, 429, resp)

		assert.True(t, stepper.IsTransient(err))
		assert.Equal(t, 429, stepper.StatusCodeOf(err))
		assert.Equal(t, 3*time.Second, stepper.RetryAfterOf(err))
		assert.ErrorIs(t, err, cause)
	})

	t.Run("auth failure", func(t *testing.T) {
		err := WrapHTTPError(cause, 401, nil)
		assert.True(t, stepper.IsPermanent(err))
	})
}
