package httpmiddleware

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func doRequest(h http.Handler, remote string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestRateLimit_BurstThenReject(t *testing.T) {
	h := RateLimit(RateLimitConfig{Rate: rate.Every(time.Minute), Burst: 2})(okHandler())

	for i := range 2 {
		w := doRequest(h, "10.0.0.1:9999", nil)
		require.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := doRequest(h, "10.0.0.1:9999", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	retry, err := strconv.Atoi(w.Header().Get("Retry-After"))
	require.NoError(t, err)
	assert.Positive(t, retry)

	var (
		code int
		msg  string
	)
	err = jx.DecodeBytes(w.Body.Bytes()).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "code":
			code, err = d.Int()
		case "message":
			msg, err = d.Str()
		default:
			err = d.Skip()
		}
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, http.StatusTooManyRequests, code)
	assert.Equal(t, "rate limit exceeded", msg)
}

func TestRateLimit_RemainingCountsDown(t *testing.T) {
	h := RateLimit(RateLimitConfig{Rate: rate.Every(time.Hour), Burst: 3})(okHandler())

	for _, want := range []string{"2", "1", "0"} {
		w := doRequest(h, "10.0.0.1:1", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, want, w.Header().Get("X-RateLimit-Remaining"))
	}
}

func TestRateLimit_Keys(t *testing.T) {
	tests := []struct {
		name   string
		cfg    RateLimitConfig
		first  func(http.Handler) *httptest.ResponseRecorder
		second func(http.Handler) *httptest.ResponseRecorder
		other  func(http.Handler) *httptest.ResponseRecorder
	}{
		{
			name: "remote address",
			cfg:  RateLimitConfig{Rate: rate.Every(time.Minute), Burst: 1},
			first: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "10.0.0.1:1234", nil)
			},
			second: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "10.0.0.1:5678", nil)
			},
			other: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "10.0.0.2:1234", nil)
			},
		},
		{
			name: "forwarded for",
			cfg:  RateLimitConfig{Rate: rate.Every(time.Minute), Burst: 1},
			first: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "192.168.1.1:1", map[string]string{"X-Forwarded-For": "203.0.113.50, 70.41.3.18"})
			},
			second: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "192.168.1.2:2", map[string]string{"X-Forwarded-For": "203.0.113.50"})
			},
			other: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "192.168.1.1:1", map[string]string{"X-Real-IP": "198.51.100.7"})
			},
		},
		{
			name: "custom key",
			cfg: RateLimitConfig{
				Rate:    rate.Every(time.Minute),
				Burst:   1,
				KeyFunc: func(r *http.Request) string { return r.Header.Get("api_key") },
			},
			first: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "", map[string]string{"api_key": "a"})
			},
			second: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "", map[string]string{"api_key": "a"})
			},
			other: func(h http.Handler) *httptest.ResponseRecorder {
				return doRequest(h, "", map[string]string{"api_key": "b"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := RateLimit(tt.cfg)(okHandler())
			assert.Equal(t, http.StatusOK, tt.first(h).Code)
			assert.Equal(t, http.StatusTooManyRequests, tt.second(h).Code)
			assert.Equal(t, http.StatusOK, tt.other(h).Code)
		})
	}
}

func TestRateLimit_Skip(t *testing.T) {
	h := RateLimit(RateLimitConfig{
		Rate:  rate.Every(time.Minute),
		Burst: 1,
		Skip:  func(r *http.Request) bool { return r.Header.Get("X-Probe") != "" },
	})(okHandler())

	for i := range 5 {
		w := doRequest(h, "10.0.0.1:9999", map[string]string{"X-Probe": "1"})
		require.Equal(t, http.StatusOK, w.Code, "skipped request %d", i+1)
		assert.Empty(t, w.Header().Get("X-RateLimit-Limit"))
	}

	// Skipped requests do not spend the client's tokens.
	assert.Equal(t, http.StatusOK, doRequest(h, "10.0.0.1:9999", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(h, "10.0.0.1:9999", nil).Code)
}

func TestRateLimit_Cleanup(t *testing.T) {
	rl := newRateLimiter(RateLimitConfig{Rate: rate.Every(time.Minute), Burst: 1, ExpiresIn: time.Minute})
	now := time.Now()

	_, _, ok := rl.reserve("a", now)
	require.True(t, ok)
	_, _, ok = rl.reserve("b", now.Add(50*time.Second))
	require.True(t, ok)

	rl.cleanup(now.Add(90 * time.Second))
	assert.NotContains(t, rl.visitors, "a")
	assert.Contains(t, rl.visitors, "b")

	// An evicted client starts with a full bucket.
	_, _, ok = rl.reserve("a", now.Add(91*time.Second))
	assert.True(t, ok)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		header map[string]string
		want   string
	}{
		{name: "remote", remote: "10.1.1.1:80", want: "10.1.1.1"},
		{name: "remote without port", remote: "10.1.1.1", want: "10.1.1.1"},
		{name: "xff list", remote: "10.1.1.1:80", header: map[string]string{"X-Forwarded-For": " 1.2.3.4 , 5.6.7.8"}, want: "1.2.3.4"},
		{name: "real ip", remote: "10.1.1.1:80", header: map[string]string{"X-Real-IP": "9.9.9.9"}, want: "9.9.9.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.header {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}
