package framequery

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framequery/framequery-go/retry"
)

// fastPolicy keeps retry tests quick without changing attempt counts.
var fastPolicy = retry.Policy{
	MaxRetries:   2,
	InitialDelay: time.Millisecond,
	MaxDelay:     5 * time.Millisecond,
	Multiplier:   2.0,
}

func newTestClient(t *testing.T, baseURL string, opts ...Option) *Client {
	t.Helper()
	opts = append([]Option{WithBaseURL(baseURL), WithRetryPolicy(fastPolicy)}, opts...)
	client, err := New("test-key", opts...)
	require.NoError(t, err)
	return client
}

func TestRequest_RetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"db down"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.request(context.Background(), http.MethodGet, "/jobs/j1", nil)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrAPI, e.Code)
	assert.Equal(t, 500, e.HTTPStatus)
	assert.Equal(t, "db down", e.Message)
	assert.Equal(t, int32(3), attempts.Load(), "max_retries+1 attempts")
}

func TestRequest_Retries429(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.request(context.Background(), http.MethodGet, "/quota", nil)

	assert.True(t, IsRateLimited(err))
	assert.Equal(t, int32(3), attempts.Load())
}

func TestRequest_NoRetryOnClientErrors(t *testing.T) {
	for _, status := range []int{400, 401, 403, 404, 422} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			var attempts atomic.Int32
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts.Add(1)
				w.WriteHeader(status)
			}))
			defer srv.Close()

			client := newTestClient(t, srv.URL)
			_, err := client.request(context.Background(), http.MethodGet, "/jobs/j1", nil)

			require.Error(t, err)
			assert.Equal(t, int32(1), attempts.Load(), "4xx must not be retried")
		})
	}
}

func TestRequest_RecoversAfterTransientError(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"data":{"jobId":"j1"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	data, err := client.request(context.Background(), http.MethodGet, "/jobs/j1", nil)

	require.NoError(t, err)
	assert.Equal(t, "j1", stringField(toMap(data), "jobId"))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestRequest_HonorsRetryAfter(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) == 1 {
			w.Header().Set("Retry-After", "0.1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	start := time.Now()
	_, err := client.request(context.Background(), http.MethodGet, "/quota", nil)

	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 100*time.Millisecond,
		"Retry-After overrides the computed backoff")
	assert.Equal(t, int32(2), attempts.Load())
}

func TestRequest_TransportFailureWrappedAfterRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse every connection

	client := newTestClient(t, srv.URL)
	_, err := client.request(context.Background(), http.MethodGet, "/quota", nil)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrTransport, e.Code)
	assert.Contains(t, e.Message, "request failed after retries")
	assert.Error(t, e.Cause)
}

func TestRequest_Headers(t *testing.T) {
	var got http.Header
	var method string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		method = r.Method
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.request(context.Background(), http.MethodPost, "/jobs", map[string]string{"fileName": "a.mp4"})
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, method)
	assert.Equal(t, "Bearer test-key", got.Get("Authorization"))
	assert.Equal(t, "framequery-go/"+Version, got.Get("User-Agent"))
	assert.Equal(t, "application/json", got.Get("Content-Type"))
	assert.NotEmpty(t, got.Get("X-Request-Id"))
}

func TestRequest_FreshRequestIDPerAttempt(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-Id"))
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.request(context.Background(), http.MethodGet, "/quota", nil)
	require.Error(t, err)

	require.Len(t, ids, 3)
	assert.NotEqual(t, ids[0], ids[1])
	assert.NotEqual(t, ids[1], ids[2])
}

func TestRequest_CancelDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	slow := retry.Policy{MaxRetries: 2, InitialDelay: 10 * time.Second, MaxDelay: 10 * time.Second, Multiplier: 2.0}
	client := newTestClient(t, srv.URL, WithRetryPolicy(slow))

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	_, err := client.request(ctx, http.MethodGet, "/quota", nil)

	e, ok := AsError(err)
	require.True(t, ok)
	assert.Equal(t, ErrTransport, e.Code)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Less(t, time.Since(start), 5*time.Second, "cancellation must cut the backoff wait short")
}

func TestRequest_BodyResentOnRetry(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var sb strings.Builder
		buf := make([]byte, 1024)
		for {
			n, err := r.Body.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				break
			}
		}
		bodies = append(bodies, sb.String())
		if len(bodies) < 2 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, err := client.request(context.Background(), http.MethodPost, "/jobs", map[string]string{"fileName": "a.mp4"})
	require.NoError(t, err)

	require.Len(t, bodies, 2)
	assert.JSONEq(t, `{"fileName":"a.mp4"}`, bodies[0])
	assert.Equal(t, bodies[0], bodies[1], "retries resend the full body")
}
