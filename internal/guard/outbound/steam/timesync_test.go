package steam

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/atomic"

	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/instrument"
)

func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Config{
		CommunityBaseURL: srv.URL,
		StoreBaseURL:     srv.URL,
		Timeout:          5 * time.Second,
	}, instrument.NewNoop())
}

func TestTimeSyncAlign(t *testing.T) {
	t.Run("SingleFetchForConcurrentCallers", func(t *testing.T) {
		calls := atomic.NewInt64(0)
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Inc()
			time.Sleep(50 * time.Millisecond) // hold callers in flight
			w.Write([]byte(`{"response":{"server_time":"1700000100"}}`))
		}))

		local := time.Unix(1700000000, 0)
		ts := NewTimeSync(client, clock.NewFixed(local))

		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, ts.Align(context.Background()))
			}()
		}
		wg.Wait()

		assert.Equal(t, int64(1), calls.Load())
		assert.True(t, ts.Aligned())
		assert.Equal(t, local.Add(100*time.Second), ts.Now())

		// Already aligned, no further fetches.
		require.NoError(t, ts.Align(context.Background()))
		assert.Equal(t, int64(1), calls.Load())
	})

	t.Run("FailureDoesNotLatch", func(t *testing.T) {
		calls := atomic.NewInt64(0)
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Inc() == 1 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"response":{"server_time":"1700000100"}}`))
		}))

		ts := NewTimeSync(client, clock.NewFixed(time.Unix(1700000000, 0)))

		err := ts.Align(context.Background())
		assert.True(t, goerror.HasCode(err, goerror.CodeRemoteHTTP))
		assert.False(t, ts.Aligned())

		require.NoError(t, ts.Align(context.Background()))
		assert.True(t, ts.Aligned())
		assert.Equal(t, int64(2), calls.Load())
	})

	t.Run("MalformedServerTime", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"response":{"server_time":"soon"}}`))
		}))

		ts := NewTimeSync(client, clock.NewFixed(time.Unix(1700000000, 0)))

		err := ts.Align(context.Background())
		assert.True(t, goerror.HasCode(err, goerror.CodeDataParse))
		assert.False(t, ts.Aligned())
	})

	t.Run("NowBeforeAlignment", func(t *testing.T) {
		client := newTestClient(t, http.NotFoundHandler())

		local := time.Unix(1700000000, 0)
		ts := NewTimeSync(client, clock.NewFixed(local))

		assert.Equal(t, local, ts.Now())
	})

	t.Run("MobileHeadersSent", func(t *testing.T) {
		client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "/mobileconf/gettime", r.URL.Path)
			assert.Equal(t, mobileUserAgent, r.Header.Get("User-Agent"))
			assert.Equal(t, appRequestedWith, r.Header.Get("X-Requested-With"))
			w.Write([]byte(`{"response":{"server_time":"1700000100"}}`))
		}))

		ts := NewTimeSync(client, clock.NewFixed(time.Unix(1700000000, 0)))
		assert.NoError(t, ts.Align(context.Background()))
	})
}
