package steam

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"

	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
)

// TimeSync learns and caches the offset between the local clock and the
// provider's clock. Alignment happens at most once per process lifetime; a
// failed attempt does not latch, so a later caller retries.
type TimeSync struct {
	client  *Client
	clock   clock.Clocker
	group   singleflight.Group
	offset  *atomic.Int64
	aligned *atomic.Bool
}

// NewTimeSync builds a TimeSync over the gateway and local clock.
func NewTimeSync(client *Client, clk clock.Clocker) *TimeSync {
	return &TimeSync{
		client:  client,
		clock:   clk,
		offset:  atomic.NewInt64(0),
		aligned: atomic.NewBool(false),
	}
}

// Align fetches the provider time and latches the clock offset. Concurrent
// callers are single-flighted into one network round trip; after the first
// success every call is a no-op.
func (t *TimeSync) Align(ctx context.Context) error {
	if t.aligned.Load() {
		return nil
	}

	_, err, _ := t.group.Do("align", func() (any, error) {
		if t.aligned.Load() {
			return nil, nil
		}

		serverTime, err := t.fetchServerTime(ctx)
		if err != nil {
			return nil, err
		}

		local := t.clock.Now().Unix()
		t.offset.Store(serverTime - local)
		t.aligned.Store(true)

		slog.InfoContext(ctx, "provider clock aligned", "offset_seconds", serverTime-local)
		return nil, nil
	})

	return err
}

// Aligned reports whether a successful alignment has latched.
func (t *TimeSync) Aligned() bool {
	return t.aligned.Load()
}

// Now returns the local time shifted by the latched offset. Before alignment
// the offset is zero.
func (t *TimeSync) Now() time.Time {
	return t.clock.Now().Add(time.Duration(t.offset.Load()) * time.Second)
}

type serverTimeResponse struct {
	Response struct {
		ServerTime string `json:"server_time"`
	} `json:"response"`
}

func (t *TimeSync) fetchServerTime(ctx context.Context) (int64, error) {
	ctx, span := t.client.startSpan(ctx, "FetchServerTime")
	defer span.End()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		t.client.community+"/mobileconf/gettime", strings.NewReader("steamid=0"))
	if err != nil {
		return 0, goerror.NewServer(err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", mobileUserAgent)
	req.Header.Set("X-Requested-With", appRequestedWith)

	resp, err := t.client.httpClient.Do(req)
	if err != nil {
		return 0, networkError(err)
	}

	body, err := readBody(resp)
	if err != nil {
		return 0, networkError(err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, classifyStatus(resp.StatusCode, body)
	}

	var parsed serverTimeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return 0, goerror.NewRemote(err, "malformed server time payload", goerror.CodeDataParse)
	}

	serverTime, err := strconv.ParseInt(parsed.Response.ServerTime, 10, 64)
	if err != nil || serverTime <= 0 {
		return 0, goerror.NewRemote(err, "malformed server time payload", goerror.CodeDataParse)
	}

	return serverTime, nil
}
