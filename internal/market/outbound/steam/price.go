// Package steam fetches market price overviews from the provider.
package steam

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sethvargo/go-retry"
	"go.opentelemetry.io/otel/trace"

	"steamvault/internal/market/entity"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
	"steamvault/internal/pkg/instrument"
)

const desktopUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/123.0.0.0 Safari/537.36"

// Config holds the endpoint and retry settings for the price client.
type Config struct {
	CommunityBaseURL string
	Timeout          time.Duration
	MaxRetries       uint64
}

// Client fetches price overviews, retrying transient transport failures
// with fibonacci backoff. Application-level misses are not retried.
type Client struct {
	httpClient *http.Client
	baseURL    string
	maxRetries uint64
	clock      clock.Clocker
	ins        instrument.Instrumentation
}

// NewClient builds a price client from config.
func NewClient(cfg Config, clk clock.Clocker, ins instrument.Instrumentation) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.CommunityBaseURL,
		maxRetries: cfg.MaxRetries,
		clock:      clk,
		ins:        ins,
	}
}

func (c *Client) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return c.ins.Tracer("market.outbound.steam").Start(ctx, name)
}

type priceOverviewResponse struct {
	Success     bool   `json:"success"`
	LowestPrice string `json:"lowest_price"`
	MedianPrice string `json:"median_price"`
	Volume      string `json:"volume"`
}

// FetchPrice returns the price overview for one item. A response with
// success=false is a valid negative answer, not an error.
func (c *Client) FetchPrice(ctx context.Context, appID, currency int, marketHashName string) (*entity.Price, error) {
	ctx, span := c.startSpan(ctx, "FetchPrice")
	defer span.End()

	q := url.Values{}
	q.Set("appid", strconv.Itoa(appID))
	q.Set("currency", strconv.Itoa(currency))
	q.Set("market_hash_name", marketHashName)

	endpoint := c.baseURL + "/market/priceoverview/?" + q.Encode()

	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(500*time.Millisecond))

	var parsed priceOverviewResponse
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return goerror.NewServer(err)
		}
		req.Header.Set("User-Agent", desktopUserAgent)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return retry.RetryableError(goerror.NewRemote(err, "network failure reaching provider", goerror.CodeNetworkFailure))
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return retry.RetryableError(goerror.NewRemote(nil,
				"provider returned status "+http.StatusText(resp.StatusCode), goerror.CodeRemoteHTTP))
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			return goerror.NewRemote(nil,
				"provider returned status "+http.StatusText(resp.StatusCode), goerror.CodeRemoteHTTP)
		}

		if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
			return goerror.NewRemote(err, "malformed price payload", goerror.CodeDataParse)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &entity.Price{
		AppID:          appID,
		MarketHashName: marketHashName,
		Currency:       currency,
		Found:          parsed.Success,
		LowestPrice:    parsed.LowestPrice,
		MedianPrice:    parsed.MedianPrice,
		Volume:         parsed.Volume,
		FetchedAt:      c.clock.Now(),
	}, nil
}
