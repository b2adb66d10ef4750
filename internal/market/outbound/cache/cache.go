// Package cache stores fetched price overviews in Redis so repeated lookups
// do not hammer the provider.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"steamvault/internal/market/entity"
	"steamvault/internal/pkg/goerror"
)

// Redis caches price overviews. Negative answers are cached too; a miss from
// the provider is just as cacheable as a hit.
type Redis struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedis builds a price cache with the given key prefix and TTL.
func NewRedis(client redis.Cmdable, prefix string, ttl time.Duration) *Redis {
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

func (r *Redis) key(appID, currency int, marketHashName string) string {
	return r.prefix + ":price:" + strconv.Itoa(appID) + ":" + strconv.Itoa(currency) + ":" + marketHashName
}

// Get returns the cached price or goerror.ErrNotFound.
func (r *Redis) Get(ctx context.Context, appID, currency int, marketHashName string) (*entity.Price, error) {
	raw, err := r.client.Get(ctx, r.key(appID, currency, marketHashName)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, goerror.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var price entity.Price
	if err := json.Unmarshal(raw, &price); err != nil {
		return nil, err
	}

	return &price, nil
}

// Set stores the price for the configured TTL.
func (r *Redis) Set(ctx context.Context, price entity.Price) error {
	raw, err := json.Marshal(price)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, r.key(price.AppID, price.Currency, price.MarketHashName), raw, r.ttl).Err()
}
