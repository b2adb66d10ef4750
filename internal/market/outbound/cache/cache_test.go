package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamvault/internal/market/entity"
	"steamvault/internal/pkg/goerror"
)

func newCache(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, "steamvault:test", 5*time.Minute), mr
}

func TestCache(t *testing.T) {
	price := entity.Price{
		AppID:          730,
		Currency:       3,
		MarketHashName: "AK-47 | Redline (Field-Tested)",
		Found:          true,
		LowestPrice:    "12,50€",
		FetchedAt:      time.Unix(1700000000, 0).UTC(),
	}

	t.Run("Miss", func(t *testing.T) {
		c, _ := newCache(t)

		_, err := c.Get(context.Background(), 730, 3, price.MarketHashName)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("RoundTrip", func(t *testing.T) {
		c, _ := newCache(t)

		require.NoError(t, c.Set(context.Background(), price))

		got, err := c.Get(context.Background(), 730, 3, price.MarketHashName)
		require.NoError(t, err)
		assert.Equal(t, price, *got)
	})

	t.Run("KeyedByCurrency", func(t *testing.T) {
		c, _ := newCache(t)

		require.NoError(t, c.Set(context.Background(), price))

		_, err := c.Get(context.Background(), 730, 1, price.MarketHashName)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})

	t.Run("ExpiresAfterTTL", func(t *testing.T) {
		c, mr := newCache(t)

		require.NoError(t, c.Set(context.Background(), price))
		mr.FastForward(6 * time.Minute)

		_, err := c.Get(context.Background(), 730, 3, price.MarketHashName)
		assert.ErrorIs(t, err, goerror.ErrNotFound)
	})
}
