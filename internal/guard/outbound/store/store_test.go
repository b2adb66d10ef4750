package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"steamvault/internal/guard/entity"
	"steamvault/internal/pkg/clock"
	"steamvault/internal/pkg/goerror"
)

const steamID = "76561198000000001"

// adjustableClock lets a test move time forward between store calls.
type adjustableClock struct {
	at time.Time
}

func (c *adjustableClock) Now() time.Time { return c.at }

func newRedisStore(t *testing.T, clk clock.Clocker) *Redis {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	return NewRedis(client, "steamvault:test", clk)
}

func TestSessionStores(t *testing.T) {
	stores := map[string]func(t *testing.T, clk clock.Clocker) SessionStore{
		"Memory": func(t *testing.T, clk clock.Clocker) SessionStore { return NewMemory(clk) },
		"Redis":  func(t *testing.T, clk clock.Clocker) SessionStore { return newRedisStore(t, clk) },
	}

	for name, build := range stores {
		t.Run(name, func(t *testing.T) {
			t.Run("GetMissing", func(t *testing.T) {
				s := build(t, clock.NewFixed(time.Unix(1700000000, 0)))

				_, err := s.Get(context.Background(), steamID)
				assert.ErrorIs(t, err, goerror.ErrNotFound)
			})

			t.Run("SetStampsTimestamps", func(t *testing.T) {
				clk := &adjustableClock{at: time.Unix(1700000000, 0).UTC()}
				s := build(t, clk)

				require.NoError(t, s.Set(context.Background(), steamID, entity.Session{
					SessionID:   "sid",
					AccessToken: "token",
				}))

				sess, err := s.Get(context.Background(), steamID)
				require.NoError(t, err)
				assert.Equal(t, "sid", sess.SessionID)
				assert.True(t, sess.CreatedAt.Equal(clk.at))
				assert.True(t, sess.LastUsed.Equal(clk.at))
			})

			t.Run("SetPreservesCreatedAt", func(t *testing.T) {
				created := time.Unix(1700000000, 0).UTC()
				clk := &adjustableClock{at: created}
				s := build(t, clk)

				require.NoError(t, s.Set(context.Background(), steamID, entity.Session{
					SessionID:   "sid",
					AccessToken: "token",
				}))

				clk.at = created.Add(time.Hour)
				require.NoError(t, s.Set(context.Background(), steamID, entity.Session{
					SessionID:   "sid-2",
					AccessToken: "token-2",
				}))

				sess, err := s.Get(context.Background(), steamID)
				require.NoError(t, err)
				assert.Equal(t, "sid-2", sess.SessionID)
				assert.True(t, sess.CreatedAt.Equal(created), "CreatedAt survives replacement")
				assert.True(t, sess.LastUsed.Equal(created.Add(time.Hour)))
			})

			t.Run("TouchBumpsLastUsedOnly", func(t *testing.T) {
				created := time.Unix(1700000000, 0).UTC()
				clk := &adjustableClock{at: created}
				s := build(t, clk)

				require.NoError(t, s.Set(context.Background(), steamID, entity.Session{
					SessionID:   "sid",
					AccessToken: "token",
				}))

				clk.at = created.Add(time.Minute)
				require.NoError(t, s.Touch(context.Background(), steamID))

				sess, err := s.Get(context.Background(), steamID)
				require.NoError(t, err)
				assert.Equal(t, "sid", sess.SessionID)
				assert.True(t, sess.CreatedAt.Equal(created))
				assert.True(t, sess.LastUsed.Equal(created.Add(time.Minute)))
			})

			t.Run("TouchMissingIsNoop", func(t *testing.T) {
				s := build(t, clock.NewFixed(time.Unix(1700000000, 0)))

				assert.NoError(t, s.Touch(context.Background(), steamID))
				_, err := s.Get(context.Background(), steamID)
				assert.ErrorIs(t, err, goerror.ErrNotFound)
			})

			t.Run("Clear", func(t *testing.T) {
				s := build(t, clock.NewFixed(time.Unix(1700000000, 0)))

				require.NoError(t, s.Set(context.Background(), steamID, entity.Session{
					SessionID:   "sid",
					AccessToken: "token",
				}))
				require.NoError(t, s.Clear(context.Background(), steamID))

				_, err := s.Get(context.Background(), steamID)
				assert.ErrorIs(t, err, goerror.ErrNotFound)

				// Clearing again is harmless.
				assert.NoError(t, s.Clear(context.Background(), steamID))
			})
		})
	}
}

func TestValidity(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Unix(1700000000, 0))

	t.Run("NoSession", func(t *testing.T) {
		v, err := Validity(ctx, NewMemory(clk), steamID)
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, "no session stored", v.Reason)
	})

	t.Run("MissingToken", func(t *testing.T) {
		s := NewMemory(clk)
		require.NoError(t, s.Set(ctx, steamID, entity.Session{SessionID: "sid"}))

		v, err := Validity(ctx, s, steamID)
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, "access token is empty", v.Reason)
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		s := NewMemory(clk)
		require.NoError(t, s.Set(ctx, steamID, entity.Session{AccessToken: "token"}))

		v, err := Validity(ctx, s, steamID)
		require.NoError(t, err)
		assert.False(t, v.Valid)
		assert.Equal(t, "session id is empty", v.Reason)
	})

	t.Run("Usable", func(t *testing.T) {
		s := NewMemory(clk)
		require.NoError(t, s.Set(ctx, steamID, entity.Session{SessionID: "sid", AccessToken: "token"}))

		v, err := Validity(ctx, s, steamID)
		require.NoError(t, err)
		assert.True(t, v.Valid)
		require.NotNil(t, v.Session)
		assert.Equal(t, "sid", v.Session.SessionID)
	})
}
