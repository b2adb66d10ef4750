package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDeviceActive(t *testing.T) {
	now := time.Unix(1700000000, 0)

	t.Run("LoggedIn", func(t *testing.T) {
		d := Device{LoggedIn: true}
		assert.True(t, d.Active(now))
	})

	t.Run("SeenWithinWindow", func(t *testing.T) {
		d := Device{LastSeen: now.Add(-4 * time.Minute)}
		assert.True(t, d.Active(now))
	})

	t.Run("SeenOutsideWindow", func(t *testing.T) {
		d := Device{LastSeen: now.Add(-6 * time.Minute)}
		assert.False(t, d.Active(now))
		assert.True(t, d.Recent(now))
	})

	t.Run("NeverSeen", func(t *testing.T) {
		d := Device{}
		assert.False(t, d.Active(now))
		assert.False(t, d.Recent(now))
	})
}

func TestDeviceNewlySeen(t *testing.T) {
	now := time.Unix(1700000000, 0)

	assert.True(t, Device{FirstSeen: now.Add(-13 * 24 * time.Hour)}.NewlySeen(now))
	assert.False(t, Device{FirstSeen: now.Add(-15 * 24 * time.Hour)}.NewlySeen(now))
	assert.False(t, Device{}.NewlySeen(now))
}

func TestFilterDevices(t *testing.T) {
	now := time.Unix(1700000000, 0)
	devices := []Device{
		{TokenID: "active", LoggedIn: true},
		{TokenID: "recent", LastSeen: now.Add(-time.Hour)},
		{TokenID: "stale"},
	}

	active := FilterDevices(devices, DeviceFilterActive, now)
	assert.Len(t, active, 1)
	assert.Equal(t, "active", active[0].TokenID)

	recent := FilterDevices(devices, DeviceFilterRecent, now)
	assert.Len(t, recent, 1)
	assert.Equal(t, "recent", recent[0].TokenID)

	all := FilterDevices(devices, DeviceFilterAll, now)
	assert.Len(t, all, 3)
}

func TestSortDevices(t *testing.T) {
	now := time.Unix(1700000000, 0)
	devices := []Device{
		{TokenID: "old", LastSeen: now.Add(-2 * time.Hour)},
		{TokenID: "loggedin", LoggedIn: true, LastSeen: now.Add(-3 * time.Hour)},
		{TokenID: "fresh", LastSeen: now.Add(-time.Hour)},
		{TokenID: "justnow", LastSeen: now.Add(-time.Minute)},
	}

	SortDevices(devices, now)

	got := make([]string, 0, len(devices))
	for _, d := range devices {
		got = append(got, d.TokenID)
	}

	// Active devices lead regardless of last-seen, the rest sort by recency.
	assert.Equal(t, []string{"justnow", "loggedin", "fresh", "old"}, got)
}

func TestDeviceFilterValid(t *testing.T) {
	assert.True(t, DeviceFilterAll.Valid())
	assert.True(t, DeviceFilterActive.Valid())
	assert.True(t, DeviceFilterRecent.Valid())
	assert.False(t, DeviceFilter("stale").Valid())
}
