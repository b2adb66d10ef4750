package entity

import (
	"sort"
	"time"

	"github.com/samber/lo"
)

// DeviceKind classifies an authorized device by platform.
type DeviceKind string

const (
	DeviceKindPCClient      DeviceKind = "pc_client"
	DeviceKindMobileIOS     DeviceKind = "mobile_ios"
	DeviceKindMobileAndroid DeviceKind = "mobile_android"
	DeviceKindWeb           DeviceKind = "web"
)

// DeviceCategory tags where a device record came from on the remote page.
type DeviceCategory string

const (
	DeviceCategoryActive DeviceCategory = "active"
	DeviceCategoryRecent DeviceCategory = "recent"
)

// DeviceFilter selects a subset of the device list.
type DeviceFilter string

const (
	DeviceFilterAll    DeviceFilter = "all"
	DeviceFilterActive DeviceFilter = "active"
	DeviceFilterRecent DeviceFilter = "recent"
)

// Valid reports whether the filter is a known value.
func (f DeviceFilter) Valid() bool {
	return f == DeviceFilterAll || f == DeviceFilterActive || f == DeviceFilterRecent
}

// activeWindow is how recently a device must have been seen to still count
// as active when its loggedIn flag is false.
const activeWindow = 5 * time.Minute

// newDeviceWindow is how long a device counts as newly authorized.
const newDeviceWindow = 14 * 24 * time.Hour

// Device is a normalized authorized-device record. It is rebuilt from the
// remote page on every listing; only TokenID correlates records within one
// response.
type Device struct {
	TokenID         string
	Description     string
	Category        DeviceCategory
	Kind            DeviceKind
	Location        string
	LoggedIn        bool
	LastSeen        time.Time
	FirstSeen       time.Time
	IsNew           bool
	IsCurrentDevice bool
}

// Active reports whether the device counts as currently in use: either its
// loggedIn flag is set or it was seen within the last five minutes.
func (d Device) Active(now time.Time) bool {
	if d.LoggedIn {
		return true
	}

	return !d.LastSeen.IsZero() && now.Sub(d.LastSeen) <= activeWindow
}

// Recent reports whether the device is not active but has any last-seen
// timestamp at all.
func (d Device) Recent(now time.Time) bool {
	return !d.Active(now) && !d.LastSeen.IsZero()
}

// NewlySeen reports whether the device was first seen within the last 14 days.
func (d Device) NewlySeen(now time.Time) bool {
	return !d.FirstSeen.IsZero() && now.Sub(d.FirstSeen) <= newDeviceWindow
}

// FilterDevices returns the subset of devices matching the filter.
func FilterDevices(devices []Device, filter DeviceFilter, now time.Time) []Device {
	switch filter {
	case DeviceFilterActive:
		return lo.Filter(devices, func(d Device, _ int) bool { return d.Active(now) })
	case DeviceFilterRecent:
		return lo.Filter(devices, func(d Device, _ int) bool { return d.Recent(now) })
	default:
		return devices
	}
}

// SortDevices orders devices in place: active devices first, then descending
// last-seen; devices with no last-seen and not active sort last.
func SortDevices(devices []Device, now time.Time) {
	sort.SliceStable(devices, func(i, j int) bool {
		a, b := devices[i], devices[j]
		aActive, bActive := a.Active(now), b.Active(now)
		if aActive != bActive {
			return aActive
		}
		return a.LastSeen.After(b.LastSeen)
	})
}
