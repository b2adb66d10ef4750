package config

import (
	"io"
	"time"
)

// Config defines a set of methods for retrieving configuration values of
// various types. Implementations handle retrieval and type conversion,
// returning zero values when a key is absent or unconvertible.
type Config interface {
	io.Closer

	// GetString retrieves the value for key as a string.
	GetString(key string) string

	// GetInt retrieves the value for key as an int.
	GetInt(key string) int

	// GetInt64 retrieves the value for key as an int64.
	GetInt64(key string) int64

	// GetFloat64 retrieves the value for key as a float64.
	GetFloat64(key string) float64

	// GetBool retrieves the value for key as a bool.
	GetBool(key string) bool

	// GetSecond retrieves the value for key as a duration in seconds.
	GetSecond(key string) time.Duration

	// GetMinute retrieves the value for key as a duration in minutes.
	GetMinute(key string) time.Duration

	// GetHour retrieves the value for key as a duration in hours.
	GetHour(key string) time.Duration

	// GetDay retrieves the value for key as a duration in days (24h).
	GetDay(key string) time.Duration

	// GetArray retrieves the value for key as a slice of strings.
	// The value is stored with format <element1>,<element2>,...
	GetArray(key string) []string

	// GetBinary retrieves the value for key as a byte slice.
	// The value is stored base64-encoded.
	GetBinary(key string) []byte
}
