// Package config reads runtime configuration through a typed interface so
// the rest of the code never touches the underlying store directly.
package config

import (
	"io"
	"time"
)

// TimeConfig reads integer keys as durations of a fixed unit.
type TimeConfig interface {
	// GetSecond reads key as a count of seconds.
	GetSecond(key string) time.Duration

	// GetMinute reads key as a count of minutes.
	GetMinute(key string) time.Duration

	// GetHour reads key as a count of hours.
	GetHour(key string) time.Duration

	// GetDay reads key as a count of 24h days.
	GetDay(key string) time.Duration
}

// SignedIntConfig reads signed integer keys.
type SignedIntConfig interface {
	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
}

// UnsignedIntConfig reads unsigned integer keys.
type UnsignedIntConfig interface {
	GetUint(key string) uint
	GetUint16(key string) uint16
	GetUint32(key string) uint32
	GetUint64(key string) uint64
}

// FloatConfig reads floating-point keys.
type FloatConfig interface {
	GetFloat32(key string) float32
	GetFloat64(key string) float64
}

// Config is the full read surface handed to modules. Missing keys resolve
// to the type's zero value; callers that need to distinguish absence keep
// an explicit enabled flag next to the value.
type Config interface {
	io.Closer
	TimeConfig
	SignedIntConfig
	UnsignedIntConfig
	FloatConfig

	GetBool(key string) bool

	GetString(key string) string

	// GetBinary reads a base64-encoded key as raw bytes.
	GetBinary(key string) []byte

	// GetArray reads a key stored as <e1>,<e2>,... into a string slice.
	GetArray(key string) []string

	// GetMap reads a key stored as <k1>:<v1>,<k2>:<v2>,... into a map.
	GetMap(key string) map[string]string
}
