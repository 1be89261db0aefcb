package cache

import "time"

// BytesCache is a minimal cache API storing raw bytes with TTL.
// Read-path responses are cached as their JSON encoding so the same
// interface works for both the in-process and the Redis backend.
type BytesCache interface {
	GetBytes(key string) (b []byte, ok bool, err error)
	SetBytes(key string, value []byte, ttl time.Duration) error
}
