package cache

import (
	"context"
	"time"
)

// Cache interface định nghĩa contract cho cache layer
type Cache interface {
	// Get lấy data từ cache và unmarshal vào dest
	// found = false: cache miss, dest không bị thay đổi
	Get(ctx context.Context, key string, dest interface{}) (bool, error)

	// Set lưu data vào cache với TTL
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error

	// Delete xóa các keys khỏi cache
	Delete(ctx context.Context, keys ...string) error

	Ping(ctx context.Context) error
}

// ReleaseFunc gives a held lock back. Releasing a lock that already expired
// or was taken over by another holder is a no-op.
type ReleaseFunc func(ctx context.Context) error

// Locker hands out short-lived exclusive locks keyed by name
type Locker interface {
	// TryLock returns acquired=false without error when another holder owns key
	TryLock(ctx context.Context, key string, ttl time.Duration) (release ReleaseFunc, acquired bool, err error)
}
