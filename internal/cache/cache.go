package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Key builds "<namespace>:<sha256(parts...)>" so arbitrary user text can be
// used as a cache key without length or charset concerns.
func Key(namespace string, parts ...string) string {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{0})
		}
		h.Write([]byte(p))
	}
	return namespace + ":" + hex.EncodeToString(h.Sum(nil))
}

// Normalize collapses whitespace and case so trivially different prompts
// share a cache entry.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
