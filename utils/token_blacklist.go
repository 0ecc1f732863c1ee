package utils

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

type blacklistEntry struct {
	expiresAt time.Time
}

var (
	blacklist   = map[string]blacklistEntry{}
	blacklistMu sync.RWMutex
)

// blacklistKey derives a fixed-size key from a token so raw JWTs never sit
// in Redis or in process memory.
func blacklistKey(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// BlacklistToken revokes a token until its natural expiration, backing
// logout. Entries live in Redis keyed by token digest; without Redis the
// in-memory map covers the single instance.
func BlacklistToken(token string, expiresAt time.Time) {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	digest := blacklistKey(token)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = rc.Set(ctx, "jwt:blacklist:"+digest, "1", ttl).Err()
		return
	}
	blacklistMu.Lock()
	blacklist[digest] = blacklistEntry{expiresAt: expiresAt}
	blacklistMu.Unlock()
}

// IsTokenBlacklisted reports whether a token was revoked before its natural
// expiration. A Redis error reads as not revoked.
func IsTokenBlacklisted(token string) bool {
	digest := blacklistKey(token)
	if rc := GetRedis(); rc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		n, err := rc.Exists(ctx, "jwt:blacklist:"+digest).Result()
		return err == nil && n > 0
	}

	blacklistMu.RLock()
	entry, ok := blacklist[digest]
	blacklistMu.RUnlock()
	if !ok {
		return false
	}
	if time.Now().After(entry.expiresAt) {
		blacklistMu.Lock()
		delete(blacklist, digest)
		blacklistMu.Unlock()
		return false
	}
	return true
}
