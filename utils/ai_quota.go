package utils

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sugarstop/sugarstop/config"
)

func aiKey(parts ...string) string {
	return "ai:" + strings.Join(parts, ":")
}

// AICooldownTry enforces a short gap between model calls per user so a
// double-tap does not burn two generations. Fail-open on Redis trouble or
// when no Redis is configured.
func AICooldownTry(userID uint) bool {
	cfg := config.Get()
	sec := cfg.AICooldownSec
	if sec <= 0 {
		return true
	}
	cli := GetRedis()
	if cli == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := aiKey("cooldown", fmt.Sprint(userID))
	ok, err := cli.SetNX(ctx, key, "1", time.Duration(sec)*time.Second).Result()
	if err != nil {
		return true
	}
	return ok
}

// AIDailyQuotaCheck allows up to N model calls per user per day.
func AIDailyQuotaCheck(userID uint) bool {
	cfg := config.Get()
	limit := cfg.AIDailyQuota
	if limit <= 0 {
		return true
	}
	cli := GetRedis()
	if cli == nil {
		return true
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := aiKey("day", fmt.Sprint(userID), time.Now().Format("20060102"))
	n, err := cli.Get(ctx, key).Int()
	if err == redis.Nil {
		n = 0
	} else if err != nil {
		return true
	}
	return n < limit
}

// AIDailyQuotaIncrement counts one model call against today's quota.
func AIDailyQuotaIncrement(userID uint) {
	cli := GetRedis()
	if cli == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	key := aiKey("day", fmt.Sprint(userID), time.Now().Format("20060102"))
	if err := cli.Incr(ctx, key).Err(); err == nil {
		ttl := time.Until(time.Now().Truncate(24 * time.Hour).Add(24 * time.Hour))
		_ = cli.Expire(ctx, key, ttl).Err()
	}
}
