package utils

import (
	"context"
	"net"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sugarstop/sugarstop/config"
)

var (
	redisClient *redis.Client
	redisOnce   sync.Once
)

// GetRedis returns the shared Redis client, or nil when Redis was unreachable
// at boot. Callers treat nil as "run on the in-memory fallbacks": cached
// stats, OAuth state and the token blacklist all degrade to single-instance
// mode instead of erroring.
func GetRedis() *redis.Client {
	redisOnce.Do(func() {
		cfg := config.Get()
		client := redis.NewClient(&redis.Options{
			Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
			Password:     cfg.RedisPassword,
			DB:           cfg.RedisDB,
			DialTimeout:  3 * time.Second,
			ReadTimeout:  2 * time.Second,
			WriteTimeout: 2 * time.Second,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			if Sugar != nil {
				Sugar.Warnf("redis unreachable at %s:%d, using in-memory fallbacks: %v",
					cfg.RedisHost, cfg.RedisPort, err)
			}
			_ = client.Close()
			return
		}
		redisClient = client
	})
	return redisClient
}
