// File: utils/cache.go
package utils

import (
	"context"
	"log"
	"strconv"
	"time"

	"vecino/config"

	"github.com/go-redis/redis/v8"
)

// CacheClient is the generic cache client.
var CacheClient *redis.Client

const unreadBadgePrefix = "unreadBadge:"

// InitCache initializes the generic Redis cache client (using DB from AppConfig for general caching).
func InitCache() {
	CacheClient = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisCacheDB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := CacheClient.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Failed to connect to Redis (Cache): %v", err)
	}
}

// GetCacheClient returns the generic cache client.
func GetCacheClient() *redis.Client {
	if CacheClient == nil {
		InitCache()
	}
	return CacheClient
}

// CachedUnreadBadge returns the cached unread count for a user, or -1 on miss.
func CachedUnreadBadge(ctx context.Context, userID string) int {
	val, err := GetCacheClient().Get(ctx, unreadBadgePrefix+userID).Result()
	if err != nil {
		return -1
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return -1
	}
	return n
}

// SetUnreadBadge caches the unread count for a user with a short TTL.
func SetUnreadBadge(ctx context.Context, userID string, count int) {
	GetCacheClient().Set(ctx, unreadBadgePrefix+userID, strconv.Itoa(count), time.Minute)
}

// InvalidateUnreadBadge drops the cached unread count after reads/creates.
func InvalidateUnreadBadge(ctx context.Context, userID string) {
	GetCacheClient().Del(ctx, unreadBadgePrefix+userID)
}
