// File: utils/cache.go
package utils

import (
	"clinicore/config"
	"context"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
)

var (
	// SessionCacheClient holds onboarding sessions.
	SessionCacheClient *redis.Client
	// DraftCacheClient holds verification drafts that must survive the OTP redirect.
	DraftCacheClient *redis.Client
	// OTPCacheClient holds pending OTP hashes.
	OTPCacheClient *redis.Client
)

func newRedisClient(db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       db,
	})
}

func mustPing(client *redis.Client, name string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		log.Fatalf("Failed to connect to Redis (%s): %v", name, err)
	}
}

// InitRedis initializes all Redis clients used by the onboarding flow.
func InitRedis() {
	SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB)
	mustPing(SessionCacheClient, "Session")

	DraftCacheClient = newRedisClient(config.AppConfig.RedisDraftDB)
	mustPing(DraftCacheClient, "Draft")

	OTPCacheClient = newRedisClient(config.AppConfig.RedisOTPDB)
	mustPing(OTPCacheClient, "OTP")
}

// GetSessionCacheClient returns the Redis client for onboarding sessions.
func GetSessionCacheClient() *redis.Client {
	if SessionCacheClient == nil {
		SessionCacheClient = newRedisClient(config.AppConfig.RedisSessionDB)
		mustPing(SessionCacheClient, "Session")
	}
	return SessionCacheClient
}

// GetDraftCacheClient returns the Redis client for verification drafts.
func GetDraftCacheClient() *redis.Client {
	if DraftCacheClient == nil {
		DraftCacheClient = newRedisClient(config.AppConfig.RedisDraftDB)
		mustPing(DraftCacheClient, "Draft")
	}
	return DraftCacheClient
}

// GetOTPCacheClient returns the Redis client for OTP records.
func GetOTPCacheClient() *redis.Client {
	if OTPCacheClient == nil {
		OTPCacheClient = newRedisClient(config.AppConfig.RedisOTPDB)
		mustPing(OTPCacheClient, "OTP")
	}
	return OTPCacheClient
}
