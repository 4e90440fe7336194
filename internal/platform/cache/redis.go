package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"eventhub/internal/platform/config"

	"github.com/redis/go-redis/v9"
)

var RDB *redis.Client

func ConnectRedis() {
	RDB = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisDB,
	})

	ctx := context.Background()
	_, err := RDB.Ping(ctx).Result()
	if err != nil {
		log.Fatalf("Could not connect to Redis: %v", err)
	}
	fmt.Println("Successfully connected to Redis!")
}

func CloseRedis() {
	if RDB != nil {
		RDB.Close()
		fmt.Println("Redis connection closed.")
	}
}

const revokedTokenKeyPrefix = "revoked_token:"

// RevokeToken places a token id on the denylist until the token would have
// expired anyway.
func RevokeToken(ctx context.Context, jti string, expiresAt time.Time) error {
	if RDB == nil {
		return nil
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil // already expired, nothing to deny
	}
	return RDB.Set(ctx, revokedTokenKeyPrefix+jti, "1", ttl).Err()
}

// IsTokenRevoked reports whether a token id has been revoked by logout.
// Without a connected client (tests) no token is considered revoked.
func IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	if RDB == nil {
		return false, nil
	}
	n, err := RDB.Exists(ctx, revokedTokenKeyPrefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
