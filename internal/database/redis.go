package database

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/devjasani79/WhatsUpDev/internal/config"
)

var Redis *redis.Client
var Ctx = context.Background()

const onlineUsersKey = "presence:online"

func InitRedis() {
	Redis = redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       0,
	})

	_, err := Redis.Ping(Ctx).Result()
	if err != nil {
		log.Printf("Warning: Failed to connect to Redis: %v. Rate limiting and presence lookups will be degraded.", err)
	} else {
		log.Println("Connected to Redis successfully")
	}
}

// Rate Limiting
func CheckRateLimit(key string, limit int, duration time.Duration) (bool, error) {
	redisKey := fmt.Sprintf("rate_limit:%s", key)
	count, err := Redis.Incr(Ctx, redisKey).Result()
	if err != nil {
		return false, err
	}

	if count == 1 {
		Redis.Expire(Ctx, redisKey, duration)
	}

	if count > int64(limit) {
		return false, nil
	}
	return true, nil
}

// Presence set. The websocket gateway is the writer; REST handlers only
// read it so search results can report who is online without touching the
// gateway's in-process state.

func MarkOnline(userID string) {
	if Redis == nil {
		return
	}
	Redis.SAdd(Ctx, onlineUsersKey, userID)
}

func MarkOffline(userID string) {
	if Redis == nil {
		return
	}
	Redis.SRem(Ctx, onlineUsersKey, userID)
}

func OnlineUsers(userIDs []string) map[string]bool {
	online := make(map[string]bool, len(userIDs))
	if Redis == nil || len(userIDs) == 0 {
		return online
	}
	members := make([]interface{}, len(userIDs))
	for i, id := range userIDs {
		members[i] = id
	}
	results, err := Redis.SMIsMember(Ctx, onlineUsersKey, members...).Result()
	if err != nil {
		return online
	}
	for i, ok := range results {
		if ok {
			online[userIDs[i]] = true
		}
	}
	return online
}
