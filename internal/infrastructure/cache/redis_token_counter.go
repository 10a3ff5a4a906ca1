// Package cache holds the Redis backed stores.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
	"github.com/sangkips/pos-api/internal/config"
	"github.com/sangkips/pos-api/internal/domain/entity"
	domainRepo "github.com/sangkips/pos-api/internal/domain/repository"
)

const (
	tokenKeyPrefix = "counter_token"
	// a day's keys outlive the day in every timezone
	tokenKeyTTL = 48 * time.Hour
)

// NewRedisClient connects to Redis and checks the connection
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", cfg.Addr, err)
	}
	return client, nil
}

type redisTokenCounter struct {
	client *redis.Client
}

// NewRedisTokenCounter creates a token counter backed by Redis INCR
func NewRedisTokenCounter(client *redis.Client) domainRepo.CounterTokenRepository {
	return &redisTokenCounter{client: client}
}

func tokenKey(counterNo int, date string) string {
	return tokenKeyPrefix + ":" + strconv.Itoa(counterNo) + ":" + date
}

func (r *redisTokenCounter) Next(ctx context.Context, counterNo int, date string) (int, error) {
	key := tokenKey(counterNo, date)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, tokenKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	return int(incr.Val()), nil
}

func (r *redisTokenCounter) ListByDate(ctx context.Context, date string) ([]entity.CounterToken, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, tokenKeyPrefix+":*:"+date, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []entity.CounterToken{}, nil
	}

	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	tokens := make([]entity.CounterToken, 0, len(keys))
	for i, key := range keys {
		counterNo, err := parseCounterNo(key)
		if err != nil {
			return nil, err
		}
		raw, ok := values[i].(string)
		if !ok {
			// expired between SCAN and MGET
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("token value for %s: %w", key, err)
		}
		tokens = append(tokens, entity.CounterToken{CounterNo: counterNo, Date: date, TokenNumber: n})
	}

	sort.Slice(tokens, func(i, j int) bool { return tokens[i].CounterNo < tokens[j].CounterNo })
	return tokens, nil
}

func parseCounterNo(key string) (int, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 {
		return 0, errors.New("malformed token key " + key)
	}
	return strconv.Atoi(parts[1])
}
