package user

import (
	"context"
	"fmt"
	"time"

	"jamb/utils"

	"github.com/go-redis/redis/v8"
)

// RedisTokenStore keeps one key per issued token: auth:<userID>:<hash>.
type RedisTokenStore struct {
	Client *redis.Client
}

func NewRedisTokenStore(client *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{Client: client}
}

func tokenKey(userID, hash string) string {
	return utils.AuthCachePrefix + userID + ":" + hash
}

func (s *RedisTokenStore) Save(ctx context.Context, userID, hash string, ttl time.Duration) error {
	return s.Client.Set(ctx, tokenKey(userID, hash), 1, ttl).Err()
}

func (s *RedisTokenStore) Exists(ctx context.Context, userID, hash string) (bool, error) {
	n, err := s.Client.Exists(ctx, tokenKey(userID, hash)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *RedisTokenStore) Revoke(ctx context.Context, userID, hash string) error {
	return s.Client.Del(ctx, tokenKey(userID, hash)).Err()
}

func (s *RedisTokenStore) RevokeAll(ctx context.Context, userID string) error {
	iter := s.Client.Scan(ctx, 0, utils.AuthCachePrefix+userID+":*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan tokens: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.Client.Del(ctx, keys...).Err()
}
