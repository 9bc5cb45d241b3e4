package store

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/cppla/postboard/models"
)

// RedisTokenStore keeps refresh-token records in Redis with a TTL equal to the token's lifetime.
//
// Layout: "auth:refresh:<jti>" holds the owner id; "auth:refresh:user:<uid>" is the
// set of that owner's jtis, used for bulk revocation.
type RedisTokenStore struct {
	rc *redis.Client
}

// NewRedisTokenStore wraps a connected client.
func NewRedisTokenStore(rc *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rc: rc}
}

// Close releases the Redis connection pool.
func (s *RedisTokenStore) Close(ctx context.Context) error {
	return s.rc.Close()
}

func refreshKey(tokenID string) string { return "auth:refresh:" + tokenID }

func userRefreshKey(userID string) string { return "auth:refresh:user:" + userID }

// consumeScript removes the token only when it still belongs to the expected owner.
var consumeScript = redis.NewScript(`
local v = redis.call('GET', KEYS[1])
if v and v == ARGV[1] then
	redis.call('DEL', KEYS[1])
	redis.call('SREM', KEYS[2], ARGV[2])
	return 1
end
return 0
`)

func (s *RedisTokenStore) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	ttl := time.Until(token.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	ok, err := s.rc.SetNX(ctx, refreshKey(token.ID), token.UserID, ttl).Result()
	if err != nil {
		return fmt.Errorf("save refresh token: %w", err)
	}
	if !ok {
		return ErrDuplicate
	}

	setKey := userRefreshKey(token.UserID)
	pipe := s.rc.TxPipeline()
	pipe.SAdd(ctx, setKey, token.ID)
	// Tokens share one TTL, so the newest token decides how long the index lives
	pipe.Expire(ctx, setKey, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("index refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) ConsumeRefreshToken(ctx context.Context, userID, tokenID string) (bool, error) {
	n, err := consumeScript.Run(ctx, s.rc, []string{refreshKey(tokenID), userRefreshKey(userID)}, userID, tokenID).Int()
	if err != nil {
		return false, fmt.Errorf("consume refresh token: %w", err)
	}
	return n == 1, nil
}

func (s *RedisTokenStore) RevokeRefreshToken(ctx context.Context, tokenID string) error {
	key := refreshKey(tokenID)
	owner, err := s.rc.GetDel(ctx, key).Result()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("revoke refresh token: %w", err)
	}
	if err := s.rc.SRem(ctx, userRefreshKey(owner), tokenID).Err(); err != nil {
		return fmt.Errorf("unindex refresh token: %w", err)
	}
	return nil
}

func (s *RedisTokenStore) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	setKey := userRefreshKey(userID)
	ids, err := s.rc.SMembers(ctx, setKey).Result()
	if err != nil {
		return fmt.Errorf("list user refresh tokens: %w", err)
	}
	keys := make([]string, 0, len(ids)+1)
	for _, id := range ids {
		keys = append(keys, refreshKey(id))
	}
	keys = append(keys, setKey)
	if err := s.rc.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("revoke user refresh tokens: %w", err)
	}
	return nil
}
