package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenTTL matches how long the trivia API keeps an idle session token.
const TokenTTL = 6 * time.Hour

const tokenKey = "trivia:opentdb:token"

// TokenStore keeps the trivia API session token shared across instances.
type TokenStore struct {
	client *redis.Client
}

func NewTokenStore(client *redis.Client) *TokenStore {
	return &TokenStore{client: client}
}

// Token returns the stored token, or "" when there is none.
func (s *TokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, tokenKey).Result()
	if err == redis.Nil {
		return "", nil
	}
	return token, err
}

// SaveToken stores token and restarts its idle timer.
func (s *TokenStore) SaveToken(ctx context.Context, token string) error {
	return s.client.Set(ctx, tokenKey, token, TokenTTL).Err()
}

func (s *TokenStore) ClearToken(ctx context.Context) error {
	return s.client.Del(ctx, tokenKey).Err()
}
