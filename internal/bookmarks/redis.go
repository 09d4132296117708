package bookmarks

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "bookmarks:"

// DefaultTTL is how long an untouched visitor's bookmarks are kept
const DefaultTTL = 90 * 24 * time.Hour

// NewRedisClient parses redisURL and verifies the connection
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return client, nil
}

// RedisStore keeps each visitor's bookmarks in a Redis set
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a store on client. A ttl <= 0 keeps bookmarks forever.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

var _ Store = (*RedisStore)(nil)

func visitorKey(visitorID string) string {
	return keyPrefix + visitorID
}

// List returns the visitor's bookmarked ids, sorted
func (s *RedisStore) List(ctx context.Context, visitorID string) ([]string, error) {
	ids, err := s.client.SMembers(ctx, visitorKey(visitorID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list bookmarks: %w", err)
	}
	slices.Sort(ids)
	return ids, nil
}

// Add bookmarks a card and refreshes the visitor's expiry
func (s *RedisStore) Add(ctx context.Context, visitorID, cardID string) error {
	if err := validate(visitorID, cardID); err != nil {
		return err
	}
	key := visitorKey(visitorID)
	pipe := s.client.TxPipeline()
	pipe.SAdd(ctx, key, cardID)
	if s.ttl > 0 {
		pipe.Expire(ctx, key, s.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to add bookmark: %w", err)
	}
	return nil
}

// Remove drops a bookmark
func (s *RedisStore) Remove(ctx context.Context, visitorID, cardID string) error {
	if err := validate(visitorID, cardID); err != nil {
		return err
	}
	if err := s.client.SRem(ctx, visitorKey(visitorID), cardID).Err(); err != nil {
		return fmt.Errorf("failed to remove bookmark: %w", err)
	}
	return nil
}

// Ping checks if Redis is reachable
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
