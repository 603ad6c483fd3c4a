package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const sessionPrefix = "session:"
const flashPrefix = "flash:"

// NewRedisClient conecta e valida a conexão com o Redis
func NewRedisClient(ctx context.Context, redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("error parsing redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Ping the client to ensure connection is established
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("error pinging redis: %w", err)
	}

	return client, nil
}

// RedisStore implementa Store usando chaves "session:{id}" com TTL
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore cria um RedisStore; ttl é usado quando a autorização não define ExpiresAt
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func (r *RedisStore) Get(ctx context.Context, id string) (*Authorisation, error) {
	data, err := r.client.Get(ctx, sessionPrefix+id).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	var auth Authorisation
	if err := json.Unmarshal([]byte(data), &auth); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &auth, nil
}

func (r *RedisStore) Save(ctx context.Context, id string, auth *Authorisation) error {
	data, err := json.Marshal(auth)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	ttl := r.ttl
	if !auth.ExpiresAt.IsZero() {
		ttl = time.Until(auth.ExpiresAt)
	}

	if err := r.client.Set(ctx, sessionPrefix+id, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set session: %w", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, sessionPrefix+id).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// RedisFlashBag implementa FlashBag com uma lista "flash:{subject}"
type RedisFlashBag struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisFlashBag cria um RedisFlashBag
func NewRedisFlashBag(client *redis.Client, ttl time.Duration) *RedisFlashBag {
	return &RedisFlashBag{client: client, ttl: ttl}
}

func (b *RedisFlashBag) Add(ctx context.Context, subject string, flash Flash) error {
	data, err := json.Marshal(flash)
	if err != nil {
		return fmt.Errorf("failed to marshal flash: %w", err)
	}

	key := flashPrefix + subject
	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, data)
		pipe.Expire(ctx, key, b.ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add flash: %w", err)
	}
	return nil
}

func (b *RedisFlashBag) Pop(ctx context.Context, subject string) ([]Flash, error) {
	key := flashPrefix + subject

	var lrange *redis.StringSliceCmd
	_, err := b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		lrange = pipe.LRange(ctx, key, 0, -1)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to pop flashes: %w", err)
	}

	flashes := make([]Flash, 0, len(lrange.Val()))
	for _, item := range lrange.Val() {
		var flash Flash
		if err := json.Unmarshal([]byte(item), &flash); err != nil {
			continue
		}
		flashes = append(flashes, flash)
	}
	return flashes, nil
}
