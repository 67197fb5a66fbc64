package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/facetlabs/facet/internal/common/config"
)

// RedisStore implements Store using Redis. Session entries carry a TTL of
// the idle timeout, so redis evicts what the lazy expiry would; the durable
// snapshot is redis itself and Load is a no-op.
type RedisStore struct {
	logger *zap.Logger
	client *redis.Client
	prefix string
	ttl    time.Duration
}

var _ Store = (*RedisStore)(nil)

// NewRedisStore creates a new Redis-based session store.
func NewRedisStore(logger *zap.Logger, cfg config.SessionRedisConfig, ttl time.Duration) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	prefix := cfg.Prefix
	if prefix == "" {
		prefix = "facet:session"
	}

	return &RedisStore{
		logger: logger.Named("session.store.redis"),
		client: client,
		prefix: prefix + ":",
		ttl:    ttl,
	}, nil
}

func (s *RedisStore) key(handle int64) string {
	return s.prefix + strconv.FormatInt(handle, 10)
}

// Put implements Store.Put
func (s *RedisStore) Put(ctx context.Context, sess *Session) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.key(sess.Handle), data, s.ttl).Err()
}

// Get implements Store.Get
func (s *RedisStore) Get(ctx context.Context, handle int64) (*Session, error) {
	data, err := s.client.Get(ctx, s.key(handle)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, err
	}
	sess.Handle = handle
	return &sess, nil
}

// Delete implements Store.Delete
func (s *RedisStore) Delete(ctx context.Context, handle int64) error {
	return s.client.Del(ctx, s.key(handle)).Err()
}

// List implements Store.List
func (s *RedisStore) List(ctx context.Context) ([]*Session, error) {
	var (
		out    []*Session
		cursor uint64
	)
	for {
		keys, next, err := s.client.Scan(ctx, cursor, s.prefix+"*", 100).Result()
		if err != nil {
			return nil, err
		}
		for _, key := range keys {
			handle, err := strconv.ParseInt(key[len(s.prefix):], 10, 64)
			if err != nil {
				s.logger.Warn("skipping session key with bad handle", zap.String("key", key))
				continue
			}
			sess, err := s.Get(ctx, handle)
			if err != nil {
				if errors.Is(err, ErrSessionNotFound) {
					continue
				}
				return nil, err
			}
			out = append(out, sess)
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return out, nil
}

// Load implements Store.Load; redis holds the durable set already.
func (s *RedisStore) Load(_ context.Context) error {
	return nil
}
