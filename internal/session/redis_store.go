package session

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"kb-chat/internal/common/errors"
)

const keyPrefix = "kbchat:session:"

// RedisStore keeps one JSON snapshot per session with a sliding TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	data, err := r.client.Get(ctx, key(id)).Bytes()
	if stderrors.Is(err, redis.Nil) {
		return nil, errors.NewSessionNotFoundError(id)
	}
	if err != nil {
		return nil, errors.NewSessionStoreFailedError("load", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, errors.NewSessionStoreFailedError("load", fmt.Errorf("decode snapshot: %w", err))
	}
	return FromSnapshot(snap), nil
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		return errors.NewSessionStoreFailedError("save", err)
	}
	if err := r.client.Set(ctx, key(s.ID()), data, r.ttl).Err(); err != nil {
		return errors.NewSessionStoreFailedError("save", err)
	}
	return nil
}

func (r *RedisStore) Delete(ctx context.Context, id string) error {
	if err := r.client.Del(ctx, key(id)).Err(); err != nil {
		return errors.NewSessionStoreFailedError("delete", err)
	}
	return nil
}
