package repository

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/assignment-tracker/internal/models"
)

type redisSnapshotRepository struct {
	client *redis.Client
	key    string
}

// NewRedisSnapshotRepository stores the snapshot as a plain string value under key.
func NewRedisSnapshotRepository(client *redis.Client, key string) SnapshotRepository {
	return &redisSnapshotRepository{client: client, key: key}
}

func (r *redisSnapshotRepository) Load(ctx context.Context) (*models.Snapshot, error) {
	payload, err := r.client.Get(ctx, r.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return DecodeSnapshot(payload)
}

func (r *redisSnapshotRepository) Save(ctx context.Context, snapshot models.Snapshot) error {
	payload, err := EncodeSnapshot(snapshot)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.key, payload, 0).Err()
}

func (r *redisSnapshotRepository) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
