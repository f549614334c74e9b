package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/backsoul/globetrotter/pkg/models"
	"github.com/redis/go-redis/v9"
)

const (
	destinationKeyPrefix = "trivia:destination:"
	destinationIDsKey    = "trivia:destination_ids"
	metadataKey          = "trivia:metadata"
)

// RedisClient stores the destination catalogue in Redis.
// Each destination is a JSON string under trivia:destination:<id>; the set
// trivia:destination_ids indexes them for random sampling.
type RedisClient struct {
	client *redis.Client
	log    *slog.Logger
}

// NewRedisClient connects and pings the server
func NewRedisClient(ctx context.Context, addr, password string, db int, log *slog.Logger) (*RedisClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}

	log.Info("Connected to redis", "addr", addr, "db", db)
	return &RedisClient{client: rdb, log: log}, nil
}

func destinationKey(id string) string {
	return destinationKeyPrefix + id
}

// LoadDestinations replaces the whole catalogue in a single transaction
func (r *RedisClient) LoadDestinations(ctx context.Context, data models.DestinationsData) error {
	ids, err := r.client.SMembers(ctx, destinationIDsKey).Result()
	if err != nil {
		return fmt.Errorf("listing destination ids: %w", err)
	}

	metadataJSON, err := json.Marshal(data.Metadata)
	if err != nil {
		return fmt.Errorf("serializing metadata: %w", err)
	}

	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, id := range ids {
			pipe.Del(ctx, destinationKey(id))
		}
		pipe.Del(ctx, destinationIDsKey)

		for _, d := range data.Destinations {
			payload, err := json.Marshal(d)
			if err != nil {
				return fmt.Errorf("serializing destination %s: %w", d.ID, err)
			}
			pipe.Set(ctx, destinationKey(d.ID), payload, 0)
			pipe.SAdd(ctx, destinationIDsKey, d.ID)
		}
		pipe.Set(ctx, metadataKey, metadataJSON, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading destinations: %w", err)
	}

	r.log.Info("Destinations loaded into redis", "count", len(data.Destinations))
	return nil
}

// GetDestination returns models.ErrDestinationNotFound for unknown ids
func (r *RedisClient) GetDestination(ctx context.Context, id string) (models.Destination, error) {
	payload, err := r.client.Get(ctx, destinationKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.Destination{}, fmt.Errorf("%w: %s", models.ErrDestinationNotFound, id)
	}
	if err != nil {
		return models.Destination{}, fmt.Errorf("getting destination %s: %w", id, err)
	}

	var d models.Destination
	if err := json.Unmarshal(payload, &d); err != nil {
		return models.Destination{}, fmt.Errorf("parsing destination %s: %w", id, err)
	}
	return d, nil
}

// SampleDestinations picks k distinct destinations with SRANDMEMBER.
// It fails with models.ErrNotEnoughDestinations when fewer than k exist.
func (r *RedisClient) SampleDestinations(ctx context.Context, k int) ([]models.Destination, error) {
	ids, err := r.client.SRandMemberN(ctx, destinationIDsKey, int64(k)).Result()
	if err != nil {
		return nil, fmt.Errorf("sampling destination ids: %w", err)
	}
	if len(ids) < k {
		return nil, fmt.Errorf("%w: wanted %d, found %d", models.ErrNotEnoughDestinations, k, len(ids))
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = destinationKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("fetching sampled destinations: %w", err)
	}

	destinations := make([]models.Destination, 0, len(values))
	for i, v := range values {
		s, ok := v.(string)
		if !ok {
			// Indexed id without a record: the set and the records drifted apart.
			r.log.Warn("Destination indexed but missing", "destination_id", ids[i])
			continue
		}
		var d models.Destination
		if err := json.Unmarshal([]byte(s), &d); err != nil {
			return nil, fmt.Errorf("parsing destination %s: %w", ids[i], err)
		}
		destinations = append(destinations, d)
	}
	if len(destinations) < k {
		return nil, fmt.Errorf("%w: wanted %d, found %d", models.ErrNotEnoughDestinations, k, len(destinations))
	}
	return destinations, nil
}

// CountDestinations returns the catalogue size
func (r *RedisClient) CountDestinations(ctx context.Context) (int, error) {
	count, err := r.client.SCard(ctx, destinationIDsKey).Result()
	if err != nil {
		return 0, fmt.Errorf("counting destinations: %w", err)
	}
	return int(count), nil
}

// HealthCheck pings the server
func (r *RedisClient) HealthCheck(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// Backend names the store in health responses
func (r *RedisClient) Backend() string {
	return "redis"
}

// Close closes the connection pool
func (r *RedisClient) Close() error {
	return r.client.Close()
}
