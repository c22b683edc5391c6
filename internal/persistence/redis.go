package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/spec-kit/ticketapp/internal/config"
)

const (
	redisValueField    = "value"
	redisRevisionField = "revision"
	redisKeyPrefix     = "ticketapp:"
)

// Redis stores each record as a hash holding the value and its revision.
type Redis struct {
	Client *redis.Client
}

// NewRedis connects to Redis using the provided configuration.
func NewRedis(cfg config.RedisConfig, logger *zap.Logger) *Redis {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		logger.Warn("unable to reach redis", zap.Error(err))
	} else {
		logger.Info("connected to redis")
	}

	return &Redis{Client: client}
}

func (r *Redis) Get(ctx context.Context, key string) (Record, error) {
	vals, err := r.Client.HMGet(ctx, redisKeyPrefix+key, redisValueField, redisRevisionField).Result()
	if err != nil {
		return Record{}, err
	}
	if len(vals) != 2 || vals[0] == nil || vals[1] == nil {
		return Record{}, ErrNotFound
	}
	value, _ := vals[0].(string)
	revStr, _ := vals[1].(string)
	rev, err := strconv.ParseInt(revStr, 10, 64)
	if err != nil {
		return Record{}, fmt.Errorf("redis: corrupt revision for %s: %w", key, err)
	}
	return Record{Value: []byte(value), Revision: rev}, nil
}

// Put runs an optimistic WATCH/MULTI transaction so concurrent writers to
// the same key cannot both succeed with the same expected revision.
func (r *Redis) Put(ctx context.Context, key string, value []byte, expectRevision int64) (int64, error) {
	fullKey := redisKeyPrefix + key
	var next int64

	txf := func(tx *redis.Tx) error {
		current, err := tx.HGet(ctx, fullKey, redisRevisionField).Int64()
		exists := true
		if errors.Is(err, redis.Nil) {
			exists = false
			current = 0
		} else if err != nil {
			return err
		}
		if err := checkRevision(current, expectRevision, exists); err != nil {
			return err
		}
		next = current + 1
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.HSet(ctx, fullKey, redisValueField, value, redisRevisionField, next)
			return nil
		})
		return err
	}

	err := r.Client.Watch(ctx, txf, fullKey)
	if errors.Is(err, redis.TxFailedErr) {
		return 0, ErrRevisionMismatch
	}
	if err != nil {
		return 0, err
	}
	return next, nil
}

func (r *Redis) Delete(ctx context.Context, key string) error {
	return r.Client.Del(ctx, redisKeyPrefix+key).Err()
}

// Close closes the client.
func (r *Redis) Close() error {
	if r != nil && r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// Ping verifies Redis connectivity.
func (r *Redis) Ping(ctx context.Context) error {
	if r == nil || r.Client == nil {
		return errors.New("redis client not configured")
	}
	return r.Client.Ping(ctx).Err()
}
