package guard

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisPrefix = "quiz:lock:"

// RedisLocker keeps locks as plain keys so several quizd instances share them.
// TTL 0 keeps locks until released.
type RedisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisLocker(rdb *redis.Client, ttl time.Duration) *RedisLocker {
	return &RedisLocker{rdb: rdb, ttl: ttl}
}

func redisKey(k lockKey) string { return redisPrefix + string(k.kind) + ":" + k.key }

func (r *RedisLocker) Check(ctx context.Context, studentID, deviceID string) error {
	ks := keys(studentID, deviceID)
	if len(ks) == 0 {
		return nil
	}
	names := make([]string, len(ks))
	for i, k := range ks {
		names[i] = redisKey(k)
	}
	n, err := r.rdb.Exists(ctx, names...).Result()
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrAlreadySubmitted
	}
	return nil
}

// Acquire claims each key with SETNX. When a key is already held the keys
// claimed by this call are deleted again.
func (r *RedisLocker) Acquire(ctx context.Context, studentID, deviceID string) error {
	var taken []string
	for _, k := range keys(studentID, deviceID) {
		name := redisKey(k)
		ok, err := r.rdb.SetNX(ctx, name, time.Now().Unix(), r.ttl).Result()
		if err == nil && !ok {
			err = ErrAlreadySubmitted
		}
		if err != nil {
			if len(taken) > 0 {
				_ = r.rdb.Del(context.WithoutCancel(ctx), taken...).Err()
			}
			return err
		}
		taken = append(taken, name)
	}
	return nil
}

func (r *RedisLocker) Release(ctx context.Context, studentID, deviceID string) error {
	for _, k := range keys(studentID, deviceID) {
		if err := r.rdb.Del(ctx, redisKey(k)).Err(); err != nil {
			return err
		}
	}
	return nil
}
