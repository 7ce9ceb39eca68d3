package settingstore

import (
	"context"

	"github.com/redis/go-redis/v9"
)

var redisSettingsKey = "settings"

type RedisSettingsStore struct {
	Client *redis.Client
}

var _ SettingsStore = (*RedisSettingsStore)(nil)

func NewRedisSettingsStore(redisURL string) (*RedisSettingsStore, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opt)
	// check redis connection
	_, err = rdb.Ping(context.TODO()).Result()
	if err != nil {
		return nil, err
	}
	return &RedisSettingsStore{Client: rdb}, nil
}

func (s *RedisSettingsStore) GetAll(ctx context.Context) (map[string]string, error) {
	vals, err := s.Client.HGetAll(ctx, redisSettingsKey).Result()
	if err != nil {
		return nil, err
	}
	return vals, nil
}
