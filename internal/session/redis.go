package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/log"
)

const keySessionID = "medkit:%s"

type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{client: client, key: fmt.Sprintf(keySessionID, key)}
}

func (s *RedisStore) Get(c context.Context) (string, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore Get").
		Str(log.KeyCacheKey, s.key).
		Logger()

	id, err := s.client.Get(c, s.key).Result()
	if errors.Is(err, redis.Nil) {
		logger.Debug().Msg("session id not found in redis")
		return "", commonErrors.ErrSessionNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed getting session id from redis with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	return id, nil
}

func (s *RedisStore) SetIfAbsent(c context.Context, id string) (string, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "RedisStore SetIfAbsent").
		Str(log.KeyCacheKey, s.key).
		Logger()

	set, err := s.client.SetNX(c, s.key, id, 0).Result()
	if err != nil {
		err = fmt.Errorf("failed setting session id in redis with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	if set {
		return id, nil
	}
	logger.Debug().Msg("session id already set reading stored value")
	return s.Get(c)
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
