package session

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/config"
	"github.com/Alturino/medkit/internal/infra"
	"github.com/Alturino/medkit/internal/log"
)

// NewStore opens the store selected by cfg.Session.Driver.
func NewStore(c context.Context, cfg *config.Config) (Store, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "session NewStore").
		Str(log.KeySessionStore, cfg.Session.Driver).
		Logger()
	c = logger.WithContext(c)

	switch cfg.Session.Driver {
	case config.SessionDriverSqlite:
		db, err := infra.NewDatabaseClient(c, cfg.Session.SqlitePath, &KeyValue{})
		if err != nil {
			return nil, err
		}
		return NewSqliteStore(db, cfg.Session.Key), nil
	case config.SessionDriverRedis:
		client, err := infra.NewCacheClient(c, cfg.Cache)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(client, cfg.Session.Key), nil
	case config.SessionDriverMemory:
		logger.Warn().Msg("memory session store does not survive restarts")
		return NewMemoryStore(), nil
	default:
		err := fmt.Errorf("%w driver=%s", commonErrors.ErrUnknownDriver, cfg.Session.Driver)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
}
