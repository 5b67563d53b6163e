package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/log"
)

// KeyValue is a row of the local key-value table.
type KeyValue struct {
	Key   string `gorm:"primaryKey;size:64"`
	Value string `gorm:"not null"`
}

func (KeyValue) TableName() string { return "key_values" }

type SqliteStore struct {
	db  *gorm.DB
	key string
}

func NewSqliteStore(db *gorm.DB, key string) *SqliteStore {
	return &SqliteStore{db: db, key: key}
}

func (s *SqliteStore) Get(c context.Context) (string, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SqliteStore Get").
		Str(log.KeyCacheKey, s.key).
		Logger()

	var kv KeyValue
	err := s.db.WithContext(c).Where(&KeyValue{Key: s.key}).Take(&kv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		logger.Debug().Msg("session id not found in sqlite")
		return "", commonErrors.ErrSessionNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed getting session id from sqlite with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	return kv.Value, nil
}

func (s *SqliteStore) SetIfAbsent(c context.Context, id string) (string, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "SqliteStore SetIfAbsent").
		Str(log.KeyCacheKey, s.key).
		Logger()

	err := s.db.WithContext(c).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&KeyValue{Key: s.key, Value: id}).
		Error
	if err != nil {
		err = fmt.Errorf("failed inserting session id to sqlite with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	return s.Get(c)
}

func (s *SqliteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
