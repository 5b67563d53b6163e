package infra

import (
	"context"
	"fmt"
	"io"
	stdLog "log"

	"github.com/rs/zerolog"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/internal/otel"
)

// NewDatabaseClient opens the local sqlite database at path and migrates models.
func NewDatabaseClient(c context.Context, path string, models ...any) (*gorm.DB, error) {
	c, span := otel.Tracer.Start(c, "infra NewDatabaseClient")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "infra NewDatabaseClient").
		Str(log.KeyDbPath, path).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "opening sqlite database").Logger()
	logger.Debug().Msg("opening sqlite database")
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormLogger.New(
			stdLog.New(io.Discard, "", stdLog.LstdFlags),
			gormLogger.Config{LogLevel: gormLogger.Silent},
		),
		SkipDefaultTransaction: true,
	})
	if err != nil {
		err = fmt.Errorf("failed opening sqlite database with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Msg("opened sqlite database")

	logger = logger.With().Str(log.KeyProcess, "migrating database").Logger()
	logger.Debug().Msg("migrating database")
	if err = db.WithContext(c).AutoMigrate(models...); err != nil {
		err = fmt.Errorf("failed migrating database with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Msg("migrated database")

	return db, nil
}
