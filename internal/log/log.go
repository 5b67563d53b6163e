package log

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

var (
	once   sync.Once
	logger zerolog.Logger
)

// InitLogger builds the process-wide logger once. Records go to stderr and,
// when filepath is not empty, to a rotated file.
func InitLogger(filepath string, env string) zerolog.Logger {
	once.Do(func() {
		logger = NewLogger(filepath, env, os.Stderr)
	})
	return logger
}

func NewLogger(filepath string, env string, w io.Writer) zerolog.Logger {
	zerolog.DurationFieldUnit = time.Microsecond
	zerolog.ErrorFieldName = "error"
	zerolog.ErrorStackFieldName = "stack-trace"
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.LevelFieldName = "level"
	zerolog.MessageFieldName = "message"
	zerolog.TimestampFieldName = "timestamp"

	logLevel := zerolog.InfoLevel
	if env == "development" {
		logLevel = zerolog.TraceLevel
	}

	output := w
	if filepath != "" {
		fileWriter := &lumberjack.Logger{
			Filename:   filepath,
			MaxSize:    10,
			MaxBackups: 3,
			Compress:   true,
		}
		output = zerolog.MultiLevelWriter(w, fileWriter)
	}

	l := zerolog.New(output).
		Level(logLevel).
		Hook(AttachTraceIDFromContext()).
		With().
		Timestamp().
		Caller().
		Stack().
		Int("pid", os.Getpid()).
		Logger()

	l.Trace().
		Str(KeyTag, "NewLogger").
		Str(KeyProcess, "init logger").
		Msg("finish initiating logging")
	return l
}
