package config

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Alturino/medkit/internal/log"
)

const (
	EnvPrefix = "MEDKIT"

	SessionDriverSqlite = "sqlite"
	SessionDriverRedis  = "redis"
	SessionDriverMemory = "memory"
)

type Application struct {
	Env     string `mapstructure:"env"      json:"env"`
	LogPath string `mapstructure:"log_path" json:"log_path"`
}

type Breaker struct {
	MaxConsecutiveFailures uint32        `mapstructure:"max_consecutive_failures" json:"max_consecutive_failures"`
	Interval               time.Duration `mapstructure:"interval"                 json:"interval"`
	Timeout                time.Duration `mapstructure:"timeout"                  json:"timeout"`
}

type Api struct {
	BaseURL string        `mapstructure:"base_url" json:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"  json:"timeout"`
	Breaker Breaker       `mapstructure:"breaker"  json:"breaker"`
}

type Session struct {
	Driver     string `mapstructure:"driver"      json:"driver"`
	SqlitePath string `mapstructure:"sqlite_path" json:"sqlite_path"`
	Key        string `mapstructure:"key"         json:"key"`
}

// Cache is the redis connection shared by the redis session store and the
// catalog cache. CatalogEnabled turns on caching of catalog reads for TTL.
type Cache struct {
	Host           string        `mapstructure:"host"            json:"host"`
	Password       string        `mapstructure:"password"        json:"-"`
	Database       int           `mapstructure:"database"        json:"database"`
	Port           uint16        `mapstructure:"port"            json:"port"`
	CatalogEnabled bool          `mapstructure:"catalog_enabled" json:"catalog_enabled"`
	TTL            time.Duration `mapstructure:"ttl"             json:"ttl"`
}

type Pricing struct {
	ShippingFee decimal.Decimal `mapstructure:"shipping_fee" json:"shipping_fee"`
	TaxRate     decimal.Decimal `mapstructure:"tax_rate"     json:"tax_rate"`
}

type Otel struct {
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
	Host    string `mapstructure:"host"    json:"host"`
	Port    int    `mapstructure:"port"    json:"port"`
}

func (o Otel) Endpoint() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

type Config struct {
	Application Application `mapstructure:"application" json:"application"`
	Api         Api         `mapstructure:"api"         json:"api"`
	Session     Session     `mapstructure:"session"     json:"session"`
	Cache       Cache       `mapstructure:"cache"       json:"cache"`
	Pricing     Pricing     `mapstructure:"pricing"     json:"pricing"`
	Otel        Otel        `mapstructure:"otel"        json:"otel"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.log_path", "")

	v.SetDefault("api.base_url", "https://med-kit-lab-ces-be.onrender.com")
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("api.breaker.max_consecutive_failures", 5)
	v.SetDefault("api.breaker.interval", time.Minute)
	v.SetDefault("api.breaker.timeout", 30*time.Second)

	v.SetDefault("session.driver", SessionDriverSqlite)
	v.SetDefault("session.sqlite_path", "medkit.db")
	v.SetDefault("session.key", "sessionId")

	v.SetDefault("cache.host", "localhost")
	v.SetDefault("cache.port", 6379)
	v.SetDefault("cache.database", 0)
	v.SetDefault("cache.catalog_enabled", false)
	v.SetDefault("cache.ttl", 5*time.Minute)

	v.SetDefault("pricing.shipping_fee", "1500")
	v.SetDefault("pricing.tax_rate", "0.08")

	v.SetDefault("otel.enabled", false)
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
}

// Load reads the config file named filename (without extension) from ./env or
// $HOME/.medkit, then applies MEDKIT_* environment overrides. A missing file is
// not an error; every key has a default.
func Load(c context.Context, filename string) (*Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config Load").
		Str("filename", filename).
		Logger()

	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	v.AddConfigPath("./env")
	v.AddConfigPath("$HOME/.medkit")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	logger = logger.With().Str(log.KeyProcess, "reading config").Logger()
	logger.Debug().Msg("reading config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			err = fmt.Errorf("failed reading config with error=%w", err)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		logger.Debug().Msg("config file not found using defaults")
	} else {
		logger.Debug().Str("configFile", v.ConfigFileUsed()).Msg("read config")
	}

	return unmarshal(c, v)
}

func unmarshal(c context.Context, v *viper.Viper) (*Config, error) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "config unmarshal").
		Str(log.KeyProcess, "unmarshaling config").
		Logger()

	cfg := Config{}
	err := v.Unmarshal(&cfg, viper.DecodeHook(decimalHook()))
	if err != nil {
		err = fmt.Errorf("failed unmarshaling config with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if err = cfg.validate(); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Any(log.KeyConfig, cfg).Msg("unmarshaled config")
	return &cfg, nil
}

func (cfg Config) validate() error {
	switch cfg.Session.Driver {
	case SessionDriverSqlite, SessionDriverRedis, SessionDriverMemory:
	default:
		return fmt.Errorf("invalid session.driver=%s", cfg.Session.Driver)
	}
	if cfg.Api.BaseURL == "" {
		return errors.New("api.base_url is required")
	}
	if cfg.Pricing.ShippingFee.IsNegative() || cfg.Pricing.TaxRate.IsNegative() {
		return errors.New("pricing.shipping_fee and pricing.tax_rate must not be negative")
	}
	return nil
}
