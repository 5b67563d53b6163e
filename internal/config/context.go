package config

import (
	"context"
	"errors"
)

type contextKey struct{}

var ErrConfigNotFound = errors.New("config not found in context")

func AttachToContext(c context.Context, cfg *Config) context.Context {
	return context.WithValue(c, contextKey{}, cfg)
}

func FromContext(c context.Context) (*Config, error) {
	cfg, ok := c.Value(contextKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, ErrConfigNotFound
	}
	return cfg, nil
}
