package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/internal/otel"
)

// Store is the durable client key-value storage holding the session id.
type Store interface {
	// Get returns commonErrors.ErrSessionNotFound when no id is stored.
	Get(c context.Context) (string, error)
	// SetIfAbsent stores id unless a value already exists and returns the
	// value that is stored afterwards.
	SetIfAbsent(c context.Context, id string) (string, error)
	Close() error
}

// Provider hands out the session id scoping the remote cart. The id is
// created once per installation and never rotated.
type Provider struct {
	store Store
	newID func() string

	mu sync.Mutex
	id string
}

func NewProvider(store Store) *Provider {
	return &Provider{store: store, newID: uuid.NewString}
}

func (p *Provider) GetOrCreate(c context.Context) (string, error) {
	c, span := otel.Tracer.Start(c, "Provider GetOrCreate")
	defer span.End()

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.id != "" {
		return p.id, nil
	}

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "Provider GetOrCreate").
		Str(log.KeyProcess, "finding session id").
		Logger()

	logger.Debug().Msg("finding session id")
	id, err := p.store.Get(c)
	if err == nil {
		p.id = id
		logger.Debug().Str(log.KeySessionID, id).Msg("found session id")
		return id, nil
	}
	if !errors.Is(err, commonErrors.ErrSessionNotFound) {
		err = fmt.Errorf("failed finding session id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}

	logger = logger.With().Str(log.KeyProcess, "creating session id").Logger()
	logger.Info().Msg("session id not found creating new one")
	id, err = p.store.SetIfAbsent(c, p.newID())
	if err != nil {
		err = fmt.Errorf("failed persisting session id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return "", err
	}
	p.id = id
	logger.Info().Str(log.KeySessionID, id).Msg("created session id")
	return id, nil
}
