package service

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/Alturino/medkit/cart/internal/otel"
	"github.com/Alturino/medkit/cart/pkg/pricing"
	"github.com/Alturino/medkit/cart/pkg/request"
	"github.com/Alturino/medkit/cart/pkg/response"
	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/common/validate"
	"github.com/Alturino/medkit/internal/log"
	orderRequest "github.com/Alturino/medkit/order/pkg/request"
	orderResponse "github.com/Alturino/medkit/order/pkg/response"
)

const (
	OperationLoad           = "load"
	OperationAddLine        = "addLine"
	OperationUpdateQuantity = "updateQuantity"
	OperationRemoveLine     = "removeLine"
	OperationClear          = "clear"

	outcomeSuccess = "success"
	outcomeFailure = "failure"
)

type SessionProvider interface {
	GetOrCreate(c context.Context) (string, error)
}

type CartRepository interface {
	FindCart(c context.Context, sessionID string) (response.Cart, error)
	AddLine(c context.Context, sessionID string, param request.AddLine) (response.Cart, error)
	UpdateQuantity(c context.Context, sessionID string, param request.UpdateQuantity) (response.Cart, error)
	RemoveLine(c context.Context, sessionID string, param request.RemoveLine) (response.Cart, error)
	ClearCart(c context.Context, sessionID string) (response.Cart, error)
}

type OrderRepository interface {
	CreateOrder(c context.Context, param orderRequest.CreateOrder) (orderResponse.Order, error)
}

// Subscriber is called with a copy of the items after every successful replace.
type Subscriber func(items []response.LineItem)

// CartService keeps the local cart as the last snapshot the server returned.
// It never patches the snapshot itself: a failed call leaves it untouched, a
// successful call replaces it wholesale. Neither lock is held across a network
// call, so the last response to arrive wins. dispatch orders each snapshot
// write together with its notification, so subscribers see replaces in the
// same order as the snapshot.
type CartService struct {
	session    SessionProvider
	carts      CartRepository
	orders     OrderRepository
	calculator pricing.Calculator
	operations metric.Int64Counter

	dispatch    sync.Mutex
	mu          sync.RWMutex
	items       []response.LineItem
	subscribers []Subscriber
}

func NewCartService(
	session SessionProvider,
	carts CartRepository,
	orders OrderRepository,
	calculator pricing.Calculator,
) (*CartService, error) {
	operations, err := otel.Meter.Int64Counter(
		"medkit.cart.operations",
		metric.WithDescription("cart operations by outcome"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed creating cart operations counter with error=%w", err)
	}
	return &CartService{
		session:    session,
		carts:      carts,
		orders:     orders,
		calculator: calculator,
		operations: operations,
		items:      []response.LineItem{},
	}, nil
}

// Subscribe registers fn to receive every reconciled snapshot.
func (s *CartService) Subscribe(fn Subscriber) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Items returns a copy of the current snapshot.
func (s *CartService) Items() []response.LineItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneItems(s.items)
}

func (s *CartService) Pricing() pricing.Breakdown {
	return s.calculator.Breakdown(s.Items())
}

// Load fetches the server cart. Failures are logged and recorded on the span
// only; the previous snapshot stays in place.
func (s *CartService) Load(c context.Context) {
	c, span := otel.Tracer.Start(c, "CartService Load")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartService Load").Logger()
	c = logger.WithContext(c)

	_, err := s.sync(c, span, OperationLoad, s.carts.FindCart)
	if err != nil {
		logger.Warn().Err(err).Msg("keeping previous cart after failed load")
	}
}

// AddLine asks the server to add one unit of the variant.
func (s *CartService) AddLine(c context.Context, param request.AddLine) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService AddLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService AddLine").
		Str(log.KeyProductID, param.ProductID).
		Str(log.KeyBrandName, param.BrandName).
		Logger()
	c = logger.WithContext(c)

	if err := validateRequest(c, span, OperationAddLine, param); err != nil {
		s.record(c, OperationAddLine, err)
		return response.Cart{}, err
	}
	return s.sync(c, span, OperationAddLine, func(c context.Context, sessionID string) (response.Cart, error) {
		return s.carts.AddLine(c, sessionID, param)
	})
}

// UpdateQuantity sets the quantity of an existing line. Quantities of zero or
// less are forwarded unchanged; the server decides what they mean.
func (s *CartService) UpdateQuantity(
	c context.Context,
	param request.UpdateQuantity,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateQuantity")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService UpdateQuantity").
		Str(log.KeyProductID, param.ProductID).
		Str(log.KeyBrandName, param.BrandName).
		Int(log.KeyQuantity, param.Quantity).
		Logger()
	c = logger.WithContext(c)

	if err := validateRequest(c, span, OperationUpdateQuantity, param); err != nil {
		s.record(c, OperationUpdateQuantity, err)
		return response.Cart{}, err
	}
	return s.sync(c, span, OperationUpdateQuantity, func(c context.Context, sessionID string) (response.Cart, error) {
		return s.carts.UpdateQuantity(c, sessionID, param)
	})
}

func (s *CartService) RemoveLine(c context.Context, param request.RemoveLine) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService RemoveLine")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "CartService RemoveLine").
		Str(log.KeyProductID, param.ProductID).
		Str(log.KeyBrandName, param.BrandName).
		Logger()
	c = logger.WithContext(c)

	if err := validateRequest(c, span, OperationRemoveLine, param); err != nil {
		s.record(c, OperationRemoveLine, err)
		return response.Cart{}, err
	}
	return s.sync(c, span, OperationRemoveLine, func(c context.Context, sessionID string) (response.Cart, error) {
		return s.carts.RemoveLine(c, sessionID, param)
	})
}

func (s *CartService) Clear(c context.Context) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService Clear")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartService Clear").Logger()
	c = logger.WithContext(c)

	return s.sync(c, span, OperationClear, s.carts.ClearCart)
}

// sync resolves the session, performs call and, only when it succeeds,
// replaces the local snapshot with the server's cart.
func (s *CartService) sync(
	c context.Context,
	span trace.Span,
	operation string,
	call func(c context.Context, sessionID string) (response.Cart, error),
) (response.Cart, error) {
	logger := zerolog.Ctx(c).With().Str(log.KeyCartOperation, operation).Logger()
	span.SetAttributes(attribute.String(log.KeyCartOperation, operation))

	logger = logger.With().Str(log.KeyProcess, "resolving session id").Logger()
	logger.Trace().Msg("resolving session id")
	sessionID, err := s.session.GetOrCreate(c)
	if err != nil {
		err = fmt.Errorf("failed resolving session id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.record(c, operation, err)
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeySessionID, sessionID).Logger()
	logger.Trace().Msg("resolved session id")

	logger = logger.With().Str(log.KeyProcess, "syncing cart with server").Logger()
	logger.Debug().Msg("syncing cart with server")
	cart, err := call(logger.WithContext(c), sessionID)
	if err != nil {
		err = fmt.Errorf("failed %s with error=%w", operation, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		s.record(c, operation, err)
		return response.Cart{}, err
	}

	s.replace(cart.Items)
	s.record(c, operation, nil)
	logger.Info().Int(log.KeyCartItemsCount, len(cart.Items)).Msg("synced cart with server")

	return response.Cart{Items: cloneItems(cart.Items)}, nil
}

func (s *CartService) replace(items []response.LineItem) {
	s.dispatch.Lock()
	defer s.dispatch.Unlock()

	s.mu.Lock()
	s.items = cloneItems(items)
	subscribers := slices.Clone(s.subscribers)
	s.mu.Unlock()

	for _, fn := range subscribers {
		fn(cloneItems(items))
	}
}

func (s *CartService) record(c context.Context, operation string, err error) {
	outcome := outcomeSuccess
	if err != nil {
		outcome = outcomeFailure
	}
	s.operations.Add(c, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("outcome", outcome),
	))
}

func validateRequest(c context.Context, span trace.Span, operation string, param any) error {
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("%w: failed validating %s with error=%w", commonErrors.ErrInvalidRequest, operation, err)
		commonErrors.HandleError(err, span)
		zerolog.Ctx(c).Error().Err(err).Msg(err.Error())
		return err
	}
	return nil
}

func cloneItems(items []response.LineItem) []response.LineItem {
	cloned := make([]response.LineItem, len(items))
	for i, item := range items {
		cloned[i] = item
		cloned[i].Images = slices.Clone(item.Images)
	}
	return cloned
}
