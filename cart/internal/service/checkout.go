package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/Alturino/medkit/cart/internal/otel"
	"github.com/Alturino/medkit/cart/pkg/request"
	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/common/validate"
	"github.com/Alturino/medkit/internal/log"
	orderRequest "github.com/Alturino/medkit/order/pkg/request"
	orderResponse "github.com/Alturino/medkit/order/pkg/response"
)

// Checkout places an order built from the current snapshot and then clears
// the server cart. A failed order leaves the cart as it was. A failed clear
// after a placed order is logged and the order is still returned.
func (s *CartService) Checkout(
	c context.Context,
	param request.Checkout,
) (orderResponse.Order, error) {
	c, span := otel.Tracer.Start(c, "CartService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "CartService Checkout").Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "validating checkout").Logger()
	if err := validate.Get().StructCtx(c, param); err != nil {
		err = fmt.Errorf("%w: failed validating checkout with error=%w", commonErrors.ErrInvalidRequest, err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	items := s.Items()
	if len(items) == 0 {
		err := commonErrors.ErrEmptyCart
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "resolving session id").Logger()
	sessionID, err := s.session.GetOrCreate(c)
	if err != nil {
		err = fmt.Errorf("failed resolving session id with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "mapping order").Logger()
	breakdown := s.calculator.Breakdown(items)
	orderItems := make([]orderRequest.OrderItem, len(items))
	for i, item := range items {
		orderItems[i] = orderRequest.OrderItem{
			ProductID:   item.ProductID,
			BrandName:   item.BrandName,
			ProductName: item.DisplayName,
			Price:       item.UnitPrice,
			Quantity:    item.Quantity,
		}
	}
	order := orderRequest.CreateOrder{
		Customer:      param.Customer,
		SessionID:     sessionID,
		Items:         orderItems,
		Subtotal:      breakdown.Subtotal,
		Shipping:      breakdown.Shipping,
		Tax:           breakdown.Tax,
		Total:         breakdown.Total,
		DeliveryInfo:  param.Delivery,
		PaymentMethod: param.PaymentMethod,
		PaymentProof:  param.PaymentProof,
		Status:        orderRequest.StatusPendingPayment,
	}
	logger = logger.With().
		Str(log.KeySessionID, sessionID).
		Any(log.KeyPricingBreakdown, breakdown.Display()).
		Logger()
	logger.Debug().Msg("mapped order")

	logger = logger.With().Str(log.KeyProcess, "creating order").Logger()
	logger.Info().Msg("creating order")
	created, err := s.orders.CreateOrder(logger.WithContext(c), order)
	if err != nil {
		err = fmt.Errorf("failed creating order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return orderResponse.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, created.ID).Logger()
	logger.Info().Msg("created order")

	logger = logger.With().Str(log.KeyProcess, "clearing cart").Logger()
	if _, err = s.Clear(logger.WithContext(c)); err != nil {
		logger.Warn().Err(err).Msg("order created but cart was not cleared")
	}

	return created, nil
}
