package repository

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/Alturino/medkit/cart/internal/otel"
	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	inHttp "github.com/Alturino/medkit/internal/http"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/order/pkg/request"
	"github.com/Alturino/medkit/order/pkg/response"
)

const pathOrders = "/api/orders"

type orderEnvelope struct {
	Order *response.Order `json:"order"`
}

type OrderRepository struct {
	client *inHttp.Client
}

func NewOrderRepository(client *inHttp.Client) OrderRepository {
	return OrderRepository{client: client}
}

func (r OrderRepository) CreateOrder(
	c context.Context,
	param request.CreateOrder,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderRepository CreateOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderRepository CreateOrder").
		Str(log.KeySessionID, param.SessionID).
		Int(log.KeyCartItemsCount, len(param.Items)).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "posting order").Logger()
	logger.Info().Msg("posting order")
	envelope := orderEnvelope{}
	if err := r.client.Do(c, http.MethodPost, pathOrders, nil, param, &envelope); err != nil {
		err = fmt.Errorf("failed posting order with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if envelope.Order == nil {
		err := fmt.Errorf("%w: missing order", commonErrors.ErrMalformedResponse)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Info().Str(log.KeyOrderID, envelope.Order.ID).Msg("posted order")

	return *envelope.Order, nil
}
