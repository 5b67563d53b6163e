package repository

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/Alturino/medkit/cart/internal/otel"
	"github.com/Alturino/medkit/cart/pkg/request"
	"github.com/Alturino/medkit/cart/pkg/response"
	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	inHttp "github.com/Alturino/medkit/internal/http"
	"github.com/Alturino/medkit/internal/log"
)

const (
	pathCart   = "/api/cart/%s"
	pathAdd    = "/api/cart/%s/add"
	pathUpdate = "/api/cart/%s/update"
	pathRemove = "/api/cart/%s/remove"
	pathClear  = "/api/cart/%s/clear"
)

type addLineBody struct {
	ProductID string `json:"productId"`
	BrandName string `json:"brandName"`
	Quantity  int    `json:"quantity"`
}

// CartRepository maps the remote cart endpoints. Every method returns the
// cart exactly as the server answered it.
type CartRepository struct {
	client *inHttp.Client
}

func NewCartRepository(client *inHttp.Client) CartRepository {
	return CartRepository{client: client}
}

func (r CartRepository) FindCart(c context.Context, sessionID string) (response.Cart, error) {
	return r.send(c, "CartRepository FindCart", http.MethodGet, pathCart, sessionID, nil)
}

// AddLine asks the server to add one unit of the variant; merging into an
// existing line is the server's job.
func (r CartRepository) AddLine(
	c context.Context,
	sessionID string,
	param request.AddLine,
) (response.Cart, error) {
	body := addLineBody{ProductID: param.ProductID, BrandName: param.BrandName, Quantity: 1}
	return r.send(c, "CartRepository AddLine", http.MethodPost, pathAdd, sessionID, body)
}

func (r CartRepository) UpdateQuantity(
	c context.Context,
	sessionID string,
	param request.UpdateQuantity,
) (response.Cart, error) {
	return r.send(c, "CartRepository UpdateQuantity", http.MethodPut, pathUpdate, sessionID, param)
}

func (r CartRepository) RemoveLine(
	c context.Context,
	sessionID string,
	param request.RemoveLine,
) (response.Cart, error) {
	return r.send(c, "CartRepository RemoveLine", http.MethodDelete, pathRemove, sessionID, param)
}

func (r CartRepository) ClearCart(c context.Context, sessionID string) (response.Cart, error) {
	return r.send(c, "CartRepository ClearCart", http.MethodDelete, pathClear, sessionID, nil)
}

func (r CartRepository) send(
	c context.Context,
	tag string,
	method string,
	pathFormat string,
	sessionID string,
	body any,
) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, tag)
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, tag).
		Str(log.KeySessionID, sessionID).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "calling cart api").Logger()
	logger.Debug().Msg("calling cart api")
	envelope := cartEnvelope{}
	path := fmt.Sprintf(pathFormat, url.PathEscape(sessionID))
	if err := r.client.Do(c, method, path, nil, body, &envelope); err != nil {
		err = fmt.Errorf("failed calling cart api with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Debug().Msg("called cart api")

	logger = logger.With().Str(log.KeyProcess, "mapping cart").Logger()
	logger.Debug().Msg("mapping cart")
	cart, err := envelope.Response()
	if err != nil {
		err = fmt.Errorf("failed mapping cart with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Debug().Int(log.KeyCartItemsCount, len(cart.Items)).Msg("mapped cart")

	return cart, nil
}
