package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/common/validate"
	inHttp "github.com/Alturino/medkit/internal/http"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/product/internal/otel"
	"github.com/Alturino/medkit/product/pkg/request"
	"github.com/Alturino/medkit/product/pkg/response"
)

const (
	pathProducts         = "/api/user/products"
	pathProductById      = "/api/user/products/%s"
	pathProductsCategory = "/api/user/products/category/%s"
	pathProductsFeatured = "/api/user/products/featured"
	pathProductsSearch   = "/api/user/products/search"

	keyCatalog = "medkit:catalog:%s"
)

type productsEnvelope struct {
	Products *[]response.Product `json:"products"`
}

type productEnvelope struct {
	Product *response.Product `json:"product"`
}

// ProductService reads the storefront catalog. When a cache is set, answers
// are kept in redis for ttl; cache failures never fail a read.
type ProductService struct {
	client *inHttp.Client
	cache  *redis.Client
	ttl    time.Duration
}

func NewProductService(client *inHttp.Client, cache *redis.Client, ttl time.Duration) ProductService {
	return ProductService{client: client, cache: cache, ttl: ttl}
}

func (svc ProductService) FindProducts(c context.Context) ([]response.Product, error) {
	return svc.findProducts(c, "ProductService FindProducts", pathProducts, nil)
}

func (svc ProductService) FindProductById(c context.Context, id string) (response.Product, error) {
	c, span := otel.Tracer.Start(c, "ProductService FindProductById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "ProductService FindProductById").
		Str(log.KeyProductID, id).
		Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Debug().Msg("finding product")
	path := fmt.Sprintf(pathProductById, url.PathEscape(id))
	envelope, cached, err := fetch[productEnvelope](c, svc, path, nil)
	if err != nil {
		err = fmt.Errorf("failed finding product with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	if envelope.Product == nil || envelope.Product.ID == "" {
		err = fmt.Errorf("%w: missing product", commonErrors.ErrMalformedResponse)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Product{}, err
	}
	logger.Debug().Bool("cached", cached).Msg("found product")
	if !cached {
		svc.store(c, path, nil, envelope)
	}

	return *envelope.Product, nil
}

func (svc ProductService) FindProductsByCategory(
	c context.Context,
	param request.FindProductsByCategory,
) ([]response.Product, error) {
	if param.Page == 0 {
		param.Page = request.DefaultPage
	}
	if param.Limit == 0 {
		param.Limit = request.DefaultLimit
	}
	if err := validateRequest(param); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("page", strconv.Itoa(param.Page))
	query.Set("limit", strconv.Itoa(param.Limit))
	return svc.findProducts(
		c,
		"ProductService FindProductsByCategory",
		fmt.Sprintf(pathProductsCategory, url.PathEscape(param.Category)),
		query,
	)
}

func (svc ProductService) FindFeaturedProducts(
	c context.Context,
	param request.FindFeaturedProducts,
) ([]response.Product, error) {
	if param.Limit == 0 {
		param.Limit = request.DefaultFeaturedLimit
	}
	if err := validateRequest(param); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("limit", strconv.Itoa(param.Limit))
	return svc.findProducts(c, "ProductService FindFeaturedProducts", pathProductsFeatured, query)
}

func (svc ProductService) SearchProducts(
	c context.Context,
	param request.SearchProducts,
) ([]response.Product, error) {
	if param.Page == 0 {
		param.Page = request.DefaultPage
	}
	if param.Limit == 0 {
		param.Limit = request.DefaultLimit
	}
	if err := validateRequest(param); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("q", param.Query)
	query.Set("page", strconv.Itoa(param.Page))
	query.Set("limit", strconv.Itoa(param.Limit))
	return svc.findProducts(c, "ProductService SearchProducts", pathProductsSearch, query)
}

func (svc ProductService) findProducts(
	c context.Context,
	tag string,
	path string,
	query url.Values,
) ([]response.Product, error) {
	c, span := otel.Tracer.Start(c, tag)
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, tag).Logger()
	c = logger.WithContext(c)

	logger = logger.With().Str(log.KeyProcess, "finding products").Logger()
	logger.Debug().Msg("finding products")
	envelope, cached, err := fetch[productsEnvelope](c, svc, path, query)
	if err != nil {
		err = fmt.Errorf("failed finding products with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	if envelope.Products == nil {
		err = fmt.Errorf("%w: missing products", commonErrors.ErrMalformedResponse)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().
		Bool("cached", cached).
		Int("productsCount", len(*envelope.Products)).
		Msg("found products")
	if !cached {
		svc.store(c, path, query, envelope)
	}

	return *envelope.Products, nil
}

// fetch decodes the answer for path, reading the cache first when one is
// configured. It reports whether the answer came from the cache. A cached entry
// that fails to decode is discarded whole and the API is asked instead.
func fetch[T any](c context.Context, svc ProductService, path string, query url.Values) (T, bool, error) {
	if svc.cache != nil {
		key := catalogKey(path, query)
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyCacheKey, key).
			Str(log.KeyProcess, "finding catalog in cache").
			Logger()

		payload, err := svc.cache.Get(c, key).Bytes()
		switch {
		case err == nil:
			var cached T
			if err = json.Unmarshal(payload, &cached); err == nil {
				logger.Trace().Msg("found catalog in cache")
				return cached, true, nil
			}
			logger.Warn().Err(err).Msg("failed unmarshaling cached catalog")
		case errors.Is(err, redis.Nil):
			logger.Trace().Msg("catalog not found in cache")
		default:
			logger.Warn().Err(err).Msg("failed finding catalog in cache")
		}
	}

	var fresh T
	err := svc.client.Do(c, http.MethodGet, path, query, nil, &fresh)
	return fresh, false, err
}

// store keeps a validated answer in the cache.
func (svc ProductService) store(c context.Context, path string, query url.Values, value any) {
	if svc.cache == nil {
		return
	}
	key := catalogKey(path, query)
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyCacheKey, key).
		Str(log.KeyProcess, "inserting catalog to cache").
		Logger()

	payload, err := json.Marshal(value)
	if err != nil {
		logger.Warn().Err(err).Msg("failed marshaling catalog for cache")
		return
	}
	if err = svc.cache.Set(c, key, payload, svc.ttl).Err(); err != nil {
		logger.Warn().Err(err).Msg("failed inserting catalog to cache")
		return
	}
	logger.Trace().Msg("inserted catalog to cache")
}

func catalogKey(path string, query url.Values) string {
	if len(query) > 0 {
		path += "?" + query.Encode()
	}
	return fmt.Sprintf(keyCatalog, path)
}

func validateRequest(param any) error {
	if err := validate.Get().Struct(param); err != nil {
		return fmt.Errorf("%w: %w", commonErrors.ErrInvalidRequest, err)
	}
	return nil
}
