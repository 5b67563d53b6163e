package cmd

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/common/response"
	"github.com/Alturino/medkit/internal/config"
	inHttp "github.com/Alturino/medkit/internal/http"
	"github.com/Alturino/medkit/internal/infra"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/product/internal/listing"
	"github.com/Alturino/medkit/product/internal/otel"
	"github.com/Alturino/medkit/product/internal/service"
	"github.com/Alturino/medkit/product/pkg/request"
	productResponse "github.com/Alturino/medkit/product/pkg/response"
)

type listOptions struct {
	term  string
	sort  string
	page  int
	limit int
}

func (o *listOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.term, "filter", "", "keep products whose name or category contains this text")
	flags.StringVar(&o.sort, "sort", listing.SortByName, "name, price-low, price-high or rating")
	flags.IntVar(&o.page, "page", request.DefaultPage, "page to show")
	flags.IntVar(&o.limit, "limit", 0, "products per page, all when zero")
}

func (o *listOptions) apply(products []productResponse.Product) ([]productResponse.Product, listing.Page) {
	products = listing.Sort(listing.Filter(products, o.term), o.sort)
	return listing.Paginate(products, o.page, o.limit)
}

// NewProductService builds the catalog reader from the config in c, with the
// redis catalog cache when cache.catalog_enabled is set. The returned func
// releases the cache.
func NewProductService(c context.Context) (service.ProductService, func(), error) {
	c, span := otel.Tracer.Start(c, "NewProductService")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "cmd NewProductService").Logger()
	c = logger.WithContext(c)

	cfg, err := config.FromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return service.ProductService{}, nil, err
	}

	client := inHttp.NewClient(cfg.Api)
	if !cfg.Cache.CatalogEnabled {
		return service.NewProductService(client, nil, 0), func() {}, nil
	}

	logger = logger.With().Str(log.KeyProcess, "initializing catalog cache").Logger()
	logger.Debug().Msg("initializing catalog cache")
	cache, err := infra.NewCacheClient(c, cfg.Cache)
	if err != nil {
		logger.Warn().Err(err).Msg("catalog cache unavailable, reading api directly")
		return service.NewProductService(client, nil, 0), func() {}, nil
	}
	logger.Debug().Msg("initialized catalog cache")

	closeCache := func() {
		if err := cache.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed closing catalog cache")
		}
	}
	return service.NewProductService(client, cache, cfg.Cache.TTL), closeCache, nil
}

func withProducts(
	run func(cmd *cobra.Command, args []string, svc service.ProductService) error,
) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		svc, closeFn, err := NewProductService(cmd.Context())
		if err != nil {
			return err
		}
		defer closeFn()
		return run(cmd, args, svc)
	}
}

func writeProducts(cmd *cobra.Command, products []productResponse.Product, page *listing.Page) error {
	body := map[string]any{"products": products}
	if page != nil {
		body["page"] = page
	}
	return response.WriteJson(cmd.Context(), cmd.OutOrStdout(), body)
}

func NewProductCommand() *cobra.Command {
	productCmd := &cobra.Command{
		Use:   "product",
		Short: "Browse the storefront catalog",
	}
	productCmd.AddCommand(
		newListCommand(),
		newGetCommand(),
		newCategoryCommand(),
		newFeaturedCommand(),
		newSearchCommand(),
	)
	return productCmd
}

func newListCommand() *cobra.Command {
	opts := &listOptions{}
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List every product",
		Args:  cobra.NoArgs,
		RunE: withProducts(func(cmd *cobra.Command, _ []string, svc service.ProductService) error {
			products, err := svc.FindProducts(cmd.Context())
			if err != nil {
				return err
			}
			products, page := opts.apply(products)
			return writeProducts(cmd, products, &page)
		}),
	}
	opts.bind(listCmd)
	return listCmd
}

func newGetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "get <productId>",
		Short: "Show one product with its brands",
		Args:  cobra.ExactArgs(1),
		RunE: withProducts(func(cmd *cobra.Command, args []string, svc service.ProductService) error {
			product, err := svc.FindProductById(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return response.WriteJson(cmd.Context(), cmd.OutOrStdout(), map[string]any{"product": product})
		}),
	}
}

func newCategoryCommand() *cobra.Command {
	param := request.FindProductsByCategory{}
	opts := &listOptions{}
	categoryCmd := &cobra.Command{
		Use:   "category <category>",
		Short: "List the products of a category",
		Args:  cobra.ExactArgs(1),
		RunE: withProducts(func(cmd *cobra.Command, args []string, svc service.ProductService) error {
			param.Category = args[0]
			products, err := svc.FindProductsByCategory(cmd.Context(), param)
			if err != nil {
				return err
			}
			products, page := opts.apply(products)
			return writeProducts(cmd, products, &page)
		}),
	}
	opts.bind(categoryCmd)
	categoryCmd.Flags().IntVar(&param.Page, "api-page", request.DefaultPage, "page requested from the api")
	categoryCmd.Flags().IntVar(&param.Limit, "api-limit", request.DefaultLimit, "page size requested from the api")
	return categoryCmd
}

func newFeaturedCommand() *cobra.Command {
	param := request.FindFeaturedProducts{}
	featuredCmd := &cobra.Command{
		Use:   "featured",
		Short: "List featured products",
		Args:  cobra.NoArgs,
		RunE: withProducts(func(cmd *cobra.Command, _ []string, svc service.ProductService) error {
			products, err := svc.FindFeaturedProducts(cmd.Context(), param)
			if err != nil {
				return err
			}
			return writeProducts(cmd, products, nil)
		}),
	}
	featuredCmd.Flags().IntVar(&param.Limit, "limit", request.DefaultFeaturedLimit, "number of products")
	return featuredCmd
}

func newSearchCommand() *cobra.Command {
	param := request.SearchProducts{}
	searchCmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search products",
		Args:  cobra.ExactArgs(1),
		RunE: withProducts(func(cmd *cobra.Command, args []string, svc service.ProductService) error {
			param.Query = args[0]
			products, err := svc.SearchProducts(cmd.Context(), param)
			if err != nil {
				return fmt.Errorf("failed searching %q with error=%w", param.Query, err)
			}
			return writeProducts(cmd, products, nil)
		}),
	}
	searchCmd.Flags().IntVar(&param.Page, "page", request.DefaultPage, "page requested from the api")
	searchCmd.Flags().IntVar(&param.Limit, "limit", request.DefaultLimit, "page size requested from the api")
	return searchCmd
}
