package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/Alturino/medkit/cart/internal/mirror"
	"github.com/Alturino/medkit/cart/internal/otel"
	"github.com/Alturino/medkit/cart/internal/repository"
	"github.com/Alturino/medkit/cart/internal/service"
	"github.com/Alturino/medkit/cart/pkg/pricing"
	"github.com/Alturino/medkit/cart/pkg/request"
	commonErrors "github.com/Alturino/medkit/internal/common/errors"
	"github.com/Alturino/medkit/internal/common/response"
	"github.com/Alturino/medkit/internal/config"
	inHttp "github.com/Alturino/medkit/internal/http"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/internal/session"
	productCmd "github.com/Alturino/medkit/product/cmd"
	productResponse "github.com/Alturino/medkit/product/pkg/response"
)

type productFinder interface {
	FindProductById(c context.Context, id string) (productResponse.Product, error)
}

type cartApp struct {
	svc          *service.CartService
	calculator   pricing.Calculator
	products     productFinder
	closeCatalog func()
	mirror       *mirror.Mirror
	store        session.Store
}

func newCartApp(c context.Context) (*cartApp, error) {
	c, span := otel.Tracer.Start(c, "newCartApp")
	defer span.End()

	logger := zerolog.Ctx(c).With().Str(log.KeyTag, "cmd newCartApp").Logger()
	c = logger.WithContext(c)

	cfg, err := config.FromContext(c)
	if err != nil {
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}

	logger = logger.With().Str(log.KeyProcess, "initializing session store").Logger()
	logger.Debug().Msg("initializing session store")
	store, err := session.NewStore(c, cfg)
	if err != nil {
		err = fmt.Errorf("failed initializing session store with error=%w", err)
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Msg("initialized session store")

	logger = logger.With().Str(log.KeyProcess, "initializing cartService").Logger()
	logger.Debug().Msg("initializing cartService")
	client := inHttp.NewClient(cfg.Api)
	calculator := pricing.NewCalculator(cfg.Pricing.ShippingFee, cfg.Pricing.TaxRate)
	svc, err := service.NewCartService(
		session.NewProvider(store),
		repository.NewCartRepository(client),
		repository.NewOrderRepository(client),
		calculator,
	)
	if err != nil {
		_ = store.Close()
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	m := mirror.New()
	svc.Subscribe(m.Apply)
	logger.Debug().Msg("initialized cartService")

	logger = logger.With().Str(log.KeyProcess, "initializing productService").Logger()
	logger.Debug().Msg("initializing productService")
	products, closeCatalog, err := productCmd.NewProductService(c)
	if err != nil {
		_ = store.Close()
		commonErrors.HandleError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	logger.Debug().Msg("initialized productService")

	return &cartApp{
		svc:          svc,
		calculator:   calculator,
		products:     products,
		closeCatalog: closeCatalog,
		mirror:       m,
		store:        store,
	}, nil
}

func (app *cartApp) close(c context.Context) {
	app.closeCatalog()
	if err := app.store.Close(); err != nil {
		zerolog.Ctx(c).Warn().Err(err).Msg("failed closing session store")
	}
}

// print writes the mirrored cart with totals computed from the same snapshot.
func (app *cartApp) print(cmd *cobra.Command) error {
	snapshot := app.mirror.Snapshot()
	return response.WriteJson(cmd.Context(), cmd.OutOrStdout(), map[string]any{
		"items":   snapshot.Items,
		"version": snapshot.Version,
		"pricing": app.calculator.Breakdown(snapshot.Items).Display(),
	})
}

// withCart builds the cart app around run and releases it afterwards.
func withCart(run func(cmd *cobra.Command, args []string, app *cartApp) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newCartApp(cmd.Context())
		if err != nil {
			return err
		}
		defer app.close(cmd.Context())
		return run(cmd, args, app)
	}
}

func NewCartCommand() *cobra.Command {
	cartCmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and change the shopping cart",
	}
	cartCmd.AddCommand(
		newShowCommand(),
		newAddCommand(),
		newUpdateCommand(),
		newRemoveCommand(),
		newClearCommand(),
		newCheckoutCommand(),
	)
	return cartCmd
}

func newShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the cart and its totals",
		Args:  cobra.NoArgs,
		RunE: withCart(func(cmd *cobra.Command, _ []string, app *cartApp) error {
			app.svc.Load(cmd.Context())
			return app.print(cmd)
		}),
	}
}

func newAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <productId> <brandName>",
		Short: "Add one unit of a product variant",
		Args:  cobra.ExactArgs(2),
		RunE: withCart(func(cmd *cobra.Command, args []string, app *cartApp) error {
			c := cmd.Context()
			product, err := app.products.FindProductById(c, args[0])
			if err != nil {
				return err
			}
			line, err := request.AddLineFromProduct(product, args[1])
			if err != nil {
				return err
			}
			if _, err = app.svc.AddLine(c, line); err != nil {
				return err
			}
			return app.print(cmd)
		}),
	}
}

func newUpdateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "update <productId> <brandName> <quantity>",
		Short: "Set the quantity of a cart line; zero or less removes it",
		Args:  cobra.ExactArgs(3),
		RunE: withCart(func(cmd *cobra.Command, args []string, app *cartApp) error {
			quantity, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("%w: quantity=%s", commonErrors.ErrInvalidRequest, args[2])
			}
			_, err = app.svc.UpdateQuantity(cmd.Context(), request.UpdateQuantity{
				ProductID: args[0],
				BrandName: args[1],
				Quantity:  quantity,
			})
			if err != nil {
				return err
			}
			return app.print(cmd)
		}),
	}
}

func newRemoveCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <productId> <brandName>",
		Short: "Remove a cart line",
		Args:  cobra.ExactArgs(2),
		RunE: withCart(func(cmd *cobra.Command, args []string, app *cartApp) error {
			_, err := app.svc.RemoveLine(cmd.Context(), request.RemoveLine{
				ProductID: args[0],
				BrandName: args[1],
			})
			if err != nil {
				return err
			}
			return app.print(cmd)
		}),
	}
}

func newClearCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: withCart(func(cmd *cobra.Command, _ []string, app *cartApp) error {
			if _, err := app.svc.Clear(cmd.Context()); err != nil {
				return err
			}
			return app.print(cmd)
		}),
	}
}

func newCheckoutCommand() *cobra.Command {
	param := request.Checkout{}
	checkoutCmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the cart",
		Args:  cobra.NoArgs,
		RunE: withCart(func(cmd *cobra.Command, _ []string, app *cartApp) error {
			c := cmd.Context()
			app.svc.Load(c)
			order, err := app.svc.Checkout(c, param)
			if errors.Is(err, commonErrors.ErrEmptyCart) {
				return fmt.Errorf("nothing to check out: %w", err)
			}
			if err != nil {
				return err
			}
			return response.WriteJson(c, cmd.OutOrStdout(), map[string]any{"order": order})
		}),
	}

	flags := checkoutCmd.Flags()
	flags.StringVar(&param.Customer.Name, "name", "", "customer name")
	flags.StringVar(&param.Customer.Email, "email", "", "customer email")
	flags.StringVar(&param.Delivery.FullName, "full-name", "", "recipient full name")
	flags.StringVar(&param.Delivery.Phone, "phone", "", "recipient phone number")
	flags.StringVar(&param.Delivery.Address, "address", "", "delivery address")
	flags.StringVar(&param.Delivery.City, "city", "", "delivery city")
	flags.StringVar(&param.Delivery.State, "state", "", "delivery state")
	flags.StringVar(&param.Delivery.AdditionalInfo, "note", "", "additional delivery information")
	flags.StringVar(&param.PaymentMethod, "payment-method", "Bank Transfer", "payment method")
	flags.StringVar(&param.PaymentProof, "payment-proof", "", "file name of the payment receipt")
	for _, required := range []string{"name", "email", "full-name", "phone", "address", "payment-proof"} {
		_ = checkoutCmd.MarkFlagRequired(required)
	}
	return checkoutCmd
}
