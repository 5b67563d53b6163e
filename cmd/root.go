package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	cartCmd "github.com/Alturino/medkit/cart/cmd"
	"github.com/Alturino/medkit/internal/common/constants"
	"github.com/Alturino/medkit/internal/config"
	"github.com/Alturino/medkit/internal/log"
	"github.com/Alturino/medkit/internal/otel"
	productCmd "github.com/Alturino/medkit/product/cmd"
)

const shutdownTimeout = 5 * time.Second

type rootCommand struct {
	*cobra.Command
	shutdownFuncs []otel.ShutdownFunc
}

func newRootCommand() *rootCommand {
	var configName string
	root := &rootCommand{}

	root.Command = &cobra.Command{
		Use:           constants.AppMedkit,
		Short:         "Storefront client for the medkit commerce api",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c := cmd.Context()

			cfg, err := config.Load(c, configName)
			if err != nil {
				return err
			}

			logger := log.InitLogger(cfg.Application.LogPath, cfg.Application.Env).
				With().
				Str(log.KeyAppName, constants.AppMedkit).
				Str(log.KeyTag, "cmd "+cmd.CommandPath()).
				Logger()
			c = logger.WithContext(c)

			logger = logger.With().Str(log.KeyProcess, "initializing otel sdk").Logger()
			logger.Debug().Msg("initializing otel sdk")
			shutdownFuncs, err := otel.InitOtelSdk(c, constants.AppMedkit, cfg.Otel)
			root.shutdownFuncs = append(root.shutdownFuncs, shutdownFuncs...)
			if err != nil {
				err = fmt.Errorf("failed initializing otel sdk with error=%w", err)
				logger.Error().Err(err).Msg(err.Error())
				return err
			}
			logger.Debug().Msg("initialized otel sdk")

			cmd.SetContext(config.AttachToContext(c, cfg))
			return nil
		},
	}
	root.PersistentFlags().
		StringVar(&configName, "config", constants.AppMedkit, "config file name without extension, searched in ./env and $HOME/.medkit")

	root.AddCommand(cartCmd.NewCartCommand(), productCmd.NewProductCommand())
	return root
}

// execute runs the command tree and then flushes otel, also when the command
// failed.
func (root *rootCommand) execute(c context.Context) error {
	err := root.ExecuteContext(c)

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(c), shutdownTimeout)
	defer cancel()
	if shutdownErr := otel.ShutdownOtel(shutdownCtx, root.shutdownFuncs); shutdownErr != nil {
		err = errors.Join(err, fmt.Errorf("failed shutting down otel with error=%w", shutdownErr))
	}
	return err
}

func Start() {
	c, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().execute(c); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		stop()
		os.Exit(1)
	}
}
