package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/medkit/internal/config"
)

func newTestRoot(t *testing.T, run func(cmd *cobra.Command, root *rootCommand) error) *rootCommand {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	t.Setenv("MEDKIT_SESSION_DRIVER", config.SessionDriverMemory)

	root := newRootCommand()
	root.AddCommand(&cobra.Command{
		Use:  "noop",
		RunE: func(cmd *cobra.Command, args []string) error { return run(cmd, root) },
	})
	root.SetArgs([]string{"noop", "--config", "medkit-missing"})
	return root
}

func TestRootExecute(t *testing.T) {
	c := context.Background()

	t.Run("given failing command should still shut down otel", func(t *testing.T) {
		shutdownCalled := false
		root := newTestRoot(t, func(_ *cobra.Command, root *rootCommand) error {
			root.shutdownFuncs = append(root.shutdownFuncs, func(context.Context) error {
				shutdownCalled = true
				return nil
			})
			return errors.New("cart api down")
		})

		err := root.execute(c)

		assert.ErrorContains(t, err, "cart api down")
		assert.True(t, shutdownCalled)
	})

	t.Run("given failing shutdown should return its error", func(t *testing.T) {
		root := newTestRoot(t, func(_ *cobra.Command, root *rootCommand) error {
			root.shutdownFuncs = append(root.shutdownFuncs, func(context.Context) error {
				return errors.New("exporter unreachable")
			})
			return nil
		})

		err := root.execute(c)

		require.Error(t, err)
		assert.ErrorContains(t, err, "failed shutting down otel")
		assert.ErrorContains(t, err, "exporter unreachable")
	})

	t.Run("given subcommand should receive config in context", func(t *testing.T) {
		var got *config.Config
		root := newTestRoot(t, func(cmd *cobra.Command, _ *rootCommand) error {
			cfg, err := config.FromContext(cmd.Context())
			got = cfg
			return err
		})

		require.NoError(t, root.execute(c))
		require.NotNil(t, got)
		assert.Equal(t, config.SessionDriverMemory, got.Session.Driver)
	})
}
