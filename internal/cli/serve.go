package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lachlan2k/labour-console/internal/accesscontrol"
	"github.com/lachlan2k/labour-console/internal/webserver"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the console and watch the session for expiry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newApp(ctx, conf, logger)
			if err != nil {
				return err
			}
			defer a.Close()

			server := webserver.New(conf, a.sessions, a.auth, accesscontrol.Default(), a.metrics, logger.Named("http"))

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return server.Run(gctx)
			})

			// Screens render as loading until this returns
			if err := a.sessions.Initialize(gctx); err != nil {
				logger.Warn("couldn't restore stored session", zap.Error(err))
			}
			if a.metrics != nil {
				a.metrics.SessionRestored(a.sessions.State().Authenticated())
			}

			g.Go(func() error {
				return a.sessions.Watch(gctx)
			})

			err = g.Wait()
			logger.Info("console stopped")
			return err
		},
	}
}
