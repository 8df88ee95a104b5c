package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"seleniumacros/infrastructure/metrics"
	"seleniumacros/presentation/api"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Expose the iim calls over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg := prometheus.NewRegistry()
			reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
			recorder, err := metrics.NewPrometheusRecorder(reg)
			if err != nil {
				return err
			}
			store, err := a.newStore()
			if err != nil {
				return err
			}
			facade, err := a.newFacade(recorder, store)
			if err != nil {
				return err
			}
			defer facade.Exit()

			if a.logger.GetLevel() < logrus.DebugLevel {
				gin.SetMode(gin.ReleaseMode)
			}
			srv := &http.Server{
				Addr:              a.cfg.ListenAddr,
				Handler:           api.SetupRoutes(facade, reg, a.logger),
				ReadHeaderTimeout: 10 * time.Second,
			}
			return serve(cmd.Context(), srv, a.logger)
		},
	}
}

// serve - runs srv until ctx is done, then shuts it down gracefully
func serve(ctx context.Context, srv *http.Server, logger *logrus.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Listening on %s", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
