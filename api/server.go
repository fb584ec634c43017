package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tablesight/tablesight-backend/pkg/config"
	"github.com/tablesight/tablesight-backend/pkg/logger"
)

const defaultShutdownTimeout = 20 * time.Second

// NewServer wraps the router in an http.Server with the configured timeouts.
// The write timeout is long because POST /sync runs inline.
func NewServer(cfg *config.Config, addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.API.ReadTimeout,
		WriteTimeout:      cfg.API.WriteTimeout,
	}
}

// Serve runs srv until ctx is canceled, then drains in-flight requests.
func Serve(ctx context.Context, srv *http.Server, logg *logger.Logger, shutdownTimeout time.Duration) error {
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logg.Info(ctx, "api server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
