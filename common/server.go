package common

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/superbridgeapp/superchain-token-list/log"
)

const shutdownTimeout = 5 * time.Second

// RunServer serves until ctx is done, then shuts the server down gracefully.
func RunServer(ctx context.Context, server *http.Server, logger *log.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		logger.Info("shutting down server", "addr", server.Addr, "reason", ctx.Err())
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
