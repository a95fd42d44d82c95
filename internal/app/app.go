package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"ewastevision/internal/config"
	"ewastevision/internal/logger"
	"ewastevision/internal/service/capture"
)

const shutdownTimeout = 5 * time.Second

// App runs one of the HTTP services with its background workers.
type App struct {
	config    *config.Config
	logger    *logger.Logger
	openVideo func(index int) (capture.Source, error)
}

func NewApp(cfg *config.Config, log *logger.Logger) *App {
	return &App{
		config:    cfg,
		logger:    log,
		openVideo: openVideoCapture,
	}
}

// serve starts an HTTP server in g and shuts it down once ctx is done. Request
// contexts derive from ctx, so long-lived streams end on shutdown.
func (a *App) serve(ctx context.Context, g *errgroup.Group, port int, h http.Handler) {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server on port %d: %w", port, err)
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.logger.Warning("Server on port %d did not shut down cleanly: %v", port, err)
		}
		return nil
	})
}

// localIP returns the LAN address used for outbound traffic. No packet is sent.
func localIP() string {
	conn, err := net.Dial("udp", "8.8.8.8:80")
	if err != nil {
		return "127.0.0.1"
	}
	defer conn.Close()

	if addr, ok := conn.LocalAddr().(*net.UDPAddr); ok {
		return addr.IP.String()
	}
	return "127.0.0.1"
}
