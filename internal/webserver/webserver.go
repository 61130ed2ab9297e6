package webserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/lachlan2k/labour-console/internal/accesscontrol"
	"github.com/lachlan2k/labour-console/internal/auth"
	"github.com/lachlan2k/labour-console/internal/config"
	"github.com/lachlan2k/labour-console/internal/metrics"
	"github.com/lachlan2k/labour-console/internal/session"
)

const shutdownTimeout = 10 * time.Second

type Webserver struct {
	conf       *config.Config
	sessions   *session.Manager
	auth       *auth.Service
	authorizer *accesscontrol.Authorizer
	metrics    *metrics.Metrics
	logger     *zap.Logger

	echo *echo.Echo
}

// New sets up the console's routes. m may be nil, in which case /metrics is not served.
func New(conf *config.Config, sessions *session.Manager, authService *auth.Service, authorizer *accesscontrol.Authorizer, m *metrics.Metrics, logger *zap.Logger) *Webserver {
	if logger == nil {
		logger = zap.NewNop()
	}

	w := &Webserver{
		conf:       conf,
		sessions:   sessions,
		auth:       authService,
		authorizer: authorizer,
		metrics:    m,
		logger:     logger,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("request_id", v.RequestID),
			}
			if v.Error != nil {
				logger.Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			logger.Debug("request", fields...)
			return nil
		},
	}))

	w.echo = e
	w.registerRoutes()
	return w
}

func (w *Webserver) registerRoutes() {
	e := w.echo

	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	if w.metrics != nil {
		e.GET("/metrics", echo.WrapHandler(w.metrics.Handler()))
	}

	e.GET("/api/session", w.sessionInfoRouteHandler)
	e.POST("/api/push-token", w.pushTokenRouteHandler)

	e.POST(accesscontrol.PathLogin, w.contractorLoginRouteHandler)
	e.POST(accesscontrol.PathAdmin, w.adminLoginRouteHandler)
	e.POST("/logout", w.logoutRouteHandler)

	// Login forms share their path with the POST handlers above
	e.GET(accesscontrol.PathLogin, w.screenRouteHandler)
	e.GET(accesscontrol.PathAdmin, w.screenRouteHandler)
	e.GET("/*", w.screenRouteHandler)
}

func (w *Webserver) Handler() http.Handler {
	return w.echo
}

// Run serves until ctx is done, then shuts down gracefully.
func (w *Webserver) Run(ctx context.Context) error {
	listenAddr := fmt.Sprintf(":%d", w.conf.ListenPort)

	errCh := make(chan error, 1)
	go func() {
		w.logger.Info("console listening", zap.String("addr", listenAddr))
		errCh <- w.echo.Start(listenAddr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	w.logger.Info("shutting down console")
	if err := w.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
