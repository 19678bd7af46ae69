package app

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/go-taskmaster/internal/config"
	"github.com/adanyl0v/go-taskmaster/internal/delivery/http/v1"
	"github.com/adanyl0v/go-taskmaster/internal/services"
)

func (a *App) NewRouter() *gin.Engine {
	if a.Config.Env != config.EnvLocal {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(v1.RequestIDMiddleware())
	router.Use(v1.LoggerMiddleware(a.Logger))
	router.Use(gin.Recovery())

	handler := v1.New(a.Logger, a.Users, a.Tasks, a.Stats)
	router.GET("/", handler.HandleWelcome)
	v1.RegisterRoutes(router.Group("/api/v1"), handler)
	return router
}

// Serve seeds the roles, starts the optional stats report and serves HTTP
// until ctx is done, then shuts the server down gracefully.
func (a *App) Serve(ctx context.Context) error {
	// A failed seed is logged and the server still starts.
	_ = a.SeedRoles(ctx)

	if schedule := a.Config.Stats.ReportSchedule; schedule != "" {
		reporter := NewStatsReporter(a.Logger, a.Stats)
		err := reporter.Schedule(schedule)
		if err != nil {
			return err
		}
		reporter.Start()
		defer reporter.Stop()
	}

	httpCfg := a.Config.HTTP
	server := &http.Server{
		Addr:              net.JoinHostPort(httpCfg.Host, httpCfg.Port),
		Handler:           a.NewRouter(),
		ReadHeaderTimeout: httpCfg.ReadHeaderTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		a.Logger.Info().
			Str("host", httpCfg.Host).
			Str("port", httpCfg.Port).
			Msg("setting up http server")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().
				Err(err).
				Msg("failed to listen and serve http")
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	a.Logger.Info().
		Msg("shutting down http server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), httpCfg.ShutdownTimeout)
	defer cancel()

	err := server.Shutdown(shutdownCtx)
	if err != nil {
		a.Logger.Error().
			Err(err).
			Msg("failed to shutdown http server")
		return err
	}
	a.Logger.Info().Msg("shut down http server")
	return nil
}

func (a *App) SeedRoles(ctx context.Context) error {
	return services.SeedRoles(ctx, a.Store, a.Logger)
}
