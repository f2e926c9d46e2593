package app

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/hub"
	"github.com/vancomm/minefield/internal/middleware"
)

type App struct {
	log    *logrus.Logger
	cfg    config.Config
	router *http.ServeMux
	hub    *hub.Hub
	jwt    *config.JWT
	ws     *config.WebSocket
	rnd    *rand.Rand
}

func New(log *logrus.Logger, cfg config.Config) (*App, error) {
	jwt, err := config.NewJWT(cfg.JWT)
	if err != nil {
		return nil, fmt.Errorf("unable to set up jwt: %w", err)
	}

	ws, err := config.NewWebSocket(cfg.WS)
	if err != nil {
		return nil, fmt.Errorf("unable to set up websocket: %w", err)
	}

	app := &App{
		log:    log,
		cfg:    cfg,
		router: http.NewServeMux(),
		jwt:    jwt,
		ws:     ws,
		rnd:    createRand(),
	}

	return app, nil
}

func (a *App) handler() http.Handler {
	return middleware.Wrap(
		a.router,
		middleware.Logging(a.log),
		middleware.Cors(a.cfg.WS.AllowedOrigins),
		middleware.Auth(a.log, a.jwt),
	)
}

// Start serves until ctx is done, then shuts the server down and waits
// for every session clock to stop.
func (a *App) Start(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	a.hub = hub.New(gCtx, a.log, a.cfg.Hub, a.rnd)
	a.loadRoutes()

	server := &http.Server{
		Addr:         a.cfg.HTTP.Addr,
		Handler:      a.handler(),
		ReadTimeout:  a.cfg.HTTP.ReadTimeout,
		WriteTimeout: a.cfg.HTTP.WriteTimeout,
		IdleTimeout:  a.cfg.HTTP.IdleTimeout,
	}

	g.Go(func() error {
		a.log.WithField("addr", server.Addr).Info("server listening")
		err := server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("unable to listen and serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		a.log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(
			context.Background(), a.cfg.HTTP.ShutdownTimeout,
		)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	g.Go(a.hub.Run)

	return g.Wait()
}
